package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "LARAIB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced outside struct tags (tests, error text).
const (
	EnvAppEnv = "LARAIB_APP_ENV"
	EnvPort   = "LARAIB_APP_PORT"

	EnvDBDSN  = "LARAIB_DB_DSN"
	EnvDBHost = "LARAIB_DB_HOST"
	EnvDBUser = "LARAIB_DB_USER"
	EnvDBName = "LARAIB_DB_NAME"

	EnvRedisURL = "LARAIB_REDIS_URL"

	EnvJWTSecret = "LARAIB_JWT_SECRET"
	EnvJWTIssuer = "LARAIB_JWT_ISSUER"

	EnvGCPProjectID = "LARAIB_GCP_PROJECT_ID"

	EnvPubSubNotificationTopic = "LARAIB_PUBSUB_NOTIFICATION_TOPIC"
	EnvPubSubNotificationSub   = "LARAIB_PUBSUB_NOTIFICATION_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
