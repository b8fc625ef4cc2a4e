package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Checkout     CheckoutConfig
	Promo        PromoConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GoogleMaps   GoogleMapsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LARAIB_APP_ENV" required:"true"`
	Port         string `envconfig:"LARAIB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LARAIB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LARAIB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"LARAIB_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"LARAIB_DB_DSN"`
	Driver string `envconfig:"LARAIB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LARAIB_DB_HOST"`
	LegacyPort     int    `envconfig:"LARAIB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LARAIB_DB_USER"`
	LegacyPassword string `envconfig:"LARAIB_DB_PASSWORD"`
	LegacyName     string `envconfig:"LARAIB_DB_NAME"`
	LegacySSLMode  string `envconfig:"LARAIB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LARAIB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LARAIB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LARAIB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LARAIB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LARAIB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LARAIB_REDIS_ADDR"`
	Password     string        `envconfig:"LARAIB_REDIS_PASSWORD"`
	DB           int           `envconfig:"LARAIB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LARAIB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LARAIB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LARAIB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LARAIB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LARAIB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig carries what the API needs to verify tokens minted by the identity
// service. This backend never issues tokens.
type JWTConfig struct {
	Secret string `envconfig:"LARAIB_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"LARAIB_JWT_ISSUER" required:"true"`
}

type CheckoutConfig struct {
	ShippingFeePaisa     int64 `envconfig:"LARAIB_CHECKOUT_SHIPPING_FEE_PAISA" default:"20000"`
	FreeShippingMinPaisa int64 `envconfig:"LARAIB_CHECKOUT_FREE_SHIPPING_MIN_PAISA" default:"500000"`
	OrderNumberAttempts  int   `envconfig:"LARAIB_CHECKOUT_ORDER_NUMBER_ATTEMPTS" default:"5"`
}

type PromoConfig struct {
	RateLimitWindow     time.Duration `envconfig:"LARAIB_PROMO_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitAttempts   int           `envconfig:"LARAIB_PROMO_RATE_LIMIT_ATTEMPTS" default:"10"`
	RateLimitIPAttempts int           `envconfig:"LARAIB_PROMO_RATE_LIMIT_IP_ATTEMPTS" default:"30"`
}

type CronConfig struct {
	Tick                  time.Duration `envconfig:"LARAIB_CRON_TICK" default:"1m"`
	PaymentReminderAfter  time.Duration `envconfig:"LARAIB_CRON_PAYMENT_REMINDER_AFTER" default:"24h"`
	CartIdleWindow        time.Duration `envconfig:"LARAIB_CRON_CART_IDLE_WINDOW" default:"720h"`
	OutboxRetention       time.Duration `envconfig:"LARAIB_CRON_OUTBOX_RETENTION" default:"168h"`
	NotificationRetention time.Duration `envconfig:"LARAIB_CRON_NOTIFICATION_RETENTION" default:"720h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LARAIB_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"LARAIB_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GoogleMapsConfig struct {
	APIKey string `envconfig:"LARAIB_GOOGLE_MAPS_API_KEY"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"LARAIB_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"LARAIB_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"LARAIB_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"LARAIB_PUBSUB_NOTIFICATION_TOPIC" default:"lc-notification-events"`
	NotificationSubscription string `envconfig:"LARAIB_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"LARAIB_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"LARAIB_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"LARAIB_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// ensureDSN assembles a postgres DSN from the legacy host/user/name split
// variables when LARAIB_DB_DSN is not set. Non-postgres drivers have no
// legacy form, so they must provide the DSN directly.
func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.Driver != "" && !strings.EqualFold(db.Driver, "postgres") {
		return fmt.Errorf("%s is required for driver %q", EnvDBDSN, db.Driver)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
