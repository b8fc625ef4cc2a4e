package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
)

// AccessTokenPayload captures the data embedded when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Role   enums.ActorKind
	JTI    string
}

// AccessTokenClaims is the typed JWT presented by the storefront. Tokens are
// minted by the web frontend against the shared secret; this service only
// verifies them.
type AccessTokenClaims struct {
	UserID uuid.UUID       `json:"user_id"`
	Email  string          `json:"email,omitempty"`
	Role   enums.ActorKind `json:"role"`
	jwt.RegisteredClaims
}
