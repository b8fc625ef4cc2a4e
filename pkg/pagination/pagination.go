// Package pagination implements keyset cursors for list endpoints.
//
// A cursor names the (created_at, id) position of the first row beyond the
// page just returned. Paging by position instead of offset keeps page
// boundaries stable while new orders arrive at the head of the list.
package pagination

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/errors"
)

const (
	// DefaultLimit is the page size when the client does not send one.
	DefaultLimit = 25
	// MaxLimit caps the page size regardless of what the client asks for.
	MaxLimit = 100

	cursorSeparator = "|"
)

// Params carries the raw pagination inputs of a list request.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is a keyset position in a created_at DESC, id DESC ordering.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// NormalizeLimit clamps a requested limit to [1, MaxLimit], substituting
// DefaultLimit when the client sent nothing usable.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// LimitWithBuffer returns the normalized limit plus one sentinel row. The
// extra row tells the repository whether a next page exists without a
// second count query.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// Encode renders the cursor as an opaque token. The encoding is unpadded
// URL-safe base64 so tokens survive query strings without escaping.
func (c Cursor) Encode() string {
	payload := c.CreatedAt.UTC().Format(time.RFC3339Nano) + cursorSeparator + c.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// Parse decodes a client-supplied cursor token. A blank token means the
// first page and yields a nil cursor. A token that does not round-trip is
// a validation failure so the API answers 400 rather than 500.
func Parse(token string) (*Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed cursor")
	}
	rawTime, rawID, found := strings.Cut(string(decoded), cursorSeparator)
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "malformed cursor")
	}

	at, err := time.Parse(time.RFC3339Nano, rawTime)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed cursor timestamp")
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed cursor id")
	}
	return &Cursor{CreatedAt: at, ID: id}, nil
}
