package cart

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/types"
)

// IdentityKey fingerprints a cart line configuration. Two lines with the same
// product, variant, stitching choice, measurements, and customization collapse
// into one, regardless of the order the maps were built in.
func IdentityKey(productID uuid.UUID, variantID string, isStitched bool, measurements types.Measurements, customization types.Customization) string {
	var b strings.Builder
	b.WriteString(productID.String())
	b.WriteByte('|')
	b.WriteString(variantID)
	b.WriteString("|stitched=")
	b.WriteString(strconv.FormatBool(isStitched))
	b.WriteByte('|')
	b.WriteString(customization.Canonical())
	b.WriteByte('|')
	b.WriteString(measurements.Canonical())

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
