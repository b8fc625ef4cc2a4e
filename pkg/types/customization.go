package types

import "strings"

// Customization captures the buyer-chosen options on a cart line: fabric
// colour, ready-to-wear size, and free-form stitching instructions.
type Customization struct {
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// IsZero reports whether no option was chosen.
func (c Customization) IsZero() bool {
	return c.Color == "" && c.Size == "" && c.Notes == ""
}

// Normalize trims the free-form fields.
func (c *Customization) Normalize() {
	c.Color = strings.TrimSpace(c.Color)
	c.Size = strings.TrimSpace(c.Size)
	c.Notes = strings.TrimSpace(c.Notes)
}

// Canonical renders a deterministic representation used when fingerprinting
// cart line identity. Field order is fixed, so two equal customizations always
// produce the same string.
func (c Customization) Canonical() string {
	var b strings.Builder
	b.WriteString("color=")
	b.WriteString(c.Color)
	b.WriteString(";size=")
	b.WriteString(c.Size)
	b.WriteString(";notes=")
	b.WriteString(c.Notes)
	return b.String()
}
