package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Measurements maps a tailoring measurement name to its value in inches.
// Stitched cart lines must carry a complete set; ready-to-wear lines carry none.
type Measurements map[string]float64

const (
	MeasurementMinInches = 1.0
	MeasurementMaxInches = 100.0
)

var knownMeasurementKeys = map[string]struct{}{
	"neck":             {},
	"shoulder":         {},
	"chest":            {},
	"bust":             {},
	"waist":            {},
	"hip":              {},
	"sleeve_length":    {},
	"bicep":            {},
	"wrist":            {},
	"shirt_length":     {},
	"front_neck_depth": {},
	"back_neck_depth":  {},
	"armhole":          {},
	"daman":            {},
	"trouser_length":   {},
	"inseam":           {},
	"thigh":            {},
	"knee":             {},
	"bottom":           {},
}

// Validate checks every key is a known measurement and every value is a
// plausible inch figure.
func (m Measurements) Validate() error {
	for key, value := range m {
		if _, ok := knownMeasurementKeys[key]; !ok {
			return fmt.Errorf("measurements: unknown key %q", key)
		}
		if value < MeasurementMinInches || value > MeasurementMaxInches {
			return fmt.Errorf("measurements: %s must be between %.0f and %.0f inches", key, MeasurementMinInches, MeasurementMaxInches)
		}
	}
	return nil
}

// Canonical renders a deterministic representation independent of map order,
// used when fingerprinting cart line identity.
func (m Measurements) Canonical() string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(m[key], 'f', -1, 64))
	}
	return b.String()
}
