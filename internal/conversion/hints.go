package conversion

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidityTimeFormat selects the TAC encoding of validity periods.
type ValidityTimeFormat string

const (
	PreferLong  ValidityTimeFormat = "PREFER_LONG"  // DDHH/DDHH
	PreferShort ValidityTimeFormat = "PREFER_SHORT" // DDHHHH when the period allows it
)

// HeadingSpacing selects the spacing used after a bulletin heading.
type HeadingSpacing string

const (
	SpacingNone   HeadingSpacing = "NONE"
	SpacingSingle HeadingSpacing = "SINGLE_SPACE"
)

// Hints tune tokenizing and reconstruction.
type Hints struct {
	BulletinHeadingSpacing HeadingSpacing     `yaml:"bulletin_heading_spacing" json:"bulletin_heading_spacing,omitempty"`
	ValidityTimeFormat     ValidityTimeFormat `yaml:"validity_time_format" json:"validity_time_format,omitempty"`
}

// DefaultHints returns the hints used when the caller supplies none.
func DefaultHints() Hints {
	return Hints{
		BulletinHeadingSpacing: SpacingSingle,
		ValidityTimeFormat:     PreferLong,
	}
}

// HintsFromMap builds hints from loosely typed key/value options. Unknown
// keys are ignored; unknown values for a known key are an error.
func HintsFromMap(opts map[string]string) (Hints, error) {
	h := DefaultHints()
	for k, v := range opts {
		v = strings.ToUpper(strings.TrimSpace(v))
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "validity_time_format":
			switch ValidityTimeFormat(v) {
			case PreferLong, PreferShort:
				h.ValidityTimeFormat = ValidityTimeFormat(v)
			default:
				return h, fmt.Errorf("invalid validity_time_format %q", v)
			}
		case "bulletin_heading_spacing":
			switch HeadingSpacing(v) {
			case SpacingNone, SpacingSingle:
				h.BulletinHeadingSpacing = HeadingSpacing(v)
			default:
				return h, fmt.Errorf("invalid bulletin_heading_spacing %q", v)
			}
		}
	}
	return h, nil
}

// LoadHints reads hints from a YAML file. Keys not present keep their
// defaults and unknown keys are ignored.
func LoadHints(filename string) (Hints, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Hints{}, fmt.Errorf("failed to read hints file '%s': %w", filename, err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Hints{}, fmt.Errorf("failed to parse YAML in hints file '%s': %w", filename, err)
	}
	return HintsFromMap(raw)
}
