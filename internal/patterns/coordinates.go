// Package patterns provides the grok-style pattern compiler used by the TAC
// token rules.
// This file contains coordinate conversion utilities.

package patterns

import (
	"fmt"
	"math"
	"strconv"
)

// ParseDMCoord parses a hemisphere-prefixed degrees/minutes coordinate as
// written in SIGMETs and returns decimal degrees.
// Supported formats:
//   - N60, S05 (latitude, degrees only)
//   - N6030 (latitude, DDMM)
//   - E025, W120 (longitude, degrees only)
//   - E02530 (longitude, DDDMM)
//
// S and W result in negative values.
func ParseDMCoord(s string) (float64, error) {
	if len(s) < 3 {
		return 0, fmt.Errorf("coordinate %q too short", s)
	}
	hemi, digits := s[0], s[1:]

	degDigits := 2
	limit := 90.0
	switch hemi {
	case 'N', 'S':
	case 'E', 'W':
		degDigits, limit = 3, 180
	default:
		return 0, fmt.Errorf("coordinate %q: unknown hemisphere %q", s, hemi)
	}
	if len(digits) != degDigits && len(digits) != degDigits+2 {
		return 0, fmt.Errorf("coordinate %q: want %d or %d digits", s, degDigits, degDigits+2)
	}

	deg, err := strconv.Atoi(digits[:degDigits])
	if err != nil {
		return 0, fmt.Errorf("coordinate %q: %w", s, err)
	}
	min := 0
	if len(digits) > degDigits {
		if min, err = strconv.Atoi(digits[degDigits:]); err != nil {
			return 0, fmt.Errorf("coordinate %q: %w", s, err)
		}
		if min > 59 {
			return 0, fmt.Errorf("coordinate %q: minutes out of range", s)
		}
	}

	// Convert to decimal degrees.
	result := float64(deg) + float64(min)/60.0
	if result > limit {
		return 0, fmt.Errorf("coordinate %q out of range", s)
	}

	// Apply direction.
	if hemi == 'S' || hemi == 'W' {
		result = -result
	}
	return result, nil
}

// FormatLatitude renders decimal degrees as N/S DDMM.
func FormatLatitude(v float64) string {
	hemi := "N"
	if v < 0 {
		hemi, v = "S", -v
	}
	deg, min := splitDM(v)
	return fmt.Sprintf("%s%02d%02d", hemi, deg, min)
}

// FormatLongitude renders decimal degrees as E/W DDDMM.
func FormatLongitude(v float64) string {
	hemi := "E"
	if v < 0 {
		hemi, v = "W", -v
	}
	deg, min := splitDM(v)
	return fmt.Sprintf("%s%03d%02d", hemi, deg, min)
}

func splitDM(v float64) (int, int) {
	total := int(math.Round(v * 60))
	return total / 60, total % 60
}
