// Package patterns provides the grok-style pattern compiler used by the TAC
// token rules.
// This file contains the base patterns for use with the Compiler.

package patterns

// BasePatterns defines reusable regex components for grok-style pattern composition.
// These are referenced in format patterns using {PATTERN_NAME} syntax.
var BasePatterns = map[string]string{
	// Location indicators.
	"ICAO": `[A-Z]{4}`,

	// Time fields.
	"DAY":    `(?:0[1-9]|[12]\d|3[01])`,
	"HOUR":   `(?:[01]\d|2[0-4])`,
	"MINUTE": `[0-5]\d`,

	// Wind.
	"WIND_DIR": `(?:[0-2]\d{2}|3[0-5]\d|360)`,
	"WIND_SPD": `\d{2,3}`,
	"SPD_UNIT": `KT|MPS|KMH`,

	// Visibility and runways.
	"VIS":        `\d{4}`,
	"COMPASS":    `NE|NW|SE|SW|N|E|S|W|NDV`,
	"RUNWAY":     `(?:0[1-9]|[1-2]\d|3[0-6]|88|99)[LRC]?`,
	"RVR_VALUE":  `\d{4}`,
	"RVR_PREFIX": `[PM]`,
	"TENDENCY":   `[UDN]`,

	// Present and forecast weather (ICAO Annex 3 code table 4678).
	"WX_INTENSITY": `[+-]|VC`,
	"WX_DESC":      `MI|BC|PR|DR|BL|SH|TS|FZ`,
	"WX_PHEN":      `DZ|RA|SN|SG|PL|GR|GS|UP|BR|FG|FU|VA|DU|SA|HZ|PO|SQ|FC|SS|DS`,

	// Cloud.
	"COVER":      `FEW|SCT|BKN|OVC`,
	"HEIGHT":     `\d{3}`,
	"CLOUD_TYPE": `CB|TCU`,

	// Temperature and pressure.
	"TEMP":     `M?\d{2}`,
	"PRESSURE": `\d{4}`,

	// SIGMET geometry and levels.
	"LAT":       `[NS](?:\d{4}|\d{2})`,
	"LON":       `[EW](?:\d{5}|\d{3})`,
	"FL":        `\d{3}`,
	"HEIGHT_FT": `\d{4,5}FT`,
	"DIR16":     `NNE|NE|ENE|ESE|SE|SSE|SSW|SW|WSW|WNW|NW|NNW|N|E|S|W`,
}
