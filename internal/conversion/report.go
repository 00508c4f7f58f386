package conversion

import (
	"fmt"
	"strings"
)

// ReportType selects the rule set and model of a message.
type ReportType string

const (
	METAR  ReportType = "METAR"
	SPECI  ReportType = "SPECI"
	TAF    ReportType = "TAF"
	SIGMET ReportType = "SIGMET"
	AIRMET ReportType = "AIRMET"
)

// ReportTypes lists every supported report type.
var ReportTypes = []ReportType{METAR, SPECI, TAF, SIGMET, AIRMET}

// ParseReportType parses a report type name, ignoring case.
func ParseReportType(s string) (ReportType, error) {
	t := ReportType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range ReportTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown report type %q", s)
}

// DetectReportType guesses the report type from the leading words of a
// message: METAR, SPECI and TAF open the message, SIGMET and AIRMET follow
// the location indicator.
func DetectReportType(text string) (ReportType, bool) {
	fields := strings.Fields(strings.ToUpper(text))
	for i, f := range fields {
		if i > 1 {
			break
		}
		switch ReportType(strings.TrimSuffix(f, "=")) {
		case METAR:
			return METAR, true
		case SPECI:
			return SPECI, true
		case TAF:
			return TAF, true
		case SIGMET:
			return SIGMET, true
		case AIRMET:
			return AIRMET, true
		}
	}
	return "", false
}
