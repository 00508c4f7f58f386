package rules

import (
	"fmt"
	"sync"

	"tac_converter/internal/conversion"
)

// sets is built once on first use and never modified afterwards.
var sets = sync.OnceValues(func() (map[conversion.ReportType]*Set, error) {
	metar, err := buildMETAR()
	if err != nil {
		return nil, err
	}
	taf, err := buildTAF()
	if err != nil {
		return nil, err
	}
	sigmet, err := buildSIGMET(conversion.SIGMET)
	if err != nil {
		return nil, err
	}
	airmet, err := buildSIGMET(conversion.AIRMET)
	if err != nil {
		return nil, err
	}
	return map[conversion.ReportType]*Set{
		conversion.METAR:  metar,
		conversion.SPECI:  metar,
		conversion.TAF:    taf,
		conversion.SIGMET: sigmet,
		conversion.AIRMET: airmet,
	}, nil
})

// ForType returns the shared rule set of a report type. SPECI shares the
// METAR rules.
func ForType(t conversion.ReportType) (*Set, error) {
	all, err := sets()
	if err != nil {
		return nil, fmt.Errorf("building rule sets: %w", err)
	}
	s, ok := all[t]
	if !ok {
		return nil, fmt.Errorf("no rule set for report type %q", t)
	}
	return s, nil
}
