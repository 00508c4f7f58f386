package timeref

import "fmt"

// DefaultMaxRolloverHours is the longest period accepted when the end of a
// period falls in the month after its start. It matches the longest TAF
// validity in use.
const DefaultMaxRolloverHours = 30

// ValidityHours returns the whole hours from (startDay, startHour) to
// (endDay, endHour). An unset end day means the start day; hour 24 counts as
// 00:00 of the next day. When the end precedes the start it is taken to be
// in the following month: every month length from 28 to 31 days that can
// hold the start day is tried and the shortest period wins, which must not
// exceed maxRollover hours.
func ValidityHours(startDay, startHour, endDay, endHour, maxRollover int) (int, error) {
	if endDay == Unset {
		endDay = startDay
	}
	if err := (PartialTime{Day: startDay, Hour: startHour, Minute: Unset}).Validate(); err != nil {
		return 0, fmt.Errorf("period start: %w", err)
	}
	if err := (PartialTime{Day: endDay, Hour: endHour, Minute: Unset}).Validate(); err != nil {
		return 0, fmt.Errorf("period end: %w", err)
	}
	if startDay == Unset || startHour == Unset || endHour == Unset {
		return 0, &ResolutionError{Field: "period", Value: Unset, Reason: "day and hour are required"}
	}

	start := startDay*24 + startHour
	end := endDay*24 + endHour
	if end >= start {
		return end - start, nil
	}

	best := -1
	for monthLen := 28; monthLen <= 31; monthLen++ {
		if monthLen < startDay {
			continue
		}
		h := end + monthLen*24 - start
		if h >= 0 && (best < 0 || h < best) {
			best = h
		}
	}
	if best < 0 || best > maxRollover {
		return 0, &ResolutionError{
			Field:  "period",
			Value:  Unset,
			Reason: fmt.Sprintf("%02d%02d/%02d%02d spans more than one month rollover allows (%dh)", startDay, startHour, endDay, endHour, maxRollover),
		}
	}
	return best, nil
}
