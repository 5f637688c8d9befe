package fields

import "time"

// dateKeys are the field keys whose values carry dates and go through
// normalization after extraction.
var dateKeys = map[string]struct{}{
	"date_of_birth":     {},
	"issue_date":        {},
	"expiration_date":   {},
	"card_expires_date": {},
}

// IsDateKey reports whether a field key is date-bearing.
func IsDateKey(key string) bool {
	_, ok := dateKeys[key]
	return ok
}

// dateLayouts is the ordered list of accepted input formats. ISO comes first
// so normalization is idempotent; the US slash layout is tried before the EU
// one, so ambiguous slash dates resolve as month/day/year.
var dateLayouts = []string{
	"2006-01-02",
	"2 January 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"01/02/2006",
	"02/01/2006",
	"02.01.2006",
}

// NormalizeDate reformats a date string to ISO (YYYY-MM-DD) using the first
// layout that parses. Unrecognized input is returned unchanged: failure here
// is silent pass-through, deferred to validation.
func NormalizeDate(value string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return value
}

// NormalizeDates applies NormalizeDate to every date-bearing key in the map,
// in place.
func NormalizeDates(m map[string]string) {
	for k, v := range m {
		if IsDateKey(k) {
			m[k] = NormalizeDate(v)
		}
	}
}
