package contracts

import "sort"

// DividendCalendar maps an ETF code to its ordered, de-duplicated
// ex-dividend dates in ISO-8601 (YYYY-MM-DD) form. Entries may be past,
// confirmed, or predicted; the scoring core only reads them.
type DividendCalendar map[string][]string

// Codes returns the ETF codes in the calendar, sorted for deterministic
// iteration.
func (c DividendCalendar) Codes() []string {
	codes := make([]string, 0, len(c))
	for code := range c {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// TotalDates returns the number of dates across all ETFs.
func (c DividendCalendar) TotalDates() int {
	var n int
	for _, dates := range c {
		n += len(dates)
	}
	return n
}

// Merge overlays other onto c, de-duplicating and sorting each ETF's
// dates. Neither input is modified.
func (c DividendCalendar) Merge(other DividendCalendar) DividendCalendar {
	merged := make(DividendCalendar, len(c)+len(other))
	for code, dates := range c {
		merged[code] = append([]string(nil), dates...)
	}
	for code, dates := range other {
		merged[code] = append(merged[code], dates...)
	}
	for code, dates := range merged {
		merged[code] = dedupeSorted(dates)
	}
	return merged
}

func dedupeSorted(dates []string) []string {
	sort.Strings(dates)
	out := dates[:0]
	var prev string
	for i, d := range dates {
		if i > 0 && d == prev {
			continue
		}
		out = append(out, d)
		prev = d
	}
	return out
}
