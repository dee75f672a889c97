package extract

import (
	"strings"
	"time"
)

// timeNow is swapped out in tests that pin the fallback date.
var timeNow = time.Now

// Date returns the canonical receipt date. The first pattern hit in line
// order wins and scanning stops entirely. When no pattern matches anywhere,
// the current date is returned with inferred=true so callers can mark the
// value as a default rather than a recognized one.
func (e *Extractor) Date(lines []string, loc Locale) (date string, inferred bool) {
	p := e.profile(loc)

	for _, line := range lines {
		for _, dp := range p.datePatterns {
			m := dp.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			raw := m[0]
			if !dp.wholeMatch {
				raw = strings.ReplaceAll(m[1], " ", "")
			}
			return NormalizeDate(raw, loc), false
		}
	}

	return timeNow().Format(canonicalDateLayout), true
}

// isDateLine reports whether a line matches any of the locale's date
// patterns. Date-shaped lines are excluded from address scoring.
func (p *localeProfile) isDateLine(line string) bool {
	for _, dp := range p.datePatterns {
		if dp.re.MatchString(line) {
			return true
		}
	}
	return false
}
