package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// canonicalDateLayout is the only date format callers may rely on across a
// serialization round trip.
const canonicalDateLayout = "02/01/2006"

var (
	// OCR often renders a leading "20" of a year as an apostrophe ('23 -> 2023).
	reApostropheYear = regexp.MustCompile(`'(\d{2})\b`)
	reNonAlnum       = regexp.MustCompile(`[^\w\s]`)
	reSpaces         = regexp.MustCompile(`\s+`)

	// Loose fallback: 3-letter month abbreviation, 1-2 digit day, 2-4 digit year.
	reLooseMonthDate = regexp.MustCompile(`([a-zA-Z]{3})\s*(\d{1,2})\s*(\d{2,4})`)
)

// Grammar priority order: numeric day-month-year, numeric month-day-year,
// then month-name forms, each with 4- and 2-digit year variants. The first
// layout that fully parses the repaired string wins.
var dateLayouts = []string{
	"2 1 2006", "2 1 06",
	"1 2 2006", "1 2 06",
	"Jan 2 2006", "Jan 2 06",
	"January 2 2006", "January 2 06",
	"Jan2 2006",
}

var monthAbbrevs = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// NormalizeDate repairs an OCR-mangled date token and parses it into the
// canonical dd/mm/yyyy format. The input is returned unchanged when nothing
// parses, so callers can tell "could not normalize" apart without an error.
// The locale is part of the contract for symmetry with the other extractors;
// the grammar list itself is locale-independent.
func NormalizeDate(raw string, _ Locale) string {
	if raw == "" || raw == Null {
		return raw
	}

	clean := reApostropheYear.ReplaceAllString(raw, "20$1")
	clean = strings.ReplaceAll(clean, "'", "20")
	clean = reNonAlnum.ReplaceAllString(clean, " ")
	clean = strings.TrimSpace(reSpaces.ReplaceAllString(clean, " "))

	// time.Parse wants month names in canonical case; OCR gives us anything.
	cased := titleCaseWords(clean)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cased); err == nil {
			return t.Format(canonicalDateLayout)
		}
	}

	if m := reLooseMonthDate.FindStringSubmatch(clean); m != nil {
		if out, ok := looseMonthDate(m[1], m[2], m[3]); ok {
			return out
		}
	}

	return raw
}

func looseMonthDate(mon, day, year string) (string, bool) {
	month, ok := monthAbbrevs[strings.ToLower(mon)]
	if !ok {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return "", false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	if len(year) == 2 {
		y += 2000
	}
	t := time.Date(y, month, d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || t.Month() != month {
		return "", false // overflowed, e.g. Feb 31
	}
	return t.Format(canonicalDateLayout), true
}

func titleCaseWords(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" || !isAlphaWord(w) {
			continue
		}
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func isAlphaWord(w string) bool {
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(w) > 0
}

// formatAmount renders a resolved total with exactly two fraction digits.
func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
