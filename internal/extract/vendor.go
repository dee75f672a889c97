package extract

import (
	"strings"
	"unicode"
)

// vendorHeaderWindow is how many top-of-receipt lines are searched for a
// corporate suffix before falling back to the first prominent line.
const vendorHeaderWindow = 8

// Vendor returns the vendor name, or false when no line qualifies. The vendor
// usually sits at the very top of the receipt, so pass 1 looks for a
// legal-entity suffix in the header window; pass 2 takes the first line that
// is not a generic receipt keyword.
func (e *Extractor) Vendor(lines []string, loc Locale) (string, bool) {
	p := e.profile(loc)

	header := lines
	if len(header) > vendorHeaderWindow {
		header = header[:vendorHeaderWindow]
	}
	for _, line := range header {
		clean := strings.TrimSpace(line)
		if len(clean) < 3 {
			continue
		}
		if containsAny(strings.ToUpper(clean), p.vendorSuffixes) {
			return clean, true
		}
	}

	for _, line := range lines {
		clean := strings.TrimSpace(line)
		if len(clean) < 3 || !hasLetter(clean) {
			continue
		}
		if containsAny(strings.ToUpper(clean), p.skipKeywords) {
			continue
		}
		return clean, true
	}
	return "", false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
