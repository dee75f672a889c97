package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate   = regexp.MustCompile(`\b\d{1,2}\s*[/-]\s*\d{1,2}\s*[/-]\s*\d{2,4}\b`)
	reCurr   = regexp.MustCompile(`\b(usd|eur)\b|[$€]`)
	reAmount = regexp.MustCompile(`\b\d+[.,]\d{2}\b`)
)

// heuristicConfidence estimates decode quality from common receipt artifacts
// (date-ish, currency-ish, amount-ish tokens) when no word-level confidence
// is available.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if reDate.MatchString(txtL) {
		score += 0.2
	}
	if reCurr.MatchString(txtL) {
		score += 0.15
	}
	if reAmount.MatchString(txtL) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
