package extract

import (
	"strings"
)

const (
	addrKeywordScore = 5
	postalScore      = 6
	localityScore    = 4
	badWordPenalty   = -20
	adjacencyBonus   = 5
)

type locationCandidate struct {
	index int
	text  string
	score int
}

// Location returns the best address-like line (or pair of adjacent lines),
// or false when nothing scores positively. Lines are scored on street-type
// keywords, postal codes and locality patterns; phone/tax/card markers
// disqualify a line outright. Immediately adjacent candidates merge into a
// single entry (street + city/zip usually sit on consecutive lines).
func (e *Extractor) Location(lines []string, loc Locale) (string, bool) {
	p := e.profile(loc)

	var scored []locationCandidate
	for i, line := range lines {
		if p.isDateLine(line) {
			continue
		}
		clean := strings.TrimSpace(line)
		upper := strings.ToUpper(clean)

		score := 0
		if containsAny(upper, p.addrKeywords) {
			score += addrKeywordScore
		}
		if p.postalPattern.MatchString(clean) {
			score += postalScore
		}
		if p.localityPattern.MatchString(clean) {
			score += localityScore
		}
		if containsAny(upper, locationBadWords) {
			score += badWordPenalty
		}

		if score > 0 {
			scored = append(scored, locationCandidate{index: i, text: clean, score: score})
		}
	}

	// Pairwise merge only: a candidate merges with the next one when their
	// line indexes are adjacent, and the walk advances past both. 3+ line
	// addresses stay split, mirroring the original heuristic.
	var candidates []locationCandidate
	for i := 0; i < len(scored); {
		curr := scored[i]
		if i+1 < len(scored) && scored[i+1].index == curr.index+1 {
			next := scored[i+1]
			candidates = append(candidates, locationCandidate{
				index: curr.index,
				text:  curr.text + " " + next.text,
				score: curr.score + next.score + adjacencyBonus,
			})
			i += 2
			continue
		}
		candidates = append(candidates, curr)
		i++
	}

	if len(candidates) == 0 {
		return "", false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score > best.score {
			best = c
		}
	}
	return best.text, true
}
