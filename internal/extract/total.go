package extract

import (
	"math"
	"strconv"
	"strings"
)

// Currency codes emitted by the total extractor.
const (
	CurrencyEUR = "EUR"
	CurrencyUSD = "USD"
)

// Total returns the resolved total amount (nil when unresolved or not
// strictly positive) and the detected currency code. Currency is always set
// for a non-empty line sequence, falling back to the locale default.
func (e *Extractor) Total(lines []string, loc Locale) (*float64, string) {
	p := e.profile(loc)
	currency := detectCurrency(lines, loc)

	var explicit, blind, cash []float64

	// Strategy A: explicit keyword search. Cash/tender lines are pooled
	// separately (the total is often paid in cash); ignore-keyword lines
	// (subtotal, tax, change...) must never be read as the total.
	for i, line := range lines {
		upper := strings.ToUpper(strings.TrimSpace(line))

		if containsAny(upper, p.cashKeywords) {
			cash = append(cash, p.amounts(line)...)
			if i+1 < len(lines) {
				cash = append(cash, p.amounts(lines[i+1])...)
			}
			continue
		}
		if containsAny(upper, p.ignoreKeywords) {
			continue
		}
		if containsAny(upper, p.totalKeywords) {
			for off := 0; off < e.cfg.TotalLookahead; off++ {
				if i+off < len(lines) {
					explicit = append(explicit, p.amounts(lines[i+off])...)
				}
			}
		}
	}

	// Strategy B: blind scan of the receipt tail, where totals usually live.
	start := 0
	if len(lines) > e.cfg.TailWindow {
		start = len(lines) - e.cfg.TailWindow
	}
	for _, line := range lines[start:] {
		upper := strings.ToUpper(strings.TrimSpace(line))
		vals := p.amounts(line)
		if len(vals) == 0 {
			continue
		}
		switch {
		case containsAny(upper, p.cashKeywords):
			cash = append(cash, vals...)
		case containsAny(upper, p.ignoreKeywords):
			// skip
		default:
			blind = append(blind, vals...)
		}
	}

	total, ok := resolveTotal(explicit, blind, cash)
	if !ok || total <= 0 {
		return nil, currency
	}
	return &total, currency
}

// resolveTotal applies the strict precedence ladder: explicit pool first,
// then the blind pool capped by the largest cash tender (a total cannot
// exceed the cash handed over), then the cash pool alone.
func resolveTotal(explicit, blind, cash []float64) (float64, bool) {
	var maxCash *float64
	if len(cash) > 0 {
		m := maxOf(cash)
		maxCash = &m
	}

	switch {
	case len(explicit) > 0:
		return maxOf(explicit), true
	case len(blind) > 0:
		if maxCash != nil {
			var valid []float64
			for _, v := range blind {
				if v <= *maxCash+0.01 {
					valid = append(valid, v)
				}
			}
			if len(valid) > 0 {
				return maxOf(valid), true
			}
			return maxOf(blind), true
		}
		return maxOf(blind), true
	case maxCash != nil:
		return *maxCash, true
	}
	return 0, false
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// detectCurrency scans all lines for a Euro sign or "EUR"; failing that, for
// a Dollar sign or "USD"; failing both, defaults by locale.
func detectCurrency(lines []string, loc Locale) string {
	for _, line := range lines {
		if strings.Contains(line, "€") || strings.Contains(strings.ToUpper(line), "EUR") {
			return CurrencyEUR
		}
	}
	for _, line := range lines {
		if strings.Contains(line, "$") || strings.Contains(strings.ToUpper(line), "USD") {
			return CurrencyUSD
		}
	}
	if loc == LocaleEN {
		return CurrencyUSD
	}
	return CurrencyEUR
}

// amounts extracts every plausible decimal amount from a line. Lines with a
// percent sign yield nothing (a 15% tip hint is not a monetary value), and
// integral values that look like years are discarded. The original pattern
// used a negative lookahead to reject amounts glued to more digits or
// quotes; RE2 has no lookahead, so the trailing byte is checked by hand and
// the scan resumes one byte past a rejected match start.
func (p *localeProfile) amounts(line string) []float64 {
	if strings.Contains(line, "%") {
		return nil
	}

	var out []float64
	for off := 0; off < len(line); {
		m := p.amountPattern.FindStringSubmatchIndex(line[off:])
		if m == nil {
			break
		}
		start, end := off+m[0], off+m[1]
		if end < len(line) && strings.IndexByte(`"0123456789.,/`, line[end]) >= 0 {
			off = start + 1
			continue
		}
		tok := strings.ReplaceAll(line[off+m[2]:off+m[3]], ",", ".")
		off = end

		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			continue
		}
		if v > 1900 && v < 2100 && v == math.Trunc(v) {
			continue // a year, not an amount
		}
		out = append(out, v)
	}
	return out
}
