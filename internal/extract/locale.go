package extract

import (
	"regexp"
	"strings"
)

// Locale is the detected receipt language/region convention. It selects the
// keyword vocabulary, date grammar order and address patterns used by the
// field extractors.
type Locale string

const (
	LocaleIT Locale = "IT"
	LocaleEN Locale = "EN"
)

// Classifier keyword lists. Matching is substring-based on the uppercased
// line, so "TOTALE" also feeds the EN "TOTAL" counter; the vote still works
// because Italian receipts carry plenty of IT-only vocabulary.
var (
	itKeywords = []string{"TOTALE", "SCONTRINO", "P.IVA", "EURO", "IMPORTO", "CASSA", "SERVIZIO", "COPERTO", "VIA ", "PIAZZA "}
	enKeywords = []string{"TOTAL", "RECEIPT", "TAX", "TIPS", "GRATUITY", "CHANGE", "CASH", "SUBTOTAL", "AVE", "BLVD", "STREET"}
)

// DetectLocale scores a line sequence as Italian or English/US based on
// keyword frequency. EN wins only on a strictly greater count; ties and
// all-zero inputs default to IT.
func DetectLocale(lines []string) Locale {
	itScore, enScore := 0, 0
	for _, line := range lines {
		upper := strings.ToUpper(strings.TrimSpace(line))
		for _, kw := range itKeywords {
			if strings.Contains(upper, kw) {
				itScore++
			}
		}
		for _, kw := range enKeywords {
			if strings.Contains(upper, kw) {
				enScore++
			}
		}
	}
	if enScore > itScore {
		return LocaleEN
	}
	return LocaleIT
}

// datePattern is one date-shaped regular pattern. When wholeMatch is set the
// raw token is the entire match (month-name forms); otherwise it is the first
// capture group with internal whitespace stripped.
type datePattern struct {
	re         *regexp.Regexp
	wholeMatch bool
}

// localeProfile is the immutable per-locale configuration record consumed by
// the extractors. Profiles are selected once per receipt and never mutated.
type localeProfile struct {
	// vendor
	vendorSuffixes []string
	skipKeywords   []string

	// dates
	datePatterns []datePattern

	// totals
	totalKeywords  []string
	cashKeywords   []string
	ignoreKeywords []string
	amountPattern  *regexp.Regexp // group 1 is the decimal amount

	// location
	addrKeywords    []string
	postalPattern   *regexp.Regexp
	localityPattern *regexp.Regexp
}

// Tokens that disqualify a line from address scoring regardless of locale:
// phone/fax markers, tax identifiers, order/table headers, card and account
// fragments.
var locationBadWords = []string{"TEL", "FAX", "TAX", "VAT", "ORDER", "TABLE", "GUEST", "ID", "OP:", "CASSA:", "IBAN", "N.CARTA", "CARD", "ACCT"}

var itProfile = &localeProfile{
	vendorSuffixes: []string{"S.P.A", "S.R.L", "SRL", "SPA", "S.N.C", "SNC"},
	skipKeywords:   []string{"DOCUMENTO", "COMMERCIALE", "SCONTRINO", "CLIENTE", "COPIA", "RT", "CASSA", "PAGAMENTO"},

	datePatterns: []datePattern{
		{re: regexp.MustCompile(`\b(\d{2}\s*[/-]\s*\d{2}\s*[/-]\s*\d{2,4})\b`)},
	},

	totalKeywords:  []string{"TOTALE", "IMPORTO", "PAGAMENTO", "CREDIT", "AMMOUNT"},
	cashKeywords:   []string{"CONTANTI", "CONTANTE", "CASH", "VERSAMENTO"},
	ignoreKeywords: []string{"SUBTOTALE", "IMPONIBILE", "RESTO"},
	amountPattern:  regexp.MustCompile(`(\d+[.,]\d{2})`),

	addrKeywords:    []string{"VIA ", "VIALE ", "PIAZZA ", "CORSO ", "C.SO ", "VICOLO ", "LARGO ", "STRADA ", "P.ZZA ", "V. "},
	postalPattern:   regexp.MustCompile(`\b\d{5}\b`),           // CAP
	localityPattern: regexp.MustCompile(`\s\(?([A-Z]{2})\)?$`), // province code, e.g. (MI)
}

var enProfile = &localeProfile{
	vendorSuffixes: []string{"INC", "LTD", "LLC", "CORP", "INC.", "LLC."},
	skipKeywords:   []string{"RECEIPT", "GUEST", "CHECK", "TABLE", "SERVER", "ORDER", "WELCOME", "COPY", "MERCHANT"},

	datePatterns: []datePattern{
		{re: regexp.MustCompile(`\b(\d{1,2}\s*[/-]\s*\d{1,2}\s*[/-]\s*\d{4})`)},
		{re: regexp.MustCompile(`\b(\d{1,2}\s*[/-]\s*\d{1,2}\s*[/-]\s*\d{2})\b`)},
		{re: regexp.MustCompile(`(?i)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s*(\d{1,2})[\s.,']*(\d{2,4})`), wholeMatch: true},
	},

	totalKeywords:  []string{"TOTAL", "BALANCE", "AMOUNT", "DUE", "VISA", "CHARGE", "BILL", "TOTA"},
	cashKeywords:   []string{"CASH", "TENDER", "PAID"},
	ignoreKeywords: []string{"SUBTOTAL", "SUB TOTAL", "TAX", "CHANGE", "TIP", "GRATUITY"},
	amountPattern:  regexp.MustCompile(`\$?\s*(\d+\.\d{2})`),

	addrKeywords:    []string{" AVE", " ST", " BLVD", " BL VD", " RD", " DRIVE", " LANE", " HIGHWAY", " PKWY", " WAY"},
	postalPattern:   regexp.MustCompile(`\b(?:[A-Z]{2}\s*)?\d{5}\b`), // US zip
	localityPattern: regexp.MustCompile(`\b[A-Z]{2}\s+\d{5}`),        // state + zip
}

func profileFor(loc Locale) *localeProfile {
	if loc == LocaleEN {
		return enProfile
	}
	return itProfile
}

func containsAny(upper string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}
