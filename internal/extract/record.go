package extract

// Null is the sentinel marking an unresolved field in the export row shape.
// It never appears inside a Record; absence is typed (empty string, nil
// total) until serialization.
const Null = "null"

// Record is the structured output of one extraction pass over a receipt's
// line sequence. It is created once per processed image and never mutated
// afterwards.
type Record struct {
	Filename string
	Vendor   string // empty when unresolved
	Location string // empty when unresolved
	Date     string // canonical dd/mm/yyyy, or the raw token when unparseable; empty when no lines
	Inferred bool   // Date fell back to today
	Total    *float64
	Currency string // "EUR" or "USD"; empty when no lines
}

// Row is the serialized row shape handed to the export boundary: every field
// is either a well-formed value or exactly the sentinel "null".
type Row struct {
	Filename string `json:"filename"`
	Vendor   string `json:"vendor"`
	Location string `json:"location"`
	Date     string `json:"date"`
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

// Row converts a Record to its export shape. An inferred date is wrapped in
// parentheses to mark a defaulted value distinctly from a recognized one.
func (r Record) Row() Row {
	row := Row{
		Filename: r.Filename,
		Vendor:   orNull(r.Vendor),
		Location: orNull(r.Location),
		Date:     orNull(r.Date),
		Total:    Null,
		Currency: orNull(r.Currency),
	}
	if r.Date != "" && r.Inferred {
		row.Date = "(" + r.Date + ")"
	}
	if r.Total != nil {
		row.Total = formatAmount(*r.Total)
	}
	return row
}

func orNull(s string) string {
	if s == "" {
		return Null
	}
	return s
}

// Config carries the tunable heuristic constants. The lookahead and tail
// window are tuning parameters, not structural requirements.
type Config struct {
	TotalLookahead int // lines scanned from a total keyword, including it; default 5
	TailWindow     int // bottom-of-receipt lines scanned blind; default 15
}

// Extractor runs the four field heuristics over a line sequence. It is pure
// and stateless; the same input always yields the same Record.
type Extractor struct {
	cfg      Config
	profiles map[Locale]*localeProfile
}

func NewExtractor(cfg Config) *Extractor {
	if cfg.TotalLookahead <= 0 {
		cfg.TotalLookahead = 5
	}
	if cfg.TailWindow <= 0 {
		cfg.TailWindow = 15
	}
	return &Extractor{
		cfg: cfg,
		profiles: map[Locale]*localeProfile{
			LocaleIT: itProfile,
			LocaleEN: enProfile,
		},
	}
}

func (e *Extractor) profile(loc Locale) *localeProfile {
	if p, ok := e.profiles[loc]; ok {
		return p
	}
	return itProfile
}

// Extract classifies the locale once, then runs the vendor, date,
// total+currency and location extractors in that order, each independently
// over the same immutable line sequence.
func (e *Extractor) Extract(lines []string, filename string) Record {
	rec := Record{Filename: filename}
	if len(lines) == 0 {
		return rec
	}

	loc := DetectLocale(lines)

	if v, ok := e.Vendor(lines, loc); ok {
		rec.Vendor = v
	}
	rec.Date, rec.Inferred = e.Date(lines, loc)
	rec.Total, rec.Currency = e.Total(lines, loc)
	if l, ok := e.Location(lines, loc); ok {
		rec.Location = l
	}
	return rec
}
