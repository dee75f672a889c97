package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// KeywordOverride replaces one locale's keyword lists. Empty slices keep the
// built-in list; regex patterns are not overridable.
type KeywordOverride struct {
	VendorSuffixes []string `json:"vendor_suffixes,omitempty"`
	SkipKeywords   []string `json:"skip_keywords,omitempty"`
	TotalKeywords  []string `json:"total_keywords,omitempty"`
	CashKeywords   []string `json:"cash_keywords,omitempty"`
	IgnoreKeywords []string `json:"ignore_keywords,omitempty"`
	AddrKeywords   []string `json:"addr_keywords,omitempty"`
}

// TableOverrides is the optional user-supplied tuning file for the heuristic
// tables and constants.
type TableOverrides struct {
	TotalLookahead int              `json:"total_lookahead,omitempty"`
	TailWindow     int              `json:"tail_window,omitempty"`
	IT             *KeywordOverride `json:"it,omitempty"`
	EN             *KeywordOverride `json:"en,omitempty"`
}

// buildOverridesSchema returns the JSON-Schema (draft 2020-12 subset) the
// overrides file must satisfy.
func buildOverridesSchema() map[string]any {
	keywordList := map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string", "minLength": 1},
	}
	localeProps := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"vendor_suffixes": keywordList,
			"skip_keywords":   keywordList,
			"total_keywords":  keywordList,
			"cash_keywords":   keywordList,
			"ignore_keywords": keywordList,
			"addr_keywords":   keywordList,
		},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"total_lookahead": map[string]any{"type": "integer", "minimum": 1},
			"tail_window":     map[string]any{"type": "integer", "minimum": 1},
			"it":              localeProps,
			"en":              localeProps,
		},
	}
}

// LoadOverrides reads and validates a table-overrides file.
func LoadOverrides(path string) (*TableOverrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}
	if err := validateOverrides(data); err != nil {
		return nil, err
	}
	var o TableOverrides
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("decode overrides: %w", err)
	}
	return &o, nil
}

func validateOverrides(data []byte) error {
	b, err := json.Marshal(buildOverridesSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("tables.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("tables.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode overrides: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("overrides do not match schema: %w", err)
	}
	return nil
}

// ApplyOverrides installs override tables on this extractor. The built-in
// profiles are never touched; overridden locales get a private copy.
func (e *Extractor) ApplyOverrides(o *TableOverrides) {
	if o == nil {
		return
	}
	if o.TotalLookahead > 0 {
		e.cfg.TotalLookahead = o.TotalLookahead
	}
	if o.TailWindow > 0 {
		e.cfg.TailWindow = o.TailWindow
	}
	if o.IT != nil {
		e.profiles[LocaleIT] = overrideProfile(itProfile, o.IT)
	}
	if o.EN != nil {
		e.profiles[LocaleEN] = overrideProfile(enProfile, o.EN)
	}
}

func overrideProfile(base *localeProfile, o *KeywordOverride) *localeProfile {
	p := *base
	if len(o.VendorSuffixes) > 0 {
		p.vendorSuffixes = o.VendorSuffixes
	}
	if len(o.SkipKeywords) > 0 {
		p.skipKeywords = o.SkipKeywords
	}
	if len(o.TotalKeywords) > 0 {
		p.totalKeywords = o.TotalKeywords
	}
	if len(o.CashKeywords) > 0 {
		p.cashKeywords = o.CashKeywords
	}
	if len(o.IgnoreKeywords) > 0 {
		p.ignoreKeywords = o.IgnoreKeywords
	}
	if len(o.AddrKeywords) > 0 {
		p.addrKeywords = o.AddrKeywords
	}
	return &p
}
