package extract

import (
	"os"
	"path/filepath"
	"testing"
)

func writeOverrides(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tables.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverrides(t *testing.T) {
	t.Parallel()

	path := writeOverrides(t, `{
		"total_lookahead": 3,
		"it": {"total_keywords": ["TOTALE COMPLESSIVO"]}
	}`)

	o, err := LoadOverrides(path)
	if err != nil {
		t.Fatalf("LoadOverrides() error = %v", err)
	}
	if o.TotalLookahead != 3 {
		t.Fatalf("total_lookahead = %d, want 3", o.TotalLookahead)
	}

	e := NewExtractor(Config{})
	e.ApplyOverrides(o)

	// The stock "TOTALE" keyword is gone, so only the override label anchors
	// an explicit total.
	lines := []string{"TOTALE", "12,50", "TOTALE COMPLESSIVO", "9,00"}
	total, _ := e.Total(lines, LocaleIT)
	if total == nil || *total != 9.00 {
		t.Fatalf("total = %v, want 9.00", total)
	}
}

func TestLoadOverrides_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	path := writeOverrides(t, `{"bogus": true}`)
	if _, err := LoadOverrides(path); err == nil {
		t.Fatal("expected a schema validation error")
	}
}

func TestLoadOverrides_RejectsBadTypes(t *testing.T) {
	t.Parallel()

	path := writeOverrides(t, `{"total_lookahead": "five"}`)
	if _, err := LoadOverrides(path); err == nil {
		t.Fatal("expected a schema validation error")
	}
}

func TestApplyOverrides_DoesNotTouchBuiltins(t *testing.T) {
	t.Parallel()

	e := NewExtractor(Config{})
	e.ApplyOverrides(&TableOverrides{IT: &KeywordOverride{TotalKeywords: []string{"XYZ"}}})

	// A fresh extractor still resolves via the built-in keyword tables.
	fresh := NewExtractor(Config{})
	total, _ := fresh.Total([]string{"TOTALE", "12,50"}, LocaleIT)
	if total == nil || *total != 12.50 {
		t.Fatalf("built-in tables were mutated: total = %v", total)
	}
}
