package extract

import "testing"

func TestVendor_CorporateSuffix(t *testing.T) {
	t.Parallel()
	e := NewExtractor(Config{})

	lines := []string{"DOCUMENTO COMMERCIALE", "ACME S.P.A", "VIA ROMA 10"}
	got, ok := e.Vendor(lines, LocaleIT)
	if !ok || got != "ACME S.P.A" {
		t.Fatalf("Vendor() = %q, %v; want ACME S.P.A, true", got, ok)
	}
}

func TestVendor_SuffixOnlyInHeaderWindow(t *testing.T) {
	t.Parallel()
	e := NewExtractor(Config{})

	// The suffix sits past the first 8 lines, so pass 1 misses it and pass 2
	// takes the first prominent non-keyword line instead.
	lines := []string{
		"RECEIPT", "1", "2", "3", "4", "5", "6", "7",
		"SOMEWHERE LLC",
		"Main Street Diner",
	}
	got, ok := e.Vendor(lines, LocaleEN)
	if !ok || got != "SOMEWHERE LLC" {
		t.Fatalf("Vendor() = %q, %v; want SOMEWHERE LLC, true", got, ok)
	}
}

func TestVendor_FallbackSkipsGenericHeaders(t *testing.T) {
	t.Parallel()
	e := NewExtractor(Config{})

	lines := []string{"GUEST CHECK", "12345", "ab", "Joe's Diner", "TOTAL 10.00"}
	got, ok := e.Vendor(lines, LocaleEN)
	if !ok || got != "Joe's Diner" {
		t.Fatalf("Vendor() = %q, %v; want Joe's Diner, true", got, ok)
	}
}

func TestVendor_NothingQualifies(t *testing.T) {
	t.Parallel()
	e := NewExtractor(Config{})

	lines := []string{"RECEIPT", "COPY", "12", "--"}
	if got, ok := e.Vendor(lines, LocaleEN); ok {
		t.Fatalf("Vendor() = %q, want no match", got)
	}
}
