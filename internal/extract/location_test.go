package extract

import (
	"strings"
	"testing"
)

func TestLocation_MergesAdjacentLines(t *testing.T) {
	t.Parallel()
	e := NewExtractor(Config{})

	lines := []string{
		"ACME S.P.A",
		"VIA ROMA 10",
		"20100 MILANO (MI)",
		"TOTALE 12,50",
	}
	got, ok := e.Location(lines, LocaleIT)
	if !ok {
		t.Fatal("expected a location")
	}
	if !strings.Contains(got, "VIA ROMA 10") || !strings.Contains(got, "20100 MILANO (MI)") {
		t.Fatalf("location = %q, want street and city/zip merged", got)
	}
}

func TestLocation_PairwiseMergeOnly(t *testing.T) {
	t.Parallel()
	e := NewExtractor(Config{})

	// Three adjacent candidates: the first two merge, the third stands alone.
	lines := []string{
		"VIA GARIBALDI 5",
		"20121 MILANO (MI)",
		"PIAZZA DUOMO 1",
	}
	got, ok := e.Location(lines, LocaleIT)
	if !ok {
		t.Fatal("expected a location")
	}
	if strings.Contains(got, "PIAZZA DUOMO 1") {
		t.Fatalf("location = %q, want the third candidate left out of the merge", got)
	}
}

func TestLocation_DisqualifiersAndDates(t *testing.T) {
	t.Parallel()
	e := NewExtractor(Config{})

	lines := []string{
		"TEL 02 1234567 VIA FALSA 1", // phone marker sinks the address keyword
		"23/05/2023",                 // date-shaped lines never score
		"CORSO ITALIA 22",
	}
	got, ok := e.Location(lines, LocaleIT)
	if !ok || got != "CORSO ITALIA 22" {
		t.Fatalf("Location() = %q, %v; want CORSO ITALIA 22, true", got, ok)
	}
}

func TestLocation_USStateZip(t *testing.T) {
	t.Parallel()
	e := NewExtractor(Config{})

	lines := []string{
		"Joe's Diner",
		"482 OAK AVE",
		"SPRINGFIELD IL 62704",
	}
	got, ok := e.Location(lines, LocaleEN)
	if !ok {
		t.Fatal("expected a location")
	}
	if !strings.Contains(got, "482 OAK AVE") || !strings.Contains(got, "62704") {
		t.Fatalf("location = %q, want street and state/zip merged", got)
	}
}

func TestLocation_NothingScores(t *testing.T) {
	t.Parallel()
	e := NewExtractor(Config{})

	if got, ok := e.Location([]string{"TOTALE 10,00", "GRAZIE"}, LocaleIT); ok {
		t.Fatalf("Location() = %q, want no match", got)
	}
}
