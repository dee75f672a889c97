package extract

import "testing"

func TestDetectLocale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
		want  Locale
	}{
		{
			name:  "italian receipt",
			lines: []string{"DOCUMENTO COMMERCIALE", "TOTALE EURO", "P.IVA 01234567890"},
			want:  LocaleIT,
		},
		{
			name:  "us receipt",
			lines: []string{"GUEST RECEIPT", "SUBTOTAL 10.00", "TAX 0.80", "CHANGE 4.20"},
			want:  LocaleEN,
		},
		{
			name:  "no keywords defaults to IT",
			lines: []string{"qwerty", "12345"},
			want:  LocaleIT,
		},
		{
			name:  "empty input defaults to IT",
			lines: nil,
			want:  LocaleIT,
		},
		{
			name:  "tie defaults to IT",
			lines: []string{"TOTALE"}, // feeds both TOTALE and TOTAL
			want:  LocaleIT,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DetectLocale(tt.lines); got != tt.want {
				t.Fatalf("DetectLocale() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDetectLocale_Monotonic(t *testing.T) {
	t.Parallel()

	lines := []string{"SCONTRINO", "VIA ROMA"}
	if got := DetectLocale(lines); got != LocaleIT {
		t.Fatalf("baseline = %s, want IT", got)
	}

	// Piling on more Italian vocabulary must never flip the result.
	for _, extra := range []string{"CASSA 1", "SERVIZIO", "COPERTO 2", "IMPORTO"} {
		lines = append(lines, extra)
		if got := DetectLocale(lines); got != LocaleIT {
			t.Fatalf("after adding %q: locale = %s, want IT", extra, got)
		}
	}
}
