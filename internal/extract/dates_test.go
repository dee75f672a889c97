package extract

import "testing"

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		loc  Locale
		want string
	}{
		{name: "slash dmy", in: "23/05/2023", loc: LocaleIT, want: "23/05/2023"},
		{name: "dash dmy short year", in: "23-05-23", loc: LocaleIT, want: "23/05/2023"},
		{name: "mdy when dmy impossible", in: "05/23/2023", loc: LocaleEN, want: "23/05/2023"},
		{name: "month name", in: "May 12 2023", loc: LocaleEN, want: "12/05/2023"},
		{name: "full month name", in: "January 5 2024", loc: LocaleEN, want: "05/01/2024"},
		{name: "uppercase month", in: "MAY 12 2023", loc: LocaleEN, want: "12/05/2023"},
		{name: "apostrophe year", in: "12/05/'23", loc: LocaleIT, want: "12/05/2023"},
		{name: "unparseable returns input", in: "not a date", loc: LocaleEN, want: "not a date"},
		{name: "empty passes through", in: "", loc: LocaleIT, want: ""},
		{name: "null sentinel passes through", in: Null, loc: LocaleIT, want: Null},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeDate(tt.in, tt.loc); got != tt.want {
				t.Fatalf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeDate_Idempotent(t *testing.T) {
	t.Parallel()

	for _, canonical := range []string{"01/01/2020", "23/05/2023", "31/12/2099"} {
		once := NormalizeDate(canonical, LocaleIT)
		if once != canonical {
			t.Fatalf("NormalizeDate(%q) = %q, want unchanged", canonical, once)
		}
		if twice := NormalizeDate(once, LocaleIT); twice != once {
			t.Fatalf("second pass changed %q to %q", once, twice)
		}
	}
}

func TestNormalizeDate_ApostropheRepair(t *testing.T) {
	t.Parallel()

	// OCR renders "20" as an apostrophe; 'Jan'23' repairs to 'Jan2023' and the
	// loose month grammar reads it as Jan 20, 2023.
	got := NormalizeDate("Jan'23", LocaleEN)
	if got != "20/01/2023" {
		t.Fatalf("NormalizeDate(Jan'23) = %q, want 20/01/2023", got)
	}
}

func TestNormalizeDate_RejectsImpossibleDays(t *testing.T) {
	t.Parallel()

	in := "Feb 31 2023"
	if got := NormalizeDate(in, LocaleEN); got != in {
		t.Fatalf("NormalizeDate(%q) = %q, want input unchanged", in, got)
	}
}
