package fields

import "testing"

func TestNormalizeDateLayouts(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{in: "1990-01-15", want: "1990-01-15"},
		{in: "15 January 1990", want: "1990-01-15"},
		{in: "January 15, 1990", want: "1990-01-15"},
		{in: "15 Jan 1990", want: "1990-01-15"},
		{in: "Jan 15, 1990", want: "1990-01-15"},
		{in: "01/15/1990", want: "1990-01-15"},
		{in: "15.01.1990", want: "1990-01-15"},
	} {
		if got := NormalizeDate(tc.in); got != tc.want {
			t.Fatalf("NormalizeDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeDateIsIdempotent(t *testing.T) {
	once := NormalizeDate("15 January 1990")
	twice := NormalizeDate(once)
	if once != twice {
		t.Fatalf("normalization not idempotent: %q -> %q", once, twice)
	}
}

func TestNormalizeDateAmbiguousSlashPrefersUS(t *testing.T) {
	// Both layouts parse 05/13 only one way; 13 cannot be a month, so the
	// US layout fails and the EU layout wins.
	if got := NormalizeDate("13/05/2020"); got != "2020-05-13" {
		t.Fatalf("NormalizeDate(13/05/2020) = %q", got)
	}
	// When both layouts would parse, month/day/year wins.
	if got := NormalizeDate("05/13/2020"); got != "2020-05-13" {
		t.Fatalf("NormalizeDate(05/13/2020) = %q", got)
	}
	if got := NormalizeDate("03/04/2020"); got != "2020-03-04" {
		t.Fatalf("ambiguous slash date should resolve month-first, got %q", got)
	}
}

func TestNormalizeDatePassesThroughUnrecognized(t *testing.T) {
	for _, in := range []string{"not a date", "32/13/2020", "", "1990/01/15"} {
		if got := NormalizeDate(in); got != in {
			t.Fatalf("NormalizeDate(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestNormalizeDatesOnlyTouchesDateKeys(t *testing.T) {
	m := map[string]string{
		"date_of_birth":     "15 January 1990",
		"issue_date":        "01/15/2015",
		"expiration_date":   "2031-06-30",
		"card_expires_date": "Jan 1, 2027",
		"full_name":         "15 January 1990",
	}
	NormalizeDates(m)

	if m["date_of_birth"] != "1990-01-15" {
		t.Fatalf("date_of_birth = %q", m["date_of_birth"])
	}
	if m["issue_date"] != "2015-01-15" {
		t.Fatalf("issue_date = %q", m["issue_date"])
	}
	if m["expiration_date"] != "2031-06-30" {
		t.Fatalf("expiration_date = %q", m["expiration_date"])
	}
	if m["card_expires_date"] != "2027-01-01" {
		t.Fatalf("card_expires_date = %q", m["card_expires_date"])
	}
	if m["full_name"] != "15 January 1990" {
		t.Fatalf("non-date key must not be rewritten, got %q", m["full_name"])
	}
}
