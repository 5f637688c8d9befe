package domain

import "testing"

func TestParseDocumentTypeNormalizesCaseAndWhitespace(t *testing.T) {
	for _, tc := range []struct {
		raw  string
		want DocumentType
	}{
		{raw: "passport", want: TypePassport},
		{raw: "  Passport\n", want: TypePassport},
		{raw: "DRIVER_LICENSE", want: TypeDriverLicense},
		{raw: "ead_card", want: TypeEADCard},
	} {
		if got := ParseDocumentType(tc.raw); got != tc.want {
			t.Fatalf("ParseDocumentType(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestParseDocumentTypeFallsBackToUnknown(t *testing.T) {
	for _, raw := range []string{
		"",
		"passport.",
		"This appears to be a passport issued by Canada.",
		"driver license",
		"id_card",
	} {
		if got := ParseDocumentType(raw); got != TypeUnknown {
			t.Fatalf("ParseDocumentType(%q) = %s, want %s", raw, got, TypeUnknown)
		}
	}
}
