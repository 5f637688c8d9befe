package fields

import (
	"strings"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
}

func newTestValidator() *Validator {
	return NewValidator(DefaultRules(), fixedNow)
}

func TestValidateDateOfBirth(t *testing.T) {
	v := newTestValidator()

	if ok, _ := v.Validate("date_of_birth", "1990-01-15"); !ok {
		t.Fatalf("expected valid past ISO date")
	}
	if ok, msg := v.Validate("date_of_birth", "01/15/1990"); ok || !strings.Contains(msg, "expected YYYY-MM-DD") {
		t.Fatalf("expected date-format rejection, got ok=%v msg=%q", ok, msg)
	}
	if ok, _ := v.Validate("date_of_birth", "2030-01-01"); ok {
		t.Fatalf("future date of birth must be rejected")
	}
	if ok, _ := v.Validate("date_of_birth", "2026-08-26"); ok {
		t.Fatalf("date of birth equal to today must be rejected")
	}
}

func TestValidateIssueDateOnlyChecksFormat(t *testing.T) {
	v := newTestValidator()

	if ok, _ := v.Validate("issue_date", "2031-01-01"); !ok {
		t.Fatalf("issue_date has no temporal constraint, future must pass")
	}
	if ok, _ := v.Validate("issue_date", "yesterday"); ok {
		t.Fatalf("non-ISO issue_date must be rejected")
	}
}

func TestValidateExpirationDateMustBeFuture(t *testing.T) {
	v := newTestValidator()

	if ok, _ := v.Validate("expiration_date", "2031-06-30"); !ok {
		t.Fatalf("expected valid future expiration")
	}
	if ok, _ := v.Validate("expiration_date", "2020-06-30"); ok {
		t.Fatalf("past expiration must be rejected")
	}
	if ok, _ := v.Validate("expiration_date", "2026-08-26"); ok {
		t.Fatalf("expiration equal to today must be rejected")
	}
}

func TestValidateNameFields(t *testing.T) {
	v := newTestValidator()

	for _, value := range []string{"Jane Roe", "O'Connor-Smith", "José Ñúñez"} {
		if ok, _ := v.Validate("full_name", value); !ok {
			t.Fatalf("expected %q to validate", value)
		}
	}
	for _, value := range []string{"Jane123", "J", "  ", "Jane_Roe"} {
		if ok, _ := v.Validate("full_name", value); ok {
			t.Fatalf("expected %q to be rejected", value)
		}
	}

	if ok, msg := v.Validate("country", "U$A"); ok || !strings.Contains(msg, "invalid format for country") {
		t.Fatalf("expected generic format message for country, got ok=%v msg=%q", ok, msg)
	}
}

func TestValidateUnknownKeyPasses(t *testing.T) {
	v := newTestValidator()

	for _, key := range []string{"license_number", "category", "raw_output", "anything_else"} {
		if ok, msg := v.Validate(key, "whatever !@# value"); !ok || msg != "" {
			t.Fatalf("unregistered key %q must validate, got ok=%v msg=%q", key, ok, msg)
		}
	}
}
