package fields

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Rule is one validation rule for a field key: a structural pattern plus an
// optional semantic predicate evaluated after the pattern matches.
type Rule struct {
	Pattern *regexp.Regexp
	// Check runs after Pattern matches. A returned error rejects the value;
	// predicate errors never propagate past Validate.
	Check func(value string, now time.Time) error
}

// Validator enforces per-key rules on field values. Keys without a registered
// rule validate unconditionally (open-world default).
type Validator struct {
	rules map[string]Rule
	now   func() time.Time
}

// NewValidator builds a validator from an explicit rule table. A nil now
// function defaults to time.Now.
func NewValidator(rules map[string]Rule, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{rules: rules, now: now}
}

var (
	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	namePattern    = regexp.MustCompile(`^[\p{L}\s'-]+$`)
)

// DefaultRules returns the rule table for identity document fields.
func DefaultRules() map[string]Rule {
	return map[string]Rule{
		"date_of_birth": {
			Pattern: isoDatePattern,
			Check: func(v string, now time.Time) error {
				t, err := time.Parse("2006-01-02", v)
				if err != nil {
					return err
				}
				if !t.Before(now) {
					return fmt.Errorf("must be in the past")
				}
				return nil
			},
		},
		"issue_date": {
			Pattern: isoDatePattern,
		},
		"expiration_date": {
			Pattern: isoDatePattern,
			Check: func(v string, now time.Time) error {
				t, err := time.Parse("2006-01-02", v)
				if err != nil {
					return err
				}
				if !t.After(now) {
					return fmt.Errorf("must be in the future")
				}
				return nil
			},
		},
		"full_name": {
			Pattern: namePattern,
			Check:   minTrimmedLength(2),
		},
		"country": {
			Pattern: namePattern,
			Check:   minTrimmedLength(2),
		},
	}
}

func minTrimmedLength(min int) func(string, time.Time) error {
	return func(v string, _ time.Time) error {
		if len([]rune(strings.TrimSpace(v))) < min {
			return fmt.Errorf("must be at least %d characters", min)
		}
		return nil
	}
}

// Validate checks a value against the rule registered for key. It returns
// ok=false with a human-readable message on rejection and never panics or
// errors out of band.
func (v *Validator) Validate(key, value string) (bool, string) {
	rule, ok := v.rules[key]
	if !ok {
		return true, ""
	}

	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		return false, formatMessage(key)
	}
	if rule.Check != nil {
		if err := rule.Check(value, v.now()); err != nil {
			return false, fmt.Sprintf("invalid value for %s: %v", key, err)
		}
	}
	return true, ""
}

// formatMessage distinguishes date-format failures from generic ones: keys
// containing "date" get the date-specific message.
func formatMessage(key string) string {
	if strings.Contains(key, "date") {
		return fmt.Sprintf("invalid date format for %s, expected YYYY-MM-DD", key)
	}
	return fmt.Sprintf("invalid format for %s", key)
}
