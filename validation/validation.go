package validation

import (
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// MaxLength flags values longer than max runes. A max of 0 disables the check.
func MaxLength(field, value string, max int, v Violations) {
	if max > 0 && utf8.RuneCountInString(value) > max {
		v[field] = "too_long"
	}
}

// Email only checks non-empty values; pair it with Required when mandatory.
func Email(field, value string, v Violations) {
	if value == "" {
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		v[field] = "invalid_email"
	}
}

// Integer only checks non-empty values.
func Integer(field, value string, v Violations) {
	if value == "" {
		return
	}
	if _, err := strconv.Atoi(strings.TrimSpace(value)); err != nil {
		v[field] = "invalid_value"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}
