package validation

import (
	"net/mail"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Violations maps a form field to a message code (translated by i18n).
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has an error.
func (v Violations) Add(field, code string) {
	if _, exists := v[field]; !exists {
		v[field] = code
	}
}

// First returns the first violated field following order, then the rest
// alphabetically. ok is false when there are no violations.
func (v Violations) First(order ...string) (field, code string, ok bool) {
	for _, f := range order {
		if c, exists := v[f]; exists {
			return f, c, true
		}
	}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return "", "", false
	}
	sort.Strings(keys)
	return keys[0], v[keys[0]], true
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

func MaxLen(field, value string, n int, v Violations) {
	if utf8.RuneCountInString(value) > n {
		v.Add(field, "too_long")
	}
}

// Email accepts an empty value; use Required for mandatory emails.
func Email(field, value string, v Violations) {
	if value == "" {
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.Add(field, "invalid_email")
	}
}

// Pattern accepts an empty value.
func Pattern(field, value string, re *regexp.Regexp, v Violations) {
	if value != "" && !re.MatchString(value) {
		v.Add(field, "invalid_format")
	}
}

// Int parses value as an integer no lower than minVal. Blank input yields def.
func Int(field, value string, minVal, def int, v Violations) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		v.Add(field, "invalid_number")
		return def
	}
	if n < minVal {
		if minVal == 1 {
			v.Add(field, "must_be_positive")
		} else {
			v.Add(field, "must_be_non_negative")
		}
	}
	return n
}

// ID parses a positive database identifier.
func ID(field, value string, v Violations) uint {
	value = strings.TrimSpace(value)
	if value == "" {
		v.Add(field, "required")
		return 0
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil || n == 0 {
		v.Add(field, "not_found")
		return 0
	}
	return uint(n)
}
