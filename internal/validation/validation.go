// Package validation checks untyped boundary values field by field. Each primitive
// either returns a sanitized value or a *domain.Error of kind Validation, failing on
// the earliest applicable rule so messages stay deterministic.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf16"

	"userhub/internal/domain"
)

const (
	MaxIDLength    = 255
	MaxEmailLength = 255
	MaxNameLength  = 100
)

var reservedIDs = map[string]struct{}{
	"null":      {},
	"undefined": {},
}

// Whitespace here is the ECMAScript set: ASCII blanks, U+FEFF and Unicode separators.
const notSpaceOrAt = `[^\t\n\v\f\r \p{Z}\x{FEFF}@]+`

var emailPattern = regexp.MustCompile(`^` + notSpaceOrAt + `@` + notSpaceOrAt + `\.` + notSpaceOrAt + `$`)

// ID validates a record identifier and returns it trimmed.
func ID(v any) (string, error) {
	s, ok := stringValue(v)
	if !ok {
		return "", domain.NewValidationError("id is required")
	}
	t := trim(s)
	n := length(t)
	if n == 0 {
		return "", domain.NewValidationError("id must not be empty")
	}
	if n > MaxIDLength {
		return "", domain.NewValidationError(fmt.Sprintf("id must not exceed %d characters", MaxIDLength))
	}
	if _, reserved := reservedIDs[t]; reserved {
		return "", domain.NewValidationError("id is reserved")
	}
	if hasControlChars(t) {
		return "", domain.NewValidationError("id must not contain control characters")
	}
	return t, nil
}

// Email validates an email address. The bool result is false when the value is
// absent (or blank) and not required.
func Email(v any, required bool) (string, bool, error) {
	return text(v, required, textRule{field: "email", max: MaxEmailLength, pattern: emailPattern})
}

// Name validates a display name. The bool result is false when the value is absent
// (or blank) and not required.
func Name(v any, required bool) (string, bool, error) {
	return text(v, required, textRule{field: "name", max: MaxNameLength})
}

type textRule struct {
	field   string
	max     int
	pattern *regexp.Regexp
}

func text(v any, required bool, rule textRule) (string, bool, error) {
	if isMissing(v) {
		if required {
			return "", false, domain.NewValidationError(rule.field + " is required")
		}
		return "", false, nil
	}
	s, ok := stringValue(v)
	if !ok {
		if required {
			return "", false, domain.NewValidationError(rule.field + " is required")
		}
		return "", false, domain.NewValidationError(rule.field + " must be a string")
	}

	t := trim(s)
	n := length(t)
	if required && n == 0 {
		return "", false, domain.NewValidationError(rule.field + " must not be empty")
	}
	if n == 0 {
		return "", false, nil
	}
	if n > rule.max {
		return "", false, domain.NewValidationError(fmt.Sprintf("%s must not exceed %d characters", rule.field, rule.max))
	}
	if rule.pattern != nil && !rule.pattern.MatchString(t) {
		return "", false, domain.NewValidationError(rule.field + " format is invalid")
	}
	if hasControlChars(t) {
		return "", false, domain.NewValidationError(rule.field + " must not contain control characters")
	}
	return t, true, nil
}

// length counts UTF-16 code units, so characters outside the BMP count twice.
func length(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

func isMissing(v any) bool {
	if v == nil {
		return true
	}
	if p, ok := v.(*string); ok && p == nil {
		return true
	}
	return false
}

func stringValue(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case *string:
		if s == nil {
			return "", false
		}
		return *s, true
	default:
		return "", false
	}
}

func trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\uFEFF', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func hasControlChars(s string) bool {
	for _, r := range s {
		if r <= 0x1f {
			return true
		}
	}
	return false
}
