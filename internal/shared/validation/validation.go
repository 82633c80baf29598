// Package validation checks identifiers that come from configuration files
// before they reach wiring code, which panics on misuse.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Length limits
const (
	MaxNameLength        = 64
	MaxQualifierLength   = 128
	MaxHeaderNameLength  = 256
	MaxHeaderValueLength = 8 * 1024
)

var (
	// NamePattern allows alphanumeric, dots, hyphens and underscores.
	NamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	// QualifierPattern additionally allows colons and slashes, e.g. "billing:v2".
	QualifierPattern = regexp.MustCompile(`^[a-zA-Z0-9._:/-]+$`)
	// HeaderNamePattern is the RFC 9110 token alphabet.
	HeaderNamePattern = regexp.MustCompile("^[!#$%&'*+.^_`|~0-9a-zA-Z-]+$")
)

// ValidateString validates a string field with length and content checks.
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if value == "" {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}
	if strings.ContainsAny(value, "\x00\r\n") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	return nil
}

// ValidateName validates a client name.
func ValidateName(name, fieldName string) error {
	if err := ValidateString(name, fieldName, 1, MaxNameLength, true); err != nil {
		return err
	}
	if !NamePattern.MatchString(name) {
		return fmt.Errorf("%s %q contains invalid characters (only alphanumeric, dots, hyphens, and underscores allowed)", fieldName, name)
	}
	return nil
}

// ValidateQualifier validates a qualifier or alias.
func ValidateQualifier(q, fieldName string) error {
	if err := ValidateString(q, fieldName, 1, MaxQualifierLength, true); err != nil {
		return err
	}
	if !QualifierPattern.MatchString(q) {
		return fmt.Errorf("%s %q contains invalid characters", fieldName, q)
	}
	return nil
}

// ValidateHeader validates a static header name and value.
func ValidateHeader(name, value string) error {
	if err := ValidateString(name, "header name", 1, MaxHeaderNameLength, true); err != nil {
		return err
	}
	if !HeaderNamePattern.MatchString(name) {
		return fmt.Errorf("header name %q contains invalid characters", name)
	}
	return ValidateString(value, "header "+name, 0, MaxHeaderValueLength, false)
}
