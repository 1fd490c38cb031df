package utils

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	codePattern  = regexp.MustCompile(`^\d{6}$`)
)

// NormalizeEmail normalizes email addresses (lowercase and trim)
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail is a syntactic check only: something@domain.tld, no whitespace.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// DigitsOnly strips everything except the ASCII digits 0-9.
func DigitsOnly(s string) string {
	var result strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// IsValidPhone requires at least minDigits digits once formatting is removed.
func IsValidPhone(phone string, minDigits int) bool {
	return len(DigitsOnly(phone)) >= minDigits
}

// IsSixDigitCode reports whether code is exactly six ASCII digits.
func IsSixDigitCode(code string) bool {
	return codePattern.MatchString(code)
}
