package validation

import (
	"fmt"
	"strings"
)

// ValidateCountryCode validates an ISO-3166 alpha-2 country code.
func ValidateCountryCode(code string) error {
	if code == "" {
		return fmt.Errorf("country code cannot be empty")
	}

	if len(code) != 2 {
		return fmt.Errorf("invalid country code length: expected 2 letters, got %d", len(code))
	}

	if !isLetters(code) {
		return fmt.Errorf("invalid country code %q: letters only", code)
	}

	return nil
}

// NormalizeCountryCode trims and upper-cases a country code.
func NormalizeCountryCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateAndNormalizeCountryCode validates a code and returns its normalized form.
func ValidateAndNormalizeCountryCode(code string) (string, error) {
	normalized := NormalizeCountryCode(code)
	if err := ValidateCountryCode(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// ValidateCurrency validates an ISO-4217 alpha-3 currency code in upper case.
func ValidateCurrency(code string) error {
	if len(code) != 3 {
		return fmt.Errorf("invalid currency length: expected 3 letters, got %d", len(code))
	}
	if !isLetters(code) || strings.ToUpper(code) != code {
		return fmt.Errorf("invalid currency %q: upper-case letters only", code)
	}
	return nil
}

func isLetters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
