package notification

import (
	"errors"
	"regexp"
	"strings"
)

var nonPhone = regexp.MustCompile(`[\s\-().]`)

var (
	ErrEmptyPhone   = errors.New("phone number is required")
	ErrInvalidPhone = errors.New("invalid Costa Rican phone number")
)

// FormatPhone normalizes a Costa Rican number to E.164 (+506XXXXXXXX).
// Bare 8-digit mobile numbers get the +506 prefix.
func FormatPhone(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", ErrEmptyPhone
	}

	cleaned := nonPhone.ReplaceAllString(phone, "")

	if strings.HasPrefix(cleaned, "+506") {
		digits := cleaned[4:]
		if len(digits) != 8 || !isDigits(digits) {
			return "", ErrInvalidPhone
		}
		return cleaned, nil
	}

	if strings.HasPrefix(cleaned, "506") && len(cleaned) == 11 && isDigits(cleaned) {
		return "+" + cleaned, nil
	}

	if len(cleaned) == 8 && isDigits(cleaned) {
		return "+506" + cleaned, nil
	}

	return "", ErrInvalidPhone
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
