package order

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// ErrBadQuantity indicates the quantity input is not a positive integer.
var ErrBadQuantity = errors.New("quantity must be a positive integer")

// ErrBadPhone indicates the phone input is not in the expected +<digits> form.
var ErrBadPhone = errors.New("phone must start with + and contain a digit")

// ParseQuantity parses free-text quantity input. Anything that is not an
// integer greater than zero is rejected.
func ParseQuantity(text string) (int, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || qty < 1 {
		return 0, ErrBadQuantity
	}
	return qty, nil
}

// ValidatePhone checks the trimmed input starts with '+' and carries at
// least one digit, returning the trimmed value.
func ValidatePhone(text string) (string, error) {
	phone := strings.TrimSpace(text)
	if !strings.HasPrefix(phone, "+") {
		return "", ErrBadPhone
	}
	hasDigit := false
	for _, r := range phone {
		if unicode.IsDigit(r) {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return "", ErrBadPhone
	}
	return phone, nil
}
