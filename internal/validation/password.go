package validation

import "strings"

const specialChars = "!@#$%^&*()-_=+[]{};:'\",.<>/?\\|`~"

// HasSpecialChar reports whether s contains at least one special character.
func HasSpecialChar(s string) bool {
	return strings.ContainsAny(s, specialChars)
}
