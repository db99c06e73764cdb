package call

import (
	"strings"
	"unicode"
)

// NormalizePhone canonicalizes a destination number to international
// format. Already-normalized (+-prefixed) numbers pass through unchanged,
// so the function is idempotent. A bare 10-digit number is assumed to be
// domestic and gets the +1 country code; anything else keeps its digits
// and gains a leading +.
func NormalizePhone(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, "+") {
		return number
	}

	var digits strings.Builder
	for _, r := range number {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}

	if digits.Len() == 10 {
		return "+1" + digits.String()
	}
	return "+" + digits.String()
}
