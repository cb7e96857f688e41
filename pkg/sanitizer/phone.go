package sanitizer

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var (
	supportedRegions = []string{
		"US",
		"CA",
	}

	// Loose E.164 shape; empty is allowed because phone is optional on
	// booking requests.
	reValidPhone = regexp.MustCompile(`^(?:|\+?[1-9]\d{7,14})$`)
)

// NormalizePhone converts a customer phone number to E.164. Numbers
// that cannot be parsed for any supported region come back empty.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	for _, region := range supportedRegions {
		parsedNumber, err := phonenumbers.Parse(phone, region)
		if err != nil || !phonenumbers.IsValidNumber(parsedNumber) {
			continue
		}
		return phonenumbers.Format(parsedNumber, phonenumbers.E164)
	}
	return ""
}

// IsLoosePhone reports whether s looks like an E.164 number without
// doing a full parse. Empty strings pass.
func IsLoosePhone(s string) bool {
	return reValidPhone.MatchString(s)
}
