package locale

import "strings"

// InferTimezoneFromPhone picks a display timezone from a customer's phone
// prefix. Used for notification scheduling hints only; booking arithmetic
// always runs in the business timezone.
func InferTimezoneFromPhone(phone string) string {
	normalized := strings.TrimSpace(phone)

	for _, region := range regionOrder {
		country := Countries[region]
		for _, prefix := range country.PhonePrefixes {
			if strings.HasPrefix(normalized, prefix) {
				return country.DefaultTimezone
			}
		}
	}

	return DefaultTimezone
}

func InferCountryFromPhone(phone string) *Country {
	normalized := strings.TrimSpace(phone)

	for _, region := range regionOrder {
		country := Countries[region]
		for _, prefix := range country.PhonePrefixes {
			if strings.HasPrefix(normalized, prefix) {
				return &country
			}
		}
	}

	return nil
}
