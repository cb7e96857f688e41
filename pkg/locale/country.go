package locale

import (
	"strings"
)

const (
	DefaultTimezone = "America/New_York"
)

type Country struct {
	Code            string   // ISO 3166-1 alpha-2 country code
	Name            string   // Human-readable country name
	PhonePrefixes   []string // Phone number prefixes (e.g., ["+1", "1"])
	DefaultTimezone string   // IANA timezone identifier
}

var (
	Countries = map[string]Country{
		"US": {
			Code:            "US",
			Name:            "United States",
			PhonePrefixes:   []string{"+1", "1"},
			DefaultTimezone: "America/New_York",
		},
		"CA": {
			Code:            "CA",
			Name:            "Canada",
			PhonePrefixes:   []string{"+1", "1"},
			DefaultTimezone: "America/Toronto",
		},
	}

	// regionOrder fixes lookup precedence for shared prefixes ("+1" maps
	// to both US and CA).
	regionOrder = []string{"US", "CA"}

	TimeZoneTags = map[string][]string{
		"US": {"America/New_York", "America/Chicago", "America/Denver", "America/Los_Angeles", "US/Eastern", "US/Central", "US/Mountain", "US/Pacific"},
		"CA": {"America/Toronto", "America/Vancouver", "America/Edmonton", "America/Halifax"},
	}
)

func DetectRegion(tz string) string {
	for region, zones := range TimeZoneTags {
		for _, z := range zones {
			if strings.EqualFold(tz, z) {
				return region
			}
		}
	}
	return "US"
}
