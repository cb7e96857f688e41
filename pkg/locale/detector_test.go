package locale

import "testing"

func TestInferTimezoneFromPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  string
	}{
		{"+12125550147", "America/New_York"},
		{" +12125550147 ", "America/New_York"},
		{"+442071234567", DefaultTimezone},
		{"", DefaultTimezone},
	}

	for _, tt := range tests {
		if got := InferTimezoneFromPhone(tt.phone); got != tt.want {
			t.Errorf("InferTimezoneFromPhone(%q) = %q, want %q", tt.phone, got, tt.want)
		}
	}
}

func TestDetectRegion(t *testing.T) {
	if got := DetectRegion("America/Toronto"); got != "CA" {
		t.Errorf("DetectRegion(America/Toronto) = %q, want CA", got)
	}
	if got := DetectRegion("america/new_york"); got != "US" {
		t.Errorf("case-insensitive match failed, got %q", got)
	}
	if got := DetectRegion("Europe/Paris"); got != "US" {
		t.Errorf("unknown zone should default to US, got %q", got)
	}
}
