package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  John   Smith ", "John Smith"},
		{"\tMaple \n Street\t12 ", "Maple Street 12"},
		{"", ""},
		{"   ", ""},
		{"already clean", "already clean"},
	}
	for _, tt := range tests {
		if got := TrimAndNormalize(tt.in); got != tt.want {
			t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	// Idempotence.
	for _, tt := range tests {
		once := TrimAndNormalize(tt.in)
		if twice := TrimAndNormalize(once); twice != once {
			t.Errorf("TrimAndNormalize not idempotent for %q", tt.in)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Jane.Doe@Example.COM "); got != "jane.doe@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+14155552671", "+14155552671"},
		{"(415) 555-2671", "+14155552671"},
		{"", ""},
		{"not a phone", ""},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsLoosePhone(t *testing.T) {
	valid := []string{"", "+14155552671", "14155552671"}
	for _, s := range valid {
		if !IsLoosePhone(s) {
			t.Errorf("IsLoosePhone(%q) = false, want true", s)
		}
	}
	invalid := []string{"abc", "+0123", "123"}
	for _, s := range invalid {
		if IsLoosePhone(s) {
			t.Errorf("IsLoosePhone(%q) = true, want false", s)
		}
	}
}

func TestClampDurationMinutes(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 0}, // zero means "use service type default"
		{10, 15},
		{15, 15},
		{60, 60},
		{480, 480},
		{500, 480},
	}
	for _, tt := range tests {
		if got := ClampDurationMinutes(tt.in); got != tt.want {
			t.Errorf("ClampDurationMinutes(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
