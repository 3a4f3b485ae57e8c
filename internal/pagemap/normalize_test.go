package pagemap

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Introduction  ", "introduction"},
		{"Chapter 1: What Happened?", "chapter 1 what happened"},
		{"TABLE OF CONTENTS", "table of contents"},
		{"Multi   Space", "multi space"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
