package pdfsource

import "testing"

func TestQualityOK(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"whitespace only", "   \n\t  ", false},
		{"plain prose", "The quick brown fox jumps over the lazy dog.", true},
		{"pathological spacing", "a" + repeat(" ", 40) + "b", false},
		{"mostly control bytes", "\x00\x01\x02\x03abc\x04\x05", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := qualityOK(tt.text); got != tt.want {
				t.Errorf("qualityOK(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestLooksTabular(t *testing.T) {
	prose := "This is a normal paragraph of flowing text.\nIt continues on a second line."
	if looksTabular(prose) {
		t.Error("expected prose not to look tabular")
	}

	table := "Name          Age    City\nAlice         30     Boston\nBob           25     Denver\nCarol         40     Austin\n"
	if !looksTabular(table) {
		t.Error("expected column-aligned text to look tabular")
	}
}

func TestBackendFallback_NeverErrors(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		[]byte("%PDF-1.4 garbage \x00\x01 stream text here endstream"),
		[]byte{0xff, 0xfe, 0x00, 0x01},
	}
	for _, in := range inputs {
		_ = backendFallback(in) // must not panic regardless of input
	}
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
