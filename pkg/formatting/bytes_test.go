package formatting_test

import (
	"testing"

	"github.com/JaimeStill/lading/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"bare number", "2048", 2048, false},
		{"kilobytes", "4KB", 4 * 1024, false},
		{"megabytes with space", "25 MB", 25 * 1024 * 1024, false},
		{"fractional", "1.5MB", 1536 * 1024, false},
		{"lowercase", "1gb", 1024 * 1024 * 1024, false},
		{"trimmed", " 10MB ", 10 * 1024 * 1024, false},
		{"empty", "", 0, true},
		{"unit only", "MB", 0, true},
		{"unknown unit", "3 parsecs", 0, true},
		{"negative", "-1KB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBytes(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n         int64
		precision int
		want      string
	}{
		{0, 1, "0 B"},
		{900, 0, "900 B"},
		{1536 * 1024, 1, "1.5 MB"},
		{50 * 1024 * 1024, 1, "50.0 MB"},
		{1024, -3, "1 KB"},
	}

	for _, tt := range tests {
		if got := formatting.FormatBytes(tt.n, tt.precision); got != tt.want {
			t.Errorf("FormatBytes(%d, %d) = %q, want %q", tt.n, tt.precision, got, tt.want)
		}
	}
}

func TestFormatBytesParsesBack(t *testing.T) {
	for _, n := range []int64{1024, 32 * 1024 * 1024, 1024 * 1024 * 1024} {
		formatted := formatting.FormatBytes(n, 0)
		parsed, err := formatting.ParseBytes(formatted)
		if err != nil {
			t.Fatalf("ParseBytes(%q): %v", formatted, err)
		}
		if parsed != n {
			t.Errorf("%d formatted as %q parsed back as %d", n, formatted, parsed)
		}
	}
}
