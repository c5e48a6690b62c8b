package errors

import (
	"strings"
	"testing"
)

func TestValidateTemplateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "teachersday", false},
		{"valid with dash", "golden-arch", false},
		{"valid with digits", "template2", false},
		{"valid with extension", "template1.jpg", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"path traversal", "..", true},
		{"nested traversal", "foo..bar", true},
		{"slash", "foo/bar", true},
		{"backslash", "foo\\bar", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
		{"hidden", ".env", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTemplateID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTemplateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateTemplateID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateColor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"six digit", "#0b3d91", false},
		{"three digit", "#fff", false},
		{"uppercase", "#ABCDEF", false},

		{"named", "red", false},
		{"named mixed case", "White", false},

		{"empty", "", true},
		{"no hash", "0b3d91", true},
		{"unknown name", "blurple", true},
		{"css injection", "#fff; font-size: 900px", true},
		{"four digit", "#abcd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"#0b3d91", "#0b3d91"},
		{" #FFF ", "#FFF"},
		{"white", "#ffffff"},
		{"Red", "#ff0000"},
		{"navy", "#000080"},
	}
	for _, tt := range tests {
		got, err := NormalizeColor(tt.input)
		if err != nil || got != tt.want {
			t.Errorf("NormalizeColor(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
		}
	}
	if _, err := NormalizeColor("red; font-size: 900px"); !Is(err, ErrCodeInvalidColor) {
		t.Errorf("err = %v, want INVALID_COLOR", err)
	}
}

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"name", "Mrs. Eleanor Vance", false},
		{"markup is allowed", "A & B <script>", false},
		{"unicode", "Frau Müller", false},
		{"tab inside", "a\tb", false},
		{"empty", "", false},
		{"whitespace only", "   ", false},

		{"null byte", "a\x00b", true},
		{"bell", "a\x07b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateText(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
