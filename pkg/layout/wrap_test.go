package layout

import (
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/greetcard/pkg/errors"
)

func TestMaxCharsPerLine(t *testing.T) {
	tests := []struct {
		name     string
		fontSize float64
		maxWidth float64
		want     int
	}{
		{"default slot", 72, 1200, 27},
		{"exact division", 10, 60, 10},
		{"narrower than one glyph", 100, 10, 1},
		{"zero width", 20, 0, 1},
		{"negative width", 20, -50, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MaxCharsPerLine(tt.fontSize, tt.maxWidth)
			if err != nil {
				t.Fatalf("MaxCharsPerLine() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("MaxCharsPerLine(%v, %v) = %d, want %d", tt.fontSize, tt.maxWidth, got, tt.want)
			}
		})
	}
}

func TestMaxCharsPerLineRejectsNonPositiveFont(t *testing.T) {
	for _, size := range []float64{0, -12} {
		_, err := MaxCharsPerLine(size, 600)
		if !errors.Is(err, errors.ErrCodeInvalidSlot) {
			t.Errorf("MaxCharsPerLine(%v) error = %v, want INVALID_SLOT", size, err)
		}
	}
}

func TestWrapLines(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		fontSize float64
		maxWidth float64
		want     []string
	}{
		{"empty", "", 72, 1200, []string{}},
		{"blank", "  \t\n ", 72, 1200, []string{}},
		{"single line", "Mrs. Eleanor Vance", 72, 1200, []string{"Mrs. Eleanor Vance"}},
		{"collapses whitespace", "  Mrs.\t\tEleanor \n Vance  ", 72, 1200, []string{"Mrs. Eleanor Vance"}},
		{"greedy break", "hello world foo", 10, 60, []string{"hello", "world foo"}},
		{"exact fit stays on line", "abcde fghi", 10, 60, []string{"abcde fghi"}},
		{"long word overflows alone", "a extraordinary b", 10, 30, []string{"a", "extraordinary", "b"}},
		{"one char per line", "ab cd", 100, 10, []string{"ab", "cd"}},
		{"two lines", "Happy Teachers Day to the best teacher", 48, 600, []string{"Happy Teachers Day", "to the best teacher"}},
		{"runes not bytes", "Müller Müller", 10, 78, []string{"Müller Müller"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WrapLines(tt.text, tt.fontSize, tt.maxWidth)
			if err != nil {
				t.Fatalf("WrapLines() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("WrapLines(%q, %v, %v) = %q, want %q", tt.text, tt.fontSize, tt.maxWidth, got, tt.want)
			}
		})
	}
}

func TestWrapLinesRejectsZeroFont(t *testing.T) {
	if _, err := WrapLines("hello", 0, 600); !errors.Is(err, errors.ErrCodeInvalidSlot) {
		t.Errorf("WrapLines() error = %v, want INVALID_SLOT", err)
	}
}

func TestWrapLinesDeterministic(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog near the riverbank"
	first, _ := WrapLines(text, 24, 300)
	for i := 0; i < 20; i++ {
		again, _ := WrapLines(text, 24, 300)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: %q != %q", i, again, first)
		}
	}
}

func TestWrapLinesCoverage(t *testing.T) {
	texts := []string{
		"Mrs. Eleanor Vance",
		"Happy Teachers Day to the best teacher in the whole wide world",
		"a b c d e f g h i j k l m n o p",
		"  leading and   trailing   spaces  ",
	}
	for _, text := range texts {
		for _, width := range []float64{120, 300, 600, 1200} {
			lines, err := WrapLines(text, 20, width)
			if err != nil {
				t.Fatalf("WrapLines() error: %v", err)
			}
			var words []string
			for _, ln := range lines {
				words = append(words, strings.Fields(ln)...)
			}
			if want := strings.Fields(text); !reflect.DeepEqual(words, want) {
				t.Errorf("width %v: rejoined words %q, want %q", width, words, want)
			}
		}
	}
}

func TestWrapLinesRespectsLimit(t *testing.T) {
	text := "Happy Teachers Day to the best teacher in the whole wide world"
	lines, _ := WrapLines(text, 20, 240)
	maxChars, _ := MaxCharsPerLine(20, 240)
	for i, ln := range lines {
		if len(ln) > maxChars {
			t.Errorf("line %d %q has %d chars, limit %d", i, ln, len(ln), maxChars)
		}
	}
}

func TestFitFontSize(t *testing.T) {
	tests := []struct {
		name      string
		lineCount int
		initial   float64
		maxHeight float64
		want      float64
	}{
		{"already fits", 1, 72, 300, 72},
		{"shrinks to fit", 3, 72, 144, 40},
		{"stops at floor", 10, 72, 50, 10},
		{"odd size clamps to floor", 2, 11, 10, 10},
		{"below floor untouched", 4, 8, 5, 8},
		{"no lines", 0, 72, 0, 72},
		{"default height bound", 2, 50, 100, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FitFontSize(tt.lineCount, tt.initial, tt.maxHeight); got != tt.want {
				t.Errorf("FitFontSize(%d, %v, %v) = %v, want %v", tt.lineCount, tt.initial, tt.maxHeight, got, tt.want)
			}
		})
	}
}

func TestFitFontSizeMonotonic(t *testing.T) {
	fits := func(lines int, size, h float64) bool {
		return float64(lines)*size*LineHeightMultiplier <= h
	}
	for lines := 1; lines <= 6; lines++ {
		for initial := 10.0; initial <= 97; initial++ {
			for _, h := range []float64{0, 20, 80, 150, 300, 600} {
				got := FitFontSize(lines, initial, h)
				if got > initial {
					t.Errorf("FitFontSize(%d, %v, %v) = %v grew", lines, initial, h, got)
				}
				if got < MinFontSize {
					t.Errorf("FitFontSize(%d, %v, %v) = %v below floor", lines, initial, h, got)
				}
				// Steps of 2, except that the last step of an odd size is
				// clamped to the floor.
				if diff := initial - got; int(diff)%int(FontSizeStep) != 0 && got != MinFontSize {
					t.Errorf("FitFontSize(%d, %v, %v) = %v not a multiple of the step", lines, initial, h, got)
				}
				if got > MinFontSize && !fits(lines, got, h) {
					t.Errorf("FitFontSize(%d, %v, %v) = %v stopped above the floor without fitting", lines, initial, h, got)
				}
				if got != initial && fits(lines, got+FontSizeStep, h) && got+FontSizeStep <= initial {
					t.Errorf("FitFontSize(%d, %v, %v) = %v shrank past a fitting size", lines, initial, h, got)
				}
			}
		}
	}
}

func TestFitFontSizeOddClamp(t *testing.T) {
	tests := []struct {
		initial float64
		want    float64
	}{
		{11, 10},
		{13, 10},
		{15, 10},
		{12, 10},
		{10, 10},
	}
	for _, tt := range tests {
		if got := FitFontSize(5, tt.initial, 1); got != tt.want {
			t.Errorf("FitFontSize(5, %v, 1) = %v, want %v", tt.initial, got, tt.want)
		}
	}
	// 13 -> 11 still takes a full step before the clamp.
	if got := FitFontSize(1, 13, 14); got != 11 {
		t.Errorf("FitFontSize(1, 13, 14) = %v, want 11", got)
	}
}
