package template

import (
	"image"
	"testing"

	"github.com/matzehuels/greetcard/pkg/errors"
	"github.com/matzehuels/greetcard/pkg/fonts"
	"github.com/matzehuels/greetcard/pkg/layout"
)

func TestTextSlotSlot(t *testing.T) {
	ts := TextSlot{X: 10, Y: 20, Width: 300, MaxWidth: 250, FontSize: 48, Color: "#123456", TextAlign: "left"}
	got := ts.Slot()
	want := layout.Slot{X: 10, Y: 20, Width: 300, MaxWidth: 250, FontSize: 48, Color: "#123456", Align: layout.AlignStart}
	if got != want {
		t.Errorf("Slot() = %+v, want %+v", got, want)
	}

	ts.TextAlign = "center"
	if !ts.Slot().Centered() {
		t.Error("center textAlign should produce a centered slot")
	}
}

func TestTextSlotFamilies(t *testing.T) {
	if got := (TextSlot{}).Families(); got != fonts.FallbackFontFamily {
		t.Errorf("Families() = %q", got)
	}
	if got := (TextSlot{FontFamily: "'Pacifico'"}).Families(); got != "'Pacifico', sans-serif" {
		t.Errorf("Families() = %q", got)
	}
}

func TestBounds(t *testing.T) {
	ps := PhotoSlot{X: 200, Y: 250, Width: 400, Height: 400}
	if got := ps.Bounds(); got != image.Rect(200, 250, 600, 650) {
		t.Errorf("PhotoSlot.Bounds() = %v", got)
	}

	ts := DefaultMeta().TextSlot
	if got := ts.Bounds(); got != image.Rect(800, 200, 2000, 344) {
		t.Errorf("TextSlot.Bounds() = %v", got)
	}
}

func TestMetaValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Meta)
		code   errors.Code
	}{
		{"defaults", func(*Meta) {}, ""},
		{"zero font", func(m *Meta) { m.TextSlot.FontSize = 0 }, errors.ErrCodeInvalidSlot},
		{"negative height", func(m *Meta) { m.TextSlot.Height = -1 }, errors.ErrCodeInvalidSlot},
		{"center without width", func(m *Meta) { m.TextSlot.TextAlign = "center" }, errors.ErrCodeInvalidSlot},
		{"center with width", func(m *Meta) { m.TextSlot.TextAlign = "center"; m.TextSlot.Width = 600 }, ""},
		{"right align", func(m *Meta) { m.TextSlot.TextAlign = "right" }, errors.ErrCodeInvalidSlot},
		{"named color", func(m *Meta) { m.TextSlot.Color = "white" }, ""},
		{"unknown color", func(m *Meta) { m.TextSlot.Color = "blurple" }, errors.ErrCodeInvalidColor},
		{"short hex", func(m *Meta) { m.TextSlot.Color = "#fff" }, ""},
		{"bad shape", func(m *Meta) { m.PhotoSlot.Shape = "star" }, errors.ErrCodeInvalidSlot},
		{"negative photo", func(m *Meta) { m.PhotoSlot.Width = -5 }, errors.ErrCodeInvalidSlot},
		{"no photo slot", func(m *Meta) { m.PhotoSlot = PhotoSlot{} }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DefaultMeta()
			tt.mutate(&m)
			err := m.Validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
}
