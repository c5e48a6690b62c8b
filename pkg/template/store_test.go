package template

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/greetcard/pkg/cache"
	"github.com/matzehuels/greetcard/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	jpg := writeFile(t, dir, "teachersday.jpg", "jpegdata")
	writeFile(t, dir, "spring.jpeg", "jpegdata")
	png := writeFile(t, dir, "both.png", "pngdata")
	writeFile(t, dir, "both.jpg", "jpegdata")

	s := NewStore(dir)

	tests := []struct {
		id   string
		want string
	}{
		{"teachersday", jpg},
		{"teachersday.jpg", jpg},
		{"teachersday.png", jpg},
		{"spring", filepath.Join(dir, "spring.jpeg")},
		{"both", png},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := s.Resolve(tt.id)
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.id, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	s := NewStore(t.TempDir())

	if _, err := s.Resolve("missing"); !errors.Is(err, errors.ErrCodeTemplateNotFound) {
		t.Errorf("missing: err = %v, want TEMPLATE_NOT_FOUND", err)
	}
	for _, id := range []string{"", "../etc/passwd", "a/b", ".hidden"} {
		if _, err := s.Resolve(id); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Resolve(%q): err = %v, want INVALID_INPUT", id, err)
		}
	}
}

func TestDescriptorDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "teachersday.jpg", "jpegdata")

	d, err := NewStore(dir).Descriptor(context.Background(), "teachersday")
	if err != nil {
		t.Fatalf("Descriptor: %v", err)
	}
	if d.HasMeta {
		t.Error("HasMeta should be false without a metadata file")
	}
	if !reflect.DeepEqual(d.Meta, DefaultMeta()) {
		t.Errorf("Meta = %+v, want defaults", d.Meta)
	}
	if d.ID != "teachersday" || d.ImagePath != filepath.Join(dir, "teachersday.jpg") {
		t.Errorf("unexpected descriptor %+v", d)
	}
}

func TestDescriptorWithMeta(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "spring.png", "png")
	writeFile(t, dir, "spring.json", `{
		"textSlot": {"x": 100, "y": 50, "width": 800, "height": 300, "fontSize": 64, "textAlign": "center"},
		"photoSlot": {"x": 10, "y": 10, "width": 200, "height": 100}
	}`)

	d, err := NewStore(dir).Descriptor(context.Background(), "spring")
	if err != nil {
		t.Fatalf("Descriptor: %v", err)
	}
	if !d.HasMeta {
		t.Error("HasMeta should be true")
	}
	ts := d.Meta.TextSlot
	if ts.Color != DefaultTextColor {
		t.Errorf("Color = %q, want default %q", ts.Color, DefaultTextColor)
	}
	slot := ts.Slot()
	if !slot.Centered() || slot.Width != 800 || slot.Height != 300 {
		t.Errorf("Slot() = %+v", slot)
	}
	if d.Meta.PhotoSlot.Shape != "" || !d.Meta.PhotoSlot.Enabled() {
		t.Errorf("PhotoSlot = %+v", d.Meta.PhotoSlot)
	}
}

func TestDescriptorMalformedMeta(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.png", "png")
	writeFile(t, dir, "broken.json", `{"textSlot": `)

	_, err := NewStore(dir).Descriptor(context.Background(), "broken")
	if !errors.Is(err, errors.ErrCodeMetadataParse) {
		t.Errorf("err = %v, want METADATA_PARSE", err)
	}
}

func TestDescriptorMalformedSlots(t *testing.T) {
	tests := []struct {
		name string
		meta string
	}{
		{"zero font", `{"textSlot": {"x": 1, "y": 1, "fontSize": 0}}`},
		{"bad align", `{"textSlot": {"x": 1, "y": 1, "fontSize": 20, "textAlign": "justify"}}`},
		{"bad color", `{"textSlot": {"x": 1, "y": 1, "fontSize": 20, "color": "blurple"}}`},
		{"bad shape", `{"textSlot": {"x": 1, "y": 1, "fontSize": 20}, "photoSlot": {"width": 10, "height": 10, "shape": "star"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "bad.png", "png")
			writeFile(t, dir, "bad.json", tt.meta)

			_, err := NewStore(dir).Descriptor(context.Background(), "bad")
			if !errors.Is(err, errors.ErrCodeMetadataParse) {
				t.Errorf("err = %v, want METADATA_PARSE", err)
			}
		})
	}
}

func TestDescriptorNamedColor(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "snow.png", "png")
	writeFile(t, dir, "snow.json", `{"textSlot": {"x": 1, "y": 1, "fontSize": 20, "color": "white"}}`)

	d, err := NewStore(dir).Descriptor(context.Background(), "snow")
	if err != nil {
		t.Fatalf("Descriptor: %v", err)
	}
	if d.Meta.TextSlot.Color != "#ffffff" {
		t.Errorf("color = %q, want #ffffff", d.Meta.TextSlot.Color)
	}
}

func TestDescriptorUsesCache(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "spring.png", "png")
	metaPath := writeFile(t, dir, "spring.json", `{"textSlot": {"x": 1, "y": 2, "fontSize": 40, "color": "#fff"}}`)

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := NewStore(dir, WithCache(fc, nil))
	ctx := context.Background()

	if _, err := s.Descriptor(ctx, "spring"); err != nil {
		t.Fatalf("Descriptor: %v", err)
	}

	info, _ := os.Stat(metaPath)
	key := cache.NewDefaultKeyer().TemplateKey("spring", info.ModTime().UnixNano())
	data, hit, _ := fc.Get(ctx, key)
	if !hit {
		t.Fatal("metadata should be cached after first load")
	}
	var cached Meta
	if err := json.Unmarshal(data, &cached); err != nil || cached.TextSlot.FontSize != 40 {
		t.Errorf("cached meta = %+v (%v)", cached, err)
	}
}

func TestMeta(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "spring.png", "png")
	writeFile(t, dir, "plain.png", "png")
	writeFile(t, dir, "spring.json", `{"textSlot": {"x": 1, "y": 2, "fontSize": 40, "color": "#fff"}}`)
	s := NewStore(dir)
	ctx := context.Background()

	m, err := s.Meta(ctx, "spring")
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if m.TextSlot.FontSize != 40 {
		t.Errorf("FontSize = %v", m.TextSlot.FontSize)
	}

	if _, err := s.Meta(ctx, "plain"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("plain: err = %v, want NOT_FOUND", err)
	}
}

func TestUpdateMeta(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "spring.png", "png")
	writeFile(t, dir, "spring.json", `{"textSlot": {"x": 1, "y": 2, "fontSize": 40, "color": "#fff"}}`)
	s := NewStore(dir)
	ctx := context.Background()

	updated := DefaultMeta()
	updated.TextSlot.FontSize = 90
	if err := s.UpdateMeta(ctx, "spring", updated); err != nil {
		t.Fatalf("UpdateMeta: %v", err)
	}
	m, err := s.Meta(ctx, "spring")
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if !reflect.DeepEqual(m, updated) {
		t.Errorf("Meta after update = %+v, want %+v", m, updated)
	}

	if err := s.UpdateMeta(ctx, "nometa", updated); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("nometa: err = %v, want NOT_FOUND", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "nometa.json")); !os.IsNotExist(err) {
		t.Error("UpdateMeta must not create metadata files")
	}

	invalid := updated
	invalid.TextSlot.Color = "navyish"
	if err := s.UpdateMeta(ctx, "spring", invalid); !errors.Is(err, errors.ErrCodeInvalidColor) {
		t.Errorf("invalid color: err = %v, want INVALID_COLOR", err)
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "teachersday.jpg", "jpegdata")
	writeFile(t, dir, "empty.png", "")
	s := NewStore(dir)

	res, err := s.Check("teachersday")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Size != int64(len("jpegdata")) || filepath.Base(res.Path) != "teachersday.jpg" {
		t.Errorf("Check = %+v", res)
	}

	if _, err := s.Check("empty"); !errors.Is(err, errors.ErrCodeTemplateNotFound) {
		t.Errorf("empty: err = %v, want TEMPLATE_NOT_FOUND", err)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "teachersday.jpg", "x")
	writeFile(t, dir, "teachersday.json", "{}")
	writeFile(t, dir, "spring.png", "x")
	writeFile(t, dir, "spring.jpg", "x")
	writeFile(t, dir, "notes.txt", "x")
	writeFile(t, dir, ".hidden.png", "x")

	ids, err := NewStore(dir).List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if want := []string{"spring", "teachersday"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("List = %v, want %v", ids, want)
	}
}

func TestVersion(t *testing.T) {
	dir := t.TempDir()
	img := writeFile(t, dir, "card.png", "png")
	meta := writeFile(t, dir, "card.json", `{"textSlot": {"x": 1, "y": 1, "fontSize": 20}}`)
	s := NewStore(dir)

	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := old.Add(time.Hour)
	os.Chtimes(img, old, old)
	os.Chtimes(meta, newer, newer)

	v, err := s.Version("card")
	if err != nil || v != newer.UnixNano() {
		t.Fatalf("Version = %d, %v; want metadata mtime", v, err)
	}

	newest := newer.Add(time.Hour)
	os.Chtimes(img, newest, newest)
	if v, _ := s.Version("card"); v != newest.UnixNano() {
		t.Errorf("Version did not follow image change: %d", v)
	}
	if _, err := s.Version("missing"); !errors.Is(err, errors.ErrCodeTemplateNotFound) {
		t.Errorf("missing: err = %v", err)
	}
}
