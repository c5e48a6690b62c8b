package record

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(&strings.Builder{}, log.Options{})
}

func TestInitWithoutURI(t *testing.T) {
	r := Init(context.Background(), Config{}, quietLogger())
	if r.Enabled() {
		t.Fatal("recorder without URI should be disabled")
	}
	g, err := r.Save(context.Background(), Greeting{Name: "x", ImageURL: "/api/generated/a.png"})
	if err != nil || g.Name != "x" {
		t.Errorf("Nop.Save = %+v, %v", g, err)
	}
}

func TestInitUnreachable(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"malformed", "not-a-mongo-uri"},
		{"refused", "mongodb://127.0.0.1:1/?connect=direct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Init(context.Background(), Config{URI: tt.uri, Timeout: 200 * time.Millisecond}, quietLogger())
			if _, ok := r.(Nop); !ok {
				t.Errorf("Init(%q) = %T, want Nop", tt.uri, r)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	long := strings.Repeat("é", 150)
	g := Normalize(Greeting{Name: "  " + long + " ", Phone: strings.Repeat("1", 60), ImageURL: "/x.png"})

	if n := len([]rune(g.Name)); n != MaxNameLen {
		t.Errorf("name runes = %d, want %d", n, MaxNameLen)
	}
	if len(g.Phone) != MaxPhoneLen {
		t.Errorf("phone len = %d", len(g.Phone))
	}
	if g.CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped")
	}

	at := time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC)
	if got := Normalize(Greeting{CreatedAt: at}); !got.CreatedAt.Equal(at) {
		t.Errorf("CreatedAt overwritten: %v", got.CreatedAt)
	}
}
