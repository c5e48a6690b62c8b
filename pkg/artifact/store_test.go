package artifact

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/greetcard/pkg/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), "", nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func writeString(s string) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}

func TestWrite(t *testing.T) {
	s := newTestStore(t)

	a, err := s.Write(context.Background(), FormatPNG, writeString("png-bytes"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.HasSuffix(a.Name, ".png") {
		t.Errorf("Name = %q, want .png suffix", a.Name)
	}
	if _, err := uuid.Parse(strings.TrimSuffix(a.Name, ".png")); err != nil {
		t.Errorf("Name %q is not a uuid: %v", a.Name, err)
	}
	if a.PublicURL != "/api/generated/"+a.Name {
		t.Errorf("PublicURL = %q", a.PublicURL)
	}
	if a.Size != int64(len("png-bytes")) {
		t.Errorf("Size = %d", a.Size)
	}
	data, err := os.ReadFile(a.FilePath)
	if err != nil || string(data) != "png-bytes" {
		t.Errorf("file content = %q, %v", data, err)
	}

	j, err := s.Write(context.Background(), FormatJPEG, writeString("jpeg"))
	if err != nil {
		t.Fatalf("Write jpeg: %v", err)
	}
	if filepath.Ext(j.Name) != ".jpg" {
		t.Errorf("jpeg Name = %q", j.Name)
	}
}

func TestWriteFailureLeavesNothing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Write(context.Background(), FormatPNG, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return fmt.Errorf("encoder exploded")
	})
	if !errors.Is(err, errors.ErrCodeRenderFailed) {
		t.Errorf("err = %v, want RENDER_FAILED", err)
	}
	entries, _ := os.ReadDir(s.Dir())
	if len(entries) != 0 {
		t.Errorf("failed write left %d files behind", len(entries))
	}
}

func TestWriteCanceled(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Write(ctx, FormatPNG, writeString("x")); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestWriteConcurrentNamesUnique(t *testing.T) {
	s := newTestStore(t)
	const n = 64

	var wg sync.WaitGroup
	names := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := s.Write(context.Background(), FormatPNG, writeString(fmt.Sprintf("card-%d", i)))
			if err != nil {
				errs[i] = err
				return
			}
			names[i] = a.Name
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i, name := range names {
		if errs[i] != nil {
			t.Fatalf("write %d: %v", i, errs[i])
		}
		if seen[name] {
			t.Fatalf("duplicate artifact name %q", name)
		}
		seen[name] = true
	}
	entries, _ := os.ReadDir(s.Dir())
	if len(entries) != n {
		t.Errorf("directory has %d files, want %d", len(entries), n)
	}
}

func TestPath(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.Write(context.Background(), FormatPNG, writeString("x"))

	p, err := s.Path(a.Name)
	if err != nil || p != a.FilePath {
		t.Errorf("Path(%q) = %q, %v", a.Name, p, err)
	}
	for _, bad := range []string{"", "../x.png", "a/b.png", ".tmp-123"} {
		if _, err := s.Path(bad); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Path(%q) err = %v, want INVALID_INPUT", bad, err)
		}
	}
	if _, err := s.Path("missing.png"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing: err = %v, want NOT_FOUND", err)
	}
}

func TestSweep(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old, _ := s.Write(ctx, FormatPNG, writeString("old"))
	fresh, _ := s.Write(ctx, FormatPNG, writeString("fresh"))
	staleTmp := filepath.Join(s.Dir(), tempPrefix+"abandoned")
	if err := os.WriteFile(staleTmp, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	past := time.Now().Add(-25 * time.Hour)
	for _, p := range []string{old.FilePath, staleTmp} {
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := s.Sweep(ctx, 0)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if _, err := os.Stat(old.FilePath); !os.IsNotExist(err) {
		t.Error("expired artifact should be gone")
	}
	if _, err := os.Stat(fresh.FilePath); err != nil {
		t.Error("fresh artifact should survive")
	}
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.Write(context.Background(), FormatPNG, writeString("x"))
	past := time.Now().Add(-2 * time.Hour)
	os.Chtimes(a.FilePath, past, past)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- (&Sweeper{Store: s, Interval: 10 * time.Millisecond, MaxAge: time.Hour}).Run(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for {
		if _, err := os.Stat(a.FilePath); os.IsNotExist(err) {
			break
		}
		select {
		case <-deadline:
			t.Fatal("sweeper did not remove expired artifact")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"", FormatPNG, true},
		{"PNG", FormatPNG, true},
		{"jpg", FormatJPEG, true},
		{"jpeg", FormatJPEG, true},
		{"gif", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
