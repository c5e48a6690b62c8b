package pipeline

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/greetcard/pkg/artifact"
	"github.com/matzehuels/greetcard/pkg/cache"
	"github.com/matzehuels/greetcard/pkg/compose"
	"github.com/matzehuels/greetcard/pkg/errors"
	"github.com/matzehuels/greetcard/pkg/layout"
	"github.com/matzehuels/greetcard/pkg/observability"
	"github.com/matzehuels/greetcard/pkg/preview"
	"github.com/matzehuels/greetcard/pkg/record"
	"github.com/matzehuels/greetcard/pkg/template"
)

// recordTimeout bounds one background record save.
const recordTimeout = 30 * time.Second

// Runner runs generation requests.
// Both CLI and API use it so defaults, caching and record keeping behave
// identically. A Runner is safe for concurrent use.
type Runner struct {
	Templates  *template.Store
	Compositor *compose.Compositor
	Previewer  *preview.Renderer
	Recorder   record.Recorder
	Cache      cache.Cache
	Keyer      cache.Keyer
	Logger     *log.Logger

	// MaxTextLen overrides DefaultMaxTextLen when positive.
	MaxTextLen int

	// DefaultFormat applies to requests that name no format.
	DefaultFormat artifact.Format

	pending sync.WaitGroup
}

// NewRunner creates a runner.
// If rec is nil, greetings are not recorded.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(templates *template.Store, comp *compose.Compositor, rec record.Recorder, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if rec == nil {
		rec = record.Nop{}
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Templates:  templates,
		Compositor: comp,
		Previewer:  &preview.Renderer{Logger: logger},
		Recorder:   rec,
		Cache:      c,
		Keyer:      keyer,
		Logger:     logger,
	}
}

// Generate renders req into a stored artifact and records the greeting in
// the background. Recording never fails the request.
func (r *Runner) Generate(ctx context.Context, req Request) (*artifact.Artifact, error) {
	if req.Format == "" {
		req.Format = string(r.DefaultFormat)
	}
	if err := req.Normalize(r.MaxTextLen); err != nil {
		return nil, err
	}
	if err := req.RequireText(); err != nil {
		return nil, err
	}

	a, err := r.Compositor.Render(ctx, compose.Request{
		TemplateID: req.TemplateID,
		Text:       req.Text,
		FontSize:   req.FontSize,
		Color:      req.Color,
		Photo:      req.Photo,
		Format:     artifact.Format(req.Format),
		Debug:      req.Debug,
	})
	if err != nil {
		return nil, err
	}

	if r.Recorder.Enabled() {
		r.record(ctx, record.Greeting{Name: req.Text, Phone: req.Phone, ImageURL: a.PublicURL})
	}
	return a, nil
}

func (r *Runner) record(ctx context.Context, g record.Greeting) {
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
		defer cancel()
		if _, err := r.Recorder.Save(ctx, g); err != nil {
			r.Logger.Warn("record greeting", "code", errors.ErrCodePersistence, "err", err)
		}
	}()
}

// Wait blocks until background record saves have finished.
func (r *Runner) Wait() {
	r.pending.Wait()
}

// Layout returns the layout both renderers would use for req.
func (r *Runner) Layout(ctx context.Context, req Request) (layout.Result, error) {
	if err := req.Normalize(r.MaxTextLen); err != nil {
		return layout.Result{}, err
	}
	desc, err := r.Templates.Descriptor(ctx, req.TemplateID)
	if err != nil {
		return layout.Result{}, err
	}
	res, err := layout.Compute(req.Text, desc.Meta.TextSlot.Slot(),
		layout.WithFontSize(req.FontSize),
		layout.WithColor(req.Color))
	if err != nil {
		return layout.Result{}, err
	}
	observability.Generation().OnLayout(ctx, desc.ID, len(res.Lines), res.FontSize)
	return res, nil
}

// PreviewWithCacheInfo renders a preview PNG, reusing a cached copy when
// the template and every input are unchanged.
func (r *Runner) PreviewWithCacheInfo(ctx context.Context, req Request) ([]byte, bool, error) {
	if err := req.Normalize(r.MaxTextLen); err != nil {
		return nil, false, err
	}
	version, err := r.Templates.Version(req.TemplateID)
	if err != nil {
		return nil, false, err
	}

	keyOpts := cache.PreviewKeyOpts{
		FontSize: req.FontSize,
		Color:    req.Color,
		Debug:    req.Debug,
		Version:  version,
	}
	if len(req.Photo) > 0 {
		keyOpts.PhotoHash = cache.Hash(req.Photo)
	}
	key := r.Keyer.PreviewKey(req.TemplateID, req.Text, keyOpts)

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "preview")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "preview")

	frame, err := r.Previewer.Render(ctx, r.Templates, preview.Request{
		TemplateID: req.TemplateID,
		Text:       req.Text,
		FontSize:   req.FontSize,
		Color:      req.Color,
		Photo:      req.Photo,
		Debug:      req.Debug,
	})
	if err != nil {
		return nil, false, err
	}
	var buf bytes.Buffer
	if err := frame.Surface.EncodePNG(&buf); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeRenderFailed, err, "encode preview")
	}

	data := buf.Bytes()
	if err := r.Cache.Set(ctx, key, data, cache.TTLPreview); err == nil {
		observability.Cache().OnCacheSet(ctx, "preview", len(data))
	}
	return data, false, nil
}

// Preview is a convenience wrapper that calls PreviewWithCacheInfo and discards the cache hit info.
func (r *Runner) Preview(ctx context.Context, req Request) ([]byte, error) {
	data, _, err := r.PreviewWithCacheInfo(ctx, req)
	return data, err
}

// Close waits for pending records and releases the cache and recorder.
func (r *Runner) Close(ctx context.Context) error {
	r.Wait()
	var firstErr error
	if r.Recorder != nil {
		firstErr = r.Recorder.Close(ctx)
	}
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
