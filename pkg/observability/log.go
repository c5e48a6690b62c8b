package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level, and failures at
// warn level. It implements all hook interfaces.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger (log.Default when nil).
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("events")}
}

func (h *LogHooks) OnGenerateStart(_ context.Context, templateID string) {
	h.logger.Debug("generate start", "template", templateID)
}

func (h *LogHooks) OnGenerateComplete(_ context.Context, templateID string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("generate failed", "template", templateID, "duration", d, "err", err)
		return
	}
	h.logger.Debug("generate complete", "template", templateID, "duration", d)
}

func (h *LogHooks) OnLayout(_ context.Context, templateID string, lines int, fontSize float64) {
	h.logger.Debug("layout", "template", templateID, "lines", lines, "font_size", fontSize)
}

func (h *LogHooks) OnPreview(_ context.Context, templateID string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("preview failed", "template", templateID, "err", err)
		return
	}
	h.logger.Debug("preview", "template", templateID, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnSweep(_ context.Context, removed int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("sweep failed", "removed", removed, "err", err)
		return
	}
	h.logger.Debug("sweep", "removed", removed, "duration", d)
}

func (h *LogHooks) OnRecord(_ context.Context, err error) {
	if err != nil {
		h.logger.Warn("record failed", "err", err)
		return
	}
	h.logger.Debug("record saved")
}

var (
	_ GenerationHooks = (*LogHooks)(nil)
	_ CacheHooks      = (*LogHooks)(nil)
	_ StorageHooks    = (*LogHooks)(nil)
)
