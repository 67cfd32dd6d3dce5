package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bpmnlayout/pkg/observability"
)

// Log output formats accepted by --log-format.
const (
	formatText   = "text"
	formatJSON   = "json"
	formatLogfmt = "logfmt"
)

// newLogger creates a logger writing to w at level, with timestamps formatted
// as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// setLogFormat switches l to the named formatter. JSON and logfmt suit the
// server when its logs are collected.
func setLogFormat(l *log.Logger, format string) error {
	switch format {
	case formatText, "":
		l.SetFormatter(log.TextFormatter)
	case formatJSON:
		l.SetFormatter(log.JSONFormatter)
	case formatLogfmt:
		l.SetFormatter(log.LogfmtFormatter)
	default:
		return fmt.Errorf("unknown log format %q (must be text, json or logfmt)", format)
	}
	return nil
}

// progress measures one step of a command.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the time elapsed since newProgress, e.g.
// "Loaded order.json (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() outside a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability
// =============================================================================

// logHooks reports engine, stage and cache events at debug level.
type logHooks struct {
	logger *log.Logger
}

func registerLogHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
}

func (h logHooks) OnEngineStart(_ context.Context, engine string, nodes int) {
	h.logger.Debug("engine start", "engine", engine, "nodes", nodes)
}

func (h logHooks) OnEngineComplete(_ context.Context, engine string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("engine failed", "engine", engine, "duration", d, "err", err)
		return
	}
	h.logger.Debug("engine done", "engine", engine, "duration", d)
}

func (h logHooks) OnStageStart(context.Context, string) {}

func (h logHooks) OnStageComplete(_ context.Context, stage string, d time.Duration) {
	h.logger.Debug("stage", "name", stage, "duration", d)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
