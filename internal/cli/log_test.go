package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bpmnlayout/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("x") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("x") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("x") }, true},
		{"warn at info level", log.InfoLevel, func(l *log.Logger) { l.Warn("x") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestSetLogFormat(t *testing.T) {
	tests := []struct {
		format  string
		check   func(string) bool
		wantErr bool
	}{
		{formatText, func(s string) bool { return strings.Contains(s, "INFO") && strings.Contains(s, "engine=layered") }, false},
		{formatJSON, func(s string) bool { return json.Valid([]byte(strings.TrimSpace(s))) }, false},
		{formatLogfmt, func(s string) bool { return strings.Contains(s, `msg="laid out"`) && strings.Contains(s, "engine=layered") }, false},
		{"xml", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			l := newLogger(&buf, log.InfoLevel)
			err := setLogFormat(l, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("setLogFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			l.Info("laid out", "engine", "layered")
			if !tt.check(buf.String()) {
				t.Errorf("unexpected %s output: %q", tt.format, buf.String())
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Loaded order.json")

	out := buf.String()
	if !strings.Contains(out, "Loaded order.json (") {
		t.Errorf("progress output %q lacks message and duration", out)
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Fatal("loggerFromContext returned nil without a logger")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Error("loggerFromContext did not return the attached logger")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, log.DebugLevel)
	registerLogHooks(l)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	observability.Pipeline().OnEngineStart(ctx, "layered", 7)
	observability.Pipeline().OnEngineComplete(ctx, "layered", time.Millisecond, errors.New("boom"))
	observability.Pipeline().OnStageComplete(ctx, "lanes", time.Millisecond)
	observability.Cache().OnCacheHit(ctx, "layout")
	observability.Cache().OnCacheSet(ctx, "layout", 128)

	out := buf.String()
	for _, want := range []string{"engine start", "engine failed", "name=lanes", "cache hit", "bytes=128"} {
		if !strings.Contains(out, want) {
			t.Errorf("hook output lacks %q:\n%s", want, out)
		}
	}
}
