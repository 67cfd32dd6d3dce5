package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse(`
[lane]
extra_height = 60

[router]
cell_size = 5
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Lane.ExtraHeight != 60 {
		t.Errorf("lane.extra_height = %v, want 60", cfg.Lane.ExtraHeight)
	}
	if cfg.Router.CellSize != 5 {
		t.Errorf("router.cell_size = %v, want 5", cfg.Router.CellSize)
	}
	if cfg.Pool.BlackBoxHeight != Default().Pool.BlackBoxHeight {
		t.Errorf("untouched value changed: %v", cfg.Pool.BlackBoxHeight)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Layout)
		wantErr string
	}{
		{"defaults", func(*Layout) {}, ""},
		{"zero cell", func(l *Layout) { l.Router.CellSize = 0 }, "cell_size"},
		{"negative gap", func(l *Layout) { l.Artifact.Gap = -1 }, "artifact.gap"},
		{"negative bend", func(l *Layout) { l.Router.BendPenalty = -2 }, "bend_penalty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Default()
			tt.mutate(&l)
			err := l.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.toml")
	if err := os.WriteFile(path, []byte("[lane]\nheight = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Default().Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	cfg, err := Parse(buf.String())
	if err != nil {
		t.Fatalf("Parse(encoded): %v", err)
	}
	if cfg != Default() {
		t.Errorf("round trip changed config:\n%s", buf.String())
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil || cfg != Default() {
		t.Errorf("Load(\"\") = %v, %v", cfg, err)
	}
}
