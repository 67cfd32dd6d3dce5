package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		name string
		xdg  string
		want string
	}{
		{"default", "", filepath.Join(home, ".cache", appName)},
		{"xdg", "/tmp/custom-cache", filepath.Join("/tmp/custom-cache", appName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", tt.xdg)
			got, err := cacheDir()
			if err != nil {
				t.Fatalf("cacheDir() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("cacheDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpenCache(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	ctx := t.Context()

	t.Run("disabled", func(t *testing.T) {
		store, err := c.openCache(ctx, "", true)
		if err != nil {
			t.Fatalf("openCache: %v", err)
		}
		if _, hit, _ := store.Get(ctx, "k"); hit {
			t.Error("disabled cache reported a hit")
		}
	})

	t.Run("default directory", func(t *testing.T) {
		xdg := t.TempDir()
		t.Setenv("XDG_CACHE_HOME", xdg)
		store, err := c.openCache(ctx, "", false)
		if err != nil {
			t.Fatalf("openCache: %v", err)
		}
		defer store.Close()
		if err := store.Set(ctx, "k", []byte("v"), 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if _, err := os.Stat(filepath.Join(xdg, appName)); err != nil {
			t.Errorf("cache directory not created: %v", err)
		}
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		if _, err := c.openCache(ctx, "ftp://example.com/cache", false); err == nil {
			t.Error("expected error for ftp cache URL")
		}
	})
}
