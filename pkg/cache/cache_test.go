package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v, want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1, h2, h3 := Hash([]byte("hello")), Hash([]byte("hello")), Hash([]byte("world"))
	if h1 != h2 {
		t.Error("Hash is not deterministic")
	}
	if h1 == h3 {
		t.Error("different inputs hash equal")
	}
	if len(h1) != 64 {
		t.Errorf("len = %d, want 64", len(h1))
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("hit on empty cache")
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("hit after Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "short", []byte("a"), time.Minute)
	_ = c.Set(ctx, "long", []byte("b"), time.Hour)
	_ = c.Set(ctx, "forever", []byte("c"), 0)

	now = now.Add(10 * time.Minute)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry returned")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl expired")
	}

	_ = c.Set(ctx, "short", []byte("a"), time.Minute)
	now = now.Add(2 * time.Minute)
	n, err := c.Clear(true)
	if err != nil || n != 1 {
		t.Errorf("Clear(expired) = %d, %v, want 1", n, err)
	}
	n, err = c.Clear(false)
	if err != nil || n != 2 {
		t.Errorf("Clear(all) = %d, %v, want 2", n, err)
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "k", []byte("v"), 0)
	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit = %v, err = %v", hit, err)
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("corrupt entry not removed")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := LayoutKeyOpts{Engine: "layered", Options: map[string]string{"direction": "RIGHT", "padding": "[top=1]"}}

	tests := []struct {
		name string
		hash string
		opts LayoutKeyOpts
		same bool
	}{
		{"identical", "h", LayoutKeyOpts{Engine: "layered", Options: map[string]string{"padding": "[top=1]", "direction": "RIGHT"}}, true},
		{"other tree", "h2", base, false},
		{"other engine", "h", LayoutKeyOpts{Engine: "graphviz", Options: base.Options}, false},
		{"other option", "h", LayoutKeyOpts{Engine: "layered", Options: map[string]string{"direction": "DOWN"}}, false},
		{"other config", "h", LayoutKeyOpts{Engine: "layered", Options: base.Options, ConfigHash: "x"}, false},
	}
	ref := k.LayoutKey("h", base)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := k.LayoutKey(tt.hash, tt.opts); (got == ref) != tt.same {
				t.Errorf("key equality = %v, want %v", got == ref, tt.same)
			}
		})
	}
	if ref[:7] != "layout:" {
		t.Errorf("key %q lacks prefix", ref)
	}
}

func TestScopedKeyer(t *testing.T) {
	opts := LayoutKeyOpts{Engine: "layered"}
	plain := NewDefaultKeyer().LayoutKey("h", opts)
	if got := NewScopedKeyer(nil, "tenant:").LayoutKey("h", opts); got != "tenant:"+plain {
		t.Errorf("LayoutKey = %q, want %q", got, "tenant:"+plain)
	}
}

func TestRetryWithBackoff(t *testing.T) {
	retryDelay = time.Millisecond
	defer func() { retryDelay = time.Second }()
	errFlaky := errors.New("flaky")
	ctx := context.Background()

	tests := []struct {
		name      string
		failures  int
		retryable bool
		wantCalls int
		wantErr   bool
	}{
		{"success", 0, true, 1, false},
		{"permanent", 5, false, 1, true},
		{"recovers", 2, true, 3, false},
		{"exhausted", 5, true, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls <= tt.failures {
					if tt.retryable {
						return Retryable(errFlaky)
					}
					return errFlaky
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errFlaky) {
				t.Errorf("err = %v does not wrap the cause", err)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, func() error { return Retryable(ErrUnavailable) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"", "null", false},
		{"none", "null", false},
		{dir, "file", false},
		{"file://" + dir, "file", false},
		{"ftp://example.com", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			c, err := Open(ctx, tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer c.Close()
			var got string
			switch c.(type) {
			case NullCache:
				got = "null"
			case *FileCache:
				got = "file"
			}
			if got != tt.want {
				t.Errorf("backend = %T, want %s", c, tt.want)
			}
		})
	}
}

// Remote backends run only when a server is configured.

func TestRedisCache(t *testing.T) {
	url := os.Getenv("BPMNLAYOUT_TEST_REDIS")
	if url == "" {
		t.Skip("BPMNLAYOUT_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url, "test:")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	exerciseBackend(t, c)
}

func TestMongoCache(t *testing.T) {
	uri := os.Getenv("BPMNLAYOUT_TEST_MONGO")
	if uri == "" {
		t.Skip("BPMNLAYOUT_TEST_MONGO not set")
	}
	ctx := context.Background()
	c, err := NewMongoCache(ctx, uri, "bpmnlayout_test", "layouts")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	exerciseBackend(t, c)
}

func exerciseBackend(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()
	key := "backend-" + time.Now().Format(time.RFC3339Nano)
	if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("hit after Delete")
	}
}
