package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v, want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("hit on empty cache")
	}
	if err := c.Set(ctx, "chart", []byte(`{"person":1}`), 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, "chart")
	if err != nil || !hit || string(data) != `{"person":1}` {
		t.Fatalf("Get() = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "chart"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "chart"); hit {
		t.Error("hit after Delete")
	}
	if err := c.Delete(ctx, "chart"); err != nil {
		t.Errorf("Delete() of a missing key error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("Get() = %v, %v, want a silent miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("%d entries left after Clear", len(entries))
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Clear() removed the root: %v", err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	c, err := Open(ctx, Options{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open(file) error: %v", err)
	}
	if _, ok := c.(*FileCache); !ok {
		t.Errorf("Open() = %T, want *FileCache", c)
	}
	if c, _ := Open(ctx, Options{Backend: BackendNone}); c == nil {
		t.Error("Open(none) returned nil")
	}
	if _, err := Open(ctx, Options{Backend: "memcached"}); err == nil {
		t.Error("Open() accepted an unknown backend")
	}
	if _, err := Open(ctx, Options{Backend: BackendRedis}); err == nil {
		t.Error("Open(redis) accepted an empty address")
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedisCache(ctx, "127.0.0.1:1", WithRedisDialTimeout(200*time.Millisecond))
	if err == nil {
		t.Fatal("NewRedisCache() connected to a closed port")
	}
	if !strings.Contains(err.Error(), "127.0.0.1:1") {
		t.Errorf("error does not name the address: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := ChartKeyOpts{Name: "A", Year: 1992, Month: 1, Day: 1, Hour: 12, Lat: 40.7, Lon: -74, UTCOffset: -5}

	if k.ChartKey(base) != k.ChartKey(base) {
		t.Error("ChartKey not deterministic")
	}
	other := base
	other.Hour = 14
	if k.ChartKey(base) == k.ChartKey(other) {
		t.Error("ChartKey ignores the hour")
	}
	if !strings.HasPrefix(k.ChartKey(base), "chart:v1:") {
		t.Errorf("ChartKey() = %s", k.ChartKey(base))
	}

	if k.LocationKey("  New York, NY ") != k.LocationKey("new york, ny") {
		t.Error("LocationKey is case or space sensitive")
	}

	svg := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "svg"})
	png := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "png"})
	compact := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "svg", Compact: true})
	if svg == png || svg == compact {
		t.Error("ArtifactKey ignores render options")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	k := NewScopedKeyer(nil, "tenant:1:")

	if got := k.LocationKey("Paris"); got != "tenant:1:"+inner.LocationKey("Paris") {
		t.Errorf("LocationKey() = %s", got)
	}
	opts := ChartKeyOpts{Year: 2000}
	if got := k.ChartKey(opts); got != "tenant:1:"+inner.ChartKey(opts) {
		t.Errorf("ChartKey() = %s", got)
	}
	a := ArtifactKeyOpts{Format: "json"}
	if got := k.ArtifactKey("h", a); got != "tenant:1:"+inner.ArtifactKey("h", a) {
		t.Errorf("ArtifactKey() = %s", got)
	}
}
