package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	a := Key("openai/gpt-4o-mini/document", "segment content")
	b := Key("openai/gpt-4o-mini/document", "segment content")
	if a != b {
		t.Errorf("identical inputs must produce identical keys: %s vs %s", a, b)
	}

	if Key("scope-a", "content") == Key("scope-b", "content") {
		t.Error("different scopes must not collide")
	}
	if Key("scope", "content-a") == Key("scope", "content-b") {
		t.Error("different content must not collide")
	}
	// The separator prevents boundary ambiguity between scope and content.
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("scope/content boundary must be unambiguous")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("empty cache should miss")
	}

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, found := c.Get("k")
	if !found || !bytes.Equal(val, []byte("v")) {
		t.Errorf("expected v, got %q (found=%v)", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("deleted key should miss")
	}

	_ = c.Set("a", []byte("1"), time.Minute)
	_ = c.Set("b", []byte("2"), time.Minute)
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, found := c.Get("a"); found {
		t.Error("cleared cache should miss")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	if _, found := c.Get("k"); found {
		t.Error("expired entry should miss")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	key := Key("scope", "content")
	if err := c.Set(key, []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// A fresh instance over the same directory sees the entry.
	c2 := NewDiskCache(dir, time.Hour)
	val, found := c2.Get(key)
	if !found || !bytes.Equal(val, []byte("payload")) {
		t.Errorf("entry did not survive: %q (found=%v)", val, found)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("deleted entry should miss")
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("deleting a missing entry must not error: %v", err)
	}
}

func TestDiskCacheExpiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if err := c.Set("k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("expired entry should miss")
	}
	// Expired entries are removed on read.
	if _, err := os.Stat(filepath.Join(dir, "k.json")); !os.IsNotExist(err) {
		t.Errorf("expired entry file should be removed, stat err: %v", err)
	}
}

func TestDiskCacheCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write corrupt entry: %v", err)
	}
	if _, found := c.Get("bad"); found {
		t.Error("corrupt entry should miss")
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.json")); !os.IsNotExist(err) {
		t.Errorf("corrupt entry file should be removed, stat err: %v", err)
	}
}

func TestDiskCacheClear(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	_ = c.Set("a", []byte("1"), time.Hour)
	_ = c.Set("b", []byte("2"), time.Hour)
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, found := c.Get("a"); found {
		t.Error("cleared cache should miss")
	}

	// Clearing a cache whose directory never existed is a no-op.
	missing := NewDiskCache(filepath.Join(dir, "never-created"), time.Hour)
	if err := missing.Clear(); err != nil {
		t.Errorf("Clear on a missing directory must not error: %v", err)
	}
}

func TestLayeredCache(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)

	key := Key("scope", "doc")
	if err := c.Set(key, []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, found := c.Get(key)
	if !found || !bytes.Equal(val, []byte("v")) {
		t.Errorf("expected v, got %q (found=%v)", val, found)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("deleted entry should miss in both layers")
	}
}

func TestLayeredCachePromotion(t *testing.T) {
	dir := t.TempDir()

	// Seed disk only, then read through a fresh layered cache.
	seed := NewDiskCache(dir, time.Hour)
	key := Key("scope", "doc")
	if err := seed.Set(key, []byte("from-disk"), time.Hour); err != nil {
		t.Fatalf("seed disk: %v", err)
	}

	c := NewLayeredCache(time.Minute, dir, time.Hour)
	val, found := c.Get(key)
	if !found || !bytes.Equal(val, []byte("from-disk")) {
		t.Fatalf("disk hit not served: %q (found=%v)", val, found)
	}

	// The entry is now promoted: removing the disk copy must not cause a miss.
	if err := seed.Delete(key); err != nil {
		t.Fatalf("delete disk entry: %v", err)
	}
	if _, found := c.Get(key); !found {
		t.Error("promoted entry should be served from memory")
	}
}
