package cache

import (
	"testing"
	"time"
)

func TestMemoryCacheSetGetDelete(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	c.Set("product:slug:psn", 42, time.Minute)
	v, ok := c.Get("product:slug:psn")
	if !ok || v.(int) != 42 {
		t.Fatalf("Get = %v, %v", v, ok)
	}

	c.Delete("product:slug:psn")
	if _, ok := c.Get("product:slug:psn"); ok {
		t.Fatal("key should be gone after Delete")
	}
}

func TestMemoryCacheDeletePrefix(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	c.Set("product:list:a", 1, time.Minute)
	c.Set("product:slug:b", 2, time.Minute)
	c.Set("category:all", 3, time.Minute)

	c.DeletePrefix("product:")

	for _, k := range []string{"product:list:a", "product:slug:b"} {
		if _, ok := c.Get(k); ok {
			t.Errorf("%s should have been purged", k)
		}
	}
	if _, ok := c.Get("category:all"); !ok {
		t.Error("unrelated key was purged")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	c.Set("session:x", "v", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("session:x"); ok {
		t.Fatal("expired item still returned")
	}
}

func TestMemoryCacheFlush(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	c.Set("a", 1, time.Minute)
	c.Flush()
	if _, ok := c.Get("a"); ok {
		t.Fatal("Flush left items behind")
	}
}
