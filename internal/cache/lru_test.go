package cache

import (
	"testing"
	"time"
)

func TestCacheGetSet(t *testing.T) {
	c := New[int](2, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("empty cache should miss")
	}

	c.Set("a", 1)
	if got, ok := c.Get("a"); !ok || got != 1 {
		t.Fatalf("Get(a) = %d, %v", got, ok)
	}
}

func TestCacheEvictsOldest(t *testing.T) {
	c := New[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // now "b" is least recently used
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a should survive")
	}
}

func TestCacheTTL(t *testing.T) {
	c := New[int](2, time.Millisecond)
	c.Set("a", 1)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expired entry served")
	}
}

func TestCachePurge(t *testing.T) {
	c := New[int](4, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()

	if c.Len() != 0 {
		t.Fatalf("Len = %d after purge", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatalf("purged entry served")
	}
}
