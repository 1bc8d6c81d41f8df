package cache

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestLRUCache_ExpiryAndSliding(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	fixed := NewLRUCache[string](10, time.Minute, WithClock[string](clk.Now))
	sliding := NewLRUCache[string](10, time.Minute, WithClock[string](clk.Now), WithSlidingExpiration[string]())

	fixed.Set("a", "1")
	sliding.Set("a", "1")

	clk.Advance(40 * time.Second)
	if _, ok := fixed.Get("a"); !ok {
		t.Fatal("fixed entry expired early")
	}
	if _, ok := sliding.Get("a"); !ok {
		t.Fatal("sliding entry expired early")
	}

	clk.Advance(40 * time.Second)
	if _, ok := fixed.Get("a"); ok {
		t.Fatal("fixed entry should have expired")
	}
	if v, ok := sliding.Get("a"); !ok || v != "1" {
		t.Fatal("sliding entry should have been renewed")
	}
}

func TestLRUCache_CapacityEviction(t *testing.T) {
	var evicted []string
	c := NewLRUCache[int](2, time.Hour, WithEvictCallback(func(k string, _ int) {
		evicted = append(evicted, k)
	}))
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("least recently used entry should be gone")
	}
	if c.Size() != 2 || len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("size=%d evicted=%v", c.Size(), evicted)
	}

	c.Delete("a")
	if len(evicted) != 1 {
		t.Fatal("Delete must not call the evict callback")
	}
}

func TestLRUCache_CleanExpired(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	c := NewLRUCache[int](10, time.Minute, WithClock[int](clk.Now))
	c.Set("a", 1)
	clk.Advance(30 * time.Second)
	c.Set("b", 2)
	clk.Advance(45 * time.Second)

	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("removed %d, want 1", n)
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatal("fresh entry removed")
	}
}

func TestManager_CleanNowAndStop(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	c := NewLRUCache[int](10, time.Second, WithClock[int](clk.Now))
	c.Set("a", 1)
	clk.Advance(2 * time.Second)

	m := NewManager(nil)
	m.Register("sessions", c)
	if got := m.CleanNow()["sessions"]; got != 1 {
		t.Fatalf("CleanNow removed %d", got)
	}

	m.StartCleanup(time.Millisecond)
	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop()
}
