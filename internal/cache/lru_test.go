package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRUEviction(t *testing.T) {
	c := NewLRUCache[int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "least recently used entry is evicted")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Size())
}

func TestLRUExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](4, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	now = now.Add(2 * time.Minute)
	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Set("x", "1")
	c.Set("y", "2")
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, c.CleanExpired())
	assert.Zero(t, c.Size())
}

func TestGetOrCompute(t *testing.T) {
	c := NewLRUCache[int](4, 0)
	calls := 0
	compute := func() int { calls++; return 42 }

	assert.Equal(t, 42, c.GetOrCompute("rev:1", compute))
	assert.Equal(t, 42, c.GetOrCompute("rev:1", compute))
	assert.Equal(t, 1, calls)

	c.Delete("rev:1")
	c.GetOrCompute("rev:1", compute)
	assert.Equal(t, 2, calls)
}

func TestSweeper(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewLRUCache[int](4, time.Minute)
	a.now = func() time.Time { return now }
	b := NewLRUCache[int](4, 0)
	a.Set("x", 1)
	a.Set("y", 2)
	b.Set("z", 3)

	s := NewSweeper(nil, a, b)
	assert.Zero(t, s.Sweep())
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, s.Sweep())
	assert.Equal(t, 1, b.Size())
}

func TestSweeperRunStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewSweeper(nil, NewLRUCache[int](1, 0)).Run(ctx, time.Millisecond) }()

	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
