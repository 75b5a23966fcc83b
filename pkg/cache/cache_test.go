package cache

import (
	"errors"
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New[string]()
	c.Set("client_001", "Acme Corporation", time.Second)
	val, ok := c.Get("client_001")
	if !ok || val != "Acme Corporation" {
		t.Fatalf("expected Acme Corporation, got %v, exists=%v", val, ok)
	}
}

func TestExpiration(t *testing.T) {
	c := New[string]()
	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set("key1", "value1", 100*time.Millisecond)
	now = now.Add(150 * time.Millisecond)
	if _, ok := c.Get("key1"); ok {
		t.Fatalf("expected expired key to return false")
	}
}

func TestDelete(t *testing.T) {
	c := New[int]()
	c.Set("key1", 1, time.Second)
	c.Delete("key1")
	if _, ok := c.Get("key1"); ok {
		t.Fatalf("expected deleted key to return false")
	}
}

func TestInvalidate(t *testing.T) {
	c := New[string]()
	c.Set("company:client_1", "c1", time.Second)
	c.Set("company:client_2", "c2", time.Second)
	c.Set("job:1", "j1", time.Second)
	c.Invalidate("company:")
	_, ok1 := c.Get("company:client_1")
	_, ok2 := c.Get("company:client_2")
	_, ok3 := c.Get("job:1")
	if ok1 || ok2 {
		t.Fatalf("expected company keys to be invalidated")
	}
	if !ok3 {
		t.Fatalf("expected job:1 to still exist")
	}
}

func TestGetOrLoad(t *testing.T) {
	c := New[string]()
	calls := 0
	load := func() (string, error) {
		calls++
		return "Globex", nil
	}
	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("company:client_2", time.Minute, load)
		if err != nil || v != "Globex" {
			t.Fatalf("unexpected %q %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("loader should run once, ran %d times", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrLoad("company:missing", time.Minute, func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if _, ok := c.Get("company:missing"); ok {
		t.Fatalf("errors must not be cached")
	}
}
