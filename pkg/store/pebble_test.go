package store

import (
	"errors"
	"testing"
)

func openTest(t *testing.T) *Pebble {
	t.Helper()
	p, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestPutGetDelete(t *testing.T) {
	p := openTest(t)

	if err := p.Put("k1", []byte("v1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	v, err := p.Get("k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(v) != "v1" {
		t.Fatalf("got %q, want v1", v)
	}

	if err := p.Delete("k1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := p.Get("k1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: %v, want ErrNotFound", err)
	}
}

func TestGetMissing(t *testing.T) {
	p := openTest(t)
	if _, err := p.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestScanPrefix(t *testing.T) {
	p := openTest(t)
	for _, k := range []string{"a/3", "a/1", "a/2", "b/1"} {
		if err := p.Put(k, []byte(k)); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	kvs, err := p.Scan("a/")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	want := []string{"a/1", "a/2", "a/3"}
	if len(kvs) != len(want) {
		t.Fatalf("scan returned %d rows, want %d", len(kvs), len(want))
	}
	for i, kv := range kvs {
		if kv.Key != want[i] {
			t.Fatalf("row %d key %q, want %q", i, kv.Key, want[i])
		}
	}

	n, err := p.Count("a/")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("count = %d, want 3", n)
	}
}

func TestIncrementMerges(t *testing.T) {
	p := openTest(t)

	if err := p.Increment("ctr", 1); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := p.Increment("ctr", 1); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := p.Increment("ctr", 5); err != nil {
		t.Fatalf("increment: %v", err)
	}
	v, err := p.Get("ctr")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(v) != "7" {
		t.Fatalf("counter = %q, want 7", v)
	}
}

func TestIncrementBelowZero(t *testing.T) {
	p := openTest(t)

	if err := p.Increment("ctr", 1); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := p.Increment("ctr", -1); err != nil {
			t.Fatal(err)
		}
	}
	v, err := p.Get("ctr")
	if err != nil {
		t.Fatal(err)
	}
	// no floor at zero
	if string(v) != "-2" {
		t.Fatalf("counter = %q, want -2", v)
	}
}

func TestCounterSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	p, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Increment("ctr", 3); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	p2, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer p2.Close()
	v, err := p2.Get("ctr")
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != "3" {
		t.Fatalf("counter after reopen = %q, want 3", v)
	}
}
