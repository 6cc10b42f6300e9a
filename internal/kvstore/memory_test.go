package kvstore

import (
	"context"
	"testing"
)

func TestMemoryReadMissingKey(t *testing.T) {
	m := NewMemory()
	v, ok, err := m.Read(context.Background(), KeyTransactions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || v != nil {
		t.Fatalf("expected missing key, got ok=%v value=%q", ok, v)
	}
}

func TestMemoryWriteRead(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Write(ctx, KeyGoals, []byte(`[{"id":"g1"}]`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	v, ok, err := m.Read(ctx, KeyGoals)
	if err != nil || !ok {
		t.Fatalf("read: ok=%v err=%v", ok, err)
	}
	if string(v) != `[{"id":"g1"}]` {
		t.Fatalf("unexpected value %q", v)
	}

	// Overwrite replaces the value entirely.
	if err := m.Write(ctx, KeyGoals, []byte(`[]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, _, _ = m.Read(ctx, KeyGoals)
	if string(v) != `[]` {
		t.Fatalf("expected overwritten value, got %q", v)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	in := []byte("abc")
	if err := m.Write(ctx, "k", in); err != nil {
		t.Fatalf("write: %v", err)
	}
	in[0] = 'X'

	v, _, _ := m.Read(ctx, "k")
	if string(v) != "abc" {
		t.Fatalf("store must not alias caller buffers, got %q", v)
	}
	v[0] = 'Y'
	again, _, _ := m.Read(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("read result must not alias stored value, got %q", again)
	}
}
