package audio

import (
	"bytes"
	"testing"
)

func TestRingBuffer_WriteRead(t *testing.T) {
	rb := NewRingBuffer(16)

	n := rb.Write([]byte("hello"))
	if n != 5 {
		t.Fatalf("expected 5 bytes written, got %d", n)
	}
	if rb.Buffered() != 5 {
		t.Errorf("expected 5 buffered, got %d", rb.Buffered())
	}

	out := make([]byte, 5)
	if got := rb.Read(out); got != 5 {
		t.Fatalf("expected 5 bytes read, got %d", got)
	}
	if !bytes.Equal(out, []byte("hello")) {
		t.Errorf("unexpected read content %q", out)
	}
	if rb.Buffered() != 0 {
		t.Errorf("expected empty buffer, got %d", rb.Buffered())
	}
}

func TestRingBuffer_WrapAround(t *testing.T) {
	rb := NewRingBuffer(8)
	rb.Write([]byte("abcdef"))
	out := make([]byte, 4)
	rb.Read(out)

	// Write wraps past the end of the backing array.
	if n := rb.Write([]byte("ghij")); n != 4 {
		t.Fatalf("expected 4 bytes written, got %d", n)
	}

	out = make([]byte, 6)
	if n := rb.Read(out); n != 6 {
		t.Fatalf("expected 6 bytes read, got %d", n)
	}
	if string(out) != "efghij" {
		t.Errorf("unexpected wrapped content %q", out)
	}
}

func TestRingBuffer_FullRejectsWrites(t *testing.T) {
	rb := NewRingBuffer(4)
	if n := rb.Write([]byte("abcdef")); n != 4 {
		t.Fatalf("expected 4 bytes written into full buffer, got %d", n)
	}
	if n := rb.Write([]byte("x")); n != 0 {
		t.Errorf("expected 0 bytes written when full, got %d", n)
	}
	if rb.Buffered() != 4 {
		t.Errorf("expected 4 buffered, got %d", rb.Buffered())
	}
}

func TestRingBuffer_Clear(t *testing.T) {
	rb := NewRingBuffer(8)
	rb.Write([]byte("abc"))
	rb.Clear()

	if rb.Buffered() != 0 {
		t.Errorf("expected empty buffer after clear, got %d", rb.Buffered())
	}
	out := make([]byte, 3)
	if n := rb.Read(out); n != 0 {
		t.Errorf("expected no bytes after clear, got %d", n)
	}
}
