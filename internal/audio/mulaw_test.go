package audio

import "testing"

func TestLinearToMulaw_KnownValues(t *testing.T) {
	tests := []struct {
		sample int16
		want   byte
	}{
		{0, 0xFF},
		{-1, 0x7F},
		{32767, 0x80},
		{-32768, 0x00},
	}

	for _, tt := range tests {
		if got := LinearToMulaw(tt.sample); got != tt.want {
			t.Errorf("LinearToMulaw(%d) = %#02x, want %#02x", tt.sample, got, tt.want)
		}
	}
}

func TestLinearToMulaw_Monotonic(t *testing.T) {
	// Decoded magnitude ordering must be preserved for positive samples:
	// larger inputs never map to a larger μ-law byte (the code is inverted).
	prev := LinearToMulaw(0)
	for _, s := range []int16{4, 64, 512, 2048, 8192, 20000, 32767} {
		cur := LinearToMulaw(s)
		if cur > prev {
			t.Errorf("μ-law code increased at sample %d: %#02x > %#02x", s, cur, prev)
		}
		prev = cur
	}
}

func TestEncodeMulaw_Length(t *testing.T) {
	frame := make([]int16, 160)
	encoded := EncodeMulaw(frame)
	if len(encoded) != 160 {
		t.Errorf("expected 160 encoded bytes, got %d", len(encoded))
	}
	for i, b := range encoded {
		if b != 0xFF {
			t.Errorf("silence encoded as %#02x at index %d", b, i)
			break
		}
	}
}
