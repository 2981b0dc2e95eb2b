package audio

import "testing"

func loudFrame() []int16 {
	samples := make([]int16, 160)
	for i := range samples {
		samples[i] = 5000
	}
	return samples
}

func quietFrame() []int16 {
	samples := make([]int16, 160)
	for i := range samples {
		samples[i] = 10
	}
	return samples
}

func TestVAD_SpeechStartEdge(t *testing.T) {
	vad := NewVAD(VADConfig{EnergyThreshold: 500, SilenceFrames: 5})

	started, stopped := vad.ProcessFrame(loudFrame())
	if !started || stopped {
		t.Errorf("expected start edge, got started=%v stopped=%v", started, stopped)
	}

	// Continued speech must not re-emit the edge.
	started, _ = vad.ProcessFrame(loudFrame())
	if started {
		t.Error("start edge repeated during ongoing speech")
	}
	if !vad.Speaking() {
		t.Error("expected Speaking during ongoing speech")
	}
}

func TestVAD_SpeechStopAfterSilenceFrames(t *testing.T) {
	vad := NewVAD(VADConfig{EnergyThreshold: 500, SilenceFrames: 5})
	vad.ProcessFrame(loudFrame())

	for i := 0; i < 4; i++ {
		if _, stopped := vad.ProcessFrame(quietFrame()); stopped {
			t.Fatalf("stop edge too early at frame %d", i)
		}
	}
	if _, stopped := vad.ProcessFrame(quietFrame()); !stopped {
		t.Error("expected stop edge after configured silence frames")
	}
	if vad.Speaking() {
		t.Error("expected not speaking after stop edge")
	}
}

func TestVAD_SilenceOnlyNeverStops(t *testing.T) {
	vad := NewVAD(VADConfig{EnergyThreshold: 500, SilenceFrames: 3})

	for i := 0; i < 10; i++ {
		started, stopped := vad.ProcessFrame(quietFrame())
		if started || stopped {
			t.Fatalf("unexpected edge on silence-only input at frame %d", i)
		}
	}
}

func TestVAD_Reset(t *testing.T) {
	vad := NewVAD(VADConfig{EnergyThreshold: 500, SilenceFrames: 3})
	vad.ProcessFrame(loudFrame())
	vad.Reset()

	if vad.Speaking() {
		t.Error("expected silent state after reset")
	}
	if started, _ := vad.ProcessFrame(loudFrame()); !started {
		t.Error("expected a fresh start edge after reset")
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("expected 0 for empty frame, got %f", got)
	}
	flat := []int16{100, -100, 100, -100}
	if got := RMS(flat); got != 100 {
		t.Errorf("expected RMS 100, got %f", got)
	}
}
