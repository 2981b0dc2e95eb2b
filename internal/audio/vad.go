package audio

import "math"

// VADConfig tunes the local energy-based voice activity detector. It backs
// up the remote peer's turn detection: when the session runs with turn
// detection disabled, these edges still arm the auto-commit timer.
type VADConfig struct {
	EnergyThreshold float64 // RMS threshold separating speech from silence
	SilenceFrames   int     // consecutive silent frames ending an utterance
}

// DefaultVADConfig matches 20 ms frames at 8 kHz.
func DefaultVADConfig() VADConfig {
	return VADConfig{
		EnergyThreshold: 500.0,
		SilenceFrames:   25, // 500 ms
	}
}

// VAD detects speech start/stop edges in a PCM frame stream.
type VAD struct {
	cfg      VADConfig
	silent   int
	speaking bool
}

func NewVAD(cfg VADConfig) *VAD {
	if cfg.EnergyThreshold <= 0 {
		cfg.EnergyThreshold = DefaultVADConfig().EnergyThreshold
	}
	if cfg.SilenceFrames <= 0 {
		cfg.SilenceFrames = DefaultVADConfig().SilenceFrames
	}
	return &VAD{cfg: cfg}
}

// ProcessFrame consumes one frame and reports edge transitions. started is
// true on the first speech frame after silence; stopped is true once
// SilenceFrames consecutive quiet frames follow speech.
func (v *VAD) ProcessFrame(samples []int16) (started, stopped bool) {
	if RMS(samples) > v.cfg.EnergyThreshold {
		v.silent = 0
		if !v.speaking {
			v.speaking = true
			started = true
		}
		return started, false
	}

	v.silent++
	if v.speaking && v.silent >= v.cfg.SilenceFrames {
		v.speaking = false
		v.silent = 0
		stopped = true
	}
	return false, stopped
}

// Speaking reports whether the detector is currently inside an utterance.
func (v *VAD) Speaking() bool {
	return v.speaking
}

// Reset returns the detector to its initial silent state.
func (v *VAD) Reset() {
	v.silent = 0
	v.speaking = false
}

// RMS computes the root-mean-square energy of a PCM frame.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		f := float64(s)
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(samples)))
}
