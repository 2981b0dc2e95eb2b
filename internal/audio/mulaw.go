package audio

// G.711 μ-law encoding. The outbound media track carries PCMU, which every
// WebRTC peer must support and which matches the remote peer's g711_ulaw
// input format.

const (
	mulawBias = 0x84
	mulawClip = 32635
)

// EncodeMulaw converts a mono 16-bit PCM frame to μ-law bytes.
func EncodeMulaw(samples []int16) []byte {
	out := make([]byte, len(samples))
	for i, s := range samples {
		out[i] = LinearToMulaw(s)
	}
	return out
}

// LinearToMulaw encodes one 16-bit linear sample per ITU-T G.711.
func LinearToMulaw(sample int16) byte {
	value := int32(sample)
	sign := byte(0)
	if value < 0 {
		sign = 0x80
		value = -value
	}
	if value > mulawClip {
		value = mulawClip
	}
	value += mulawBias

	exponent := 7
	for mask := int32(0x4000); exponent > 0 && value&mask == 0; mask >>= 1 {
		exponent--
	}
	mantissa := byte((value >> (uint(exponent) + 3)) & 0x0F)
	return ^(sign | byte(exponent)<<4 | mantissa)
}
