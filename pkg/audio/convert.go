package audio

import "encoding/binary"

// pcm16Scale converts the int16 PCM range to normalised floats.
const pcm16Scale = 1.0 / 32768.0

// PCM16ToFloat64 converts little-endian int16 PCM bytes to normalised
// float64 samples in [-1, 1). Odd trailing bytes are ignored.
func PCM16ToFloat64(pcm []byte) []float64 {
	n := len(pcm) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		out[i] = float64(s) * pcm16Scale
	}
	return out
}

// Float32ToFloat64 widens float32 samples (the native PortAudio capture
// format) to float64.
func Float32ToFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, s := range in {
		out[i] = float64(s)
	}
	return out
}

// DownmixStereo averages interleaved stereo samples into a mono slice.
// An odd-length input drops the trailing orphan sample.
func DownmixStereo(in []float64) []float64 {
	n := len(in) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = (in[i*2] + in[i*2+1]) / 2
	}
	return out
}

// IntToFloat64 converts integer PCM samples (as produced by WAV decoders)
// holding values of the given bit depth to normalised float64. 8-bit WAV PCM
// is unsigned (0–255, silence at 128), so that depth is re-centred before
// scaling; deeper formats are signed two's complement.
func IntToFloat64(in []int, bitDepth int) []float64 {
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	bias := 0
	if bitDepth == 8 {
		bias = 128
	}
	out := make([]float64, len(in))
	for i, s := range in {
		out[i] = float64(s-bias) * scale
	}
	return out
}
