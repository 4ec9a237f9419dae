package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformedAudioData means a payload could not be interpreted as
// 16-bit PCM: invalid base64, or an odd byte count.
var ErrMalformedAudioData = errors.New("malformed audio data")

// BytesToSamples reinterprets little-endian bytes as int16 samples.
func BytesToSamples(raw []byte) ([]int16, error) {
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("%w: odd byte count %d", ErrMalformedAudioData, len(raw))
	}
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
	}
	return samples, nil
}

// SamplesToBytes converts int16 samples to little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

// BytesToFloat decodes raw 16-bit PCM bytes to normalized float samples.
// Used for audio fetched from the blob store, which is stored as raw bytes.
func BytesToFloat(raw []byte) ([]float32, error) {
	samples, err := BytesToSamples(raw)
	if err != nil {
		return nil, err
	}
	return SamplesToFloat(samples), nil
}

// DecodeBase64 decodes a base64 PCM payload (the TTS transport encoding)
// to normalized float samples in [-1, 1).
func DecodeBase64(encoded string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAudioData, err)
	}
	return BytesToFloat(raw)
}

// DecodeBase64Samples decodes a base64 PCM payload to int16 samples.
// The export path works in integer space since it only concatenates.
func DecodeBase64Samples(encoded string) ([]int16, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAudioData, err)
	}
	return BytesToSamples(raw)
}

// SamplesToFloat maps int16 samples to floats by dividing by 32768.
func SamplesToFloat(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768.0
	}
	return out
}

// FloatToSamples maps normalized floats back to int16, clamping to the
// representable range. Inverse of SamplesToFloat up to clamping.
func FloatToSamples(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, f := range samples {
		v := f * 32768.0
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i] = int16(v)
	}
	return out
}
