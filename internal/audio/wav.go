package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// WAVHeaderSize is the size of the RIFF/WAVE header we emit.
const WAVHeaderSize = 44

// ErrInvalidAudioParameters means the encoder was called with parameters
// that cannot describe a PCM stream (zero channels, zero sample rate, ...).
var ErrInvalidAudioParameters = errors.New("invalid audio parameters")

// WAVHeader builds a 44-byte RIFF/WAVE header for uncompressed PCM.
// dataSize is the size of the sample payload only, in bytes.
func WAVHeader(dataSize, sampleRate, channels, bitsPerSample int) ([]byte, error) {
	if sampleRate <= 0 || channels <= 0 || bitsPerSample <= 0 || dataSize < 0 {
		return nil, fmt.Errorf("%w: rate=%d channels=%d bits=%d data=%d",
			ErrInvalidAudioParameters, sampleRate, channels, bitsPerSample, dataSize)
	}

	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	header := make([]byte, WAVHeaderSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataSize)) // total size - 8
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // format chunk length
	binary.LittleEndian.PutUint16(header[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(bitsPerSample))

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	return header, nil
}

// EncodeWAV serializes int16 samples into a complete WAV file.
func EncodeWAV(samples []int16, sampleRate, channels, bitsPerSample int) ([]byte, error) {
	header, err := WAVHeader(len(samples)*2, sampleRate, channels, bitsPerSample)
	if err != nil {
		return nil, err
	}
	return append(header, SamplesToBytes(samples)...), nil
}
