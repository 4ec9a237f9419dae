package audio

import "time"

// All line audio in the network is raw 16-bit signed PCM, mono, 24kHz.
// This is what the TTS service returns and what the blob store holds.
const (
	SampleRate    = 24000
	Channels      = 1
	BitDepth      = 16
	FrameDuration = 20 * time.Millisecond
	FrameSize     = 480           // samples per 20ms frame at 24kHz mono
	FrameBytes    = FrameSize * 2 // bytes per frame (int16 = 2 bytes)
)
