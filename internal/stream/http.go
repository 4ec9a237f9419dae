package stream

import (
	"log"
	"math"
	"net/http"

	"github.com/sezerdalgic/podcastmafya/internal/audio"
)

// HTTPHandler serves live playback as a streaming WAV. The header
// advertises the maximum data length since the stream is open-ended.
type HTTPHandler struct {
	broadcaster *Broadcaster
}

// NewHTTPHandler creates an HTTP stream handler.
func NewHTTPHandler(b *Broadcaster) *HTTPHandler {
	return &HTTPHandler{broadcaster: b}
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Connection", "close")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	header, err := audio.WAVHeader(math.MaxUint32-audio.WAVHeaderSize, audio.SampleRate, audio.Channels, audio.BitDepth)
	if err != nil {
		http.Error(w, "header error", http.StatusInternalServerError)
		return
	}
	if _, err := w.Write(header); err != nil {
		return
	}
	flusher.Flush()

	listener := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(listener)

	log.Printf("HTTP listener connected (total: %d)", h.broadcaster.ListenerCount())
	defer log.Printf("HTTP listener disconnected")

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-listener.Done():
			return
		case frame, ok := <-listener.C:
			if !ok {
				return
			}
			if _, err := w.Write(audio.SamplesToBytes(frame)); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
