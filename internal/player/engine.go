// Package player drives sequential episode playback: one line at a
// time, in script order, with automatic advance on completion.
package player

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/sezerdalgic/podcastmafya/internal/audio"
	"github.com/sezerdalgic/podcastmafya/internal/model"
)

// ErrClosed is returned for operations on a disposed engine.
var ErrClosed = errors.New("player closed")

// ErrNoEpisode is returned when no episode is loaded.
var ErrNoEpisode = errors.New("no episode loaded")

// ErrBadIndex is returned for a seek outside the script.
var ErrBadIndex = errors.New("line index out of range")

// LineResolver obtains a line's float samples (see internal/resolver).
type LineResolver interface {
	ResolveFloat(ctx context.Context, ep *model.Episode, line *model.ScriptLine, char *model.Character) ([]float32, error)
}

// Status is a snapshot of the engine for the status API.
type Status struct {
	EpisodeID string `json:"episode_id"`
	LineIndex int    `json:"line_index"` // -1 when no cursor
	Playing   bool   `json:"playing"`
}

// session is one playback run. Its context is the cancellation token:
// superseding or stopping the session cancels it, and the run loop
// only mutates engine state while it is still the current session.
type session struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Engine owns the single active output. Frames are 20ms int16 chunks
// pushed to Frames() at real-time rate.
type Engine struct {
	resolver LineResolver
	frameCh  chan []int16
	fallback time.Duration

	baseCtx  context.Context
	baseStop context.CancelFunc

	mu      sync.Mutex
	episode *model.Episode
	chars   map[string]*model.Character
	cursor  int
	cur     *session
	closed  bool
}

// New creates an idle engine. fallback bounds how long a line with
// failed or missing audio holds up the sequence.
func New(res LineResolver, fallback time.Duration) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		resolver: res,
		frameCh:  make(chan []int16, 100),
		fallback: fallback,
		baseCtx:  ctx,
		baseStop: cancel,
		cursor:   -1,
	}
}

// Frames returns the channel of outgoing PCM frames.
func (e *Engine) Frames() <-chan []int16 { return e.frameCh }

// Load swaps in an episode. Any active playback is hard-stopped and
// the cursor reset.
func (e *Engine) Load(ep *model.Episode, chars []model.Character) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.stopLocked()
	e.episode = ep
	e.chars = make(map[string]*model.Character, len(chars))
	for i := range chars {
		e.chars[chars[i].ID] = &chars[i]
	}
	e.cursor = -1
	return nil
}

// Play starts playback: at the remembered cursor if one exists,
// otherwise at line 0. No-op while already playing.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.episode == nil {
		return ErrNoEpisode
	}
	if e.cur != nil {
		return nil
	}
	start := e.cursor
	if start < 0 {
		start = 0
	}
	e.startLocked(start)
	return nil
}

// Pause hard-stops the current output and retains the cursor.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

// PlayFrom hard-stops any active output and restarts at the given line.
func (e *Engine) PlayFrom(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.episode == nil {
		return ErrNoEpisode
	}
	if index < 0 || index >= len(e.episode.Script) {
		return ErrBadIndex
	}
	e.stopLocked()
	e.startLocked(index)
	return nil
}

// Status reports the current playback state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{LineIndex: e.cursor, Playing: e.cur != nil}
	if e.episode != nil {
		st.EpisodeID = e.episode.ID
	}
	return st
}

// Close disposes the engine. In-flight output stops and no further
// auto-advance fires, even with a resolve mid-flight.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.stopLocked()
	e.baseStop()
}

// stopLocked cancels the current session. Callers hold e.mu.
func (e *Engine) stopLocked() {
	if e.cur != nil {
		e.cur.cancel()
		e.cur = nil
	}
}

// startLocked begins a new session at the given index. Callers hold e.mu.
func (e *Engine) startLocked(index int) {
	ctx, cancel := context.WithCancel(e.baseCtx)
	s := &session{ctx: ctx, cancel: cancel}
	e.cur = s
	e.cursor = index
	go e.run(s, index)
}

// run plays lines from start until the script ends or the session is
// superseded. Resolution failures skip the line after the fallback
// delay so one bad line never freezes the sequence.
func (e *Engine) run(s *session, start int) {
	ticker := time.NewTicker(audio.FrameDuration)
	defer ticker.Stop()

	for i := start; ; i++ {
		e.mu.Lock()
		if e.cur != s {
			// superseded or stopped: this session owns nothing anymore
			e.mu.Unlock()
			return
		}
		ep := e.episode
		if i >= len(ep.Script) {
			e.cursor = -1
			e.cur = nil
			e.mu.Unlock()
			return
		}
		e.cursor = i
		line := &ep.Script[i]
		char := e.chars[line.CharacterID]
		e.mu.Unlock()

		floats, err := e.resolver.ResolveFloat(s.ctx, ep, line, char)
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			log.Printf("Player: line %d (%s): %v, skipping", i, line.ID, err)
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(e.fallback):
			}
			continue
		}

		if !e.streamLine(s.ctx, ticker, audio.FloatToSamples(floats)) {
			return
		}
	}
}

// streamLine sends a line's samples as paced 20ms frames. The final
// partial frame is zero-padded to keep downstream encoders on fixed
// frame sizes. Returns false if the session was cancelled.
func (e *Engine) streamLine(ctx context.Context, ticker *time.Ticker, samples []int16) bool {
	for off := 0; off < len(samples); off += audio.FrameSize {
		end := off + audio.FrameSize
		var frame []int16
		if end <= len(samples) {
			frame = samples[off:end]
		} else {
			frame = make([]int16, audio.FrameSize)
			copy(frame, samples[off:])
		}

		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}

		select {
		case e.frameCh <- frame:
		case <-ctx.Done():
			return false
		}
	}
	return true
}
