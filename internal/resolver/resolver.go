// Package resolver turns a script line into a ready-to-play sample
// buffer, generating and persisting audio on demand.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sezerdalgic/podcastmafya/internal/audio"
	"github.com/sezerdalgic/podcastmafya/internal/model"
)

// ErrTransfer means a network fetch or upload failed. Recoverable:
// callers skip the line and move on.
var ErrTransfer = errors.New("transfer failed")

// ErrNoAudio means no audio exists and none could be generated.
var ErrNoAudio = errors.New("no audio available")

// Generator synthesizes speech for a line of text.
type Generator interface {
	GenerateAudio(ctx context.Context, text, voice string) (string, error)
}

// Fetcher downloads a stored payload by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Uploader stores a raw PCM payload durably and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, episodeID, lineID string, pcm []byte) (string, error)
}

// Persister records line audio state in the episode store.
type Persister interface {
	SetLineAudioData(ctx context.Context, episodeID, lineID, data string) error
	SetLineAudioURL(ctx context.Context, episodeID, lineID, url string) error
}

// Resolver resolves line audio with a strict priority: durable URL,
// then cached payload, then on-demand generation.
type Resolver struct {
	gen   Generator
	fetch Fetcher
	up    Uploader
	db    Persister

	// mu guards line audio fields; the background upload mutates them
	// while playback or export may be reading.
	mu        sync.Mutex
	uploading map[string]bool // episodeID/lineID with an upload in flight

	// UploadTimeout bounds the background upload step.
	UploadTimeout time.Duration
}

// New creates a resolver.
func New(gen Generator, fetch Fetcher, up Uploader, db Persister) *Resolver {
	return &Resolver{
		gen:           gen,
		fetch:         fetch,
		up:            up,
		db:            db,
		uploading:     make(map[string]bool),
		UploadTimeout: 60 * time.Second,
	}
}

// ResolveFloat produces the line's normalized float samples for playback.
func (r *Resolver) ResolveFloat(ctx context.Context, ep *model.Episode, line *model.ScriptLine, char *model.Character) ([]float32, error) {
	src, err := r.resolveSource(ctx, ep, line, char)
	if err != nil {
		return nil, err
	}
	switch src.Kind {
	case model.SourcePersisted:
		raw, err := r.fetch.Fetch(ctx, src.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransfer, err)
		}
		return audio.BytesToFloat(raw)
	case model.SourceCached:
		return audio.DecodeBase64(src.Payload)
	default:
		return nil, ErrNoAudio
	}
}

// ResolveSamples produces the line's int16 samples for export. No
// scaling is needed there, only concatenation, so it stays in integer
// space.
func (r *Resolver) ResolveSamples(ctx context.Context, ep *model.Episode, line *model.ScriptLine, char *model.Character) ([]int16, error) {
	src, err := r.resolveSource(ctx, ep, line, char)
	if err != nil {
		return nil, err
	}
	switch src.Kind {
	case model.SourcePersisted:
		raw, err := r.fetch.Fetch(ctx, src.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransfer, err)
		}
		return audio.BytesToSamples(raw)
	case model.SourceCached:
		return audio.DecodeBase64Samples(src.Payload)
	default:
		return nil, ErrNoAudio
	}
}

// resolveSource returns the line's authoritative source, generating
// audio first when none exists. Generation fills the transient cache
// and kicks off the durability upgrade in the background.
func (r *Resolver) resolveSource(ctx context.Context, ep *model.Episode, line *model.ScriptLine, char *model.Character) (model.AudioSource, error) {
	r.mu.Lock()
	src := line.Source()
	r.mu.Unlock()

	if src.Kind != model.SourcePending {
		return src, nil
	}

	if char == nil || char.Voice == "" {
		return model.AudioSource{}, fmt.Errorf("line %s: %w", line.ID, ErrNoAudio)
	}

	payload, err := r.gen.GenerateAudio(ctx, line.Text, char.Voice)
	if err != nil {
		return model.AudioSource{}, fmt.Errorf("line %s: %w", line.ID, err)
	}

	r.mu.Lock()
	// another caller may have filled the line while we generated
	if cur := line.Source(); cur.Kind != model.SourcePending {
		r.mu.Unlock()
		return cur, nil
	}
	line.AudioData = payload
	r.mu.Unlock()

	r.startUpload(ep.ID, line, payload)

	return model.AudioSource{Kind: model.SourceCached, Payload: payload}, nil
}

// startUpload launches the durability upgrade for a freshly generated
// payload, at most once per line. Playback never waits on it.
func (r *Resolver) startUpload(episodeID string, line *model.ScriptLine, payload string) {
	key := episodeID + "/" + line.ID
	r.mu.Lock()
	if r.uploading[key] {
		r.mu.Unlock()
		return
	}
	r.uploading[key] = true
	r.mu.Unlock()

	go func() {
		defer func() {
			r.mu.Lock()
			delete(r.uploading, key)
			r.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.UploadTimeout)
		defer cancel()

		// persist the cache first so a crash before upload still
		// leaves the line playable
		if err := r.db.SetLineAudioData(ctx, episodeID, line.ID, payload); err != nil {
			log.Printf("Persist cached audio %s: %v", key, err)
		}

		samples, err := audio.DecodeBase64Samples(payload)
		if err != nil {
			log.Printf("Upload %s: bad payload: %v", key, err)
			return
		}

		url, err := r.up.Upload(ctx, episodeID, line.ID, audio.SamplesToBytes(samples))
		if err != nil {
			log.Printf("Upload %s: %v", key, err)
			return
		}

		if err := r.db.SetLineAudioURL(ctx, episodeID, line.ID, url); err != nil {
			log.Printf("Promote %s: %v", key, err)
			return
		}

		r.mu.Lock()
		line.AudioURL = url
		line.AudioData = ""
		r.mu.Unlock()
	}()
}
