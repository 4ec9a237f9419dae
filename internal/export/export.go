// Package export assembles a whole episode into one downloadable WAV.
package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/sezerdalgic/podcastmafya/internal/audio"
	"github.com/sezerdalgic/podcastmafya/internal/model"
)

// ErrNoAudioAvailable means not a single line had usable audio, so no
// file is produced.
var ErrNoAudioAvailable = errors.New("no audio content available")

// SampleResolver obtains a line's int16 samples (see internal/resolver).
type SampleResolver interface {
	ResolveSamples(ctx context.Context, ep *model.Episode, line *model.ScriptLine, char *model.Character) ([]int16, error)
}

// Exporter concatenates per-line audio in script order and wraps it in
// a WAV container.
type Exporter struct {
	resolver SampleResolver
}

// New creates an exporter.
func New(res SampleResolver) *Exporter {
	return &Exporter{resolver: res}
}

// Export produces the episode's WAV bytes plus the download filename.
// Lines without audio are skipped; per-line fetch failures are logged
// and that line's contribution is simply omitted.
func (x *Exporter) Export(ctx context.Context, ep *model.Episode, chars []model.Character) ([]byte, string, error) {
	byID := make(map[string]*model.Character, len(chars))
	for i := range chars {
		byID[chars[i].ID] = &chars[i]
	}

	var merged []int16
	for i := range ep.Script {
		line := &ep.Script[i]
		if !line.HasAudio() {
			continue
		}
		samples, err := x.resolver.ResolveSamples(ctx, ep, line, byID[line.CharacterID])
		if err != nil {
			log.Printf("Export: line %s: %v, omitting", line.ID, err)
			continue
		}
		merged = append(merged, samples...)
	}

	if len(merged) == 0 {
		return nil, "", ErrNoAudioAvailable
	}

	wav, err := audio.EncodeWAV(merged, audio.SampleRate, audio.Channels, audio.BitDepth)
	if err != nil {
		return nil, "", fmt.Errorf("encode wav: %w", err)
	}
	return wav, Filename(ep.Title), nil
}

// Filename derives the download name from an episode title: runs of
// non-alphanumerics become underscores, truncated to 50 characters,
// with the .wav extension.
func Filename(title string) string {
	var b strings.Builder
	for _, r := range title {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	name := b.String()
	if len(name) > 50 {
		name = name[:50]
	}
	if name == "" {
		name = "episode"
	}
	return name + ".wav"
}
