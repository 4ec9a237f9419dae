// Package showrunner turns a topic into a persisted episode: script
// generation, assembly, and character memory updates.
package showrunner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sezerdalgic/podcastmafya/internal/gemini"
	"github.com/sezerdalgic/podcastmafya/internal/model"
)

// ScriptWriter generates an episode script (see internal/gemini).
type ScriptWriter interface {
	GenerateScript(ctx context.Context, req gemini.ScriptRequest) (*gemini.ScriptResult, error)
}

// Repo is the slice of the store the showrunner needs.
type Repo interface {
	GetProgram(ctx context.Context, id string) (*model.Program, error)
	GetCharacter(ctx context.Context, id string) (*model.Character, error)
	SaveCharacter(ctx context.Context, c *model.Character) error
	SaveEpisode(ctx context.Context, e *model.Episode) error
}

// Request describes one episode to create.
type Request struct {
	ProgramID    string          `json:"programId"`
	CharacterIDs []string        `json:"characterIds"`
	Topic        string          `json:"topic"`
	InputType    model.InputType `json:"inputType"`
	NewsContent  string          `json:"newsContent,omitempty"`
	CoverImage   string          `json:"coverImage,omitempty"`
}

// Showrunner creates episodes.
type Showrunner struct {
	writer ScriptWriter
	repo   Repo
}

// New creates a showrunner.
func New(writer ScriptWriter, repo Repo) *Showrunner {
	return &Showrunner{writer: writer, repo: repo}
}

// CreateEpisode runs the full creation flow. A script generation
// failure halts this attempt and is returned to the caller; memory
// update failures only log.
func (s *Showrunner) CreateEpisode(ctx context.Context, req Request) (*model.Episode, error) {
	program, err := s.repo.GetProgram(ctx, req.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("load program: %w", err)
	}

	chars := make([]model.Character, 0, len(req.CharacterIDs))
	for _, id := range req.CharacterIDs {
		c, err := s.repo.GetCharacter(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load character %s: %w", id, err)
		}
		chars = append(chars, *c)
	}
	if len(chars) == 0 {
		return nil, fmt.Errorf("episode needs at least one character")
	}

	result, err := s.writer.GenerateScript(ctx, gemini.ScriptRequest{
		Program:     program,
		Characters:  chars,
		Topic:       req.Topic,
		InputType:   req.InputType,
		NewsContent: req.NewsContent,
	})
	if err != nil {
		return nil, fmt.Errorf("generate script: %w", err)
	}

	script := make([]model.ScriptLine, 0, len(result.Lines))
	for _, ln := range result.Lines {
		script = append(script, model.ScriptLine{
			ID:          uuid.NewString(),
			CharacterID: ln.CharacterID,
			Text:        ln.Text,
		})
	}

	cover := req.CoverImage
	if cover == "" {
		cover = program.CoverImage
	}

	ep := &model.Episode{
		ID:           uuid.NewString(),
		ProgramID:    program.ID,
		Title:        result.Title,
		Date:         time.Now().UTC(),
		Summary:      result.Summary,
		Characters:   req.CharacterIDs,
		Script:       script,
		IsGenerated:  true,
		CoverImage:   cover,
		Distribution: model.NewDistribution(),
	}

	if err := s.repo.SaveEpisode(ctx, ep); err != nil {
		return nil, fmt.Errorf("save episode: %w", err)
	}

	s.updateMemories(ctx, ep, program, chars)

	return ep, nil
}

// updateMemories records the episode in every participant's memory and
// bumps their pairwise relationship counters.
func (s *Showrunner) updateMemories(ctx context.Context, ep *model.Episode, program *model.Program, chars []model.Character) {
	date := ep.Date.Format("2006-01-02")

	for i := range chars {
		c := &chars[i]
		c.Memory.TotalEpisodes++
		c.Memory.EpisodeHistory = append([]model.EpisodeHistoryItem{{
			EpisodeID:    ep.ID,
			ProgramName:  program.Name,
			TopicSummary: ep.Summary,
			Date:         date,
		}}, c.Memory.EpisodeHistory...)

		if c.Memory.Relationships == nil {
			c.Memory.Relationships = make(map[string]model.Relationship)
		}
		for j := range chars {
			if i == j {
				continue
			}
			other := chars[j].ID
			rel := c.Memory.Relationships[other]
			rel.InteractionCount++
			rel.LastInteraction = date
			rel.Level = relationshipLevel(rel.InteractionCount)
			c.Memory.Relationships[other] = rel
		}

		if err := s.repo.SaveCharacter(ctx, c); err != nil {
			log.Printf("Memory update for %s: %v", c.ID, err)
		}
	}
}

func relationshipLevel(interactions int) string {
	switch {
	case interactions >= 10:
		return "regular partner"
	case interactions >= 3:
		return "familiar colleague"
	default:
		return "new acquaintance"
	}
}
