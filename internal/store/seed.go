package store

import (
	"context"
	"fmt"
	"log"

	"github.com/sezerdalgic/podcastmafya/internal/model"
)

var seedCharacters = []model.Character{
	{
		ID:              "moff",
		Name:            "Moff",
		Voice:           "Fenrir",
		AvatarURL:       "https://picsum.photos/seed/moff/200/200",
		CorePersonality: "Energetic, skeptical, values fairness but loves a good conspiracy theory. Speaks with high energy radio-host vibes.",
		MemoryDepth:     model.MemoryDeep,
		Memory: model.CharacterMemory{
			Relationships: map[string]model.Relationship{},
		},
	},
	{
		ID:              "pico",
		Name:            "Pico",
		Voice:           "Kore",
		AvatarURL:       "https://picsum.photos/seed/pico/200/200",
		CorePersonality: "Analytical, optimistic about technology, calm and fact-focused. Often corrects Moff's wild theories politely.",
		MemoryDepth:     model.MemoryMedium,
		Memory: model.CharacterMemory{
			Relationships: map[string]model.Relationship{},
		},
	},
	{
		ID:              "alex",
		Name:            "Alex",
		Voice:           "Puck",
		AvatarURL:       "https://picsum.photos/seed/alex/200/200",
		CorePersonality: "Casual, witty, pop-culture obsessed. Brings complex topics down to earth with memes and metaphors.",
		MemoryDepth:     model.MemoryShallow,
		Memory: model.CharacterMemory{
			Relationships: map[string]model.Relationship{},
		},
	},
}

var seedPrograms = []model.Program{
	{
		ID:            "yarim-hakli",
		Name:          "Yarım Haklı",
		Description:   "A debate show where two sides discuss controversial topics. Neither is fully right.",
		Format:        "Energetic debate. Host asks tough questions. Closing requires a call to action for voting.",
		CoverImage:    "https://picsum.photos/seed/yarim/800/400",
		DefaultHostID: "moff",
		ColorClass:    "from-orange-500 to-red-600",
		Roles: model.ProgramRoles{
			Host:   model.ProgramRole{Name: "Moderator", Responsibilities: []string{"Open show", "Keep time", "Press for answers"}},
			CoHost: &model.ProgramRole{Name: "Debater", Responsibilities: []string{"Counter arguments", "Provide data"}},
		},
	},
	{
		ID:            "tech-pulse",
		Name:          "Tech Pulse",
		Description:   "Deep dive into emerging technology and its impact on humanity.",
		Format:        "Analytical, slower paced, interview style. Focus on technical details and future implications.",
		CoverImage:    "https://picsum.photos/seed/tech/800/400",
		DefaultHostID: "pico",
		ColorClass:    "from-blue-500 to-cyan-600",
		Roles: model.ProgramRoles{
			Host:  model.ProgramRole{Name: "Lead Analyst", Responsibilities: []string{"Explain concepts", "Interview guest"}},
			Guest: &model.ProgramRole{Name: "Expert", Responsibilities: []string{"Provide deep insight", "Share experiences"}},
		},
	},
}

// SeedIfEmpty inserts the starter characters and programs on first run.
func (s *Store) SeedIfEmpty(ctx context.Context) error {
	chars, err := s.ListCharacters(ctx)
	if err != nil {
		return fmt.Errorf("seed check: %w", err)
	}
	progs, err := s.ListPrograms(ctx)
	if err != nil {
		return fmt.Errorf("seed check: %w", err)
	}
	if len(chars) > 0 || len(progs) > 0 {
		return nil
	}

	log.Println("Database empty, seeding starter characters and programs")
	for i := range seedCharacters {
		if err := s.SaveCharacter(ctx, &seedCharacters[i]); err != nil {
			return err
		}
	}
	for i := range seedPrograms {
		if err := s.SaveProgram(ctx, &seedPrograms[i]); err != nil {
			return err
		}
	}
	return nil
}
