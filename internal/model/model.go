// Package model holds the persistent data model of the podcast network:
// characters, programs, episodes and users.
package model

import "time"

// MemoryDepth controls how much of a character's history feeds the
// script prompt.
type MemoryDepth string

const (
	MemoryShallow MemoryDepth = "shallow"
	MemoryMedium  MemoryDepth = "medium"
	MemoryDeep    MemoryDepth = "deep"
	MemoryCustom  MemoryDepth = "custom"
)

// InputType selects how an episode topic is interpreted by the showrunner.
type InputType string

const (
	InputManual InputType = "manual_dialogue"
	InputNews   InputType = "news_link"
	InputTopic  InputType = "topic"
)

// UserRole is a team member's permission level.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleEditor     UserRole = "EDITOR"
)

// User is a team member of the network.
type User struct {
	ID        string   `bson:"_id" json:"id"`
	Email     string   `bson:"email" json:"email"`
	Name      string   `bson:"name" json:"name"`
	Role      UserRole `bson:"role" json:"role"`
	Avatar    string   `bson:"avatar,omitempty" json:"avatar,omitempty"`
	IsInvited bool     `bson:"is_invited,omitempty" json:"isInvited,omitempty"`
}

// Relationship tracks how two characters relate across episodes.
type Relationship struct {
	InteractionCount int    `bson:"interaction_count" json:"interactionCount"`
	Level            string `bson:"level" json:"level"`
	LastInteraction  string `bson:"last_interaction" json:"lastInteraction"`
}

// EpisodeHistoryItem is one entry in a character's episode memory.
type EpisodeHistoryItem struct {
	EpisodeID    string `bson:"episode_id" json:"episodeId"`
	ProgramName  string `bson:"program_name" json:"programName"`
	TopicSummary string `bson:"topic_summary" json:"topicSummary"`
	Date         string `bson:"date" json:"date"`
}

// CharacterMemory accumulates across generated episodes.
type CharacterMemory struct {
	TotalEpisodes  int                     `bson:"total_episodes" json:"totalEpisodes"`
	Relationships  map[string]Relationship `bson:"relationships" json:"relationships"`
	EpisodeHistory []EpisodeHistoryItem    `bson:"episode_history" json:"episodeHistory"`
}

// Character is a synthetic host.
type Character struct {
	ID              string          `bson:"_id" json:"id"`
	Name            string          `bson:"name" json:"name"`
	Voice           string          `bson:"voice" json:"voice"`
	AvatarURL       string          `bson:"avatar_url" json:"avatarUrl"`
	CorePersonality string          `bson:"core_personality" json:"corePersonality"`
	MemoryDepth     MemoryDepth     `bson:"memory_depth" json:"memoryDepth"`
	Memory          CharacterMemory `bson:"memory" json:"memory"`
}

// ProgramRole describes one role slot in a show format.
type ProgramRole struct {
	Name             string   `bson:"name" json:"name"`
	Responsibilities []string `bson:"responsibilities" json:"responsibilities"`
}

// ProgramRoles is the fixed role layout of a program.
type ProgramRoles struct {
	Host   ProgramRole  `bson:"host" json:"host"`
	CoHost *ProgramRole `bson:"co_host,omitempty" json:"coHost,omitempty"`
	Guest  *ProgramRole `bson:"guest,omitempty" json:"guest,omitempty"`
}

// Program is a show format.
type Program struct {
	ID            string       `bson:"_id" json:"id"`
	Name          string       `bson:"name" json:"name"`
	Description   string       `bson:"description" json:"description"`
	Format        string       `bson:"format" json:"format"`
	CoverImage    string       `bson:"cover_image" json:"coverImage"`
	DefaultHostID string       `bson:"default_host_id,omitempty" json:"defaultHostId,omitempty"`
	Roles         ProgramRoles `bson:"roles" json:"roles"`
	ColorClass    string       `bson:"color_class" json:"colorClass"`
}

// Episode is an ordered script plus metadata. The script order is the
// canonical playback and export order and is never reordered.
type Episode struct {
	ID           string       `bson:"_id" json:"id"`
	ProgramID    string       `bson:"program_id" json:"programId"`
	Title        string       `bson:"title" json:"title"`
	Date         time.Time    `bson:"date" json:"date"`
	Summary      string       `bson:"summary" json:"summary"`
	Characters   []string     `bson:"characters" json:"characters"`
	Script       []ScriptLine `bson:"script" json:"script"`
	IsGenerated  bool         `bson:"is_generated" json:"isGenerated"`
	CoverImage   string       `bson:"cover_image,omitempty" json:"coverImage,omitempty"`
	Distribution Distribution `bson:"distribution" json:"distribution"`
}

// Line returns the script line with the given id, or nil.
func (e *Episode) Line(lineID string) *ScriptLine {
	for i := range e.Script {
		if e.Script[i].ID == lineID {
			return &e.Script[i]
		}
	}
	return nil
}
