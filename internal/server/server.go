// Package server exposes the REST API: catalog CRUD, episode generation,
// playback control, distribution tracking and WAV export.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sezerdalgic/podcastmafya/internal/model"
	"github.com/sezerdalgic/podcastmafya/internal/player"
	"github.com/sezerdalgic/podcastmafya/internal/showrunner"
	"github.com/sezerdalgic/podcastmafya/internal/store"
)

// Repository is the persistence surface the handlers need.
type Repository interface {
	ListCharacters(ctx context.Context) ([]model.Character, error)
	GetCharacter(ctx context.Context, id string) (*model.Character, error)
	SaveCharacter(ctx context.Context, c *model.Character) error
	DeleteCharacter(ctx context.Context, id string) error

	ListPrograms(ctx context.Context) ([]model.Program, error)
	GetProgram(ctx context.Context, id string) (*model.Program, error)
	SaveProgram(ctx context.Context, p *model.Program) error
	DeleteProgram(ctx context.Context, id string) error

	ListEpisodes(ctx context.Context) ([]model.Episode, error)
	GetEpisode(ctx context.Context, id string) (*model.Episode, error)
	SaveEpisode(ctx context.Context, e *model.Episode) error
	DeleteEpisode(ctx context.Context, id string) error
	SetDistribution(ctx context.Context, episodeID string, platform model.Platform, info model.DistributionInfo) error

	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	SaveUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, id string) error
}

// EpisodeCreator generates a full episode from a creation request.
type EpisodeCreator interface {
	CreateEpisode(ctx context.Context, req showrunner.Request) (*model.Episode, error)
}

// EpisodeExporter renders a finished episode into a WAV download.
type EpisodeExporter interface {
	Export(ctx context.Context, ep *model.Episode, chars []model.Character) ([]byte, string, error)
}

// Player is the playback engine surface the control endpoints drive.
type Player interface {
	Load(ep *model.Episode, chars []model.Character) error
	Play() error
	Pause()
	PlayFrom(index int) error
	Status() player.Status
}

// AudioCleaner removes an episode's stored line audio.
type AudioCleaner interface {
	Delete(ctx context.Context, episodeID string) error
}

// Server wires the API routes to their backing services.
type Server struct {
	repo     Repository
	creator  EpisodeCreator
	exporter EpisodeExporter
	player   Player
	cleaner  AudioCleaner

	// audio stream endpoints, mounted as-is
	streamHandler http.Handler
	offerHandler  http.Handler
}

// New builds a Server. The cleaner and stream handlers may be nil; a
// nil cleaner skips blob cleanup on episode delete, nil stream handlers
// leave /stream and /offer unregistered (useful in tests).
func New(repo Repository, creator EpisodeCreator, exporter EpisodeExporter, p Player, cleaner AudioCleaner, streamHandler, offerHandler http.Handler) *Server {
	return &Server{
		repo:          repo,
		creator:       creator,
		exporter:      exporter,
		player:        p,
		cleaner:       cleaner,
		streamHandler: streamHandler,
		offerHandler:  offerHandler,
	}
}

// Routes builds the full route table.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	r.HandleFunc("/api/characters", s.handleListCharacters).Methods("GET")
	r.HandleFunc("/api/characters", s.handleCreateCharacter).Methods("POST")
	r.HandleFunc("/api/characters/{id}", s.handleGetCharacter).Methods("GET")
	r.HandleFunc("/api/characters/{id}", s.handleUpdateCharacter).Methods("PUT")
	r.HandleFunc("/api/characters/{id}", s.handleDeleteCharacter).Methods("DELETE")

	r.HandleFunc("/api/programs", s.handleListPrograms).Methods("GET")
	r.HandleFunc("/api/programs", s.handleCreateProgram).Methods("POST")
	r.HandleFunc("/api/programs/{id}", s.handleGetProgram).Methods("GET")
	r.HandleFunc("/api/programs/{id}", s.handleUpdateProgram).Methods("PUT")
	r.HandleFunc("/api/programs/{id}", s.handleDeleteProgram).Methods("DELETE")

	r.HandleFunc("/api/users", s.handleListUsers).Methods("GET")
	r.HandleFunc("/api/users", s.handleCreateUser).Methods("POST")
	r.HandleFunc("/api/users/{id}", s.handleGetUser).Methods("GET")
	r.HandleFunc("/api/users/{id}", s.handleUpdateUser).Methods("PUT")
	r.HandleFunc("/api/users/{id}", s.handleDeleteUser).Methods("DELETE")

	r.HandleFunc("/api/episodes", s.handleListEpisodes).Methods("GET")
	r.HandleFunc("/api/episodes", s.handleCreateEpisode).Methods("POST")
	r.HandleFunc("/api/episodes/{id}", s.handleGetEpisode).Methods("GET")
	r.HandleFunc("/api/episodes/{id}", s.handleDeleteEpisode).Methods("DELETE")
	r.HandleFunc("/api/episodes/{id}/distribution/{platform}", s.handleSetDistribution).Methods("PUT")
	r.HandleFunc("/api/episodes/{id}/export", s.handleExport).Methods("GET")

	r.HandleFunc("/api/player/{episodeID}/play", s.handlePlay).Methods("POST")
	r.HandleFunc("/api/player/{episodeID}/pause", s.handlePause).Methods("POST")
	r.HandleFunc("/api/player/{episodeID}/seek", s.handleSeek).Methods("POST")
	r.HandleFunc("/api/player/status", s.handlePlayerStatus).Methods("GET")

	if s.streamHandler != nil {
		r.Handle("/stream", s.streamHandler).Methods("GET")
	}
	if s.offerHandler != nil {
		r.Handle("/offer", s.offerHandler).Methods("POST")
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, player.ErrNoEpisode), errors.Is(err, player.ErrBadIndex):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, player.ErrClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
