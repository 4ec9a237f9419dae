package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/sezerdalgic/podcastmafya/internal/export"
	"github.com/sezerdalgic/podcastmafya/internal/model"
	"github.com/sezerdalgic/podcastmafya/internal/showrunner"
)

// --- Characters ---

func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	chars, err := s.repo.ListCharacters(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chars)
}

func (s *Server) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	c, err := s.repo.GetCharacter(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	var c model.Character
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := s.repo.SaveCharacter(r.Context(), &c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCharacter(w http.ResponseWriter, r *http.Request) {
	var c model.Character
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.ID = mux.Vars(r)["id"]
	if err := s.repo.SaveCharacter(r.Context(), &c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCharacter(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteCharacter(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Programs ---

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := s.repo.ListPrograms(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, programs)
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	p, err := s.repo.GetProgram(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	var p model.Program
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.repo.SaveProgram(r.Context(), &p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdateProgram(w http.ResponseWriter, r *http.Request) {
	var p model.Program
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p.ID = mux.Vars(r)["id"]
	if err := s.repo.SaveProgram(r.Context(), &p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProgram(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteProgram(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Users ---

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.repo.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.repo.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var u model.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if err := s.repo.SaveUser(r.Context(), &u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var u model.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	u.ID = mux.Vars(r)["id"]
	if err := s.repo.SaveUser(r.Context(), &u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Episodes ---

func (s *Server) handleListEpisodes(w http.ResponseWriter, r *http.Request) {
	episodes, err := s.repo.ListEpisodes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, episodes)
}

func (s *Server) handleGetEpisode(w http.ResponseWriter, r *http.Request) {
	ep, err := s.repo.GetEpisode(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ep)
}

func (s *Server) handleCreateEpisode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProgramID    string          `json:"programId"`
		CharacterIDs []string        `json:"characterIds"`
		Topic        string          `json:"topic"`
		InputType    model.InputType `json:"inputType"`
		NewsContent  string          `json:"newsContent"`
		CoverImage   string          `json:"coverImage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ProgramID == "" || len(req.CharacterIDs) == 0 {
		http.Error(w, "programId and characterIds are required", http.StatusBadRequest)
		return
	}
	if req.InputType == "" {
		req.InputType = model.InputTopic
	}

	ep, err := s.creator.CreateEpisode(r.Context(), showrunner.Request{
		ProgramID:    req.ProgramID,
		CharacterIDs: req.CharacterIDs,
		Topic:        req.Topic,
		InputType:    req.InputType,
		NewsContent:  req.NewsContent,
		CoverImage:   req.CoverImage,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ep)
}

func (s *Server) handleDeleteEpisode(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.repo.DeleteEpisode(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	// stored line audio goes with the episode; failures only log since
	// the catalog record is already gone
	if s.cleaner != nil {
		if err := s.cleaner.Delete(r.Context(), id); err != nil {
			log.Printf("episode %s: audio cleanup: %v", id, err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetDistribution(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	platform := model.Platform(vars["platform"])
	if !model.ValidPlatform(platform) {
		http.Error(w, "unknown platform", http.StatusBadRequest)
		return
	}

	var info model.DistributionInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if info.Status == "" {
		info.Status = model.StatusDraft
	}

	if err := s.repo.SetDistribution(r.Context(), vars["id"], platform, info); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"platform": platform, "info": info})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ep, err := s.repo.GetEpisode(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	chars, err := s.episodeCharacters(r, ep)
	if err != nil {
		writeError(w, err)
		return
	}

	wav, filename, err := s.exporter.Export(r.Context(), ep, chars)
	if err != nil {
		if errors.Is(err, export.ErrNoAudioAvailable) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(wav)))
	if _, err := w.Write(wav); err != nil {
		log.Printf("export write: %v", err)
	}
}

// --- Player ---

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	if err := s.ensureLoaded(r, mux.Vars(r)["episodeID"]); err != nil {
		writeError(w, err)
		return
	}
	if err := s.player.Play(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.player.Status())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.player.Pause()
	writeJSON(w, http.StatusOK, s.player.Status())
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LineIndex int `json:"lineIndex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.ensureLoaded(r, mux.Vars(r)["episodeID"]); err != nil {
		writeError(w, err)
		return
	}
	if err := s.player.PlayFrom(req.LineIndex); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.player.Status())
}

func (s *Server) handlePlayerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.player.Status())
}

// ensureLoaded points the engine at the requested episode. A play or
// seek on the episode already loaded keeps its playback state.
func (s *Server) ensureLoaded(r *http.Request, episodeID string) error {
	if s.player.Status().EpisodeID == episodeID {
		return nil
	}
	ep, err := s.repo.GetEpisode(r.Context(), episodeID)
	if err != nil {
		return err
	}
	chars, err := s.episodeCharacters(r, ep)
	if err != nil {
		return err
	}
	return s.player.Load(ep, chars)
}

// episodeCharacters loads the cast of an episode. Characters removed
// from the catalog after the episode was made are skipped; their lines
// are treated as having no speaker downstream.
func (s *Server) episodeCharacters(r *http.Request, ep *model.Episode) ([]model.Character, error) {
	chars := make([]model.Character, 0, len(ep.Characters))
	for _, id := range ep.Characters {
		c, err := s.repo.GetCharacter(r.Context(), id)
		if err != nil {
			log.Printf("episode %s: character %s unavailable: %v", ep.ID, id, err)
			continue
		}
		chars = append(chars, *c)
	}
	return chars, nil
}
