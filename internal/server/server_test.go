package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sezerdalgic/podcastmafya/internal/export"
	"github.com/sezerdalgic/podcastmafya/internal/model"
	"github.com/sezerdalgic/podcastmafya/internal/player"
	"github.com/sezerdalgic/podcastmafya/internal/showrunner"
	"github.com/sezerdalgic/podcastmafya/internal/store"
)

// --- Fakes ---

type fakeRepo struct {
	characters map[string]model.Character
	programs   map[string]model.Program
	episodes   map[string]model.Episode
	users      map[string]model.User

	distEpisode  string
	distPlatform model.Platform
	distInfo     model.DistributionInfo
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		characters: map[string]model.Character{},
		programs:   map[string]model.Program{},
		episodes:   map[string]model.Episode{},
		users:      map[string]model.User{},
	}
}

func (f *fakeRepo) ListCharacters(ctx context.Context) ([]model.Character, error) {
	out := []model.Character{}
	for _, c := range f.characters {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeRepo) GetCharacter(ctx context.Context, id string) (*model.Character, error) {
	c, ok := f.characters[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (f *fakeRepo) SaveCharacter(ctx context.Context, c *model.Character) error {
	f.characters[c.ID] = *c
	return nil
}

func (f *fakeRepo) DeleteCharacter(ctx context.Context, id string) error {
	if _, ok := f.characters[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.characters, id)
	return nil
}

func (f *fakeRepo) ListPrograms(ctx context.Context) ([]model.Program, error) {
	out := []model.Program{}
	for _, p := range f.programs {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeRepo) GetProgram(ctx context.Context, id string) (*model.Program, error) {
	p, ok := f.programs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (f *fakeRepo) SaveProgram(ctx context.Context, p *model.Program) error {
	f.programs[p.ID] = *p
	return nil
}

func (f *fakeRepo) DeleteProgram(ctx context.Context, id string) error {
	delete(f.programs, id)
	return nil
}

func (f *fakeRepo) ListEpisodes(ctx context.Context) ([]model.Episode, error) {
	out := []model.Episode{}
	for _, e := range f.episodes {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeRepo) GetEpisode(ctx context.Context, id string) (*model.Episode, error) {
	e, ok := f.episodes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &e, nil
}

func (f *fakeRepo) SaveEpisode(ctx context.Context, e *model.Episode) error {
	f.episodes[e.ID] = *e
	return nil
}

func (f *fakeRepo) DeleteEpisode(ctx context.Context, id string) error {
	if _, ok := f.episodes[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.episodes, id)
	return nil
}

func (f *fakeRepo) SetDistribution(ctx context.Context, episodeID string, platform model.Platform, info model.DistributionInfo) error {
	if _, ok := f.episodes[episodeID]; !ok {
		return store.ErrNotFound
	}
	f.distEpisode = episodeID
	f.distPlatform = platform
	f.distInfo = info
	return nil
}

func (f *fakeRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	out := []model.User{}
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeRepo) GetUser(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (f *fakeRepo) SaveUser(ctx context.Context, u *model.User) error {
	f.users[u.ID] = *u
	return nil
}

func (f *fakeRepo) DeleteUser(ctx context.Context, id string) error {
	delete(f.users, id)
	return nil
}

type fakeCreator struct {
	lastReq showrunner.Request
	episode *model.Episode
	err     error
}

func (f *fakeCreator) CreateEpisode(ctx context.Context, req showrunner.Request) (*model.Episode, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.episode, nil
}

type fakeExporter struct {
	wav      []byte
	filename string
	err      error
}

func (f *fakeExporter) Export(ctx context.Context, ep *model.Episode, chars []model.Character) ([]byte, string, error) {
	return f.wav, f.filename, f.err
}

type fakePlayer struct {
	loaded    *model.Episode
	loadChars []model.Character
	playing   bool
	seekTo    int
	seekErr   error
}

func (f *fakePlayer) Load(ep *model.Episode, chars []model.Character) error {
	f.loaded = ep
	f.loadChars = chars
	return nil
}

func (f *fakePlayer) Play() error {
	f.playing = true
	return nil
}

func (f *fakePlayer) Pause() { f.playing = false }

func (f *fakePlayer) PlayFrom(index int) error {
	if f.seekErr != nil {
		return f.seekErr
	}
	f.seekTo = index
	f.playing = true
	return nil
}

func (f *fakePlayer) Status() player.Status {
	st := player.Status{LineIndex: -1, Playing: f.playing}
	if f.loaded != nil {
		st.EpisodeID = f.loaded.ID
	}
	return st
}

func newTestServer(repo *fakeRepo, creator *fakeCreator, exp *fakeExporter, p *fakePlayer) *testClient {
	if creator == nil {
		creator = &fakeCreator{}
	}
	if exp == nil {
		exp = &fakeExporter{}
	}
	if p == nil {
		p = &fakePlayer{}
	}
	return &testClient{h: New(repo, creator, exp, p, nil, nil, nil).Routes()}
}

type testClient struct{ h http.Handler }

func (c *testClient) do(t *testing.T, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	c.h.ServeHTTP(w, r)
	return w
}

type fakeCleaner struct {
	deleted []string
}

func (f *fakeCleaner) Delete(ctx context.Context, episodeID string) error {
	f.deleted = append(f.deleted, episodeID)
	return nil
}

// --- Tests ---

func TestHealth(t *testing.T) {
	srv := newTestServer(newFakeRepo(), nil, nil, nil)
	w := srv.do(t, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestCharacterCRUD(t *testing.T) {
	repo := newFakeRepo()
	srv := newTestServer(repo, nil, nil, nil)

	w := srv.do(t, "POST", "/api/characters", `{"name":"Moff","voice":"Fenrir"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", w.Code)
	}
	var created model.Character
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Error("create did not assign an id")
	}

	w = srv.do(t, "GET", "/api/characters/"+created.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", w.Code)
	}

	w = srv.do(t, "PUT", "/api/characters/"+created.ID, `{"name":"Moff II","voice":"Fenrir"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200", w.Code)
	}
	if repo.characters[created.ID].Name != "Moff II" {
		t.Errorf("update not persisted, name = %q", repo.characters[created.ID].Name)
	}

	w = srv.do(t, "DELETE", "/api/characters/"+created.ID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", w.Code)
	}

	w = srv.do(t, "GET", "/api/characters/"+created.ID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", w.Code)
	}
}

func TestDeleteEpisodeCleansAudio(t *testing.T) {
	repo := newFakeRepo()
	repo.episodes["ep1"] = model.Episode{ID: "ep1"}
	cleaner := &fakeCleaner{}
	srv := &testClient{h: New(repo, &fakeCreator{}, &fakeExporter{}, &fakePlayer{}, cleaner, nil, nil).Routes()}

	w := srv.do(t, "DELETE", "/api/episodes/ep1", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if len(cleaner.deleted) != 1 || cleaner.deleted[0] != "ep1" {
		t.Errorf("blob cleanup not invoked: %v", cleaner.deleted)
	}
}

func TestCreateEpisodeDelegates(t *testing.T) {
	repo := newFakeRepo()
	creator := &fakeCreator{episode: &model.Episode{ID: "ep1", Title: "Pilot"}}
	srv := newTestServer(repo, creator, nil, nil)

	w := srv.do(t, "POST", "/api/episodes", `{"programId":"p1","characterIds":["a","b"],"topic":"AI art"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if creator.lastReq.ProgramID != "p1" || len(creator.lastReq.CharacterIDs) != 2 {
		t.Errorf("request not forwarded: %+v", creator.lastReq)
	}
	if creator.lastReq.InputType != model.InputTopic {
		t.Errorf("input type = %q, want default topic", creator.lastReq.InputType)
	}
}

func TestCreateEpisodeRejectsIncomplete(t *testing.T) {
	srv := newTestServer(newFakeRepo(), &fakeCreator{}, nil, nil)
	w := srv.do(t, "POST", "/api/episodes", `{"topic":"no cast"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSetDistribution(t *testing.T) {
	repo := newFakeRepo()
	repo.episodes["ep1"] = model.Episode{ID: "ep1"}
	srv := newTestServer(repo, nil, nil, nil)

	w := srv.do(t, "PUT", "/api/episodes/ep1/distribution/spotify", `{"status":"uploaded","url":"https://open.spotify.com/x"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if repo.distPlatform != model.PlatformSpotify || repo.distInfo.Status != model.StatusUploaded {
		t.Errorf("distribution not persisted: %v %+v", repo.distPlatform, repo.distInfo)
	}

	w = srv.do(t, "PUT", "/api/episodes/ep1/distribution/myspace", `{"status":"uploaded"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown platform status = %d, want 400", w.Code)
	}
}

func TestExport(t *testing.T) {
	repo := newFakeRepo()
	repo.episodes["ep1"] = model.Episode{ID: "ep1", Title: "Pilot"}
	exp := &fakeExporter{wav: []byte("RIFFdata"), filename: "Pilot.wav"}
	srv := newTestServer(repo, nil, exp, nil)

	w := srv.do(t, "GET", "/api/episodes/ep1/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="Pilot.wav"`) {
		t.Errorf("content disposition = %q", cd)
	}
	if !bytes.Equal(w.Body.Bytes(), exp.wav) {
		t.Error("body is not the rendered WAV")
	}
}

func TestExportNoAudio(t *testing.T) {
	repo := newFakeRepo()
	repo.episodes["ep1"] = model.Episode{ID: "ep1"}
	exp := &fakeExporter{err: export.ErrNoAudioAvailable}
	srv := newTestServer(repo, nil, exp, nil)

	w := srv.do(t, "GET", "/api/episodes/ep1/export", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}

func TestPlayLoadsEpisode(t *testing.T) {
	repo := newFakeRepo()
	repo.characters["a"] = model.Character{ID: "a", Name: "Moff"}
	repo.episodes["ep1"] = model.Episode{ID: "ep1", Characters: []string{"a", "gone"}}
	p := &fakePlayer{}
	srv := newTestServer(repo, nil, nil, p)

	w := srv.do(t, "POST", "/api/player/ep1/play", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if p.loaded == nil || p.loaded.ID != "ep1" {
		t.Fatal("episode not loaded into the engine")
	}
	// missing cast members are skipped, not fatal
	if len(p.loadChars) != 1 || p.loadChars[0].ID != "a" {
		t.Errorf("loaded cast = %+v", p.loadChars)
	}
	if !p.playing {
		t.Error("engine not playing")
	}

	// playing again must not reload (state preserved)
	p.loaded = nil
	repo.episodes["ep1"] = model.Episode{ID: "ep1"}
	w = srv.do(t, "POST", "/api/player/ep1/play", "")
	if w.Code != http.StatusOK {
		t.Fatalf("re-play status = %d", w.Code)
	}
}

func TestPlayUnknownEpisode(t *testing.T) {
	srv := newTestServer(newFakeRepo(), nil, nil, &fakePlayer{})
	w := srv.do(t, "POST", "/api/player/nope/play", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestSeek(t *testing.T) {
	repo := newFakeRepo()
	repo.episodes["ep1"] = model.Episode{ID: "ep1"}
	p := &fakePlayer{}
	srv := newTestServer(repo, nil, nil, p)

	w := srv.do(t, "POST", "/api/player/ep1/seek", `{"lineIndex":3}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if p.seekTo != 3 {
		t.Errorf("seek index = %d, want 3", p.seekTo)
	}

	p.seekErr = player.ErrBadIndex
	w = srv.do(t, "POST", "/api/player/ep1/seek", `{"lineIndex":99}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad index status = %d, want 400", w.Code)
	}
}

func TestPauseAndStatus(t *testing.T) {
	p := &fakePlayer{playing: true}
	srv := newTestServer(newFakeRepo(), nil, nil, p)

	w := srv.do(t, "POST", "/api/player/ep1/pause", "")
	if w.Code != http.StatusOK {
		t.Fatalf("pause status = %d", w.Code)
	}
	if p.playing {
		t.Error("engine still playing after pause")
	}

	w = srv.do(t, "GET", "/api/player/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d", w.Code)
	}
	var st player.Status
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Playing {
		t.Error("status reports playing after pause")
	}
}
