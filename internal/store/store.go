// Package store is the MongoDB persistence layer for the podcast network.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sezerdalgic/podcastmafya/internal/model"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

const (
	charactersCol = "characters"
	programsCol   = "programs"
	episodesCol   = "episodes"
	usersCol      = "users"
)

// Store wraps a Mongo database with typed CRUD operations.
type Store struct {
	db *mongo.Database
}

// Connect dials MongoDB and returns a Store bound to the given database.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Store{db: client.Database(dbName)}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

// --- Characters ---

func (s *Store) ListCharacters(ctx context.Context) ([]model.Character, error) {
	return listAll[model.Character](ctx, s.db.Collection(charactersCol), bson.D{})
}

func (s *Store) GetCharacter(ctx context.Context, id string) (*model.Character, error) {
	return getByID[model.Character](ctx, s.db.Collection(charactersCol), id)
}

func (s *Store) SaveCharacter(ctx context.Context, c *model.Character) error {
	return upsert(ctx, s.db.Collection(charactersCol), c.ID, c)
}

func (s *Store) DeleteCharacter(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db.Collection(charactersCol), id)
}

// --- Programs ---

func (s *Store) ListPrograms(ctx context.Context) ([]model.Program, error) {
	return listAll[model.Program](ctx, s.db.Collection(programsCol), bson.D{})
}

func (s *Store) GetProgram(ctx context.Context, id string) (*model.Program, error) {
	return getByID[model.Program](ctx, s.db.Collection(programsCol), id)
}

func (s *Store) SaveProgram(ctx context.Context, p *model.Program) error {
	return upsert(ctx, s.db.Collection(programsCol), p.ID, p)
}

func (s *Store) DeleteProgram(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db.Collection(programsCol), id)
}

// --- Episodes ---

// ListEpisodes returns all episodes, newest first.
func (s *Store) ListEpisodes(ctx context.Context) ([]model.Episode, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := s.db.Collection(episodesCol).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find episodes: %w", err)
	}
	var out []model.Episode
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode episodes: %w", err)
	}
	return out, nil
}

func (s *Store) GetEpisode(ctx context.Context, id string) (*model.Episode, error) {
	return getByID[model.Episode](ctx, s.db.Collection(episodesCol), id)
}

func (s *Store) SaveEpisode(ctx context.Context, e *model.Episode) error {
	return upsert(ctx, s.db.Collection(episodesCol), e.ID, e)
}

func (s *Store) DeleteEpisode(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db.Collection(episodesCol), id)
}

// SetLineAudioURL promotes a script line from cached payload to durable
// URL: sets audio_url and clears audio_data in one update. Safe to call
// more than once for the same line.
func (s *Store) SetLineAudioURL(ctx context.Context, episodeID, lineID, url string) error {
	res, err := s.db.Collection(episodesCol).UpdateOne(ctx,
		bson.M{"_id": episodeID, "script._id": lineID},
		bson.M{"$set": bson.M{
			"script.$.audio_url":  url,
			"script.$.audio_data": "",
		}},
	)
	if err != nil {
		return fmt.Errorf("set line audio url: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("episode %s line %s: %w", episodeID, lineID, ErrNotFound)
	}
	return nil
}

// SetLineAudioData stores the transient cached payload for a line.
func (s *Store) SetLineAudioData(ctx context.Context, episodeID, lineID, data string) error {
	res, err := s.db.Collection(episodesCol).UpdateOne(ctx,
		bson.M{"_id": episodeID, "script._id": lineID},
		bson.M{"$set": bson.M{"script.$.audio_data": data}},
	)
	if err != nil {
		return fmt.Errorf("set line audio data: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("episode %s line %s: %w", episodeID, lineID, ErrNotFound)
	}
	return nil
}

// SetDistribution updates one platform record on an episode.
func (s *Store) SetDistribution(ctx context.Context, episodeID string, platform model.Platform, info model.DistributionInfo) error {
	res, err := s.db.Collection(episodesCol).UpdateOne(ctx,
		bson.M{"_id": episodeID},
		bson.M{"$set": bson.M{"distribution." + string(platform): info}},
	)
	if err != nil {
		return fmt.Errorf("set distribution: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("episode %s: %w", episodeID, ErrNotFound)
	}
	return nil
}

// --- Users ---

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	return listAll[model.User](ctx, s.db.Collection(usersCol), bson.D{})
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	return getByID[model.User](ctx, s.db.Collection(usersCol), id)
}

func (s *Store) SaveUser(ctx context.Context, u *model.User) error {
	return upsert(ctx, s.db.Collection(usersCol), u.ID, u)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db.Collection(usersCol), id)
}

// --- Generic helpers ---

func listAll[T any](ctx context.Context, col *mongo.Collection, filter bson.D) ([]T, error) {
	cur, err := col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", col.Name(), err)
	}
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", col.Name(), err)
	}
	return out, nil
}

func getByID[T any](ctx context.Context, col *mongo.Collection, id string) (*T, error) {
	var doc T
	err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s %s: %w", col.Name(), id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", col.Name(), id, err)
	}
	return &doc, nil
}

func upsert(ctx context.Context, col *mongo.Collection, id string, doc any) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := col.ReplaceOne(ctx, bson.M{"_id": id}, doc, opts); err != nil {
		return fmt.Errorf("save %s %s: %w", col.Name(), id, err)
	}
	return nil
}

func deleteByID(ctx context.Context, col *mongo.Collection, id string) error {
	if _, err := col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete %s %s: %w", col.Name(), id, err)
	}
	return nil
}
