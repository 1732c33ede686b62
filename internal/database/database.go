package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mAmineChniti/StoryWeave/internal/data"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Service is the persistence contract for stories and users. Stories are
// stored as whole documents with their sentences embedded; every write
// replaces the full document, so concurrent writers on one story are
// last-write-wins.
type Service interface {
	InsertStory(ctx context.Context, story *data.Story) error
	GetStory(ctx context.Context, id primitive.ObjectID) (*data.Story, error)
	ReplaceStory(ctx context.Context, story *data.Story) error
	ListStories(ctx context.Context, filter data.StoryFilter, skip, limit int64) ([]data.Story, error)
	CountStories(ctx context.Context, filter data.StoryFilter) (int64, error)

	InsertUser(ctx context.Context, user *data.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*data.User, error)
	GetUserByNickname(ctx context.Context, nickname string) (*data.User, error)
	ReplaceUser(ctx context.Context, user *data.User) error

	EnsureIndexes(ctx context.Context) error
	Health(ctx context.Context) (map[string]string, error)
	Close(ctx context.Context) error
}

const (
	storiesCollection = "stories"
	usersCollection   = "users"

	queryTimeout  = 5 * time.Second
	healthTimeout = 1 * time.Second
)

type service struct {
	client *mongo.Client
	db     *mongo.Database
}

func New(ctx context.Context, uri, dbName string) (Service, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo: %w", err)
	}
	return &service{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

func (s *service) stories() *mongo.Collection { return s.db.Collection(storiesCollection) }
func (s *service) users() *mongo.Collection   { return s.db.Collection(usersCollection) }

func (s *service) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "nickname", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("error creating users index: %w", err)
	}

	_, err = s.stories().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "genre", Value: 1}}},
		{Keys: bson.D{{Key: "sentences.author", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("error creating stories indexes: %w", err)
	}
	return nil
}

func (s *service) InsertStory(ctx context.Context, story *data.Story) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if story.ID.IsZero() {
		story.ID = primitive.NewObjectID()
	}
	story.Normalize()
	if _, err := s.stories().InsertOne(ctx, story); err != nil {
		return fmt.Errorf("error inserting story: %w", err)
	}
	return nil
}

func (s *service) GetStory(ctx context.Context, id primitive.ObjectID) (*data.Story, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var story data.Story
	err := s.stories().FindOne(ctx, bson.M{"_id": id}).Decode(&story)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, data.ErrStoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching story: %w", err)
	}
	story.Normalize()
	return &story, nil
}

func (s *service) ReplaceStory(ctx context.Context, story *data.Story) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	story.Normalize()
	res, err := s.stories().ReplaceOne(ctx, bson.M{"_id": story.ID}, story)
	if err != nil {
		return fmt.Errorf("error replacing story: %w", err)
	}
	if res.MatchedCount == 0 {
		return data.ErrStoryNotFound
	}
	return nil
}

func (s *service) ListStories(ctx context.Context, filter data.StoryFilter, skip, limit int64) ([]data.Story, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := s.stories().Find(ctx, storyQuery(filter), findOptions)
	if err != nil {
		return nil, fmt.Errorf("error fetching stories: %w", err)
	}
	defer cursor.Close(ctx)

	stories := []data.Story{}
	if err := cursor.All(ctx, &stories); err != nil {
		return nil, fmt.Errorf("error decoding stories: %w", err)
	}
	for i := range stories {
		stories[i].Normalize()
	}
	return stories, nil
}

func (s *service) CountStories(ctx context.Context, filter data.StoryFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	n, err := s.stories().CountDocuments(ctx, storyQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("error counting stories: %w", err)
	}
	return n, nil
}

// storyQuery translates a catalog filter into a Mongo query. Matching a scalar
// against the genre array selects stories carrying that tag.
func storyQuery(filter data.StoryFilter) bson.M {
	query := bson.M{}
	if filter.Genre != "" {
		query["genre"] = filter.Genre
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Author != "" {
		query["sentences.author"] = filter.Author
	}
	return query
}

func (s *service) InsertUser(ctx context.Context, user *data.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := s.users().InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return data.ErrNicknameTaken
	}
	if err != nil {
		return fmt.Errorf("error inserting user: %w", err)
	}
	return nil
}

func (s *service) GetUserByID(ctx context.Context, id primitive.ObjectID) (*data.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *service) GetUserByNickname(ctx context.Context, nickname string) (*data.User, error) {
	return s.findUser(ctx, bson.M{"nickname": nickname})
}

func (s *service) findUser(ctx context.Context, query bson.M) (*data.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var user data.User
	err := s.users().FindOne(ctx, query).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, data.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	return &user, nil
}

func (s *service) ReplaceUser(ctx context.Context, user *data.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.users().ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if mongo.IsDuplicateKeyError(err) {
		return data.ErrNicknameTaken
	}
	if err != nil {
		return fmt.Errorf("error replacing user: %w", err)
	}
	if res.MatchedCount == 0 {
		return data.ErrUserNotFound
	}
	return nil
}

func (s *service) Health(ctx context.Context) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	if err := s.client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("db down: %w", err)
	}
	return map[string]string{"message": "It's healthy"}, nil
}

func (s *service) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
