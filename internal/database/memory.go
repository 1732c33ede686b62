package database

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/mAmineChniti/StoryWeave/internal/data"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memory is an in-process Service with the same document semantics as the
// Mongo store: reads and writes copy whole documents and nicknames are unique.
type memory struct {
	mu      sync.RWMutex
	stories map[primitive.ObjectID]*data.Story
	users   map[primitive.ObjectID]data.User
}

func NewMemory() Service {
	return &memory{
		stories: make(map[primitive.ObjectID]*data.Story),
		users:   make(map[primitive.ObjectID]data.User),
	}
}

func (m *memory) EnsureIndexes(context.Context) error { return nil }

func (m *memory) InsertStory(_ context.Context, story *data.Story) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if story.ID.IsZero() {
		story.ID = primitive.NewObjectID()
	}
	story.Normalize()
	m.stories[story.ID] = story.Clone()
	return nil
}

func (m *memory) GetStory(_ context.Context, id primitive.ObjectID) (*data.Story, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	story, ok := m.stories[id]
	if !ok {
		return nil, data.ErrStoryNotFound
	}
	return story.Clone(), nil
}

func (m *memory) ReplaceStory(_ context.Context, story *data.Story) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.stories[story.ID]; !ok {
		return data.ErrStoryNotFound
	}
	story.Normalize()
	m.stories[story.ID] = story.Clone()
	return nil
}

func (m *memory) ListStories(_ context.Context, filter data.StoryFilter, skip, limit int64) ([]data.Story, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := m.match(filter)
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.Hex() > b.ID.Hex()
	})

	stories := []data.Story{}
	for i := skip; i < int64(len(matched)) && (limit <= 0 || i < skip+limit); i++ {
		stories = append(stories, *matched[i].Clone())
	}
	return stories, nil
}

func (m *memory) CountStories(_ context.Context, filter data.StoryFilter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.match(filter))), nil
}

func (m *memory) match(filter data.StoryFilter) []*data.Story {
	var out []*data.Story
	for _, s := range m.stories {
		if filter.Genre != "" && !slices.Contains(s.Genre, filter.Genre) {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.Author != "" && !slices.ContainsFunc(s.Sentences, func(sn data.Sentence) bool {
			return sn.Author == filter.Author
		}) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (m *memory) InsertUser(_ context.Context, user *data.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nicknameTaken(user.Nickname, primitive.NilObjectID) {
		return data.ErrNicknameTaken
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.users[user.ID] = *user
	return nil
}

func (m *memory) GetUserByID(_ context.Context, id primitive.ObjectID) (*data.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, data.ErrUserNotFound
	}
	return &user, nil
}

func (m *memory) GetUserByNickname(_ context.Context, nickname string) (*data.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Nickname == nickname {
			return &user, nil
		}
	}
	return nil, data.ErrUserNotFound
}

func (m *memory) ReplaceUser(_ context.Context, user *data.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return data.ErrUserNotFound
	}
	if m.nicknameTaken(user.Nickname, user.ID) {
		return data.ErrNicknameTaken
	}
	m.users[user.ID] = *user
	return nil
}

func (m *memory) nicknameTaken(nickname string, except primitive.ObjectID) bool {
	for id, u := range m.users {
		if u.Nickname == nickname && id != except {
			return true
		}
	}
	return false
}

func (m *memory) Health(context.Context) (map[string]string, error) {
	return map[string]string{"message": "It's healthy"}, nil
}

func (m *memory) Close(context.Context) error { return nil }
