package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mAmineChniti/StoryWeave/internal/data"
	"github.com/mAmineChniti/StoryWeave/internal/database"
	"github.com/mAmineChniti/StoryWeave/internal/logger"
)

// Contributions applies sentence, vote and like changes to stored stories.
// Every call loads the story, applies one aggregate operation and replaces the
// stored document. Nothing is written when the operation fails. Two calls
// racing on the same story are last-write-wins.
type Contributions struct {
	db  database.Service
	log *logger.Logger
	now func() time.Time
}

func NewContributions(db database.Service, log *logger.Logger) *Contributions {
	return &Contributions{db: db, log: log, now: time.Now}
}

func (c *Contributions) AppendSentence(ctx context.Context, storyID primitive.ObjectID, text, author string) (*data.Story, error) {
	story, err := c.mutate(ctx, storyID, func(s *data.Story) error {
		return s.AppendSentence(text, author, c.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	if story.Status == data.StatusClosed {
		c.log.Info("story closed", "story_id", storyID.Hex(), "sentences", len(story.Sentences))
	}
	return story, nil
}

func (c *Contributions) EditSentence(ctx context.Context, storyID, sentenceID primitive.ObjectID, text string) (*data.Story, error) {
	return c.mutate(ctx, storyID, func(s *data.Story) error {
		return s.EditSentence(sentenceID, text)
	})
}

func (c *Contributions) DeleteSentence(ctx context.Context, storyID, sentenceID primitive.ObjectID) (*data.Story, error) {
	return c.mutate(ctx, storyID, func(s *data.Story) error {
		return s.DeleteSentence(sentenceID)
	})
}

// Vote casts voterID's vote on a sentence. There is no way to take a vote back.
func (c *Contributions) Vote(ctx context.Context, storyID, sentenceID primitive.ObjectID, voterID string) (*data.Story, error) {
	return c.mutate(ctx, storyID, func(s *data.Story) error {
		return s.CastVote(sentenceID, voterID)
	})
}

// ToggleLike likes the story for userID, or removes the like if one exists.
func (c *Contributions) ToggleLike(ctx context.Context, storyID primitive.ObjectID, userID string) (*data.Story, bool, error) {
	var liked bool
	story, err := c.mutate(ctx, storyID, func(s *data.Story) error {
		var err error
		liked, err = s.ToggleLike(userID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return story, liked, nil
}

func (c *Contributions) mutate(ctx context.Context, storyID primitive.ObjectID, apply func(*data.Story) error) (*data.Story, error) {
	story, err := c.db.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if err := apply(story); err != nil {
		return nil, err
	}
	if err := c.db.ReplaceStory(ctx, story); err != nil {
		return nil, err
	}
	return story, nil
}
