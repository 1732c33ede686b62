package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/mAmineChniti/StoryWeave/internal/data"
	"github.com/mAmineChniti/StoryWeave/internal/database"
	"github.com/mAmineChniti/StoryWeave/internal/logger"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Catalog is the read path over stored stories, plus story creation.
type Catalog struct {
	db  database.Service
	log *logger.Logger
	now func() time.Time
}

func NewCatalog(db database.Service, log *logger.Logger) *Catalog {
	return &Catalog{db: db, log: log, now: time.Now}
}

// List returns one page of stories matching filter, newest first. Page numbers
// start at 1; out-of-range page and limit values fall back to defaults.
func (c *Catalog) List(ctx context.Context, filter data.StoryFilter, page, limit int) (*data.StoryPage, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, data.NewValidationError("status", fmt.Sprintf("must be one of [%s %s]", data.StatusOpen, data.StatusClosed))
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)

	var (
		stories []data.Story
		total   int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stories, err = c.db.ListStories(gctx, filter, int64(page-1)*int64(limit), int64(limit))
		return err
	})
	g.Go(func() error {
		var err error
		total, err = c.db.CountStories(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &data.StoryPage{
		Stories:     stories,
		TotalPages:  int((total + int64(limit) - 1) / int64(limit)),
		CurrentPage: page,
	}, nil
}

func (c *Catalog) Get(ctx context.Context, id primitive.ObjectID) (*data.Story, error) {
	return c.db.GetStory(ctx, id)
}

// Create starts a new story whose first sentence is req.FirstSentence.
func (c *Catalog) Create(ctx context.Context, req data.CreateStoryRequest) (*data.Story, error) {
	story, err := data.StartStory(req, c.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := c.db.InsertStory(ctx, story); err != nil {
		return nil, err
	}
	c.log.Debug("story created", "story_id", story.ID.Hex(), "author", story.Sentences[0].Author)
	return story, nil
}
