package data

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusClosed
}

type Story struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title     string             `json:"title" bson:"title" validate:"required,max=200"`
	Genre     []string           `json:"genre" bson:"genre"`
	Sentences []Sentence         `json:"sentences" bson:"sentences"`
	Status    Status             `json:"status" bson:"status" validate:"required,oneof=open closed"`
	Likes     int                `json:"likes" bson:"likes"`
	LikedBy   []string           `json:"likedBy" bson:"liked_by"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

type Sentence struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Text      string             `json:"text" bson:"text" validate:"required,min=5,max=200"`
	Author    string             `json:"author" bson:"author" validate:"required"`
	Votes     int                `json:"votes" bson:"votes"`
	Voters    []string           `json:"voters" bson:"voters"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Nickname  string             `json:"nickname" bson:"nickname" validate:"required"`
	Bio       string             `json:"bio" bson:"bio" validate:"max=500"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	LastLogin time.Time          `json:"lastLogin" bson:"last_login"`
}

// StoryFilter narrows a catalog listing. Zero fields match everything.
type StoryFilter struct {
	Genre  string
	Status Status
	// Author matches stories with at least one sentence by this nickname.
	Author string
}

type StoryPage struct {
	Stories     []Story `json:"stories"`
	TotalPages  int     `json:"totalPages"`
	CurrentPage int     `json:"currentPage"`
}

type CreateStoryRequest struct {
	Title         string   `json:"title"`
	Genre         []string `json:"genre"`
	FirstSentence string   `json:"firstSentence"`
	Author        string   `json:"author"`
}

// ProfileUpdate carries the optional fields of a profile change; nil means
// unchanged.
type ProfileUpdate struct {
	Nickname *string `json:"nickname,omitempty"`
	Bio      *string `json:"bio,omitempty"`
}
