package data

import (
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClosingThreshold is the sentence count at which a story stops accepting
// contributions.
const ClosingThreshold = 20

const DefaultTitle = "Untitled Story"

// StartStory builds a new open story whose opening line is req.FirstSentence.
// The opening line goes through the same rules as any appended sentence.
func StartStory(req CreateStoryRequest, now time.Time) (*Story, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DefaultTitle
	}
	genre := make([]string, 0, len(req.Genre))
	for _, g := range req.Genre {
		if g = strings.TrimSpace(g); g != "" && !slices.Contains(genre, g) {
			genre = append(genre, g)
		}
	}

	story := &Story{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Genre:     genre,
		Sentences: []Sentence{},
		Status:    StatusOpen,
		LikedBy:   []string{},
		CreatedAt: now,
	}
	if err := ValidateStruct(story); err != nil {
		return nil, err
	}
	if err := story.AppendSentence(req.FirstSentence, req.Author, now); err != nil {
		return nil, err
	}
	return story, nil
}

// AppendSentence adds a sentence at the end of the story and closes the story
// once it reaches ClosingThreshold sentences.
func (s *Story) AppendSentence(text, author string, now time.Time) error {
	if s.Status == StatusClosed {
		return ErrStoryClosed
	}
	sentence := Sentence{
		ID:        primitive.NewObjectID(),
		Text:      text,
		Author:    strings.TrimSpace(author),
		Voters:    []string{},
		CreatedAt: now,
	}
	if err := ValidateStruct(sentence); err != nil {
		return err
	}

	s.Sentences = append(s.Sentences, sentence)
	if len(s.Sentences) >= ClosingThreshold {
		s.Status = StatusClosed
	}
	return nil
}

// EditSentence replaces the text of a sentence in place. Only blank text is
// rejected; length and authorship are not rechecked.
func (s *Story) EditSentence(sentenceID primitive.ObjectID, text string) error {
	i := s.sentenceIndex(sentenceID)
	if i < 0 {
		return ErrSentenceNotFound
	}
	if strings.TrimSpace(text) == "" {
		return NewValidationError("text", "is required")
	}
	s.Sentences[i].Text = text
	return nil
}

func (s *Story) DeleteSentence(sentenceID primitive.ObjectID) error {
	i := s.sentenceIndex(sentenceID)
	if i < 0 {
		return ErrSentenceNotFound
	}
	s.Sentences = slices.Delete(s.Sentences, i, i+1)
	return nil
}

// CastVote records one vote by voterID on a sentence. Votes cannot be
// withdrawn, so a repeated vote fails with ErrAlreadyVoted.
func (s *Story) CastVote(sentenceID primitive.ObjectID, voterID string) error {
	i := s.sentenceIndex(sentenceID)
	if i < 0 {
		return ErrSentenceNotFound
	}
	voterID = strings.TrimSpace(voterID)
	if voterID == "" {
		return NewValidationError("voterId", "is required")
	}
	sentence := &s.Sentences[i]
	if slices.Contains(sentence.Voters, voterID) {
		return ErrAlreadyVoted
	}
	sentence.Votes++
	sentence.Voters = append(sentence.Voters, voterID)
	return nil
}

// ToggleLike flips userID's like on the story and reports whether the story is
// now liked by that user.
func (s *Story) ToggleLike(userID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, NewValidationError("userId", "is required")
	}
	if i := slices.Index(s.LikedBy, userID); i >= 0 {
		s.LikedBy = slices.Delete(s.LikedBy, i, i+1)
		s.Likes = max(0, s.Likes-1)
		return false, nil
	}
	s.LikedBy = append(s.LikedBy, userID)
	s.Likes++
	return true, nil
}

// FindSentence returns the sentence with the given id.
func (s *Story) FindSentence(sentenceID primitive.ObjectID) (*Sentence, bool) {
	i := s.sentenceIndex(sentenceID)
	if i < 0 {
		return nil, false
	}
	return &s.Sentences[i], true
}

func (s *Story) sentenceIndex(id primitive.ObjectID) int {
	return slices.IndexFunc(s.Sentences, func(sn Sentence) bool { return sn.ID == id })
}

// Clone returns a deep copy of the story.
func (s *Story) Clone() *Story {
	c := *s
	c.Genre = slices.Clone(s.Genre)
	c.LikedBy = slices.Clone(s.LikedBy)
	c.Sentences = make([]Sentence, len(s.Sentences))
	for i, sn := range s.Sentences {
		sn.Voters = slices.Clone(sn.Voters)
		c.Sentences[i] = sn
	}
	return &c
}

// Normalize replaces nil collections with empty ones so stored documents and
// JSON output never carry nulls.
func (s *Story) Normalize() {
	if s.Genre == nil {
		s.Genre = []string{}
	}
	if s.LikedBy == nil {
		s.LikedBy = []string{}
	}
	if s.Sentences == nil {
		s.Sentences = []Sentence{}
	}
	for i := range s.Sentences {
		if s.Sentences[i].Voters == nil {
			s.Sentences[i].Voters = []string{}
		}
	}
}
