package data

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrState      = errors.New("invalid state")
)

var (
	ErrStoryNotFound    = fmt.Errorf("story %w", ErrNotFound)
	ErrSentenceNotFound = fmt.Errorf("sentence %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)

	// ErrAlreadyVoted is returned when a voter casts a second vote on the same sentence.
	ErrAlreadyVoted  = fmt.Errorf("%w: user has already voted", ErrConflict)
	ErrNicknameTaken = fmt.Errorf("%w: nickname already taken", ErrConflict)

	ErrStoryClosed = fmt.Errorf("%w: story is closed", ErrState)
)

// ValidationError lists the offending fields of a rejected input, keyed by
// their JSON name.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
