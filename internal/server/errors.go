package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mAmineChniti/StoryWeave/internal/data"
)

var messages = []struct {
	err     error
	message string
}{
	{data.ErrStoryNotFound, "Story not found"},
	{data.ErrSentenceNotFound, "Sentence not found"},
	{data.ErrUserNotFound, "User not found"},
	{data.ErrAlreadyVoted, "User has already voted"},
	{data.ErrNicknameTaken, "Nickname already taken"},
	{data.ErrStoryClosed, "Story is closed"},
}

// fail writes the response for a service error: validation is 400, not
// found is 404, conflicts and closed stories are 409, anything else is a 500
// whose cause is only logged.
func (s *Server) fail(c echo.Context, err error) error {
	var verr *data.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, map[string]any{"message": "Validation failed", "errors": verr.Fields})
	}

	var status int
	switch {
	case errors.Is(err, data.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, data.ErrConflict), errors.Is(err, data.ErrState):
		status = http.StatusConflict
	default:
		s.log.With("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).Error("request error", "uri", c.Request().RequestURI, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}

	message := http.StatusText(status)
	for _, m := range messages {
		if errors.Is(err, m.err) {
			message = m.message
			break
		}
	}
	return c.JSON(status, map[string]string{"message": message})
}
