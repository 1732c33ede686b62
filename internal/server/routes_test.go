package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mAmineChniti/StoryWeave/internal/config"
	"github.com/mAmineChniti/StoryWeave/internal/data"
	"github.com/mAmineChniti/StoryWeave/internal/database"
	"github.com/mAmineChniti/StoryWeave/internal/logger"
)

type storyResponse struct {
	Message string     `json:"message"`
	Story   data.Story `json:"story"`
	Liked   bool       `json:"liked"`
}

type userResponse struct {
	Message string    `json:"message"`
	User    data.User `json:"user"`
	Token   string    `json:"token"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T, secret string) *testServer {
	t.Helper()
	return newTestServerWithLogger(t, secret, logger.Nop())
}

func newTestServerWithLogger(t *testing.T, secret string, log *logger.Logger) *testServer {
	t.Helper()
	cfg := &config.Config{Port: 8080, JWTSecret: []byte(secret), TokenTTL: time.Hour}
	s := New(cfg, database.NewMemory(), log)
	return &testServer{t: t, handler: s.RegisterRoutes()}
}

func (ts *testServer) do(method, path string, body any, out any, header ...string) int {
	ts.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func (ts *testServer) createStory() data.Story {
	ts.t.Helper()
	var res storyResponse
	code := ts.do(http.MethodPost, "/api/v1/stories", map[string]any{
		"title":         "T",
		"genre":         []string{"adventure"},
		"firstSentence": "Once upon a time.",
		"author":        "alice",
	}, &res)
	require.Equal(ts.t, http.StatusCreated, code)
	return res.Story
}

func TestCreateAndCloseStory(t *testing.T) {
	ts := newTestServer(t, "")
	story := ts.createStory()
	assert.Len(t, story.Sentences, 1)
	assert.Equal(t, data.StatusOpen, story.Status)

	path := fmt.Sprintf("/api/v1/stories/%s/sentences", story.ID.Hex())
	var res storyResponse
	for i := 2; i <= data.ClosingThreshold; i++ {
		code := ts.do(http.MethodPost, path, map[string]string{"text": fmt.Sprintf("Sentence %d here.", i), "author": "bob"}, &res)
		require.Equal(t, http.StatusOK, code)
	}
	assert.Equal(t, data.StatusClosed, res.Story.Status)

	var msg map[string]string
	code := ts.do(http.MethodPost, path, map[string]string{"text": "One more sentence.", "author": "bob"}, &msg)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Story is closed", msg["message"])

	var got storyResponse
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/v1/stories/"+story.ID.Hex(), nil, &got))
	assert.Len(t, got.Story.Sentences, data.ClosingThreshold)
}

func TestCreateStoryValidation(t *testing.T) {
	ts := newTestServer(t, "")
	var res struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	code := ts.do(http.MethodPost, "/api/v1/stories", map[string]any{"title": "T", "firstSentence": "Hi", "author": "alice"}, &res)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", res.Message)
	assert.Contains(t, res.Errors, "text")
}

func TestVoteEndpoint(t *testing.T) {
	ts := newTestServer(t, "")
	story := ts.createStory()
	path := fmt.Sprintf("/api/v1/stories/%s/sentences/%s/vote", story.ID.Hex(), story.Sentences[0].ID.Hex())

	var res storyResponse
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, path, map[string]string{"voterId": "bob"}, &res))
	assert.Equal(t, 1, res.Story.Sentences[0].Votes)

	var msg map[string]string
	assert.Equal(t, http.StatusConflict, ts.do(http.MethodPost, path, map[string]string{"voterId": "bob"}, &msg))
	assert.Equal(t, "User has already voted", msg["message"])

	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, path, map[string]string{"voterId": "carol"}, &res))
	assert.Equal(t, 2, res.Story.Sentences[0].Votes)

	missing := fmt.Sprintf("/api/v1/stories/%s/sentences/%s/vote", story.ID.Hex(), primitive.NewObjectID().Hex())
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPost, missing, map[string]string{"voterId": "bob"}, &msg))
	assert.Equal(t, "Sentence not found", msg["message"])
}

func TestLikeEndpoint(t *testing.T) {
	ts := newTestServer(t, "")
	story := ts.createStory()
	path := fmt.Sprintf("/api/v1/stories/%s/like", story.ID.Hex())

	var res storyResponse
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, path, map[string]string{"userId": "bob"}, &res))
	assert.True(t, res.Liked)
	assert.Equal(t, 1, res.Story.Likes)

	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, path, map[string]string{"userId": "bob"}, &res))
	assert.False(t, res.Liked)
	assert.Zero(t, res.Story.Likes)
	assert.Empty(t, res.Story.LikedBy)
}

func TestEditAndDeleteEndpoints(t *testing.T) {
	ts := newTestServer(t, "")
	story := ts.createStory()
	path := fmt.Sprintf("/api/v1/stories/%s/sentences/%s", story.ID.Hex(), story.Sentences[0].ID.Hex())

	var res storyResponse
	require.Equal(t, http.StatusOK, ts.do(http.MethodPut, path, map[string]string{"text": "Edited."}, &res))
	assert.Equal(t, "Edited.", res.Story.Sentences[0].Text)

	require.Equal(t, http.StatusOK, ts.do(http.MethodDelete, path, nil, &res))
	assert.Empty(t, res.Story.Sentences)

	var msg map[string]string
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, path, nil, &msg))
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodDelete, "/api/v1/stories/nope/sentences/nope", nil, &msg))
}

func TestListStories(t *testing.T) {
	ts := newTestServer(t, "")
	for i := 0; i < 3; i++ {
		ts.createStory()
	}

	var res struct {
		Stories     []data.Story `json:"stories"`
		TotalPages  int          `json:"totalPages"`
		CurrentPage int          `json:"currentPage"`
	}
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/v1/stories?genre=adventure&page=1&limit=2", nil, &res))
	assert.Len(t, res.Stories, 2)
	assert.Equal(t, 2, res.TotalPages)
	assert.Equal(t, 1, res.CurrentPage)

	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/v1/stories?status=closed", nil, &res))
	assert.Empty(t, res.Stories)

	var msg map[string]any
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/v1/stories?status=archived", nil, &msg))
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/v1/stories?page=first", nil, &msg))
}

func TestGetStoryErrors(t *testing.T) {
	ts := newTestServer(t, "")
	var msg map[string]string
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/v1/stories/not-an-id", nil, &msg))
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/v1/stories/"+primitive.NewObjectID().Hex(), nil, &msg))
	assert.Equal(t, "Story not found", msg["message"])
}

func TestUserEndpoints(t *testing.T) {
	ts := newTestServer(t, "")

	var alice, bob userResponse
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/v1/users/login", map[string]string{"nickname": "alice"}, &alice))
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/v1/users/login", map[string]string{"nickname": "bob"}, &bob))
	assert.Empty(t, alice.Token, "no token without a signing secret")

	var msg map[string]string
	assert.Equal(t, http.StatusConflict, ts.do(http.MethodPut, "/api/v1/users/"+alice.User.ID.Hex(), map[string]string{"nickname": "bob"}, &msg))
	assert.Equal(t, "Nickname already taken", msg["message"])

	var updated userResponse
	require.Equal(t, http.StatusOK, ts.do(http.MethodPut, "/api/v1/users/"+alice.User.ID.Hex(), map[string]string{"bio": "hello"}, &updated))
	assert.Equal(t, "alice", updated.User.Nickname)
	assert.Equal(t, "hello", updated.User.Bio)

	var found userResponse
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/v1/users/alice", nil, &found))
	assert.Equal(t, alice.User.ID, found.User.ID)

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/v1/users/nobody", nil, &msg))
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPut, "/api/v1/users/"+primitive.NewObjectID().Hex(), map[string]string{"bio": "x"}, &msg))

	var invalid struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/v1/users/login", map[string]string{"nickname": " "}, &invalid))
	assert.Equal(t, "Validation failed", invalid.Message)
	assert.Equal(t, "is required", invalid.Errors["nickname"])
}

func TestBearerTokenSetsIdentity(t *testing.T) {
	ts := newTestServer(t, "secret")

	var login userResponse
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/v1/users/login", map[string]string{"nickname": "dana"}, &login))
	require.NotEmpty(t, login.Token)

	story := ts.createStory()
	path := fmt.Sprintf("/api/v1/stories/%s/sentences/%s/vote", story.ID.Hex(), story.Sentences[0].ID.Hex())

	var res storyResponse
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, path, map[string]string{"voterId": "someone-else"}, &res, "Authorization", "Bearer "+login.Token))
	assert.Equal(t, []string{"dana"}, res.Story.Sentences[0].Voters)

	var msg map[string]string
	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodPost, path, map[string]string{"voterId": "x"}, &msg, "Authorization", "Bearer forged"))
}

func TestHealthAndNotFound(t *testing.T) {
	ts := newTestServer(t, "")
	var msg map[string]string
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/v1/health", nil, &msg))
	assert.Equal(t, "It's healthy", msg["message"])
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/v1/nowhere", nil, &msg))
}

func TestRequestLogsCarryRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ts := newTestServerWithLogger(t, "", &logger.Logger{SugaredLogger: zap.New(core).Sugar()})

	var msg map[string]string
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/v1/health", nil, &msg, "X-Request-Id", "req-123"))

	entries := logs.FilterMessage("request").FilterField(zap.String("request_id", "req-123")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/api/v1/health", entries[0].ContextMap()["uri"])
}
