package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mAmineChniti/StoryWeave/internal/data"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			reqLog := s.log.With("request_id", v.RequestID)
			fields := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				reqLog.Error("request failed", append(fields, "error", v.Error)...)
				return nil
			}
			reqLog.Info("request", fields...)
			return nil
		},
	}))

	s.DEBUG(e)

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, "/api/v1/health")
	})

	api := e.Group("/api/v1")
	api.GET("/stories", s.ListStories)
	api.POST("/stories", s.CreateStory, s.IdentityMiddleware())
	api.GET("/stories/:id", s.GetStory)
	api.POST("/stories/:id/sentences", s.AppendSentence, s.IdentityMiddleware())
	api.PUT("/stories/:id/sentences/:sentenceId", s.EditSentence)
	api.DELETE("/stories/:id/sentences/:sentenceId", s.DeleteSentence)
	api.POST("/stories/:id/sentences/:sentenceId/vote", s.Vote, s.IdentityMiddleware())
	api.POST("/stories/:id/like", s.ToggleLike, s.IdentityMiddleware())

	api.POST("/users/login", s.Login)
	api.PUT("/users/:userId", s.UpdateProfile)
	api.GET("/users/:nickname", s.GetUser)

	api.GET("/health", s.healthHandler)
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Not found"})
	})

	return e
}

// DEBUG dumps pretty-printed request and response bodies at debug level.
func (s *Server) DEBUG(e *echo.Echo) {
	if !s.debug {
		return
	}
	e.Use(middleware.BodyDump(func(c echo.Context, reqBody, resBody []byte) {
		s.log.Debug("request body", "uri", c.Request().RequestURI, "body", prettyJSON(reqBody))
		s.log.Debug("response body", "uri", c.Request().RequestURI, "body", prettyJSON(resBody))
	}))
}

func prettyJSON(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var formatted any
	if err := json.Unmarshal(body, &formatted); err != nil {
		return string(body)
	}
	out, err := json.MarshalIndent(formatted, "", "  ")
	if err != nil {
		return string(body)
	}
	return string(out)
}

func (s *Server) CreateStory(c echo.Context) error {
	var request data.CreateStoryRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}
	request.Author = actor(c, request.Author)

	story, err := s.catalog.Create(c.Request().Context(), request)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"message": "Story created successfully", "story": story})
}

func (s *Server) ListStories(c echo.Context) error {
	var request struct {
		Genre  string `query:"genre"`
		Status string `query:"status"`
		Author string `query:"author"`
		Page   int    `query:"page"`
		Limit  int    `query:"limit"`
	}
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid query parameters"})
	}

	filter := data.StoryFilter{Genre: request.Genre, Status: data.Status(request.Status), Author: request.Author}
	page, err := s.catalog.List(c.Request().Context(), filter, request.Page, request.Limit)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":     "Stories found",
		"stories":     page.Stories,
		"totalPages":  page.TotalPages,
		"currentPage": page.CurrentPage,
	})
}

func (s *Server) GetStory(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid story ID"})
	}
	story, err := s.catalog.Get(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Story found", "story": story})
}

func (s *Server) AppendSentence(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid story ID"})
	}
	var request struct {
		Text   string `json:"text"`
		Author string `json:"author"`
	}
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	story, err := s.contributions.AppendSentence(c.Request().Context(), id, request.Text, actor(c, request.Author))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Sentence added", "story": story})
}

func (s *Server) EditSentence(c echo.Context) error {
	id, sentenceID, ok := sentencePath(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid story or sentence ID"})
	}
	var request struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	story, err := s.contributions.EditSentence(c.Request().Context(), id, sentenceID, request.Text)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Sentence updated", "story": story})
}

func (s *Server) DeleteSentence(c echo.Context) error {
	id, sentenceID, ok := sentencePath(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid story or sentence ID"})
	}

	story, err := s.contributions.DeleteSentence(c.Request().Context(), id, sentenceID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Sentence deleted", "story": story})
}

func (s *Server) Vote(c echo.Context) error {
	id, sentenceID, ok := sentencePath(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid story or sentence ID"})
	}
	var request struct {
		VoterID string `json:"voterId"`
	}
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	story, err := s.contributions.Vote(c.Request().Context(), id, sentenceID, actor(c, request.VoterID))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Vote recorded", "story": story})
}

func (s *Server) ToggleLike(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid story ID"})
	}
	var request struct {
		UserID string `json:"userId"`
	}
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	story, liked, err := s.contributions.ToggleLike(c.Request().Context(), id, actor(c, request.UserID))
	if err != nil {
		return s.fail(c, err)
	}
	message := "Story unliked"
	if liked {
		message = "Story liked"
	}
	return c.JSON(http.StatusOK, map[string]any{"message": message, "story": story, "liked": liked})
}

func (s *Server) Login(c echo.Context) error {
	var request struct {
		Nickname string `json:"nickname"`
	}
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	user, err := s.users.LoginOrCreate(c.Request().Context(), request.Nickname)
	if err != nil {
		return s.fail(c, err)
	}
	response := map[string]any{"message": "Logged in", "user": user}
	if s.tokens != nil {
		token, err := s.tokens.Issue(user.Nickname)
		if err != nil {
			return s.fail(c, err)
		}
		response["token"] = token
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) UpdateProfile(c echo.Context) error {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid user ID"})
	}
	var request data.ProfileUpdate
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	user, err := s.users.UpdateProfile(c.Request().Context(), userID, request)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Profile updated", "user": user})
}

func (s *Server) GetUser(c echo.Context) error {
	user, err := s.users.GetByNickname(c.Request().Context(), c.Param("nickname"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "User found", "user": user})
}

func (s *Server) healthHandler(c echo.Context) error {
	health, err := s.db.Health(c.Request().Context())
	if err != nil {
		s.log.Error("health check failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, health)
}

func sentencePath(c echo.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return id, id, false
	}
	sentenceID, err := primitive.ObjectIDFromHex(c.Param("sentenceId"))
	if err != nil {
		return id, sentenceID, false
	}
	return id, sentenceID, true
}
