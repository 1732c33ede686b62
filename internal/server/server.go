package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mAmineChniti/StoryWeave/internal/auth"
	"github.com/mAmineChniti/StoryWeave/internal/config"
	"github.com/mAmineChniti/StoryWeave/internal/database"
	"github.com/mAmineChniti/StoryWeave/internal/logger"
	"github.com/mAmineChniti/StoryWeave/internal/service"
)

type Server struct {
	port  int
	debug bool

	db            database.Service
	catalog       *service.Catalog
	contributions *service.Contributions
	users         *service.Users
	// tokens is nil when no signing secret is configured.
	tokens *auth.Issuer
	log    *logger.Logger
}

func New(cfg *config.Config, db database.Service, log *logger.Logger) *Server {
	s := &Server{
		port:  cfg.Port,
		debug: cfg.Debug,

		db:            db,
		catalog:       service.NewCatalog(db, log),
		contributions: service.NewContributions(db, log),
		users:         service.NewUsers(db, log),
		log:           log,
	}
	if len(cfg.JWTSecret) > 0 {
		s.tokens = auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	}
	return s
}

func NewServer(cfg *config.Config, db database.Service, log *logger.Logger) *http.Server {
	s := New(cfg, db, log)

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
