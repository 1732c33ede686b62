package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mAmineChniti/StoryWeave/internal/config"
	"github.com/mAmineChniti/StoryWeave/internal/database"
	"github.com/mAmineChniti/StoryWeave/internal/logger"
	"github.com/mAmineChniti/StoryWeave/internal/server"
)

var (
	port  int
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "storyweave",
	Short: "Collaborative one-sentence-at-a-time story API",
	Long: `storyweave serves the HTTP API for building stories one sentence at a
time: contributions, votes, likes and nickname profiles, backed by MongoDB.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		applyFlags(cmd, cfg)
		return run(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port (overrides PORT)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "dump request and response bodies (overrides DEBUG)")
}

// applyFlags lets explicitly set command-line flags win over the environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Port = port
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = debug
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	db, err := database.New(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			log.Warn("error closing database", "error", err)
		}
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		return err
	}

	apiServer := server.NewServer(cfg, db, log)

	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server is running", "addr", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down gracefully, press Ctrl+C again to force")
		stop()

		// The server has 5 seconds to finish the requests it is handling.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Error("server forced to shutdown", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("graceful shutdown complete")
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
