package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mAmineChniti/StoryWeave/internal/config"
)

func TestRootFlags(t *testing.T) {
	p := rootCmd.Flags().Lookup("port")
	require.NotNil(t, p)
	assert.Equal(t, "8080", p.DefValue)
	assert.Equal(t, "p", p.Shorthand)

	d := rootCmd.Flags().Lookup("debug")
	require.NotNil(t, d)
	assert.Equal(t, "false", d.DefValue)
}

func newFlagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "storyweave"}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "")
	cmd.Flags().BoolVar(&debug, "debug", false, "")
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("PORT", "9090")
	t.Setenv("DEBUG", "true")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Port)

	applyFlags(newFlagCommand(t, "--port", "7070", "--debug=false"), cfg)
	assert.Equal(t, 7070, cfg.Port)
	assert.False(t, cfg.Debug)
}

func TestEnvironmentKeptWithoutFlags(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("PORT", "9090")
	t.Setenv("DEBUG", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	applyFlags(newFlagCommand(t), cfg)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.Debug)
}
