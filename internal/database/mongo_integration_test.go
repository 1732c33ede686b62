//go:build integration

package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func TestMongoService(t *testing.T) {
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	svc, err := New(ctx, uri, "storyweave_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close(context.Background()) })

	runServiceContract(t, svc)
}
