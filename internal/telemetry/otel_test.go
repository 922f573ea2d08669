package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), "gesturemodality", "")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetup_WithEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), "gesturemodality", "http://127.0.0.1:4318")
	require.NoError(t, err)
	// Nothing was recorded, so shutdown has nothing to flush.
	require.NoError(t, shutdown(context.Background()))
}
