package servicebus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncEventBus_NilClient(t *testing.T) {
	bus := NewSyncEventBus(nil, "sync-events")

	require.NoError(t, bus.SendMessage([]byte(`{"type":"catalog_sync"}`)))

	bodies, err := bus.GetMessage(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, bodies)
}
