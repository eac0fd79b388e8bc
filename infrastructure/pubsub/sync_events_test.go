package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncEventPublisher_NilClient(t *testing.T) {
	publisher := NewSyncEventPublisher(nil)

	id, err := publisher.Publish(context.Background(), "sync-events", []byte(`{"type":"analytics_sync"}`))
	require.NoError(t, err)
	assert.Empty(t, id)

	_, err = publisher.GetSubscription("sync-events-sub")
	assert.Error(t, err)
}
