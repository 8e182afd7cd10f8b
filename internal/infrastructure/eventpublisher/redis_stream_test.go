package eventpublisher

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/partyledger/internal/domain"
)

func TestStreamPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	pub := NewStreamPublisher(client, "partyledger:events", 1000)
	event := &domain.OutboxEvent{
		ID:            "evt-1",
		AggregateID:   "e1",
		AggregateType: domain.AggregateTypeEntry,
		EventType:     domain.EventTypeEntryPosted,
		Payload:       map[string]any{"entry_id": "e1", "balance": "150"},
	}

	require.NoError(t, pub.Publish(context.Background(), event))

	msgs, err := client.XRange(context.Background(), "partyledger:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	assert.Equal(t, "evt-1", msgs[0].Values["event_id"])
	assert.Equal(t, domain.EventTypeEntryPosted, msgs[0].Values["event_type"])
	assert.JSONEq(t, `{"entry_id":"e1","balance":"150"}`, msgs[0].Values["payload"].(string))
}

func TestStreamPublisher_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	pub := NewStreamPublisher(client, "partyledger:events", 0)
	err := pub.Publish(context.Background(), &domain.OutboxEvent{ID: "evt-1", Payload: map[string]any{}})
	assert.Error(t, err)
}
