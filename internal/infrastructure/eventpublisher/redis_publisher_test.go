package eventpublisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/iho/jointledger/internal/domain"
)

func TestRedisPublisherPublishesToChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	sub := client.Subscribe(ctx, "jointledger.events")
	t.Cleanup(func() { _ = sub.Close() })

	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	p := NewRedisPublisher(client, "jointledger.events")
	event := &domain.OutboxEvent{
		ID:            "evt-1",
		AggregateID:   "corr-1",
		AggregateType: domain.AggregateTypeTransfer,
		EventType:     domain.EventTypeTransferCreditFailed,
		Payload:       map[string]any{"reason": "bank down"},
		CreatedAt:     time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}

	if err := p.Publish(ctx, event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var got Message
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("decode message: %v", err)
		}
		if got.ID != "evt-1" || got.EventType != domain.EventTypeTransferCreditFailed || got.Payload["reason"] != "bank down" {
			t.Fatalf("unexpected message: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("message not received")
	}
}
