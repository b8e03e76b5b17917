package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/shop_admin/internal/logging"
	"github.com/Skotchmaster/shop_admin/internal/models"
	"github.com/Skotchmaster/shop_admin/internal/mykafka"
)

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type Indexer interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// Side effects of a committed write never fail the write itself.
func publish(ctx context.Context, p Publisher, topic string, ev mykafka.Event) {
	if p == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if err := p.PublishEvent(ctx, topic, ev.ID, ev); err != nil {
		logging.FromContext(ctx).Error("publish_event_failed", "topic", topic, "type", ev.Type, "error", err)
	}
}
