package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/khatmdev/quadramall-sub001/pkg/enums"
	"github.com/khatmdev/quadramall-sub001/pkg/logger"
	"github.com/khatmdev/quadramall-sub001/pkg/metrics"
)

const catalogConsumerName = "cart-catalog"

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

type eventDeduper interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	EventKey(consumer, eventID string) string
}

type cartHolders interface {
	UserIDsHoldingProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error)
}

// CatalogEvent is the body of a catalog change message.
type CatalogEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	ProductID uuid.UUID `json:"product_id"`
}

// CatalogConsumer drops cached cart views of every shopper holding a product whose
// availability changed, so the next fetch reflects isActive / inStock.
type CatalogConsumer struct {
	subscription receiver
	holders      cartHolders
	cache        ViewCache
	dedupe       eventDeduper
	dedupeTTL    time.Duration
	metrics      *metrics.CartMetrics
	logg         *logger.Logger
}

type ConsumerParams struct {
	Subscription receiver
	Holders      cartHolders
	Cache        ViewCache
	Dedupe       eventDeduper
	DedupeTTL    time.Duration
	Metrics      *metrics.CartMetrics
	Logger       *logger.Logger
}

func NewCatalogConsumer(p ConsumerParams) (*CatalogConsumer, error) {
	if p.Subscription == nil {
		return nil, fmt.Errorf("catalog subscription required")
	}
	if p.Holders == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if p.Cache == nil {
		return nil, fmt.Errorf("cart view cache required")
	}
	if p.Dedupe == nil {
		return nil, fmt.Errorf("event dedupe store required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	ttl := p.DedupeTTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &CatalogConsumer{
		subscription: p.Subscription,
		holders:      p.Holders,
		cache:        p.Cache,
		dedupe:       p.Dedupe,
		dedupeTTL:    ttl,
		metrics:      p.Metrics,
		logg:         p.Logger,
	}, nil
}

// Run consumes until the context is canceled.
func (c *CatalogConsumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.Handle(ctx, msg.ID, msg.Attributes, msg.Data) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// Handle processes one message and reports whether it should be acked.
// Malformed or unknown messages are acked; dependency failures are not.
func (c *CatalogConsumer) Handle(ctx context.Context, messageID string, attributes map[string]string, data []byte) bool {
	rawType := attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": rawType,
	})

	eventType, err := enums.ParseCatalogEventType(rawType)
	if err != nil {
		c.logg.Info(logCtx, "skipping non-catalog event")
		c.metrics.IncEvent(rawType, "skipped")
		return true
	}

	var event CatalogEvent
	if err := json.Unmarshal(data, &event); err != nil || event.EventID == uuid.Nil || event.ProductID == uuid.Nil {
		if err == nil {
			err = fmt.Errorf("event_id and product_id are required")
		}
		c.logg.Error(logCtx, "malformed catalog event", err)
		c.metrics.IncEvent(eventType.String(), "malformed")
		return true
	}
	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"event_id":   event.EventID.String(),
		"product_id": event.ProductID.String(),
	})

	key := c.dedupe.EventKey(catalogConsumerName, event.EventID.String())
	fresh, err := c.dedupe.SetNX(ctx, key, "1", c.dedupeTTL)
	if err != nil {
		c.logg.Error(logCtx, "event dedupe failed", err)
		c.metrics.IncEvent(eventType.String(), metrics.OutcomeFailure)
		return false
	}
	if !fresh {
		c.logg.Info(logCtx, "event already processed")
		c.metrics.IncEvent(eventType.String(), "duplicate")
		return true
	}

	if err := c.invalidateHolders(ctx, event.ProductID); err != nil {
		c.logg.Error(logCtx, "cart view invalidation failed", err)
		_ = c.dedupe.Del(ctx, key)
		c.metrics.IncEvent(eventType.String(), metrics.OutcomeFailure)
		return false
	}

	c.logg.Info(logCtx, "cart views invalidated")
	c.metrics.IncEvent(eventType.String(), metrics.OutcomeSuccess)
	return true
}

func (c *CatalogConsumer) invalidateHolders(ctx context.Context, productID uuid.UUID) error {
	userIDs, err := c.holders.UserIDsHoldingProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("list cart holders: %w", err)
	}
	return c.cache.Invalidate(ctx, userIDs...)
}
