package notify

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baharkarakas/wallet-ops/internal/models"
)

// RedisSink publishes records to a Redis stream consumed by the delivery
// service that renders and sends them.
type RedisSink struct {
	rdb    redis.UniversalClient
	stream string
	maxLen int64
}

func NewRedisSink(rdb redis.UniversalClient, stream string) *RedisSink {
	return &RedisSink{rdb: rdb, stream: stream, maxLen: 100_000}
}

func (s *RedisSink) Deliver(ctx context.Context, recs []models.Notification) error {
	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, n := range recs {
			p.XAdd(ctx, &redis.XAddArgs{
				Stream: s.stream,
				MaxLen: s.maxLen,
				Approx: true,
				Values: map[string]any{
					"id":          n.ID,
					"merchant_id": n.MerchantID,
					"type":        string(n.Type),
					"invoice_id":  n.InvoiceID,
					"message":     n.Message,
					"created_at":  n.CreatedAt.Format(time.RFC3339Nano),
				},
			})
		}
		return nil
	})
	return err
}
