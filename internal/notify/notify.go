// Package notify delivers notification records produced by core operations.
// Delivery always happens after the owning transaction committed and its
// failure never changes the operation's result.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/wallet-ops/internal/logger"
	"github.com/baharkarakas/wallet-ops/internal/metrics"
	"github.com/baharkarakas/wallet-ops/internal/models"
	"github.com/baharkarakas/wallet-ops/internal/repository"
)

type Sink interface {
	Deliver(ctx context.Context, recs []models.Notification) error
}

// New builds a notification record for a merchant, stamped at.
func New(merchantID string, typ models.NotificationType, invoiceID, message string, at time.Time) models.Notification {
	return models.Notification{
		ID:         uuid.NewString(),
		MerchantID: merchantID,
		Type:       typ,
		InvoiceID:  invoiceID,
		Message:    message,
		CreatedAt:  at.UTC(),
	}
}

// Outbox buffers records while an operation runs. Callers Reset it at the
// start of every transaction attempt and Flush it once the commit succeeded.
type Outbox struct {
	recs []models.Notification
}

func (o *Outbox) Add(n models.Notification) { o.recs = append(o.recs, n) }

func (o *Outbox) Reset() { o.recs = o.recs[:0] }

func (o *Outbox) Len() int { return len(o.recs) }

// Flush hands the buffered records to sink. Failures are logged and counted.
func (o *Outbox) Flush(ctx context.Context, sink Sink) {
	if len(o.recs) == 0 || sink == nil {
		return
	}
	recs := append([]models.Notification(nil), o.recs...)
	o.Reset()
	if err := sink.Deliver(ctx, recs); err != nil {
		metrics.NotificationsFailed.Add(float64(len(recs)))
		logger.From(ctx).WarnContext(ctx, "notification delivery failed", "count", len(recs), "err", err)
	}
}

// StoreSink appends records to the notifications collection in one batch.
type StoreSink struct {
	store repository.Store
}

func NewStoreSink(s repository.Store) *StoreSink { return &StoreSink{store: s} }

func (s *StoreSink) Deliver(ctx context.Context, recs []models.Notification) error {
	return s.store.CommitBatch(ctx, func(b repository.Batch) {
		for _, n := range recs {
			b.InsertNotification(n)
		}
	})
}

// Fanout delivers to every sink and joins their errors.
type Fanout []Sink

func (f Fanout) Deliver(ctx context.Context, recs []models.Notification) error {
	var errs []error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.Deliver(ctx, recs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
