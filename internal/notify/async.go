package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/baharkarakas/wallet-ops/internal/logger"
	"github.com/baharkarakas/wallet-ops/internal/metrics"
	"github.com/baharkarakas/wallet-ops/internal/models"
	"github.com/baharkarakas/wallet-ops/internal/worker"
)

// AsyncSink moves delivery off the request path onto a worker pool. The
// request context is detached so a finished request does not cancel it.
type AsyncSink struct {
	inner   Sink
	pool    *worker.Pool
	timeout time.Duration
}

func NewAsyncSink(inner Sink, pool *worker.Pool, timeout time.Duration) *AsyncSink {
	return &AsyncSink{inner: inner, pool: pool, timeout: timeout}
}

func (s *AsyncSink) Deliver(ctx context.Context, recs []models.Notification) error {
	log := logger.From(ctx)
	bg := context.WithoutCancel(ctx)
	ok := s.pool.TrySubmit(func() {
		dctx, cancel := context.WithTimeout(bg, s.timeout)
		defer cancel()
		if err := s.inner.Deliver(dctx, recs); err != nil {
			metrics.NotificationsFailed.Add(float64(len(recs)))
			log.Warn("async notification delivery failed", "count", len(recs), "err", err)
		}
	})
	if !ok {
		return fmt.Errorf("notify: worker queue full, dropped %d records", len(recs))
	}
	return nil
}
