package services

import (
	"time"

	"github.com/baharkarakas/wallet-ops/internal/models"
	"github.com/baharkarakas/wallet-ops/internal/repository"
)

// LedgerContext is handed to every core operation: the store it must use and
// the admin on whose behalf it runs. Nothing is read from ambient state.
type LedgerContext struct {
	Store repository.Store
	Admin models.AdminIdentity
}

// Options shared by the services.
type Options struct {
	// MaxAttempts bounds conflict retries of one store transaction.
	MaxAttempts int
	// Now is the clock; defaults to time.Now in UTC.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now().UTC()
	}
	return time.Now().UTC()
}

func (o Options) attempts() int {
	if o.MaxAttempts <= 0 {
		return repository.DefaultMaxAttempts
	}
	return o.MaxAttempts
}
