package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"salon-queue-backend/internal/notification"
	"salon-queue-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	webpush *webpush.Options
	pool    *notification.WorkerPool
}

// NewHandler creates a new API handler. Both webpushOptions and pool may be
// nil when push is not configured; the queue engine works without them.
func NewHandler(s store.Store, webpushOptions *webpush.Options, pool *notification.WorkerPool) *Handler {
	return &Handler{
		store:   s,
		webpush: webpushOptions,
		pool:    pool,
	}
}
