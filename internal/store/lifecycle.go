package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"salon-queue-backend/internal/model"
)

// maxClaimAttempts bounds the optimistic retry loop in CallNext. Each retry
// re-derives the queue, so losing a claim race converges on the next client
// or on an empty queue.
const maxClaimAttempts = 5

// CallNext takes the head of the waiting queue and opens a service event for
// it. The selection and the insert run in one transaction, and the partial
// unique index on open events rejects a competing claim for the same client;
// on that conflict the whole claim is retried against the re-derived queue.
// Under concurrent calls each client is therefore called exactly once.
func (s *gormStore) CallNext(ctx context.Context) (model.Client, error) {
	var lastErr error
	for attempt := 0; attempt < maxClaimAttempts; attempt++ {
		client, err := s.claimNext(ctx)
		if err == nil || !isUniqueViolation(err) {
			return client, err
		}
		lastErr = err
	}
	return model.Client{}, fmt.Errorf("failed to claim queue head after %d attempts: %w", maxClaimAttempts, lastErr)
}

func (s *gormStore) claimNext(ctx context.Context) (model.Client, error) {
	var head model.Client
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where(waitingFilter).Order(fifoOrder).First(&head).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmptyQueue
		}
		if err != nil {
			return fmt.Errorf("failed to select queue head: %w", err)
		}

		now := time.Now().UTC()
		event := model.ServiceEvent{
			ClientID:      head.ID,
			ServiceTypeID: head.ServiceTypeID,
			// EnteredAt carries the registration time so wait metrics
			// measure the true arrival-to-call delay.
			EnteredAt: head.ArrivedAt,
			CalledAt:  now,
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to claim client %d: %w", head.ID, err)
		}
		return nil
	})
	if err != nil {
		return model.Client{}, err
	}
	return head, nil
}

// Finish closes an open service event exactly once, recording the elapsed
// whole seconds and, if supplied, the non-negative amount paid. Finishing a
// missing event yields ErrEventNotFound; finishing twice ErrAlreadyFinished.
func (s *gormStore) Finish(ctx context.Context, eventID int64, amountPaid *float64) (model.ServiceEvent, error) {
	var event model.ServiceEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("failed to load event %d: %w", eventID, err)
		}
		if event.FinishedAt != nil {
			return ErrAlreadyFinished
		}

		now := time.Now().UTC()
		updates := map[string]any{"finished_at": now}

		// A zero EnteredAt cannot produce a meaningful duration; the elapsed
		// column is left null rather than failing the whole operation.
		if !event.EnteredAt.IsZero() {
			elapsed := int64(now.Sub(event.EnteredAt).Seconds())
			updates["elapsed_seconds"] = elapsed
			event.ElapsedSeconds = &elapsed
		}
		if amountPaid != nil {
			paid := *amountPaid
			if paid < 0 {
				paid = 0
			}
			updates["amount_paid"] = paid
			event.AmountPaid = &paid
		}

		// The finished_at guard makes the close atomic: a concurrent Finish
		// that slipped in between the read and this update matches no row.
		res := tx.Model(&model.ServiceEvent{}).
			Where("id = ? AND finished_at IS NULL", event.ID).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to finish event %d: %w", event.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyFinished
		}
		event.FinishedAt = &now
		return nil
	})
	if err != nil {
		return model.ServiceEvent{}, err
	}
	return event, nil
}

// InServiceEntry is one open episode with its client and service detail.
type InServiceEntry struct {
	Event   model.ServiceEvent `json:"event"`
	Client  model.Client       `json:"client"`
	Service *model.ServiceType `json:"service,omitempty"`
}

// ListInService returns every open service event, most recently called first.
func (s *gormStore) ListInService(ctx context.Context) ([]InServiceEntry, error) {
	var events []model.ServiceEvent
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("ServiceType").
		Where("finished_at IS NULL").
		Order("called_at DESC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list open events: %w", err)
	}

	entries := make([]InServiceEntry, 0, len(events))
	for _, e := range events {
		entries = append(entries, InServiceEntry{
			Event:   e,
			Client:  e.Client,
			Service: e.ServiceType,
		})
	}
	return entries, nil
}

// isUniqueViolation reports whether err is a unique-index conflict. GORM
// translates driver errors to ErrDuplicatedKey where supported; the message
// check covers drivers that predate the translation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}
