package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"salon-queue-backend/internal/model"
)

// waitingFilter selects clients in the derived Waiting state: no service
// event exists for them yet. A client with an open event is in service, a
// client with closed events is finished and never re-queued.
const waitingFilter = "NOT EXISTS (SELECT 1 FROM service_events WHERE service_events.client_id = clients.id)"

// fifoOrder is the sole queue discipline: earliest arrival first, identical
// timestamps broken by lower id, so the order is strict and deterministic.
const fifoOrder = "clients.arrived_at ASC, clients.id ASC"

// WaitingQueue derives the current waiting set, rebuilt fresh on every call.
func (s *gormStore) WaitingQueue(ctx context.Context) ([]model.Client, error) {
	var clients []model.Client
	err := s.db.WithContext(ctx).
		Where(waitingFilter).
		Order(fifoOrder).
		Find(&clients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to derive waiting queue: %w", err)
	}
	return clients, nil
}

// PeekNext returns the head of the waiting queue without claiming it. This is
// what the public "who is next" display uses; it never mutates state.
func (s *gormStore) PeekNext(ctx context.Context) (model.Client, error) {
	var head model.Client
	err := s.db.WithContext(ctx).
		Where(waitingFilter).
		Order(fifoOrder).
		First(&head).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Client{}, ErrEmptyQueue
	}
	if err != nil {
		return model.Client{}, fmt.Errorf("failed to peek queue head: %w", err)
	}
	return head, nil
}
