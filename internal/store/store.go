package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"salon-queue-backend/internal/model"
)

// Store is the queue engine's view of the record store. Lifecycle state is
// never held in memory; every call derives it fresh from the persisted
// Client and ServiceEvent rows.
type Store interface {
	// DB exposes the underlying handle for administrative plumbing
	// (catalog CRUD, subscription upserts) that lives outside the engine.
	DB() *gorm.DB

	RegisterClient(ctx context.Context, input RegisterClientInput) (model.Client, error)
	UpdateClient(ctx context.Context, id int64, input RegisterClientInput) (model.Client, error)
	DeleteClient(ctx context.Context, id int64) error

	WaitingQueue(ctx context.Context) ([]model.Client, error)
	PeekNext(ctx context.Context) (model.Client, error)
	CallNext(ctx context.Context) (model.Client, error)
	Finish(ctx context.Context, eventID int64, amountPaid *float64) (model.ServiceEvent, error)
	ListInService(ctx context.Context) ([]InServiceEntry, error)

	AverageWaitSeconds(ctx context.Context) (float64, bool, error)
	DailyReport(ctx context.Context, limitDays int) ([]DailyRow, error)
	AggregateTotals(ctx context.Context) (Totals, error)
	TopServices(ctx context.Context, n int) ([]ServiceUsage, error)
	RecentFinished(ctx context.Context, limit int) ([]FinishedEntry, error)
}

// RegisterClientInput carries the caller-supplied client attributes. The
// arrival timestamp is assigned by the store, never by the caller.
type RegisterClientInput struct {
	Name          string
	Phone         string
	ServiceTypeID *int64
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// RegisterClient creates a new waiting client. The referenced service type,
// if any, must exist.
func (s *gormStore) RegisterClient(ctx context.Context, input RegisterClientInput) (model.Client, error) {
	if strings.TrimSpace(input.Name) == "" {
		return model.Client{}, ErrNameRequired
	}

	client := model.Client{
		Name:          strings.TrimSpace(input.Name),
		Phone:         input.Phone,
		ServiceTypeID: input.ServiceTypeID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkServiceType(tx, input.ServiceTypeID); err != nil {
			return err
		}
		if err := tx.Create(&client).Error; err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Client{}, err
	}
	return client, nil
}

// UpdateClient applies an administrative edit. The arrival timestamp is
// immutable and left untouched.
func (s *gormStore) UpdateClient(ctx context.Context, id int64, input RegisterClientInput) (model.Client, error) {
	if strings.TrimSpace(input.Name) == "" {
		return model.Client{}, ErrNameRequired
	}

	var client model.Client
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&client, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return fmt.Errorf("failed to load client %d: %w", id, err)
		}
		if err := checkServiceType(tx, input.ServiceTypeID); err != nil {
			return err
		}

		client.Name = strings.TrimSpace(input.Name)
		client.Phone = input.Phone
		client.ServiceTypeID = input.ServiceTypeID
		if err := tx.Save(&client).Error; err != nil {
			return fmt.Errorf("failed to update client %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return model.Client{}, err
	}
	return client, nil
}

// DeleteClient removes a client that has no service history. Clients
// referenced by a ServiceEvent are never deleted.
func (s *gormStore) DeleteClient(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client model.Client
		if err := tx.First(&client, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return fmt.Errorf("failed to load client %d: %w", id, err)
		}

		var references int64
		if err := tx.Model(&model.ServiceEvent{}).Where("client_id = ?", id).Count(&references).Error; err != nil {
			return fmt.Errorf("failed to count events for client %d: %w", id, err)
		}
		if references > 0 {
			return ErrClientReferenced
		}

		if err := tx.Delete(&model.Client{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete client %d: %w", id, err)
		}
		return nil
	})
}

func checkServiceType(tx *gorm.DB, id *int64) error {
	if id == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&model.ServiceType{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up service type %d: %w", *id, err)
	}
	if count == 0 {
		return ErrServiceNotFound
	}
	return nil
}
