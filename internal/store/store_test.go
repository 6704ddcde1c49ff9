package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"salon-queue-backend/internal/db"
	"salon-queue-backend/internal/model"
)

// newTestStore opens a private in-memory sqlite database with the full
// schema. A single connection keeps concurrent transactions serialized the
// same way the production store serializes claims.
func newTestStore(t *testing.T) (*gorm.DB, Store) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb, NewGormStore(gdb)
}

func seedClient(t *testing.T, gdb *gorm.DB, name string, arrivedAt time.Time, serviceTypeID *int64) model.Client {
	t.Helper()
	client := model.Client{Name: name, ArrivedAt: arrivedAt, ServiceTypeID: serviceTypeID}
	require.NoError(t, gdb.Create(&client).Error)
	return client
}

func seedServiceType(t *testing.T, gdb *gorm.DB, name string, price float64) model.ServiceType {
	t.Helper()
	service := model.ServiceType{Name: name, Price: price, DurationMinutes: 30}
	require.NoError(t, gdb.Create(&service).Error)
	return service
}

func TestRegisterClientAssignsArrival(t *testing.T) {
	_, s := newTestStore(t)

	client, err := s.RegisterClient(context.Background(), RegisterClientInput{Name: "Ana", Phone: "555-0101"})
	require.NoError(t, err)

	assert.NotZero(t, client.ID)
	assert.Equal(t, "Ana", client.Name)
	assert.False(t, client.ArrivedAt.IsZero(), "arrival timestamp must be assigned at insert")
	assert.WithinDuration(t, time.Now(), client.ArrivedAt, 5*time.Second)
}

func TestRegisterClientRequiresName(t *testing.T) {
	gdb, s := newTestStore(t)

	for _, name := range []string{"", "   "} {
		_, err := s.RegisterClient(context.Background(), RegisterClientInput{Name: name})
		assert.ErrorIs(t, err, ErrNameRequired)
	}

	var count int64
	require.NoError(t, gdb.Model(&model.Client{}).Count(&count).Error)
	assert.Zero(t, count, "no record may be created for a rejected registration")
}

func TestRegisterClientUnknownService(t *testing.T) {
	gdb, s := newTestStore(t)

	missing := int64(42)
	_, err := s.RegisterClient(context.Background(), RegisterClientInput{Name: "Bea", ServiceTypeID: &missing})
	assert.ErrorIs(t, err, ErrServiceNotFound)

	var count int64
	require.NoError(t, gdb.Model(&model.Client{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateClientKeepsArrival(t *testing.T) {
	gdb, s := newTestStore(t)

	arrived := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	client := seedClient(t, gdb, "Caio", arrived, nil)

	updated, err := s.UpdateClient(context.Background(), client.ID, RegisterClientInput{Name: "Caio Silva", Phone: "555-0102"})
	require.NoError(t, err)

	assert.Equal(t, "Caio Silva", updated.Name)
	assert.Equal(t, "555-0102", updated.Phone)
	assert.Equal(t, arrived.Unix(), updated.ArrivedAt.Unix(), "arrival timestamp is immutable")
}

func TestUpdateClientNotFound(t *testing.T) {
	_, s := newTestStore(t)

	_, err := s.UpdateClient(context.Background(), 999, RegisterClientInput{Name: "Nobody"})
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestDeleteClientReferencedByEvent(t *testing.T) {
	gdb, s := newTestStore(t)

	client := seedClient(t, gdb, "Dora", time.Now().Add(-time.Hour), nil)
	now := time.Now()
	event := model.ServiceEvent{ClientID: client.ID, EnteredAt: client.ArrivedAt, CalledAt: now, FinishedAt: &now}
	require.NoError(t, gdb.Create(&event).Error)

	err := s.DeleteClient(context.Background(), client.ID)
	assert.ErrorIs(t, err, ErrClientReferenced)

	var count int64
	require.NoError(t, gdb.Model(&model.Client{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "referenced client must survive")
}

func TestDeleteClientWithoutHistory(t *testing.T) {
	gdb, s := newTestStore(t)

	client := seedClient(t, gdb, "Eli", time.Now(), nil)
	require.NoError(t, s.DeleteClient(context.Background(), client.ID))

	var count int64
	require.NoError(t, gdb.Model(&model.Client{}).Count(&count).Error)
	assert.Zero(t, count)

	assert.ErrorIs(t, s.DeleteClient(context.Background(), client.ID), ErrClientNotFound)
}
