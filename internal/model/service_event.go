package model

import "time"

// ServiceEvent is the authoritative record of one service episode. It is
// created when a client is called, closed exactly once when the episode
// finishes, and never deleted. A client's lifecycle state (waiting, in
// service, finished) is derived from these rows, not stored.
//
// At most one event per client may have a null FinishedAt; a partial unique
// index created in db.Migrate enforces this at the store level.
type ServiceEvent struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	ClientID       int64      `gorm:"not null;index" json:"client_id"`
	ServiceTypeID  *int64     `gorm:"index" json:"service_type_id,omitempty"`
	EnteredAt      time.Time  `gorm:"not null" json:"entered_at"`
	CalledAt       time.Time  `gorm:"not null" json:"called_at"`
	FinishedAt     *time.Time `gorm:"index" json:"finished_at,omitempty"`
	ElapsedSeconds *int64     `json:"elapsed_seconds,omitempty"`
	AmountPaid     *float64   `json:"amount_paid,omitempty"`

	// Associations
	Client      Client       `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT" json:"-"`
	ServiceType *ServiceType `gorm:"foreignKey:ServiceTypeID" json:"-"`
}
