package model

import "time"

// Client is a person who joined the walk-in queue. ArrivedAt is assigned by
// the store clock at insert time and never changes afterwards; repeat visits
// are modeled as new Client rows.
type Client struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:256;not null" json:"name"`
	Phone         string    `gorm:"size:64" json:"phone,omitempty"`
	ServiceTypeID *int64    `gorm:"index" json:"service_type_id,omitempty"`
	ArrivedAt     time.Time `gorm:"not null;autoCreateTime;index" json:"arrived_at"`

	// Associations
	ServiceType *ServiceType `gorm:"foreignKey:ServiceTypeID" json:"service_type,omitempty"`
}
