package model

import "time"

// ServiceType is a catalog entry. Read-only from the queue engine's
// perspective; maintained through the administrative API.
type ServiceType struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:256;not null" json:"name"`
	Description     string    `gorm:"size:1024" json:"description,omitempty"`
	Price           float64   `gorm:"not null" json:"price"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}
