package entity

import (
	"time"

	"gorm.io/gorm"
)

// Airport represents one Swedavia airport from the reference table
type Airport struct {
	IATA      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
}
