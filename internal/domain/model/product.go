package model

import (
	"regexp"
	"time"
)

var productIDPattern = regexp.MustCompile(`^PRD\d{5}$`)

// IsValidProductID は PRD + 数字5桁かどうか。
func IsValidProductID(id string) bool {
	return productIDPattern.MatchString(id)
}

type Product struct {
	ID          string    `gorm:"primaryKey;type:varchar(16)" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	PriceCents  int64     `gorm:"not null" json:"price_cents"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
