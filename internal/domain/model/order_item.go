package model

import "time"

type OrderItem struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID        string    `gorm:"type:varchar(36);not null;index" json:"order_id"`
	Position       int       `gorm:"not null" json:"position"`
	ProductID      string    `gorm:"type:varchar(16);not null;index" json:"product_id"`
	ProductName    string    `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity       int64     `gorm:"not null" json:"quantity"`
	UnitPriceCents int64     `gorm:"not null" json:"unit_price_cents"`
	LineTotalCents int64     `gorm:"not null" json:"line_total_cents"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}
