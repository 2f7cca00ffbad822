package seed

import (
	"context"
	"fmt"

	"ordermanagement/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Customers は開発用の顧客データ。
func Customers() []model.Customer {
	return []model.Customer{
		{ID: "CUST1234", Name: "John Cena", Email: "johncena@16.com", Status: model.CustomerStatusActive},
		{ID: "CUST5678", Name: "The Rock", Email: "therock@08.com", Status: model.CustomerStatusActive},
		{ID: "CUST9012", Name: "Stone Cold", Email: "stonecold@316.com", Status: model.CustomerStatusActive},
		{ID: "CUST3456", Name: "Andre Giant", Email: "andre@87.com", Status: model.CustomerStatusInactive},
	}
}

// Products は開発用の商品データ。
func Products() []model.Product {
	return []model.Product{
		{ID: "PRD12345", Name: "Product 1", Description: "Description 1", PriceCents: 100, IsActive: true},
		{ID: "PRD12346", Name: "Product 2", Description: "Description 2", PriceCents: 200, IsActive: true},
		{ID: "PRD12347", Name: "Product 3", Description: "Description 3", PriceCents: 300, IsActive: true},
		{ID: "PRD12348", Name: "Product 4", Description: "Description 4", PriceCents: 400, IsActive: true},
	}
}

// Gorm は顧客と商品を投入する。既にあるIDはそのまま。
func Gorm(ctx context.Context, db *gorm.DB) error {
	customers := Customers()
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&customers).Error; err != nil {
		return fmt.Errorf("seed customers: %w", err)
	}
	products := Products()
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error; err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	return nil
}
