package repository

import (
	"context"

	"ordermanagement/internal/domain/model"
)

type CustomerRepository interface {
	FindByID(ctx context.Context, id string) (model.Customer, error)
}
