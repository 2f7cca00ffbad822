package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ordermanagement/internal/domain/model"
	repo "ordermanagement/internal/repository"
)

type CustomerUsecase struct {
	customers repo.CustomerRepository
}

func NewCustomerUsecase(customers repo.CustomerRepository) *CustomerUsecase {
	return &CustomerUsecase{customers: customers}
}

// VerifyActive は CustomerGate の実装。
func (u *CustomerUsecase) VerifyActive(ctx context.Context, customerID string) error {
	c, err := u.find(ctx, customerID)
	if err != nil {
		return err
	}
	if !c.IsActive() {
		return model.NewDomainError(model.KindCustomerInactive, "customer %s is not active", customerID)
	}
	return nil
}

func (u *CustomerUsecase) GetCustomer(ctx context.Context, customerID string) (model.Customer, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return model.Customer{}, validationError("customer id is required")
	}
	c, err := u.find(ctx, customerID)
	if err != nil {
		return model.Customer{}, toAppError(err)
	}
	return c, nil
}

func (u *CustomerUsecase) find(ctx context.Context, customerID string) (model.Customer, error) {
	c, err := u.customers.FindByID(ctx, customerID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Customer{}, model.NewDomainError(model.KindCustomerNotFound, "customer not found with id %s", customerID)
	}
	if err != nil {
		return model.Customer{}, fmt.Errorf("find customer %s: %w", customerID, err)
	}
	return c, nil
}
