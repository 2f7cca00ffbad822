package validator

import (
	"strings"

	"ordermanagement/internal/domain/model"
	"ordermanagement/internal/usecase"
)

const (
	MinQuantity       = 1
	MaxQuantity       = 99
	MinUnitPriceCents = 1
	MaxUnitPriceCents = 999999
)

type orderValidator struct{}

// Usecaseは interface を依存注入
func NewOrderValidator() usecase.OrderValidator {
	return &orderValidator{}
}

// ValidateCreate は注文作成の入力を検証する。最初に見つかった違反だけを返す。
func (v *orderValidator) ValidateCreate(in usecase.CreateOrderInput) error {
	// 必須チェック
	if strings.TrimSpace(in.CustomerID) == "" {
		return invalid("customer id is required")
	}

	// 明細数
	if len(in.Items) < model.MinOrderItems || len(in.Items) > model.MaxOrderItems {
		return invalid("order must have between %d and %d items", model.MinOrderItems, model.MaxOrderItems)
	}

	seen := make(map[string]struct{}, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity < MinQuantity || it.Quantity > MaxQuantity {
			return invalid("invalid quantity for product %s", it.ProductID)
		}
		if it.UnitPriceCents < MinUnitPriceCents || it.UnitPriceCents > MaxUnitPriceCents {
			return invalid("invalid unit price for product %s", it.ProductID)
		}
		if !model.IsValidProductID(it.ProductID) {
			return invalid("invalid product id %s", it.ProductID)
		}
		// 先に出てきた方を正とする
		if _, dup := seen[it.ProductID]; dup {
			return invalid("duplicate product id %s", it.ProductID)
		}
		seen[it.ProductID] = struct{}{}
	}

	return nil
}

func invalid(format string, args ...any) error {
	return model.NewDomainError(model.KindValidation, format, args...)
}
