package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ordermanagement/internal/domain/model"
	repo "ordermanagement/internal/repository"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page  int
	Limit int
	Q     string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, validationError("invalid page %d", in.Page)
	}
	if in.Limit < 1 || in.Limit > maxListLimit {
		return ProductListOutput{}, validationError("invalid limit %d", in.Limit)
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, validationError("q too long")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:  in.Page,
		Limit: in.Limit,
		Q:     strings.TrimSpace(in.Q),
	})
	if err != nil {
		return ProductListOutput{}, internalError(err)
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID string) (model.Product, error) {
	productID = strings.TrimSpace(productID)
	if !model.IsValidProductID(productID) {
		return model.Product{}, validationError("invalid product id %s", productID)
	}
	p, err := u.find(ctx, productID)
	if err != nil {
		return model.Product{}, toAppError(err)
	}
	return p, nil
}

// VerifyExists は ProductGate の実装。非公開の商品は存在しない扱い。
func (u *ProductUsecase) VerifyExists(ctx context.Context, productID string) error {
	_, err := u.find(ctx, productID)
	return err
}

func (u *ProductUsecase) find(ctx context.Context, productID string) (model.Product, error) {
	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
		return model.Product{}, model.NewDomainError(model.KindProductNotFound, "product not found with id %s", productID)
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("find product %s: %w", productID, err)
	}
	return p, nil
}
