package repository

import (
	"context"
	"errors"

	"ordermanagement/internal/domain/model"
)

var (
	ErrNotFound = errors.New("not found")

	//楽観ロックの version が合わない、または一意制約違反
	ErrConflict = errors.New("conflict")
)

// 一覧検索
type ProductListQuery struct {
	Page  int
	Limit int
	Q     string
}

// 商品の取得だけを約束。登録・更新は別システムの責務。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id string) (model.Product, error)
}
