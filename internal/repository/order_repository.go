package repository

import (
	"context"

	"ordermanagement/internal/domain/model"
)

// 注文一覧の絞り込み条件。Page は1始まり。
type OrderListFilter struct {
	Page       int
	Limit      int
	CustomerID string
	Status     model.OrderStatus
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
	//同じ顧客・同じ冪等キーの注文が既にあれば ErrConflict。
	Create(ctx context.Context, order model.Order) error

	//order.Version が保存済みの version と一致するときだけ更新して version を1つ進める。
	//一致しなければ ErrConflict。
	UpdateStatus(ctx context.Context, order model.Order) error

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, customerID string, key string) (model.Order, bool, error)
}

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error)
}
