package usecase

import (
	"context"
	"errors"
	"time"

	"ordermanagement/internal/domain/model"
)

type IDGenerator interface {
	NewID() string
}

type Clock interface {
	Now() time.Time
}

// usecaseがValidatorInterfaceに依存する約束
type OrderValidator interface {
	ValidateCreate(in CreateOrderInput) error
}

// 顧客の存在と有効性の確認。CustomerNotFound / CustomerInactive のドメインエラーを返す。
type CustomerGate interface {
	VerifyActive(ctx context.Context, customerID string) error
}

// 商品の存在確認。ProductNotFound のドメインエラーを返す。
type ProductGate interface {
	VerifyExists(ctx context.Context, productID string) error
}

// 注文の読み取りキャッシュ。エラーはすべてミス扱いにする。
type OrderCache interface {
	Get(ctx context.Context, orderID string) (model.Order, error)
	Set(ctx context.Context, order model.Order) error
	Delete(ctx context.Context, orderID string) error
}

type OrderMetrics interface {
	OrderCreated()
	StatusChanged(status model.OrderStatus)
	CacheLookup(hit bool)
}

var errCacheDisabled = errors.New("cache disabled")

type noopCache struct{}

func (noopCache) Get(ctx context.Context, orderID string) (model.Order, error) {
	return model.Order{}, errCacheDisabled
}
func (noopCache) Set(ctx context.Context, order model.Order) error { return nil }
func (noopCache) Delete(ctx context.Context, orderID string) error { return nil }

type noopMetrics struct{}

func (noopMetrics) OrderCreated()                   {}
func (noopMetrics) StatusChanged(model.OrderStatus) {}
func (noopMetrics) CacheLookup(hit bool)            {}
