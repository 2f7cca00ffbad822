package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ordermanagement/internal/domain/model"
	repo "ordermanagement/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	maxIdempotencyKeyLen = 255
	maxListLimit         = 100
	anonymousActor       = "anonymous"
)

var errIdempotencyRace = errors.New("idempotency key inserted concurrently")

type OrderUsecase struct {
	tx        repo.TransactionManager
	validator OrderValidator
	customers CustomerGate
	products  ProductGate
	idGen     IDGenerator
	clock     Clock
	log       *logrus.Logger

	cache   OrderCache
	cacheOn bool
	metrics OrderMetrics
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	validator OrderValidator,
	customers CustomerGate,
	products ProductGate,
	idGen IDGenerator,
	clock Clock,
	log *logrus.Logger,
) *OrderUsecase {
	return &OrderUsecase{
		tx:        tx,
		validator: validator,
		customers: customers,
		products:  products,
		idGen:     idGen,
		clock:     clock,
		log:       log,
		cache:     noopCache{},
		metrics:   noopMetrics{},
	}
}

func (u *OrderUsecase) WithCache(c OrderCache) *OrderUsecase {
	if c != nil {
		u.cache = c
		u.cacheOn = true
	}
	return u
}

func (u *OrderUsecase) WithMetrics(m OrderMetrics) *OrderUsecase {
	if m != nil {
		u.metrics = m
	}
	return u
}

type CreateOrderItemInput struct {
	ProductID      string
	ProductName    string
	Quantity       int64
	UnitPriceCents int64
}

type CreateOrderInput struct {
	CustomerID     string
	Items          []CreateOrderItemInput
	IdempotencyKey string
	ActorID        string
}

type ListOrdersInput struct {
	CustomerID string
	Status     string
	Page       int
	Limit      int
}

// CreateOrder は検証→顧客確認→商品確認→金額計算→保存の順に進める。
// 保存前のどこで失敗しても何も書き込まない。
func (u *OrderUsecase) CreateOrder(ctx context.Context, in CreateOrderInput) (OrderOutput, error) {
	in.CustomerID = strings.TrimSpace(in.CustomerID)
	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		return OrderOutput{}, validationError("idempotency key must be at most %d characters", maxIdempotencyKeyLen)
	}

	if err := u.validator.ValidateCreate(in); err != nil {
		return OrderOutput{}, toAppError(err)
	}

	//顧客の存在と有効性
	if err := u.customers.VerifyActive(ctx, in.CustomerID); err != nil {
		u.log.WithFields(logrus.Fields{"customer_id": in.CustomerID}).WithError(err).Warn("customer check failed")
		return OrderOutput{}, toAppError(err)
	}

	//商品の存在（同じIDは1回だけ）
	seen := make(map[string]struct{}, len(in.Items))
	for _, it := range in.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		if err := u.products.VerifyExists(ctx, it.ProductID); err != nil {
			u.log.WithFields(logrus.Fields{"product_id": it.ProductID}).WithError(err).Warn("product check failed")
			return OrderOutput{}, toAppError(err)
		}
	}

	now := u.clock.Now()
	orderID := u.idGen.NewID()
	items := make([]model.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, model.OrderItem{
			ID:             u.idGen.NewID(),
			ProductID:      it.ProductID,
			ProductName:    strings.TrimSpace(it.ProductName),
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			CreatedAt:      now,
		})
	}

	order, err := model.NewOrder(orderID, in.CustomerID, items, now)
	if err != nil {
		return OrderOutput{}, toAppError(err)
	}
	if key != "" {
		order.IdempotencyKey = &key
	}

	var out OrderOutput
	created := false
	var raceCause error

	//注文と明細と監査ログは同じトランザクション
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if key != "" {
			// 同じキーなら同じ結果
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, in.CustomerID, key)
			if err != nil {
				return internalError(err)
			}
			if found {
				return loadOutput(ctx, r, existing, &out)
			}
		}

		if err := r.Orders().Create(ctx, order); err != nil {
			//一意制約違反のときだけ競合扱い。それ以外は500
			if key != "" && errors.Is(err, repo.ErrConflict) {
				raceCause = err
				return errIdempotencyRace
			}
			return internalError(err)
		}

		if err := r.OrderItems().CreateBulk(ctx, order.ID, order.Items); err != nil {
			return internalError(err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorID:      actorOrAnonymous(in.ActorID),
			Action:       model.AuditActionCreateOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   order.ID,
			AfterJSON:    statusJSON(order.Status, order.TotalAmount),
			CreatedAt:    now,
		}); err != nil {
			return internalError(err)
		}

		out = toOrderOutput(order, order.Items)
		created = true
		return nil
	})
	if errors.Is(err, errIdempotencyRace) {
		//競合（同時で同じキーが入った等）は別トランザクションでもう一回検索して同じ結果を返す
		err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, in.CustomerID, key)
			if err != nil {
				return internalError(err)
			}
			if !found {
				return internalError(raceCause)
			}
			return loadOutput(ctx, r, existing, &out)
		})
	}
	if err != nil {
		u.logFailure("create order", err)
		return OrderOutput{}, toAppError(err)
	}

	if created {
		u.metrics.OrderCreated()
		u.log.WithFields(logrus.Fields{
			"order_id":    out.ID,
			"customer_id": out.CustomerID,
			"total_cents": out.TotalCents,
			"items":       len(out.Items),
		}).Info("order created")
	} else {
		u.log.WithFields(logrus.Fields{"order_id": out.ID, "idempotency_key": key}).Info("order replayed by idempotency key")
	}
	return out, nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, orderID string) (OrderOutput, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return OrderOutput{}, validationError("order id is required")
	}

	if u.cacheOn {
		if cached, err := u.cache.Get(ctx, orderID); err == nil {
			u.metrics.CacheLookup(true)
			return toOrderOutput(cached, cached.Items), nil
		}
		u.metrics.CacheLookup(false)
	}

	var order model.Order
	err := u.tx.WithinReadTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return orderNotFound(orderID)
		}
		if err != nil {
			return internalError(err)
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return internalError(err)
		}
		o.Items = items
		order = o
		return nil
	})
	if err != nil {
		u.logFailure("get order", err)
		return OrderOutput{}, toAppError(err)
	}

	if u.cacheOn {
		if err := u.cache.Set(ctx, order); err != nil {
			u.log.WithError(err).WithField("order_id", orderID).Debug("order cache set failed")
		}
	}
	return toOrderOutput(order, order.Items), nil
}

// ListOrders の Page は1始まり。
func (u *OrderUsecase) ListOrders(ctx context.Context, in ListOrdersInput) (OrderListOutput, error) {
	// page/limitの最低限チェック
	if in.Page < 1 {
		return OrderListOutput{}, validationError("invalid page %d", in.Page)
	}
	if in.Limit < 1 || in.Limit > maxListLimit {
		return OrderListOutput{}, validationError("invalid limit %d", in.Limit)
	}

	f := repo.OrderListFilter{
		Page:       in.Page,
		Limit:      in.Limit,
		CustomerID: strings.TrimSpace(in.CustomerID),
	}
	if s := strings.TrimSpace(in.Status); s != "" {
		st, err := model.ParseOrderStatus(s)
		if err != nil {
			return OrderListOutput{}, toAppError(err)
		}
		f.Status = st
	}

	var out OrderListOutput
	err := u.tx.WithinReadTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().List(ctx, f)
		if err != nil {
			return internalError(err)
		}

		outs := make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return internalError(err)
			}
			outs = append(outs, toOrderOutput(o, items))
		}

		out = OrderListOutput{
			Orders:     outs,
			Pagination: newPagination(in.Page, in.Limit, total),
		}
		return nil
	})
	if err != nil {
		u.logFailure("list orders", err)
		return OrderListOutput{}, toAppError(err)
	}
	return out, nil
}

// UpdateOrderStatus はステータスを進めて対応する時刻を記録する。
// 同じステータスへの更新は何もせず現在の注文を返す。
func (u *OrderUsecase) UpdateOrderStatus(ctx context.Context, actorID string, orderID string, status string) (OrderOutput, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return OrderOutput{}, validationError("order id is required")
	}
	next, err := model.ParseOrderStatus(status)
	if err != nil {
		return OrderOutput{}, toAppError(err)
	}

	var out OrderOutput
	var updated model.Order
	changed := false

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 注文取得
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return orderNotFound(orderID)
		}
		if err != nil {
			return internalError(err)
		}

		before := o.Status
		changed, err = o.ApplyStatus(next, u.clock.Now())
		if err != nil {
			return toAppError(err)
		}

		if changed {
			if err := r.Orders().UpdateStatus(ctx, o); err != nil {
				switch {
				case errors.Is(err, repo.ErrConflict):
					return NewAppError(http.StatusConflict, string(model.KindConflict), "order "+orderID+" was modified concurrently, retry")
				case errors.Is(err, repo.ErrNotFound):
					return orderNotFound(orderID)
				default:
					return internalError(err)
				}
			}
			o.Version++

			if err := r.AuditLogs().Create(ctx, model.AuditLog{
				ActorID:      actorOrAnonymous(actorID),
				Action:       model.AuditActionUpdateOrderStatus,
				ResourceType: model.AuditResourceOrder,
				ResourceID:   orderID,
				BeforeJSON:   statusJSON(before, o.TotalAmount),
				AfterJSON:    statusJSON(o.Status, o.TotalAmount),
				CreatedAt:    o.UpdatedAt,
			}); err != nil {
				return internalError(err)
			}
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return internalError(err)
		}
		o.Items = items
		updated = o
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		u.logFailure("update order status", err)
		return OrderOutput{}, toAppError(err)
	}

	if changed {
		u.refreshCache(ctx, updated)
		u.metrics.StatusChanged(next)
		u.log.WithFields(logrus.Fields{"order_id": orderID, "status": next, "actor": actorOrAnonymous(actorID)}).Info("order status updated")
	}
	return out, nil
}

// ListOrderEvents は注文の監査ログを新しい順で返す。
func (u *OrderUsecase) ListOrderEvents(ctx context.Context, orderID string) ([]OrderEventOutput, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return []OrderEventOutput{}, validationError("order id is required")
	}

	var outs []OrderEventOutput
	err := u.tx.WithinReadTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Orders().FindByID(ctx, orderID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return orderNotFound(orderID)
			}
			return internalError(err)
		}

		rt := model.AuditResourceOrder
		logs, err := r.AuditLogs().List(ctx, repo.AuditLogFilter{
			ResourceType: &rt,
			ResourceID:   &orderID,
			Limit:        100,
		})
		if err != nil {
			return internalError(err)
		}

		outs = make([]OrderEventOutput, 0, len(logs))
		for _, l := range logs {
			outs = append(outs, toOrderEventOutput(l))
		}
		return nil
	})
	if err != nil {
		u.logFailure("list order events", err)
		return []OrderEventOutput{}, toAppError(err)
	}
	return outs, nil
}

// refreshCache はcommit後の注文でキャッシュを上書きする。書けなければキーを消す。
// どちらも失敗したら CACHE_TTL の間は古い注文が返りうる。
func (u *OrderUsecase) refreshCache(ctx context.Context, o model.Order) {
	if !u.cacheOn {
		return
	}
	err := u.cache.Set(ctx, o)
	if err == nil {
		return
	}
	if delErr := u.cache.Delete(ctx, o.ID); delErr != nil {
		u.log.WithError(delErr).WithField("order_id", o.ID).Warn("order cache invalidation failed")
		return
	}
	u.log.WithError(err).WithField("order_id", o.ID).Debug("order cache set failed, key deleted")
}

func loadOutput(ctx context.Context, r repo.TxRepos, o model.Order, out *OrderOutput) error {
	items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return internalError(err)
	}
	*out = toOrderOutput(o, items)
	return nil
}

func (u *OrderUsecase) logFailure(op string, err error) {
	cause := err
	if ae, ok := AsAppError(err); ok {
		if ae.Status < http.StatusInternalServerError {
			return
		}
		if ae.cause != nil {
			cause = ae.cause
		}
	}
	u.log.WithError(cause).WithField("op", op).Error("order operation failed")
}

func orderNotFound(orderID string) error {
	return toAppError(model.NewDomainError(model.KindOrderNotFound, "order not found with id %s", orderID))
}

func actorOrAnonymous(actorID string) string {
	if strings.TrimSpace(actorID) == "" {
		return anonymousActor
	}
	return actorID
}

func statusJSON(status model.OrderStatus, totalCents int64) string {
	b, _ := json.Marshal(struct {
		Status     model.OrderStatus `json:"status"`
		TotalCents int64             `json:"total_cents"`
	}{status, totalCents})
	return string(b)
}
