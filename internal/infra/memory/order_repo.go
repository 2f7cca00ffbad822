package memory

import (
	"context"
	"sort"

	"ordermanagement/internal/domain/model"
	repo "ordermanagement/internal/repository"
)

type orderRepo struct {
	src func() *state
	lk  locker
	ro  bool
}

func (r *orderRepo) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()

	o, ok := r.src().orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r *orderRepo) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}

	r.lk.RLock()
	matched := make([]model.Order, 0)
	for _, o := range r.src().orders {
		if f.CustomerID != "" && o.CustomerID != f.CustomerID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		matched = append(matched, o)
	}
	r.lk.RUnlock()

	//新しい順（同時刻はID降順）
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	offset := (f.Page - 1) * f.Limit
	if offset >= len(matched) {
		return []model.Order{}, total, nil
	}
	end := offset + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *orderRepo) Create(ctx context.Context, order model.Order) error {
	if r.ro {
		return ErrReadOnlyTx
	}
	r.lk.Lock()
	defer r.lk.Unlock()

	st := r.src()
	if _, exists := st.orders[order.ID]; exists {
		return repo.ErrConflict
	}
	if order.IdempotencyKey != nil {
		for _, o := range st.orders {
			if o.CustomerID == order.CustomerID && o.IdempotencyKey != nil && *o.IdempotencyKey == *order.IdempotencyKey {
				return repo.ErrConflict
			}
		}
	}

	//明細は OrderItems 側で持つ
	order.Items = nil
	st.orders[order.ID] = order
	return nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, order model.Order) error {
	if r.ro {
		return ErrReadOnlyTx
	}
	r.lk.Lock()
	defer r.lk.Unlock()

	st := r.src()
	cur, ok := st.orders[order.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if cur.Version != order.Version {
		return repo.ErrConflict
	}

	cur.Status = order.Status
	cur.ConfirmedAt = order.ConfirmedAt
	cur.ShippedAt = order.ShippedAt
	cur.DeliveredAt = order.DeliveredAt
	cur.CancelledAt = order.CancelledAt
	cur.UpdatedAt = order.UpdatedAt
	cur.Version++
	st.orders[order.ID] = cur
	return nil
}

func (r *orderRepo) FindByIdempotencyKey(ctx context.Context, customerID string, key string) (model.Order, bool, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()

	for _, o := range r.src().orders {
		if o.CustomerID == customerID && o.IdempotencyKey != nil && *o.IdempotencyKey == key {
			return o, true, nil
		}
	}
	return model.Order{}, false, nil
}

type orderItemRepo struct {
	src func() *state
	lk  locker
	ro  bool
}

func (r *orderItemRepo) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	if r.ro {
		return ErrReadOnlyTx
	}
	if len(items) == 0 {
		return nil
	}

	r.lk.Lock()
	defer r.lk.Unlock()

	rows := make([]model.OrderItem, len(items))
	copy(rows, items)
	for i := range rows {
		rows[i].OrderID = orderID
	}
	st := r.src()
	st.items[orderID] = append(st.items[orderID], rows...)
	return nil
}

func (r *orderItemRepo) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()

	rows := r.src().items[orderID]
	out := make([]model.OrderItem, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}
