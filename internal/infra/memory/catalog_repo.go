package memory

import (
	"context"
	"sort"
	"strings"

	"ordermanagement/internal/domain/model"
	repo "ordermanagement/internal/repository"
)

type auditLogRepo struct {
	src func() *state
	lk  locker
	ro  bool
}

func (r *auditLogRepo) Create(ctx context.Context, log model.AuditLog) error {
	if r.ro {
		return ErrReadOnlyTx
	}
	r.lk.Lock()
	defer r.lk.Unlock()

	st := r.src()
	st.nextAuditID++
	log.ID = st.nextAuditID
	st.auditLogs = append(st.auditLogs, log)
	return nil
}

func (r *auditLogRepo) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	logs := r.src().auditLogs
	out := make([]model.AuditLog, 0)
	//新しい順
	for i := len(logs) - 1; i >= 0; i-- {
		l := logs[i]
		if filter.Action != nil && l.Action != *filter.Action {
			continue
		}
		if filter.ResourceType != nil && l.ResourceType != *filter.ResourceType {
			continue
		}
		if filter.ResourceID != nil && l.ResourceID != *filter.ResourceID {
			continue
		}
		if offset > 0 {
			offset--
			continue
		}
		out = append(out, l)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type customerRepo struct {
	src func() *state
	lk  locker
}

func (r *customerRepo) FindByID(ctx context.Context, id string) (model.Customer, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()

	c, ok := r.src().customers[id]
	if !ok {
		return model.Customer{}, repo.ErrNotFound
	}
	return c, nil
}

type productRepo struct {
	src func() *state
	lk  locker
}

func (r *productRepo) FindByID(ctx context.Context, id string) (model.Product, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()

	p, ok := r.src().products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r *productRepo) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	r.lk.RLock()
	needle := strings.ToLower(strings.TrimSpace(q.Q))
	matched := make([]model.Product, 0)
	for _, p := range r.src().products {
		if !p.IsActive {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		matched = append(matched, p)
	}
	r.lk.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	offset := (q.Page - 1) * q.Limit
	if offset < 0 || offset >= len(matched) {
		return []model.Product{}, total, nil
	}
	end := offset + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}
