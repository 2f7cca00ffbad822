// Package memory は repository の interface をメモリ上のmapで実装する。
// 開発・テスト用。プロセスが落ちると中身は消える。
package memory

import (
	"context"
	"errors"
	"sync"

	"ordermanagement/internal/domain/model"
	repo "ordermanagement/internal/repository"
)

var ErrReadOnlyTx = errors.New("write in read-only transaction")

type locker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

// Tx内はStore全体のロックを持っているので、repo側では何もしない
type noopLocker struct{}

func (noopLocker) Lock()    {}
func (noopLocker) Unlock()  {}
func (noopLocker) RLock()   {}
func (noopLocker) RUnlock() {}

type state struct {
	orders      map[string]model.Order
	items       map[string][]model.OrderItem
	auditLogs   []model.AuditLog
	nextAuditID int64
	customers   map[string]model.Customer
	products    map[string]model.Product
}

func newState() *state {
	return &state{
		orders:    make(map[string]model.Order),
		items:     make(map[string][]model.OrderItem),
		customers: make(map[string]model.Customer),
		products:  make(map[string]model.Product),
	}
}

func (s *state) clone() *state {
	c := &state{
		orders:      make(map[string]model.Order, len(s.orders)),
		items:       make(map[string][]model.OrderItem, len(s.items)),
		auditLogs:   make([]model.AuditLog, len(s.auditLogs)),
		nextAuditID: s.nextAuditID,
		customers:   s.customers,
		products:    s.products,
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]model.OrderItem(nil), v...)
	}
	copy(c.auditLogs, s.auditLogs)
	return c
}

// Store は全repoの保存先。Tx は状態を複製して fn を実行し、成功したときだけ差し替える。
// 読み取りTxは複製せずに共有ロックで読む。
type Store struct {
	mu   sync.RWMutex
	data *state
}

func NewStore() *Store {
	return &Store{data: newState()}
}

// Seed は顧客と商品を登録する。同じIDは上書き。
func (s *Store) Seed(customers []model.Customer, products []model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs := make(map[string]model.Customer, len(s.data.customers)+len(customers))
	for k, v := range s.data.customers {
		cs[k] = v
	}
	for _, c := range customers {
		cs[c.ID] = c
	}
	ps := make(map[string]model.Product, len(s.data.products)+len(products))
	for k, v := range s.data.products {
		ps[k] = v
	}
	for _, p := range products {
		ps[p.ID] = p
	}
	s.data.customers = cs
	s.data.products = ps
}

func (s *Store) current() *state { return s.data }

func (s *Store) Orders() repo.OrderRepository {
	return &orderRepo{src: s.current, lk: &s.mu}
}

func (s *Store) OrderItems() repo.OrderItemRepository {
	return &orderItemRepo{src: s.current, lk: &s.mu}
}

func (s *Store) AuditLogs() repo.AuditLogRepository {
	return &auditLogRepo{src: s.current, lk: &s.mu}
}

func (s *Store) Customers() repo.CustomerRepository {
	return &customerRepo{src: s.current, lk: &s.mu}
}

func (s *Store) Products() repo.ProductRepository {
	return &productRepo{src: s.current, lk: &s.mu}
}

// Ping はヘルスチェック用。メモリなので常に成功。
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

type txRepos struct {
	st *state
	ro bool
}

func (r *txRepos) src() *state { return r.st }

func (r *txRepos) Orders() repo.OrderRepository {
	return &orderRepo{src: r.src, lk: noopLocker{}, ro: r.ro}
}

func (r *txRepos) OrderItems() repo.OrderItemRepository {
	return &orderItemRepo{src: r.src, lk: noopLocker{}, ro: r.ro}
}

func (r *txRepos) AuditLogs() repo.AuditLogRepository {
	return &auditLogRepo{src: r.src, lk: noopLocker{}, ro: r.ro}
}

func (s *Store) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(&txRepos{st: work}); err != nil {
		//rollback: 複製を捨てる
		return err
	}
	s.data = work
	return nil
}

func (s *Store) WithinReadTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&txRepos{st: s.data, ro: true})
}
