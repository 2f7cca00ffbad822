package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"ordermanagement/internal/domain/model"
	repo "ordermanagement/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func testOrder(t *testing.T, id string, customerID string, createdAt time.Time) model.Order {
	t.Helper()
	o, err := model.NewOrder(id, customerID, []model.OrderItem{
		{ID: id + "-i1", ProductID: "PRD12345", ProductName: "Product 1", Quantity: 1, UnitPriceCents: 100},
		{ID: id + "-i2", ProductID: "PRD12346", ProductName: "Product 2", Quantity: 2, UnitPriceCents: 200},
	}, createdAt)
	require.NoError(t, err)
	return o
}

func createInTx(t *testing.T, s *Store, o model.Order) {
	t.Helper()
	err := s.WithinTx(context.Background(), func(r repo.TxRepos) error {
		if err := r.Orders().Create(context.Background(), o); err != nil {
			return err
		}
		return r.OrderItems().CreateBulk(context.Background(), o.ID, o.Items)
	})
	require.NoError(t, err)
}

func TestStore_WithinTx_Commit(t *testing.T) {
	s := NewStore()
	o := testOrder(t, "ord-1", "CUST1234", baseTime)
	createInTx(t, s, o)

	got, err := s.Orders().FindByID(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDraft, got.Status)
	assert.Nil(t, got.Items)

	items, err := s.OrderItems().ListByOrderID(context.Background(), "ord-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "ord-1-i1", items[0].ID)
	assert.Equal(t, "ord-1-i2", items[1].ID)
}

// fnがエラーなら何も残らない
func TestStore_WithinTx_Rollback(t *testing.T) {
	s := NewStore()
	o := testOrder(t, "ord-1", "CUST1234", baseTime)
	boom := errors.New("boom")

	err := s.WithinTx(context.Background(), func(r repo.TxRepos) error {
		require.NoError(t, r.Orders().Create(context.Background(), o))
		require.NoError(t, r.OrderItems().CreateBulk(context.Background(), o.ID, o.Items))
		require.NoError(t, r.AuditLogs().Create(context.Background(), model.AuditLog{ResourceID: o.ID}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Orders().FindByID(context.Background(), "ord-1")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	items, err := s.OrderItems().ListByOrderID(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Empty(t, items)

	logs, err := s.AuditLogs().List(context.Background(), repo.AuditLogFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestStore_WithinTx_CanceledContext(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.WithinTx(ctx, func(r repo.TxRepos) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

// 読み取りTxは読めるが書けない
func TestStore_WithinReadTx(t *testing.T) {
	s := NewStore()
	o := testOrder(t, "ord-1", "CUST1234", baseTime)
	createInTx(t, s, o)
	ctx := context.Background()

	err := s.WithinReadTx(ctx, func(r repo.TxRepos) error {
		got, err := r.Orders().FindByID(ctx, "ord-1")
		require.NoError(t, err)
		assert.Equal(t, "ord-1", got.ID)

		items, err := r.OrderItems().ListByOrderID(ctx, "ord-1")
		require.NoError(t, err)
		assert.Len(t, items, 2)

		other := testOrder(t, "ord-2", "CUST1234", baseTime)
		assert.ErrorIs(t, r.Orders().Create(ctx, other), ErrReadOnlyTx)
		assert.ErrorIs(t, r.Orders().UpdateStatus(ctx, got), ErrReadOnlyTx)
		assert.ErrorIs(t, r.OrderItems().CreateBulk(ctx, "ord-2", other.Items), ErrReadOnlyTx)
		assert.ErrorIs(t, r.AuditLogs().Create(ctx, model.AuditLog{ResourceID: "ord-1"}), ErrReadOnlyTx)
		return nil
	})
	require.NoError(t, err)

	_, err = s.Orders().FindByID(ctx, "ord-2")
	assert.ErrorIs(t, err, repo.ErrNotFound)
	logs, err := s.AuditLogs().List(ctx, repo.AuditLogFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	err = s.WithinReadTx(canceled, func(r repo.TxRepos) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

// 読み取り同士は並行に走る
func TestStore_WithinReadTx_Concurrent(t *testing.T) {
	s := NewStore()
	createInTx(t, s, testOrder(t, "ord-1", "CUST1234", baseTime))
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.WithinReadTx(ctx, func(r repo.TxRepos) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	// 1本目が読み取り中でも2本目は入れる
	err := s.WithinReadTx(ctx, func(r repo.TxRepos) error {
		_, err := r.Orders().FindByID(ctx, "ord-1")
		return err
	})
	close(release)
	require.NoError(t, err)
	require.NoError(t, <-done)
}

func TestOrderRepo_UpdateStatus_OptimisticLock(t *testing.T) {
	s := NewStore()
	createInTx(t, s, testOrder(t, "ord-1", "CUST1234", baseTime))
	orders := s.Orders()
	ctx := context.Background()

	// 2人が同じversionを読む
	a, err := orders.FindByID(ctx, "ord-1")
	require.NoError(t, err)
	b, err := orders.FindByID(ctx, "ord-1")
	require.NoError(t, err)

	_, err = a.ApplyStatus(model.OrderStatusConfirmed, baseTime.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, orders.UpdateStatus(ctx, a))

	_, err = b.ApplyStatus(model.OrderStatusCancelled, baseTime.Add(2*time.Minute))
	require.NoError(t, err)
	assert.ErrorIs(t, orders.UpdateStatus(ctx, b), repo.ErrConflict)

	got, err := orders.FindByID(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, got.Status)
	assert.Equal(t, int64(2), got.Version)
	assert.Nil(t, got.CancelledAt)

	missing := a
	missing.ID = "ord-x"
	assert.ErrorIs(t, orders.UpdateStatus(ctx, missing), repo.ErrNotFound)
}

func TestOrderRepo_IdempotencyKey(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	key := "key-1"

	o := testOrder(t, "ord-1", "CUST1234", baseTime)
	o.IdempotencyKey = &key
	createInTx(t, s, o)

	got, found, err := s.Orders().FindByIdempotencyKey(ctx, "CUST1234", key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ord-1", got.ID)

	// 別の顧客なら同じキーでも別物
	_, found, err = s.Orders().FindByIdempotencyKey(ctx, "CUST5678", key)
	require.NoError(t, err)
	assert.False(t, found)

	dup := testOrder(t, "ord-2", "CUST1234", baseTime)
	dup.IdempotencyKey = &key
	err = s.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Orders().Create(ctx, dup)
	})
	assert.ErrorIs(t, err, repo.ErrConflict)
}

func TestOrderRepo_List(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	createInTx(t, s, testOrder(t, "ord-1", "CUST1234", baseTime))
	createInTx(t, s, testOrder(t, "ord-2", "CUST5678", baseTime.Add(time.Minute)))
	createInTx(t, s, testOrder(t, "ord-3", "CUST1234", baseTime.Add(2*time.Minute)))

	orders, total, err := s.Orders().List(ctx, repo.OrderListFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, orders, 2)
	assert.Equal(t, "ord-3", orders[0].ID)
	assert.Equal(t, "ord-2", orders[1].ID)

	orders, _, err = s.Orders().List(ctx, repo.OrderListFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ord-1", orders[0].ID)

	orders, total, err = s.Orders().List(ctx, repo.OrderListFilter{Page: 1, Limit: 20, CustomerID: "CUST1234"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, orders, 2)

	orders, total, err = s.Orders().List(ctx, repo.OrderListFilter{Page: 5, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Empty(t, orders)
}

func TestAuditLogRepo_ListNewestFirst(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	err := s.WithinTx(ctx, func(r repo.TxRepos) error {
		for _, id := range []string{"ord-1", "ord-2", "ord-1"} {
			if err := r.AuditLogs().Create(ctx, model.AuditLog{
				ResourceType: model.AuditResourceOrder,
				ResourceID:   id,
				Action:       model.AuditActionCreateOrder,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	id := "ord-1"
	logs, err := s.AuditLogs().List(ctx, repo.AuditLogFilter{ResourceID: &id})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, int64(3), logs[0].ID)
	assert.Equal(t, int64(1), logs[1].ID)
}

func TestStore_Seed(t *testing.T) {
	s := NewStore()
	s.Seed(
		[]model.Customer{{ID: "CUST1", Status: model.CustomerStatusActive}},
		[]model.Product{{ID: "PRD00001", IsActive: true}, {ID: "PRD00002", IsActive: false}},
	)

	c, err := s.Customers().FindByID(context.Background(), "CUST1")
	require.NoError(t, err)
	assert.True(t, c.IsActive())

	_, err = s.Customers().FindByID(context.Background(), "CUST2")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	ps, total, err := s.Products().List(context.Background(), repo.ProductListQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, ps, 1)
	assert.Equal(t, "PRD00001", ps[0].ID)

	assert.NoError(t, s.Ping(context.Background()))
}
