package model

import (
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

const (
	MinOrderItems = 1
	MaxOrderItems = 20
)

// 遷移できる先（同じステータスへの更新は別扱いで何もしない）
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusDraft:     {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered, OrderStatusCancelled},
}

// ParseOrderStatus は入力文字列をステータスに変換する。大文字小文字と前後の空白は無視。
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", NewDomainError(KindInvalidOrder, "invalid status %s", s)
	}
	return st, nil
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo は s から next への遷移が許可されているかを返す。
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, to := range allowedTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID             string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CustomerID     string      `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_orders_customer_idem,priority:1" json:"customer_id"`
	Status         OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Items          []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	SubtotalAmount int64       `gorm:"not null" json:"subtotal_amount"`
	TaxAmount      int64       `gorm:"not null" json:"tax_amount"`
	ShippingAmount int64       `gorm:"not null" json:"shipping_amount"`
	TotalAmount    int64       `gorm:"not null" json:"total_amount"`
	// 空文字はキーなし。NULLにしてunique制約から外す
	IdempotencyKey *string    `gorm:"type:varchar(255);uniqueIndex:idx_orders_customer_idem,priority:2" json:"idempotency_key,omitempty"`
	Version        int64      `gorm:"not null;default:1" json:"version"`
	CreatedAt      time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
	ConfirmedAt    *time.Time `json:"confirmed_at"`
	ShippedAt      *time.Time `json:"shipped_at"`
	DeliveredAt    *time.Time `json:"delivered_at"`
	CancelledAt    *time.Time `json:"cancelled_at"`
}

// NewOrder は検証済みの明細から DRAFT の注文を組み立てる。
// 明細の行合計と注文の金額はここで計算し、外から渡された値は使わない。
func NewOrder(id string, customerID string, items []OrderItem, now time.Time) (Order, error) {
	if len(items) < MinOrderItems || len(items) > MaxOrderItems {
		return Order{}, NewDomainError(KindValidation, "order must have between %d and %d items", MinOrderItems, MaxOrderItems)
	}

	owned := make([]OrderItem, len(items))
	for i, it := range items {
		it.OrderID = id
		it.Position = i
		it.LineTotalCents = it.Quantity * it.UnitPriceCents
		owned[i] = it
	}

	totals, err := CalculateTotals(owned)
	if err != nil {
		return Order{}, err
	}

	return Order{
		ID:             id,
		CustomerID:     customerID,
		Status:         OrderStatusDraft,
		Items:          owned,
		SubtotalAmount: totals.Subtotal,
		TaxAmount:      totals.Tax,
		ShippingAmount: totals.Shipping,
		TotalAmount:    totals.Total,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ApplyStatus はステータスを next に進め、対応する時刻を未設定なら now で埋める。
// 同じステータスなら何もせず changed=false を返す。
func (o *Order) ApplyStatus(next OrderStatus, now time.Time) (bool, error) {
	if !next.IsValid() {
		return false, NewDomainError(KindInvalidOrder, "invalid status %s", next)
	}
	if o.Status == next {
		return false, nil
	}
	if !o.Status.CanTransitionTo(next) {
		return false, NewDomainError(KindInvalidOrder, "cannot change status from %s to %s", o.Status, next)
	}

	o.Status = next
	o.UpdatedAt = now

	stamp := func(p **time.Time) {
		if *p == nil {
			t := now
			*p = &t
		}
	}
	switch next {
	case OrderStatusConfirmed:
		stamp(&o.ConfirmedAt)
	case OrderStatusShipped:
		stamp(&o.ShippedAt)
	case OrderStatusDelivered:
		stamp(&o.DeliveredAt)
	case OrderStatusCancelled:
		stamp(&o.CancelledAt)
	}
	return true, nil
}
