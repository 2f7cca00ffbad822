package usecase

import (
	"time"

	"ordermanagement/internal/domain/model"
)

type OrderItemOutput struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type OrderOutput struct {
	ID            string            `json:"id"`
	CustomerID    string            `json:"customer_id"`
	Status        string            `json:"status"`
	Items         []OrderItemOutput `json:"items"`
	SubtotalCents int64             `json:"subtotal_cents"`
	TaxCents      int64             `json:"tax_cents"`
	ShippingCents int64             `json:"shipping_cents"`
	TotalCents    int64             `json:"total_cents"`
	CreatedAt     time.Time         `json:"created_at"`
	ConfirmedAt   *time.Time        `json:"confirmed_at"`
	ShippedAt     *time.Time        `json:"shipped_at"`
	DeliveredAt   *time.Time        `json:"delivered_at"`
	CancelledAt   *time.Time        `json:"cancelled_at"`
}

type PaginationOutput struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

type OrderListOutput struct {
	Orders     []OrderOutput    `json:"orders"`
	Pagination PaginationOutput `json:"pagination"`
}

type OrderEventOutput struct {
	ID        int64     `json:"id"`
	ActorID   string    `json:"actor_id"`
	Action    string    `json:"action"`
	Before    string    `json:"before"`
	After     string    `json:"after"`
	CreatedAt time.Time `json:"created_at"`
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ID:             it.ID,
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			LineTotalCents: it.LineTotalCents,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		Status:        string(o.Status),
		Items:         outItems,
		SubtotalCents: o.SubtotalAmount,
		TaxCents:      o.TaxAmount,
		ShippingCents: o.ShippingAmount,
		TotalCents:    o.TotalAmount,
		CreatedAt:     o.CreatedAt.UTC(),
		ConfirmedAt:   utcPtr(o.ConfirmedAt),
		ShippedAt:     utcPtr(o.ShippedAt),
		DeliveredAt:   utcPtr(o.DeliveredAt),
		CancelledAt:   utcPtr(o.CancelledAt),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func newPagination(page int, limit int, total int64) PaginationOutput {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return PaginationOutput{
		Page:        page,
		Limit:       limit,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

func toOrderEventOutput(l model.AuditLog) OrderEventOutput {
	return OrderEventOutput{
		ID:        l.ID,
		ActorID:   l.ActorID,
		Action:    string(l.Action),
		Before:    l.BeforeJSON,
		After:     l.AfterJSON,
		CreatedAt: l.CreatedAt.UTC(),
	}
}
