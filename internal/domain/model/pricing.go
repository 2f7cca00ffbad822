package model

// 金額はすべてセント（整数）で扱う。
const (
	TaxRatePercent             int64 = 8
	FreeShippingThresholdCents int64 = 5000
	ShippingFeeCents           int64 = 500
	MinimumTotalCents          int64 = 100
)

type Totals struct {
	Subtotal int64
	Tax      int64
	Shipping int64
	Total    int64
}

// CalculateTotals は明細から小計・税・送料・合計を計算する。
// 税は subtotal*0.08 を四捨五入（half-up）したもの。合計が MinimumTotalCents 未満ならエラー。
func CalculateTotals(items []OrderItem) (Totals, error) {
	var subtotal int64
	for _, it := range items {
		subtotal += it.Quantity * it.UnitPriceCents
	}

	tax := (subtotal*TaxRatePercent + 50) / 100

	shipping := int64(0)
	if subtotal < FreeShippingThresholdCents {
		shipping = ShippingFeeCents
	}

	total := subtotal + tax + shipping
	if total < MinimumTotalCents {
		return Totals{}, NewDomainError(KindInvalidOrder, "total amount must be at least %d cents", MinimumTotalCents)
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    total,
	}, nil
}
