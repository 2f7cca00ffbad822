package validator

import (
	"fmt"
	"testing"

	"ordermanagement/internal/domain/model"
	"ordermanagement/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(productID string, qty int64, price int64) usecase.CreateOrderItemInput {
	return usecase.CreateOrderItemInput{ProductID: productID, ProductName: "p", Quantity: qty, UnitPriceCents: price}
}

func itemsN(n int) []usecase.CreateOrderItemInput {
	items := make([]usecase.CreateOrderItemInput, n)
	for i := range items {
		items[i] = item(fmt.Sprintf("PRD%05d", i+1), 1, 100)
	}
	return items
}

func TestOrderValidator_ValidateCreate(t *testing.T) {
	v := NewOrderValidator()

	tests := []struct {
		name    string
		in      usecase.CreateOrderInput
		wantMsg string
	}{
		{"正常", usecase.CreateOrderInput{CustomerID: "CUST1234", Items: itemsN(1)}, ""},
		{"明細20件は可", usecase.CreateOrderInput{CustomerID: "CUST1234", Items: itemsN(20)}, ""},
		{"顧客ID空", usecase.CreateOrderInput{CustomerID: "  ", Items: itemsN(1)}, "customer id is required"},
		{"明細0件", usecase.CreateOrderInput{CustomerID: "CUST1234"}, "order must have between 1 and 20 items"},
		{"明細21件", usecase.CreateOrderInput{CustomerID: "CUST1234", Items: itemsN(21)}, "order must have between 1 and 20 items"},
		{"数量0", usecase.CreateOrderInput{CustomerID: "CUST1234", Items: []usecase.CreateOrderItemInput{item("PRD12345", 0, 100)}}, "invalid quantity for product PRD12345"},
		{"数量100", usecase.CreateOrderInput{CustomerID: "CUST1234", Items: []usecase.CreateOrderItemInput{item("PRD12345", 100, 100)}}, "invalid quantity for product PRD12345"},
		{"数量99は可", usecase.CreateOrderInput{CustomerID: "CUST1234", Items: []usecase.CreateOrderItemInput{item("PRD12345", 99, 100)}}, ""},
		{"単価0", usecase.CreateOrderInput{CustomerID: "CUST1234", Items: []usecase.CreateOrderItemInput{item("PRD12345", 1, 0)}}, "invalid unit price for product PRD12345"},
		{"単価上限超え", usecase.CreateOrderInput{CustomerID: "CUST1234", Items: []usecase.CreateOrderItemInput{item("PRD12345", 1, 1000000)}}, "invalid unit price for product PRD12345"},
		{"単価上限ちょうど", usecase.CreateOrderInput{CustomerID: "CUST1234", Items: []usecase.CreateOrderItemInput{item("PRD12345", 1, 999999)}}, ""},
		{"商品ID形式", usecase.CreateOrderInput{CustomerID: "CUST1234", Items: []usecase.CreateOrderItemInput{item("XYZ", 1, 100)}}, "invalid product id XYZ"},
		{
			"商品ID重複",
			usecase.CreateOrderInput{CustomerID: "CUST1234", Items: []usecase.CreateOrderItemInput{item("PRD12345", 1, 100), item("PRD12346", 1, 100), item("PRD12345", 2, 100)}},
			"duplicate product id PRD12345",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCreate(tt.in)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, model.IsKind(err, model.KindValidation))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

// 最初に見つかった違反だけ返す
func TestOrderValidator_FailsFastInRequestOrder(t *testing.T) {
	v := NewOrderValidator()

	err := v.ValidateCreate(usecase.CreateOrderInput{
		CustomerID: "CUST1234",
		Items: []usecase.CreateOrderItemInput{
			item("PRD12345", 1, 0),
			item("BAD", 0, 100),
		},
	})
	require.Error(t, err)
	assert.Equal(t, "invalid unit price for product PRD12345", err.Error())

	// 数量→単価→商品IDの順で見る
	err = v.ValidateCreate(usecase.CreateOrderInput{
		CustomerID: "CUST1234",
		Items:      []usecase.CreateOrderItemInput{item("BAD", 0, 0)},
	})
	require.Error(t, err)
	assert.Equal(t, "invalid quantity for product BAD", err.Error())
}
