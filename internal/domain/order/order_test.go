package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItem(t *testing.T, qty int, unitPrice string) Item {
	t.Helper()
	item, err := NewItem(uuid.New(), uuid.New(), "Tarta de queso", qty,
		decimal.RequireFromString(unitPrice), decimal.NewFromInt(10))
	require.NoError(t, err)
	return item
}

func TestNewItem(t *testing.T) {
	t.Run("derives total price", func(t *testing.T) {
		item := testItem(t, 3, "10.50")
		assert.Equal(t, "31.50", item.TotalPrice.StringFixed(2))
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := NewItem(uuid.New(), uuid.New(), "x", 0, decimal.NewFromInt(1), decimal.Zero)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewItem(uuid.New(), uuid.New(), "x", 1, decimal.NewFromInt(-1), decimal.Zero)
		assert.ErrorIs(t, err, ErrInvalidUnitPrice)
	})
}

func TestComputeTotal(t *testing.T) {
	cases := []struct {
		name     string
		subtotal string
		discount string
		fee      string
		want     string
	}{
		{"no discount", "20.00", "0", "3.00", "23.00"},
		{"with discount", "25.45", "2.55", "0", "22.90"},
		{"discount exceeds subtotal clamps at zero", "10.00", "15.00", "5.00", "5.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeTotal(
				decimal.RequireFromString(tc.subtotal),
				decimal.RequireFromString(tc.discount),
				decimal.RequireFromString(tc.fee),
			)
			assert.Equal(t, tc.want, got.StringFixed(2))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("assembles pending order", func(t *testing.T) {
		items := []Item{testItem(t, 2, "10.00"), testItem(t, 1, "5.45")}
		o, err := New(uuid.New(), uuid.New(), items, MethodCash, decimal.Zero, decimal.Zero, nil)
		require.NoError(t, err)

		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, PaymentPending, o.PaymentStatus)
		assert.Equal(t, "25.45", o.Subtotal.StringFixed(2))
		assert.Equal(t, "25.45", o.Total.StringFixed(2))
		for _, item := range o.Items {
			assert.Equal(t, o.ID, item.OrderID)
		}
	})

	t.Run("rejects empty cart", func(t *testing.T) {
		_, err := New(uuid.New(), uuid.New(), nil, MethodCash, decimal.Zero, decimal.Zero, nil)
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("rejects unknown payment method", func(t *testing.T) {
		items := []Item{testItem(t, 1, "1.00")}
		_, err := New(uuid.New(), uuid.New(), items, "bitcoin", decimal.Zero, decimal.Zero, nil)
		assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
	})

	t.Run("rejects negative delivery fee", func(t *testing.T) {
		items := []Item{testItem(t, 1, "1.00")}
		_, err := New(uuid.New(), uuid.New(), items, MethodCash, decimal.Zero, decimal.NewFromInt(-1), nil)
		assert.ErrorIs(t, err, ErrInvalidDeliveryFee)
	})
}

func TestPaymentMethodOffline(t *testing.T) {
	assert.True(t, MethodCash.Offline())
	assert.True(t, MethodTransfer.Offline())
	assert.False(t, MethodCard.Offline())
}

func TestHasTaxID(t *testing.T) {
	o := &Order{}
	assert.False(t, o.HasTaxID())

	empty := ""
	o.BuyerTaxID = &empty
	assert.False(t, o.HasTaxID())

	taxID := "12345678Z"
	o.BuyerTaxID = &taxID
	assert.True(t, o.HasTaxID())
}
