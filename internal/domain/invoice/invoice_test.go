package invoice

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obrador/storefront/internal/domain/order"
)

func paidOrder(t *testing.T) *order.Order {
	t.Helper()

	items := []order.Item{
		mustItem(t, "Tarta de queso", 2, "10.00", "10"),
		mustItem(t, "Palmera de chocolate", 1, "5.45", "4"),
	}
	o, err := order.New(uuid.New(), uuid.New(), items, order.MethodCash, decimal.Zero, decimal.Zero, nil)
	require.NoError(t, err)
	o.PaymentStatus = order.PaymentPaid
	return o
}

func mustItem(t *testing.T, name string, qty int, unitPrice, taxRate string) order.Item {
	t.Helper()
	item, err := order.NewItem(uuid.New(), uuid.New(), name, qty,
		decimal.RequireFromString(unitPrice), decimal.RequireFromString(taxRate))
	require.NoError(t, err)
	return item
}

func seller() Seller {
	return Seller{Name: "Obrador Artesano S.L.", TaxID: "B12345678", Address: "Calle Mayor 1, Madrid"}
}

func TestBuildTaxBreakdown(t *testing.T) {
	o := paidOrder(t)

	inv, err := Build(uuid.New(), o, seller(), Buyer{Name: "Ana"}, "FAC-2026-00001", uuid.New)
	require.NoError(t, err)
	require.Len(t, inv.Items, 2)

	// 2 x 10.00 at 10%: base 18.18, tax 1.82.
	first := inv.Items[0]
	assert.Equal(t, "18.18", first.LineBase.StringFixed(2))
	assert.Equal(t, "1.82", first.LineIVA.StringFixed(2))
	assert.Equal(t, "20.00", first.LineTotal.StringFixed(2))
	assert.Equal(t, "9.09", first.UnitBase.StringFixed(2))

	// 1 x 5.45 at 4%: base 5.24, tax 0.21.
	second := inv.Items[1]
	assert.Equal(t, "5.24", second.LineBase.StringFixed(2))
	assert.Equal(t, "0.21", second.LineIVA.StringFixed(2))
	assert.Equal(t, "5.45", second.LineTotal.StringFixed(2))

	assert.Equal(t, "23.42", inv.SubtotalBase.StringFixed(2))
	assert.Equal(t, "2.03", inv.TotalIVA.StringFixed(2))
	assert.Equal(t, "25.45", inv.Total.StringFixed(2))
}

func TestBuildLineConsistency(t *testing.T) {
	o := paidOrder(t)

	inv, err := Build(uuid.New(), o, seller(), Buyer{Name: "Ana"}, "FAC-2026-00002", uuid.New)
	require.NoError(t, err)

	for _, item := range inv.Items {
		sum := item.LineBase.Add(item.LineIVA)
		assert.True(t, sum.Equal(item.LineTotal),
			"line_base + line_iva = %s, want %s", sum, item.LineTotal)
	}
}

func TestBuildSnapshots(t *testing.T) {
	o := paidOrder(t)
	taxID := "12345678Z"
	o.BuyerTaxID = &taxID

	inv, err := Build(uuid.New(), o, seller(), Buyer{Name: "Ana", Address: "Calle Luna 2"}, "FAC-2026-00003", uuid.New)
	require.NoError(t, err)

	assert.Equal(t, o.ID, inv.OrderID)
	assert.Equal(t, "Obrador Artesano S.L.", inv.SellerName)
	assert.Equal(t, "Ana", inv.BuyerName)
	require.NotNil(t, inv.BuyerTaxID)
	assert.Equal(t, taxID, *inv.BuyerTaxID)
	assert.True(t, inv.DiscountAmount.Equal(o.DiscountAmount))
	assert.True(t, inv.DeliveryFee.Equal(o.DeliveryFee))
}

func TestBuildRejectsUnpaidOrder(t *testing.T) {
	o := paidOrder(t)
	o.PaymentStatus = order.PaymentPending

	_, err := Build(uuid.New(), o, seller(), Buyer{Name: "Ana"}, "FAC-2026-00004", uuid.New)
	assert.ErrorIs(t, err, ErrOrderNotPaid)
}

func TestBuildRejectsEmptyOrder(t *testing.T) {
	o := paidOrder(t)
	o.Items = nil

	_, err := Build(uuid.New(), o, seller(), Buyer{Name: "Ana"}, "FAC-2026-00005", uuid.New)
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestTypeDerivation(t *testing.T) {
	taxID := "12345678Z"
	empty := ""

	cases := []struct {
		name  string
		taxID *string
		want  Type
	}{
		{"with tax id", &taxID, TypeComplete},
		{"without tax id", nil, TypeSimplified},
		{"empty tax id", &empty, TypeSimplified},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := &Invoice{BuyerTaxID: tc.taxID}
			assert.Equal(t, tc.want, inv.Type())
		})
	}
}

func TestLegalReference(t *testing.T) {
	taxID := "12345678Z"
	complete := &Invoice{BuyerTaxID: &taxID}
	simplified := &Invoice{}

	assert.Equal(t, LegalReferenceComplete, complete.LegalReference())
	assert.Equal(t, LegalReferenceSimplified, simplified.LegalReference())
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "FAC-2026-00001", FormatNumber(2026, 1))
	assert.Equal(t, "FAC-2026-00042", FormatNumber(2026, 42))
	assert.Equal(t, "FAC-2027-123456", FormatNumber(2027, 123456))
}
