package invoice

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/obrador/storefront/internal/domain/order"
)

var (
	ErrNotFound     = errors.New("invoice: not found")
	ErrDuplicate    = errors.New("invoice: order already invoiced")
	ErrNumberTaken  = errors.New("invoice: number already allocated")
	ErrOrderNotPaid = errors.New("invoice: order is not paid")
	ErrNoItems      = errors.New("invoice: order has no items")
)

// Type is never stored; it is derived from the buyer tax-id wherever the
// invoice is rendered so the discriminator cannot drift.
type Type string

const (
	TypeSimplified Type = "simplified"
	TypeComplete   Type = "complete"
)

// Legal reference texts printed on the document, per invoice type.
const (
	LegalReferenceComplete   = "Factura expedida conforme al Reglamento de facturación (RD 1619/2012). IVA incluido desglosado por línea."
	LegalReferenceSimplified = "Factura simplificada (art. 4 RD 1619/2012). IVA incluido."
)

// Invoice is an immutable snapshot derived from a paid order. Only SentAt
// may change after creation.
type Invoice struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Number  string    `gorm:"type:varchar(20);not null;uniqueIndex"`

	SellerName    string `gorm:"type:varchar(200);not null"`
	SellerTaxID   string `gorm:"type:varchar(20);not null"`
	SellerAddress string `gorm:"type:varchar(300);not null"`
	SellerEmail   string `gorm:"type:varchar(200)"`

	BuyerName    string  `gorm:"type:varchar(200);not null"`
	BuyerTaxID   *string `gorm:"type:varchar(20)"`
	BuyerAddress string  `gorm:"type:varchar(300)"`
	BuyerEmail   string  `gorm:"type:varchar(200)"`

	SubtotalBase   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalIVA       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DeliveryFee    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	IssuedAt time.Time `gorm:"not null"`
	SentAt   *time.Time

	Items []Item `gorm:"foreignKey:InvoiceID"`
}

func (Invoice) TableName() string { return "invoices" }

// Item carries the per-line tax breakdown. All derived amounts are rounded
// per line, before aggregation.
type Item struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName      string          `gorm:"type:varchar(200);not null"`
	Quantity         int             `gorm:"not null"`
	UnitPriceInclIVA decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRate          decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	UnitBase         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LineBase         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LineIVA          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LineTotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (Item) TableName() string { return "invoice_items" }

// Type derives the legal invoice type from the buyer tax-id snapshot: a
// present, non-empty tax-id makes a complete invoice, its absence a
// simplified one.
func (inv *Invoice) Type() Type {
	if inv.BuyerTaxID != nil && *inv.BuyerTaxID != "" {
		return TypeComplete
	}
	return TypeSimplified
}

// LegalReference returns the reference text matching the derived type.
func (inv *Invoice) LegalReference() string {
	if inv.Type() == TypeComplete {
		return LegalReferenceComplete
	}
	return LegalReferenceSimplified
}

// Seller is the business-info snapshot frozen onto each invoice.
type Seller struct {
	Name    string
	TaxID   string
	Address string
	Email   string
}

// Buyer is the profile/address snapshot frozen onto each invoice. TaxID is
// taken from the order, never from the profile.
type Buyer struct {
	Name    string
	TaxID   *string
	Address string
	Email   string
}

var hundred = decimal.NewFromInt(100)

// buildItem derives the tax breakdown for one order line. unit prices are
// tax inclusive, so the base is recovered by division:
//
//	unit_base = unit_price / (1 + rate/100)
//
// line_base and line_total are rounded independently; line_iva is their
// difference, which keeps line_base + line_iva == line_total exact.
func buildItem(id uuid.UUID, line order.Item) Item {
	qty := decimal.NewFromInt(int64(line.Quantity))
	unitBase := line.UnitPrice.Div(decimal.NewFromInt(1).Add(line.TaxRate.Div(hundred)))
	lineBase := unitBase.Mul(qty).Round(2)
	lineTotal := line.UnitPrice.Mul(qty).Round(2)
	return Item{
		ID:               id,
		ProductName:      line.ProductName,
		Quantity:         line.Quantity,
		UnitPriceInclIVA: line.UnitPrice,
		TaxRate:          line.TaxRate,
		UnitBase:         unitBase.Round(2),
		LineBase:         lineBase,
		LineIVA:          lineTotal.Sub(lineBase),
		LineTotal:        lineTotal,
	}
}

// Build derives a complete invoice from a paid order. Aggregates are sums of
// the already-rounded line values; a cent of drift against rounding the raw
// sums is expected and not corrected.
func Build(id uuid.UUID, o *order.Order, seller Seller, buyer Buyer, number string, newItemID func() uuid.UUID) (*Invoice, error) {
	if o.PaymentStatus != order.PaymentPaid {
		return nil, ErrOrderNotPaid
	}
	if len(o.Items) == 0 {
		return nil, ErrNoItems
	}

	items := make([]Item, 0, len(o.Items))
	subtotalBase := decimal.Zero
	totalIVA := decimal.Zero
	for _, line := range o.Items {
		item := buildItem(newItemID(), line)
		item.InvoiceID = id
		items = append(items, item)
		subtotalBase = subtotalBase.Add(item.LineBase)
		totalIVA = totalIVA.Add(item.LineIVA)
	}

	return &Invoice{
		ID:             id,
		OrderID:        o.ID,
		Number:         number,
		SellerName:     seller.Name,
		SellerTaxID:    seller.TaxID,
		SellerAddress:  seller.Address,
		SellerEmail:    seller.Email,
		BuyerName:      buyer.Name,
		BuyerTaxID:     o.BuyerTaxID,
		BuyerAddress:   buyer.Address,
		BuyerEmail:     buyer.Email,
		SubtotalBase:   subtotalBase.Round(2),
		TotalIVA:       totalIVA.Round(2),
		DiscountAmount: o.DiscountAmount,
		DeliveryFee:    o.DeliveryFee,
		Total:          o.Total,
		IssuedAt:       time.Now().UTC(),
		Items:          items,
	}, nil
}
