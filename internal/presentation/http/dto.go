package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apporder "github.com/obrador/storefront/internal/application/order"
	dominv "github.com/obrador/storefront/internal/domain/inventory"
	dominvoice "github.com/obrador/storefront/internal/domain/invoice"
	domorder "github.com/obrador/storefront/internal/domain/order"
)

type cartLineRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type createOrderRequest struct {
	BuyerID       uuid.UUID         `json:"buyer_id"`
	Lines         []cartLineRequest `json:"lines"`
	CouponCode    string            `json:"coupon_code"`
	PaymentMethod string            `json:"payment_method"`
	DeliveryFee   decimal.Decimal   `json:"delivery_fee"`
	DeliveryDate  *time.Time        `json:"delivery_date"`
	BuyerTaxID    *string           `json:"buyer_tax_id"`
	AddressID     *uuid.UUID        `json:"address_id"`
	Notes         string            `json:"notes"`
}

func (r createOrderRequest) toInput() apporder.CreateOrderInput {
	lines := make([]apporder.CartLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, apporder.CartLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return apporder.CreateOrderInput{
		BuyerID:       r.BuyerID,
		Lines:         lines,
		CouponCode:    r.CouponCode,
		PaymentMethod: domorder.PaymentMethod(r.PaymentMethod),
		DeliveryFee:   r.DeliveryFee,
		DeliveryDate:  r.DeliveryDate,
		BuyerTaxID:    r.BuyerTaxID,
		AddressID:     r.AddressID,
		Notes:         r.Notes,
	}
}

type createOrderResponse struct {
	OrderID        uuid.UUID       `json:"order_id"`
	Total          decimal.Decimal `json:"total"`
	OfflinePayment bool            `json:"offline_payment"`
}

type orderItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

type orderResponse struct {
	ID             uuid.UUID           `json:"id"`
	BuyerID        uuid.UUID           `json:"buyer_id"`
	Status         string              `json:"status"`
	PaymentStatus  string              `json:"payment_status"`
	PaymentMethod  string              `json:"payment_method"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	DeliveryFee    decimal.Decimal     `json:"delivery_fee"`
	Total          decimal.Decimal     `json:"total"`
	DeliveryDate   *time.Time          `json:"delivery_date,omitempty"`
	Notes          string              `json:"notes,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	Items          []orderItemResponse `json:"items"`
}

func toOrderResponse(o *domorder.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
			TaxRate:     it.TaxRate,
		})
	}
	return orderResponse{
		ID:             o.ID,
		BuyerID:        o.BuyerID,
		Status:         string(o.Status),
		PaymentStatus:  string(o.PaymentStatus),
		PaymentMethod:  string(o.PaymentMethod),
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		DeliveryFee:    o.DeliveryFee,
		Total:          o.Total,
		DeliveryDate:   o.DeliveryDate,
		Notes:          o.Notes,
		CreatedAt:      o.CreatedAt,
		Items:          items,
	}
}

type paymentStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

type invoiceItemResponse struct {
	ProductName      string          `json:"product_name"`
	Quantity         int             `json:"quantity"`
	UnitPriceInclIVA decimal.Decimal `json:"unit_price_incl_iva"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	UnitBase         decimal.Decimal `json:"unit_base"`
	LineBase         decimal.Decimal `json:"line_base"`
	LineIVA          decimal.Decimal `json:"line_iva"`
	LineTotal        decimal.Decimal `json:"line_total"`
}

type invoiceResponse struct {
	ID             uuid.UUID             `json:"id"`
	OrderID        uuid.UUID             `json:"order_id"`
	Number         string                `json:"number"`
	Type           string                `json:"type"`
	LegalReference string                `json:"legal_reference"`
	SellerName     string                `json:"seller_name"`
	SellerTaxID    string                `json:"seller_tax_id"`
	SellerAddress  string                `json:"seller_address"`
	BuyerName      string                `json:"buyer_name"`
	BuyerTaxID     *string               `json:"buyer_tax_id,omitempty"`
	BuyerAddress   string                `json:"buyer_address,omitempty"`
	SubtotalBase   decimal.Decimal       `json:"subtotal_base"`
	TotalIVA       decimal.Decimal       `json:"total_iva"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	DeliveryFee    decimal.Decimal       `json:"delivery_fee"`
	Total          decimal.Decimal       `json:"total"`
	IssuedAt       time.Time             `json:"issued_at"`
	SentAt         *time.Time            `json:"sent_at,omitempty"`
	Items          []invoiceItemResponse `json:"items"`
}

func toInvoiceResponse(inv *dominvoice.Invoice) invoiceResponse {
	items := make([]invoiceItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, invoiceItemResponse{
			ProductName:      it.ProductName,
			Quantity:         it.Quantity,
			UnitPriceInclIVA: it.UnitPriceInclIVA,
			TaxRate:          it.TaxRate,
			UnitBase:         it.UnitBase,
			LineBase:         it.LineBase,
			LineIVA:          it.LineIVA,
			LineTotal:        it.LineTotal,
		})
	}
	return invoiceResponse{
		ID:             inv.ID,
		OrderID:        inv.OrderID,
		Number:         inv.Number,
		Type:           string(inv.Type()),
		LegalReference: inv.LegalReference(),
		SellerName:     inv.SellerName,
		SellerTaxID:    inv.SellerTaxID,
		SellerAddress:  inv.SellerAddress,
		BuyerName:      inv.BuyerName,
		BuyerTaxID:     inv.BuyerTaxID,
		BuyerAddress:   inv.BuyerAddress,
		SubtotalBase:   inv.SubtotalBase,
		TotalIVA:       inv.TotalIVA,
		DiscountAmount: inv.DiscountAmount,
		DeliveryFee:    inv.DeliveryFee,
		Total:          inv.Total,
		IssuedAt:       inv.IssuedAt,
		SentAt:         inv.SentAt,
		Items:          items,
	}
}

type recordMovementRequest struct {
	ProductID   uuid.UUID  `json:"product_id"`
	Type        string     `json:"type"`
	Quantity    int        `json:"quantity"`
	ReferenceID *uuid.UUID `json:"reference_id"`
	Notes       string     `json:"notes"`
}

type movementResponse struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   uuid.UUID  `json:"product_id"`
	Type        string     `json:"type"`
	Quantity    int        `json:"quantity"`
	ReferenceID *uuid.UUID `json:"reference_id,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Actor       string     `json:"actor"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toMovementResponse(m *dominv.Movement) movementResponse {
	return movementResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		Type:        string(m.Type),
		Quantity:    m.Quantity,
		ReferenceID: m.ReferenceID,
		Notes:       m.Notes,
		Actor:       m.Actor,
		CreatedAt:   m.CreatedAt,
	}
}
