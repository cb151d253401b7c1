package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/obrador/storefront/internal/application/inventory"
	appinvoice "github.com/obrador/storefront/internal/application/invoice"
	apporder "github.com/obrador/storefront/internal/application/order"
	apppayment "github.com/obrador/storefront/internal/application/payment"
	dominvoice "github.com/obrador/storefront/internal/domain/invoice"
	"github.com/obrador/storefront/internal/infrastructure/id"
	"github.com/obrador/storefront/internal/infrastructure/memory"
	"github.com/obrador/storefront/internal/observability"
	httptransport "github.com/obrador/storefront/internal/presentation/http"
)

type testEnv struct {
	app       *fiber.App
	buyers    *memory.BuyerDirectory
	productID uuid.UUID
	buyerID   uuid.UUID
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	orders := memory.NewOrderRepository()
	coupons := memory.NewCouponRepository()
	invoices := memory.NewInvoiceRepository()
	ledger := memory.NewInventoryRepository()
	buyers := memory.NewBuyerDirectory()
	catalog := memory.NewCatalog()
	business := memory.NewBusinessInfo(dominvoice.Seller{Name: "Obrador Artesano S.L.", TaxID: "B12345678"})
	ids := id.NewUUIDGenerator()
	obs := observability.Nop()

	env := &testEnv{
		buyers:    buyers,
		productID: uuid.New(),
		buyerID:   uuid.New(),
	}
	catalog.Put(apporder.CatalogProduct{
		ID:        env.productID,
		Name:      "Tarta de queso",
		UnitPrice: decimal.RequireFromString("10.00"),
		TaxRate:   decimal.NewFromInt(10),
	})
	buyers.Put(env.buyerID, dominvoice.Buyer{Name: "Ana"})

	invoiceService := appinvoice.NewService(invoices, orders, buyers, business, memory.NewSequence(), ids, obs)
	orderService := apporder.NewService(orders, coupons, catalog, ids, nil, obs)
	paymentService := apppayment.NewService(orders, coupons, ledger, invoiceService, ids, nil, obs)
	inventoryService := appinventory.NewService(ledger, ids, obs)

	handler := httptransport.NewHandler(orderService, paymentService, invoiceService, inventoryService)
	env.app = httptransport.NewApp(handler, obs)
	return env
}

func (e *testEnv) request(t *testing.T, method, path string, body any, staff bool) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if staff {
		req.Header.Set("X-Actor-Id", "staff-1")
		req.Header.Set("X-Actor-Role", "staff")
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func (e *testEnv) createOrder(t *testing.T) uuid.UUID {
	t.Helper()

	resp := e.request(t, http.MethodPost, "/api/v1/orders", fiber.Map{
		"buyer_id":       e.buyerID,
		"payment_method": "cash",
		"lines": []fiber.Map{
			{"product_id": e.productID, "quantity": 2},
		},
	}, false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		OrderID uuid.UUID       `json:"order_id"`
		Total   decimal.Decimal `json:"total"`
	}
	decodeBody(t, resp, &body)
	assert.True(t, body.Total.Equal(decimal.RequireFromString("20.00")), "got %s", body.Total)
	return body.OrderID
}

func TestHealth(t *testing.T) {
	env := newEnv(t)
	resp := env.request(t, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAndGetOrder(t *testing.T) {
	env := newEnv(t)
	orderID := env.createOrder(t)

	resp := env.request(t, http.MethodGet, "/api/v1/orders/"+orderID.String(), nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status        string `json:"status"`
		PaymentStatus string `json:"payment_status"`
		Items         []struct {
			ProductName string `json:"product_name"`
		} `json:"items"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "pending", body.Status)
	assert.Equal(t, "pending", body.PaymentStatus)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Tarta de queso", body.Items[0].ProductName)
}

// An unknown coupon code is rejected the same way as an expired or
// exhausted one: the cart is unprocessable, nothing is missing.
func TestCreateOrderUnknownCoupon(t *testing.T) {
	env := newEnv(t)

	resp := env.request(t, http.MethodPost, "/api/v1/orders", fiber.Map{
		"buyer_id":       env.buyerID,
		"payment_method": "cash",
		"coupon_code":    "NOEXISTE",
		"lines": []fiber.Map{
			{"product_id": env.productID, "quantity": 1},
		},
	}, false)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestGetOrderErrors(t *testing.T) {
	env := newEnv(t)

	resp := env.request(t, http.MethodGet, "/api/v1/orders/not-a-uuid", nil, false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.request(t, http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConfirmPaymentAuthz(t *testing.T) {
	env := newEnv(t)
	orderID := env.createOrder(t)
	path := fmt.Sprintf("/api/v1/orders/%s/payment", orderID)

	resp := env.request(t, http.MethodPost, path, fiber.Map{"payment_status": "paid"}, false)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.request(t, http.MethodPost, path, fiber.Map{"payment_status": "paid"}, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestConfirmPaymentConflict(t *testing.T) {
	env := newEnv(t)
	orderID := env.createOrder(t)
	path := fmt.Sprintf("/api/v1/orders/%s/payment", orderID)

	resp := env.request(t, http.MethodPost, path, fiber.Map{"payment_status": "refunded"}, true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestInvoiceEndpoints(t *testing.T) {
	env := newEnv(t)
	orderID := env.createOrder(t)

	// No invoice before payment.
	resp := env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/%s/invoice", orderID), nil, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/payment", orderID), fiber.Map{"payment_status": "paid"}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Payment confirmation generated the invoice; explicit generation is an
	// idempotent replay.
	resp = env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/invoice", orderID), nil, true)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/%s/invoice", orderID), nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Number       string          `json:"number"`
		Type         string          `json:"type"`
		SubtotalBase decimal.Decimal `json:"subtotal_base"`
		TotalIVA     decimal.Decimal `json:"total_iva"`
	}
	decodeBody(t, resp, &body)
	assert.Contains(t, body.Number, "FAC-")
	assert.Equal(t, "simplified", body.Type)
	assert.Equal(t, "18.18", body.SubtotalBase.StringFixed(2))
	assert.Equal(t, "1.82", body.TotalIVA.StringFixed(2))

	resp = env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/invoice/sent", orderID), nil, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInventoryEndpoints(t *testing.T) {
	env := newEnv(t)
	productID := env.productID

	resp := env.request(t, http.MethodPost, "/api/v1/inventory/movements", fiber.Map{
		"product_id": productID,
		"type":       "production",
		"quantity":   15,
	}, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Customers cannot write to the ledger.
	resp = env.request(t, http.MethodPost, "/api/v1/inventory/movements", fiber.Map{
		"product_id": productID,
		"type":       "production",
		"quantity":   1,
	}, false)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/inventory/%s/stock", productID), nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stock struct {
		Stock int `json:"stock"`
	}
	decodeBody(t, resp, &stock)
	assert.Equal(t, 15, stock.Stock)

	resp = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/inventory/%s/movements", productID), nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
