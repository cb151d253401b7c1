package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	domactor "github.com/obrador/storefront/internal/domain/actor"
	domcoupon "github.com/obrador/storefront/internal/domain/coupon"
	domain "github.com/obrador/storefront/internal/domain/order"
	domoutbox "github.com/obrador/storefront/internal/domain/outbox"
	"github.com/obrador/storefront/internal/observability"
)

const componentName = "order_service"

// Service turns carts into priced, persisted orders and owns the
// staff-driven fulfillment lifecycle.
type Service struct {
	orders    domain.Repository
	coupons   domcoupon.Repository
	catalog   Catalog
	ids       IDGenerator
	publisher domoutbox.Publisher

	log    observability.Logger
	tracer observability.Tracer

	created         observability.Counter
	publishFailures observability.Counter
}

func NewService(orders domain.Repository, coupons domcoupon.Repository, catalog Catalog, ids IDGenerator, publisher domoutbox.Publisher, obs observability.Observability) *Service {
	if obs == nil {
		obs = observability.Nop()
	}
	return &Service{
		orders:    orders,
		coupons:   coupons,
		catalog:   catalog,
		ids:       ids,
		publisher: publisher,
		log:       obs.Logger().With(observability.F("component", componentName)),
		tracer:    obs.Tracer(),
		created: obs.Metrics().Counter("orders_created_total",
			"Total orders created.", "outcome"),
		publishFailures: obs.Metrics().Counter("order_event_publish_failed_total",
			"Count of order event publish failures.", "event"),
	}
}

type CartLine struct {
	ProductID uuid.UUID
	Quantity  int
}

type CreateOrderInput struct {
	BuyerID       uuid.UUID
	Lines         []CartLine
	CouponCode    string
	PaymentMethod domain.PaymentMethod
	DeliveryFee   decimal.Decimal
	DeliveryDate  *time.Time
	BuyerTaxID    *string
	AddressID     *uuid.UUID
	Notes         string
}

type CreateOrderResult struct {
	OrderID        uuid.UUID
	Total          decimal.Decimal
	OfflinePayment bool
}

// CreateOrder prices the cart against the catalog, applies an optional
// coupon and persists the order with its items as one atomic unit. A coupon
// rejection aborts the whole operation; no partial order survives.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	ctx, span := s.tracer.Start(ctx, "order.create",
		attribute.String("order.buyer_id", in.BuyerID.String()),
		attribute.Int("order.lines", len(in.Lines)),
	)
	defer span.End()
	logger := observability.LoggerFrom(ctx, s.log)

	if len(in.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if !in.PaymentMethod.Valid() {
		return nil, domain.ErrInvalidPaymentMethod
	}
	if in.DeliveryFee.IsNegative() {
		return nil, domain.ErrInvalidDeliveryFee
	}

	items := make([]domain.Item, 0, len(in.Lines))
	subtotal := decimal.Zero
	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		product, err := s.catalog.Product(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
			}
			return nil, fmt.Errorf("order: catalog lookup %s: %w", line.ProductID, err)
		}
		item, err := domain.NewItem(s.ids.NewID(), product.ID, product.Name, line.Quantity, product.UnitPrice, product.TaxRate)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		subtotal = subtotal.Add(item.TotalPrice)
	}

	discount := decimal.Zero
	var couponID *uuid.UUID
	if in.CouponCode != "" {
		c, err := s.coupons.FindByCode(ctx, in.CouponCode)
		if err != nil {
			return nil, err
		}
		if err := c.Validate(subtotal, time.Now().UTC()); err != nil {
			logger.Info("coupon_rejected",
				observability.F("code", in.CouponCode),
				observability.F("reason", err.Error()),
			)
			return nil, err
		}
		discount, err = c.Discount(subtotal)
		if err != nil {
			return nil, err
		}
		couponID = &c.ID
	}

	entity, err := domain.New(s.ids.NewID(), in.BuyerID, items, in.PaymentMethod, discount, in.DeliveryFee, couponID)
	if err != nil {
		return nil, err
	}
	entity.BuyerTaxID = in.BuyerTaxID
	entity.AddressID = in.AddressID
	entity.DeliveryDate = in.DeliveryDate
	entity.Notes = in.Notes

	if err := s.orders.Create(ctx, entity); err != nil {
		s.created.Add(1, observability.L("outcome", "error"))
		logger.Error("order_create_failed", observability.F("error", err))
		return nil, fmt.Errorf("order: create: %w", err)
	}

	// Offline methods settle outside the engine, so the buyer is notified
	// right away. Delivery is fire-and-forget: a publish failure is logged
	// and swallowed, never surfaced to the caller.
	if in.PaymentMethod.Offline() && s.publisher != nil {
		if err := s.publisher.Publish(ctx, domain.NewCreatedEvent(entity)); err != nil {
			s.publishFailures.Add(1, observability.L("event", "order.created"))
			logger.Warn("order_created_publish_failed",
				observability.F("order_id", entity.ID),
				observability.F("error", err),
			)
		}
	}

	s.created.Add(1, observability.L("outcome", "success"))
	logger.Info("order_created",
		observability.F("order_id", entity.ID),
		observability.F("total", entity.Total),
		observability.F("offline_payment", in.PaymentMethod.Offline()),
	)
	return &CreateOrderResult{
		OrderID:        entity.ID,
		Total:          entity.Total,
		OfflinePayment: in.PaymentMethod.Offline(),
	}, nil
}

// Get loads an order with its items.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.orders.Get(ctx, id)
}

// UpdateStatus moves an order through the fulfillment graph. Staff only;
// illegal transitions are rejected before any write.
func (s *Service) UpdateStatus(ctx context.Context, act domactor.Actor, id uuid.UUID, next domain.Status) error {
	if !act.IsStaff() {
		return domactor.ErrForbidden
	}
	entity, err := s.orders.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := entity.TransitionStatus(next); err != nil {
		return err
	}
	if err := s.orders.UpdateStatus(ctx, id, next); err != nil {
		return fmt.Errorf("order: update status: %w", err)
	}
	observability.LoggerFrom(ctx, s.log).Info("order_status_updated",
		observability.F("order_id", id),
		observability.F("status", next),
		observability.F("actor", act.ID),
	)
	return nil
}
