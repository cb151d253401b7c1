package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	domactor "github.com/obrador/storefront/internal/domain/actor"
	domcoupon "github.com/obrador/storefront/internal/domain/coupon"
	dominv "github.com/obrador/storefront/internal/domain/inventory"
	domain "github.com/obrador/storefront/internal/domain/order"
	domoutbox "github.com/obrador/storefront/internal/domain/outbox"
	"github.com/obrador/storefront/internal/observability"
)

const (
	componentName = "payment_service"

	// redeemAttempts bounds retries of the coupon counter update when the
	// storage layer reports a transient conflict.
	redeemAttempts = 3
)

type IDGenerator interface {
	NewID() uuid.UUID
}

// InvoiceIssuer is the idempotent invoice generation entry point.
type InvoiceIssuer interface {
	Generate(ctx context.Context, orderID uuid.UUID) (uuid.UUID, error)
}

// Service drives the payment-status state machine. The transition to paid
// triggers inventory deductions, the coupon usage counter and invoice
// generation; every side effect is idempotent so retried confirmations are
// harmless.
type Service struct {
	orders    domain.Repository
	coupons   domcoupon.Repository
	ledger    dominv.Repository
	invoices  InvoiceIssuer
	ids       IDGenerator
	publisher domoutbox.Publisher

	log    observability.Logger
	tracer observability.Tracer

	confirmations   observability.Counter
	invoiceFailures observability.Counter
}

func NewService(orders domain.Repository, coupons domcoupon.Repository, ledger dominv.Repository, invoices InvoiceIssuer, ids IDGenerator, publisher domoutbox.Publisher, obs observability.Observability) *Service {
	if obs == nil {
		obs = observability.Nop()
	}
	return &Service{
		orders:    orders,
		coupons:   coupons,
		ledger:    ledger,
		invoices:  invoices,
		ids:       ids,
		publisher: publisher,
		log:       obs.Logger().With(observability.F("component", componentName)),
		tracer:    obs.Tracer(),
		confirmations: obs.Metrics().Counter("payment_confirmations_total",
			"Total payment status transitions.", "to", "outcome"),
		invoiceFailures: obs.Metrics().Counter("invoice_generation_failed_total",
			"Invoice generation failures during payment confirmation."),
	}
}

// ConfirmPayment applies a payment-status transition on behalf of a staff
// actor. pending -> paid|failed and paid -> refunded are the only legal
// moves. Confirming an already-paid order as paid is an idempotent replay:
// the side effects are re-run in their skip-if-done form, which also heals
// an earlier invoice-generation gap.
func (s *Service) ConfirmPayment(ctx context.Context, act domactor.Actor, orderID uuid.UUID, next domain.PaymentStatus) error {
	ctx, span := s.tracer.Start(ctx, "payment.confirm",
		attribute.String("order.id", orderID.String()),
		attribute.String("payment.next", string(next)),
	)
	defer span.End()
	logger := observability.LoggerFrom(ctx, s.log)

	if !act.IsStaff() {
		return domactor.ErrForbidden
	}
	if !next.Valid() {
		return domain.ErrInvalidPaymentStatus
	}

	entity, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}

	if next == domain.PaymentPaid && entity.PaymentStatus == domain.PaymentPaid {
		s.applyPaidSideEffects(ctx, entity, act)
		s.confirmations.Add(1, observability.L("to", string(next)), observability.L("outcome", "replay"))
		logger.Info("payment_confirm_replay", observability.F("order_id", orderID))
		return nil
	}

	if !domain.CanTransitionPayment(entity.PaymentStatus, next) {
		return domain.ErrPaymentTransition
	}

	if next != domain.PaymentPaid {
		if err := s.orders.UpdatePaymentStatus(ctx, orderID, entity.PaymentStatus, next); err != nil {
			return err
		}
		s.confirmations.Add(1, observability.L("to", string(next)), observability.L("outcome", "success"))
		logger.Info("payment_status_updated",
			observability.F("order_id", orderID),
			observability.F("payment_status", next),
			observability.F("actor", act.ID),
		)
		return nil
	}

	// The coupon use is consumed before the status flip. A failed
	// redemption leaves the order untouched, so the order is never visible
	// as paid without its use accounted for, and concurrent replays cannot
	// pick up side effects for an order that ends up pending.
	redeemed := false
	if entity.CouponID != nil {
		if err := s.redeemCoupon(ctx, *entity.CouponID); err != nil {
			if errors.Is(err, domcoupon.ErrMaxUsesReached) {
				// A concurrent confirmation may have taken the last use
				// and paid this same order already.
				if reloaded, getErr := s.orders.Get(ctx, orderID); getErr == nil && reloaded.PaymentStatus == domain.PaymentPaid {
					s.applyPaidSideEffects(ctx, reloaded, act)
					s.confirmations.Add(1, observability.L("to", string(next)), observability.L("outcome", "replay"))
					return nil
				}
			}
			s.confirmations.Add(1, observability.L("to", string(next)), observability.L("outcome", "coupon_rejected"))
			return err
		}
		redeemed = true
	}

	// The conditional update is the serialization point: of two concurrent
	// confirmations only one flips the row. A loser hands its coupon use
	// back and replays the winner's idempotent side effects.
	if err := s.orders.UpdatePaymentStatus(ctx, orderID, entity.PaymentStatus, domain.PaymentPaid); err != nil {
		if redeemed {
			if relErr := s.coupons.Release(ctx, *entity.CouponID); relErr != nil {
				logger.Error("coupon_release_failed",
					observability.F("order_id", orderID),
					observability.F("coupon_id", *entity.CouponID),
					observability.F("error", relErr),
				)
			}
		}
		if errors.Is(err, domain.ErrPaymentStatusConflict) {
			reloaded, getErr := s.orders.Get(ctx, orderID)
			if getErr == nil && reloaded.PaymentStatus == domain.PaymentPaid {
				s.applyPaidSideEffects(ctx, reloaded, act)
				s.confirmations.Add(1, observability.L("to", string(next)), observability.L("outcome", "replay"))
				return nil
			}
		}
		return err
	}

	entity.PaymentStatus = domain.PaymentPaid
	s.applyPaidSideEffects(ctx, entity, act)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, domain.NewPaymentConfirmedEvent(entity)); err != nil {
			logger.Warn("payment_confirmed_event_publish_failed",
				observability.F("order_id", orderID),
				observability.F("error", err),
			)
		}
	}

	s.confirmations.Add(1, observability.L("to", string(next)), observability.L("outcome", "success"))
	logger.Info("payment_confirmed",
		observability.F("order_id", orderID),
		observability.F("actor", act.ID),
	)
	return nil
}

// redeemCoupon increments current_uses through the repository's atomic
// conditional update. Transient failures are retried a bounded number of
// times; hitting the cap is final.
func (s *Service) redeemCoupon(ctx context.Context, couponID uuid.UUID) error {
	var err error
	for attempt := 0; attempt < redeemAttempts; attempt++ {
		err = s.coupons.Redeem(ctx, couponID)
		if err == nil || errors.Is(err, domcoupon.ErrMaxUsesReached) || errors.Is(err, domcoupon.ErrNotFound) {
			return err
		}
	}
	return fmt.Errorf("payment: coupon redeem: %w", err)
}

// applyPaidSideEffects records one inventory deduction per order line and
// asks for the invoice. Both calls are idempotent. An invoice failure is
// logged and swallowed: the paid status stands and a later replay or the
// reconciliation job fills the gap.
func (s *Service) applyPaidSideEffects(ctx context.Context, entity *domain.Order, act domactor.Actor) {
	logger := observability.LoggerFrom(ctx, s.log)

	for _, item := range entity.Items {
		movement, err := dominv.NewMovement(s.ids.NewID(), item.ProductID, dominv.TypeOrder, -item.Quantity, &entity.ID, "", act.ID)
		if err != nil {
			logger.Error("inventory_movement_invalid",
				observability.F("order_id", entity.ID),
				observability.F("product_id", item.ProductID),
				observability.F("error", err),
			)
			continue
		}
		recorded, err := s.ledger.AppendForOrder(ctx, movement)
		if err != nil {
			logger.Error("inventory_movement_failed",
				observability.F("order_id", entity.ID),
				observability.F("product_id", item.ProductID),
				observability.F("error", err),
			)
			continue
		}
		if !recorded {
			logger.Debug("inventory_movement_skipped",
				observability.F("order_id", entity.ID),
				observability.F("product_id", item.ProductID),
			)
		}
	}

	if _, err := s.invoices.Generate(ctx, entity.ID); err != nil {
		s.invoiceFailures.Add(1)
		logger.Error("invoice_generation_failed",
			observability.F("order_id", entity.ID),
			observability.F("error", err),
		)
	}
}
