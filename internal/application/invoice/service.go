package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	domain "github.com/obrador/storefront/internal/domain/invoice"
	domorder "github.com/obrador/storefront/internal/domain/order"
	"github.com/obrador/storefront/internal/observability"
)

const (
	componentName = "invoice_service"

	// numberAttempts bounds retries when a freshly allocated invoice
	// number loses a uniqueness race.
	numberAttempts = 3
)

type IDGenerator interface {
	NewID() uuid.UUID
}

// BuyerDirectory resolves the profile snapshot frozen onto an invoice.
type BuyerDirectory interface {
	Buyer(ctx context.Context, id uuid.UUID) (*domain.Buyer, error)
}

// BusinessInfo provides the seller snapshot.
type BusinessInfo interface {
	Seller(ctx context.Context) (domain.Seller, error)
}

// Service derives VAT invoices from paid orders, exactly once per order.
type Service struct {
	invoices domain.Repository
	orders   domorder.Repository
	buyers   BuyerDirectory
	business BusinessInfo
	seq      domain.Sequence
	ids      IDGenerator
	now      func() time.Time

	log    observability.Logger
	tracer observability.Tracer

	generated observability.Counter
}

func NewService(invoices domain.Repository, orders domorder.Repository, buyers BuyerDirectory, business BusinessInfo, seq domain.Sequence, ids IDGenerator, obs observability.Observability) *Service {
	if obs == nil {
		obs = observability.Nop()
	}
	return &Service{
		invoices: invoices,
		orders:   orders,
		buyers:   buyers,
		business: business,
		seq:      seq,
		ids:      ids,
		now:      time.Now,
		log:      obs.Logger().With(observability.F("component", componentName)),
		tracer:   obs.Tracer(),
		generated: obs.Metrics().Counter("invoices_generated_total",
			"Total invoices generated.", "outcome"),
	}
}

// Generate creates the invoice for a paid order, or returns the existing
// invoice id unchanged when one is already there. "Already invoiced" is
// never an error; the uniqueness constraint on order_id turns a concurrent
// double-generation into a fetch of the winner's row.
func (s *Service) Generate(ctx context.Context, orderID uuid.UUID) (uuid.UUID, error) {
	ctx, span := s.tracer.Start(ctx, "invoice.generate",
		attribute.String("order.id", orderID.String()),
	)
	defer span.End()
	logger := observability.LoggerFrom(ctx, s.log)

	existing, err := s.invoices.GetByOrderID(ctx, orderID)
	switch {
	case err == nil:
		return existing.ID, nil
	case !errors.Is(err, domain.ErrNotFound):
		return uuid.Nil, fmt.Errorf("invoice: lookup: %w", err)
	}

	entity, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return uuid.Nil, err
	}
	if entity.PaymentStatus != domorder.PaymentPaid {
		return uuid.Nil, domain.ErrOrderNotPaid
	}

	buyer, err := s.buyers.Buyer(ctx, entity.BuyerID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invoice: buyer lookup: %w", err)
	}
	seller, err := s.business.Seller(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invoice: seller lookup: %w", err)
	}

	for attempt := 0; attempt < numberAttempts; attempt++ {
		year := s.now().UTC().Year()
		seqValue, err := s.seq.Next(ctx, year)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invoice: number allocation: %w", err)
		}

		inv, err := domain.Build(s.ids.NewID(), entity, seller, *buyer, domain.FormatNumber(year, seqValue), s.ids.NewID)
		if err != nil {
			return uuid.Nil, err
		}

		err = s.invoices.Create(ctx, inv)
		switch {
		case err == nil:
			s.generated.Add(1, observability.L("outcome", "success"))
			logger.Info("invoice_generated",
				observability.F("order_id", orderID),
				observability.F("invoice_id", inv.ID),
				observability.F("number", inv.Number),
				observability.F("type", inv.Type()),
			)
			return inv.ID, nil
		case errors.Is(err, domain.ErrDuplicate):
			// A concurrent generation won; theirs is the invoice.
			winner, getErr := s.invoices.GetByOrderID(ctx, orderID)
			if getErr != nil {
				return uuid.Nil, fmt.Errorf("invoice: fetch after duplicate: %w", getErr)
			}
			s.generated.Add(1, observability.L("outcome", "duplicate"))
			return winner.ID, nil
		case errors.Is(err, domain.ErrNumberTaken):
			logger.Warn("invoice_number_collision",
				observability.F("order_id", orderID),
				observability.F("number", inv.Number),
			)
			continue
		default:
			s.generated.Add(1, observability.L("outcome", "error"))
			return uuid.Nil, fmt.Errorf("invoice: create: %w", err)
		}
	}

	s.generated.Add(1, observability.L("outcome", "error"))
	return uuid.Nil, fmt.Errorf("invoice: number allocation retries exhausted for order %s", orderID)
}

// Get loads the invoice for an order with its items.
func (s *Service) Get(ctx context.Context, orderID uuid.UUID) (*domain.Invoice, error) {
	return s.invoices.GetByOrderID(ctx, orderID)
}

// MarkSent stamps sent_at once the document went out.
func (s *Service) MarkSent(ctx context.Context, orderID uuid.UUID) error {
	return s.invoices.MarkSent(ctx, orderID, s.now().UTC())
}
