package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	domactor "github.com/obrador/storefront/internal/domain/actor"
	domain "github.com/obrador/storefront/internal/domain/inventory"
	"github.com/obrador/storefront/internal/observability"
)

const componentName = "inventory_service"

type IDGenerator interface {
	NewID() uuid.UUID
}

// Service fronts the append-only stock ledger for staff-recorded movements
// and stock reads. Order deductions bypass this service; the payment
// orchestrator writes them through the repository's idempotent path.
type Service struct {
	repo domain.Repository
	ids  IDGenerator

	log      observability.Logger
	recorded observability.Counter
}

func NewService(repo domain.Repository, ids IDGenerator, obs observability.Observability) *Service {
	if obs == nil {
		obs = observability.Nop()
	}
	return &Service{
		repo: repo,
		ids:  ids,
		log:  obs.Logger().With(observability.F("component", componentName)),
		recorded: obs.Metrics().Counter("inventory_movements_total",
			"Total inventory movements recorded.", "type"),
	}
}

type RecordInput struct {
	ProductID   uuid.UUID
	Type        domain.MovementType
	Quantity    int
	ReferenceID *uuid.UUID
	Notes       string
}

// Record appends a staff-entered movement (production, physical sale,
// damage, manual adjustment) to the ledger.
func (s *Service) Record(ctx context.Context, act domactor.Actor, in RecordInput) (uuid.UUID, error) {
	if !act.IsStaff() {
		return uuid.Nil, domactor.ErrForbidden
	}
	movement, err := domain.NewMovement(s.ids.NewID(), in.ProductID, in.Type, in.Quantity, in.ReferenceID, in.Notes, act.ID)
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.repo.Append(ctx, movement); err != nil {
		return uuid.Nil, fmt.Errorf("inventory: append: %w", err)
	}
	s.recorded.Add(1, observability.L("type", string(in.Type)))
	observability.LoggerFrom(ctx, s.log).Info("inventory_movement_recorded",
		observability.F("movement_id", movement.ID),
		observability.F("product_id", in.ProductID),
		observability.F("type", in.Type),
		observability.F("quantity", in.Quantity),
		observability.F("actor", act.ID),
	)
	return movement.ID, nil
}

// StockOf returns the current stock, derived by summing the ledger.
func (s *Service) StockOf(ctx context.Context, productID uuid.UUID) (int, error) {
	return s.repo.StockOf(ctx, productID)
}

// Ledger returns the movement history for a product, newest first.
func (s *Service) Ledger(ctx context.Context, productID uuid.UUID) ([]*domain.Movement, error) {
	return s.repo.ListByProduct(ctx, productID)
}
