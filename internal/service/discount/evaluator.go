package discount

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
)

// Store supplies discount records; they are owned by the catalog
// collaborator and read-only here.
type Store interface {
	FindDiscountByCode(ctx context.Context, code string) (*models.Discount, error)
}

// Evaluator turns a discount code and a subtotal into a discount amount.
// Callers re-invoke it on every totals recompute so that an expiring or
// deactivated code is caught on the next cart mutation.
type Evaluator interface {
	Evaluate(ctx context.Context, code string, subtotal float64, now time.Time) (float64, error)
}

// Service implements Evaluator.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService wires a new evaluator instance.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Evaluate validates the code against its window at calendar-date
// granularity (both bounds inclusive) and returns subtotal * percentage / 100.
func (s *Service) Evaluate(ctx context.Context, code string, subtotal float64, now time.Time) (float64, error) {
	d, err := s.store.FindDiscountByCode(ctx, code)
	if err != nil {
		return 0, err
	}

	today := dateOnly(now)
	if !d.StartDate.IsZero() && today.Before(dateOnly(d.StartDate)) {
		return 0, models.ErrDiscountNotYetActive
	}
	if !d.EndDate.IsZero() && today.After(dateOnly(d.EndDate)) {
		return 0, models.ErrDiscountExpired
	}

	amount := subtotal * d.Percentage / 100
	if amount < 0 {
		amount = 0
	}

	s.logger.Debug("discount evaluated",
		zap.String("code", code),
		zap.Float64("subtotal", subtotal),
		zap.Float64("amount", amount))
	return amount, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
