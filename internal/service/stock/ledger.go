package stock

import (
	"context"

	"go.uber.org/zap"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
)

// Store is the persistence contract the ledger requires. Both operations
// must be atomic: the debit's availability guard and its decrement have to
// happen in a single conditional update, never as a read followed by a
// write.
type Store interface {
	DebitStock(ctx context.Context, productID string, qty int) (int, error)
	CreditStock(ctx context.Context, productID string, qty int) (int, error)
}

// Ledger is the sole authority over product on-hand quantities. Every
// component that moves stock (cart checks, checkout, note processing) goes
// through this interface; nothing else may write the stock field.
type Ledger interface {
	Debit(ctx context.Context, productID string, qty int) (int, error)
	Credit(ctx context.Context, productID string, qty int) (int, error)
}

// Service implements Ledger on top of an atomic Store.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService wires a new ledger instance.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Debit removes qty units from the product's stock and returns the new
// level. It fails with InsufficientStockError when fewer than qty units
// are on hand, leaving the counter untouched.
func (s *Service) Debit(ctx context.Context, productID string, qty int) (int, error) {
	if qty < 1 {
		return 0, models.NewValidationError("debit quantity must be at least 1, got %d", qty)
	}

	remaining, err := s.store.DebitStock(ctx, productID, qty)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("stock debited",
		zap.String("product_id", productID),
		zap.Int("quantity", qty),
		zap.Int("remaining", remaining))
	return remaining, nil
}

// Credit adds qty units to the product's stock and returns the new level.
func (s *Service) Credit(ctx context.Context, productID string, qty int) (int, error) {
	if qty < 1 {
		return 0, models.NewValidationError("credit quantity must be at least 1, got %d", qty)
	}

	remaining, err := s.store.CreditStock(ctx, productID, qty)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("stock credited",
		zap.String("product_id", productID),
		zap.Int("quantity", qty),
		zap.Int("remaining", remaining))
	return remaining, nil
}
