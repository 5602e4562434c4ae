package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
	"github.com/jvaldezc/tienda-core/internal/service/discount"
)

// Store is the cart persistence contract.
type Store interface {
	FindCart(ctx context.Context, id string) (*models.Cart, error)
	FindCartByUser(ctx context.Context, userID string) (*models.Cart, error)
	FindCartByItem(ctx context.Context, itemID string) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
}

// ProductSource supplies catalog snapshots for price and availability.
type ProductSource interface {
	FindProduct(ctx context.Context, id string) (*models.Product, error)
}

// Notifier publishes best-effort interaction events.
type Notifier interface {
	Publish(event models.InteractionEvent)
}

// Manager describes the cart operations the HTTP layer can perform.
type Manager interface {
	GetOrCreate(ctx context.Context, userID string) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID string, qty int) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, itemID string, qty int) (*models.Cart, error)
	RemoveItem(ctx context.Context, itemID string) (*models.Cart, error)
	Clear(ctx context.Context, userID string) (*models.Cart, error)
	ApplyDiscount(ctx context.Context, cartID, code string) (*models.Cart, error)
	RemoveDiscount(ctx context.Context, cartID string) (*models.Cart, error)
	CountItems(ctx context.Context, userID string) (int, error)
}

// Service is the cart manager. Availability checks here are advisory only:
// nothing is reserved and only the checkout pipeline's ledger debit is
// authoritative.
type Service struct {
	store     Store
	products  ProductSource
	discounts discount.Evaluator
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a new cart manager.
func NewService(store Store, products ProductSource, discounts discount.Evaluator, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		products:  products,
		discounts: discounts,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// GetOrCreate returns the identity's open cart, creating an empty one on
// first access.
func (s *Service) GetOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.store.FindCartByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, models.ErrCartNotFound) {
		return nil, err
	}

	cart = &models.Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		Items:     []models.CartItem{},
		UpdatedAt: s.now().UTC(),
	}
	if err := s.store.SaveCart(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.Debug("cart created", zap.String("cart_id", cart.ID), zap.String("user_id", userID))
	return cart, nil
}

// AddItem stages qty units of a product, merging into an existing line if
// the product is already present. The availability check covers the
// combined quantity.
func (s *Service) AddItem(ctx context.Context, userID, productID string, qty int) (*models.Cart, error) {
	if qty < 1 {
		return nil, models.NewValidationError("quantity must be at least 1, got %d", qty)
	}

	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	requested := qty
	existing := cart.ItemByProduct(productID)
	if existing != nil {
		requested += existing.Quantity
	}
	if product.Stock < requested {
		return nil, &models.InsufficientStockError{
			ProductID:   productID,
			ProductName: product.Name,
			Available:   product.Stock,
			Requested:   requested,
		}
	}

	if existing != nil {
		existing.Quantity = requested
		existing.UnitPrice = product.Price
		existing.Subtotal = float64(existing.Quantity) * existing.UnitPrice
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ID:        uuid.NewString(),
			ProductID: productID,
			Quantity:  qty,
			UnitPrice: product.Price,
			Subtotal:  float64(qty) * product.Price,
		})
	}

	if err := s.saveRecomputed(ctx, cart); err != nil {
		return nil, err
	}

	// Best effort: a sink failure must never fail the cart operation.
	if s.notifier != nil {
		s.notifier.Publish(models.InteractionEvent{
			UserID:    userID,
			ProductID: productID,
			Kind:      models.InteractionCart,
		})
	}

	return cart, nil
}

// UpdateQuantity sets a line's quantity, re-snapshotting the unit price.
func (s *Service) UpdateQuantity(ctx context.Context, itemID string, qty int) (*models.Cart, error) {
	if qty < 1 {
		return nil, models.NewValidationError("quantity must be at least 1, got %d", qty)
	}

	cart, err := s.store.FindCartByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	item := cart.Item(itemID)
	if item == nil {
		return nil, models.ErrCartItemNotFound
	}

	product, err := s.products.FindProduct(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Stock < qty {
		return nil, &models.InsufficientStockError{
			ProductID:   item.ProductID,
			ProductName: product.Name,
			Available:   product.Stock,
			Requested:   qty,
		}
	}

	item.Quantity = qty
	item.UnitPrice = product.Price
	item.Subtotal = float64(qty) * product.Price

	if err := s.saveRecomputed(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem deletes a single line.
func (s *Service) RemoveItem(ctx context.Context, itemID string) (*models.Cart, error) {
	cart, err := s.store.FindCartByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept

	if err := s.saveRecomputed(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the cart in place: all lines, totals and the discount code.
func (s *Service) Clear(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.Items = []models.CartItem{}
	cart.Subtotal = 0
	cart.Discount = 0
	cart.Total = 0
	cart.DiscountCode = ""
	cart.UpdatedAt = s.now().UTC()

	if err := s.store.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ApplyDiscount validates the code against the evaluator and stores it.
func (s *Service) ApplyDiscount(ctx context.Context, cartID, code string) (*models.Cart, error) {
	cart, err := s.store.FindCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	amount, err := s.discounts.Evaluate(ctx, code, cart.Subtotal, s.now())
	if err != nil {
		return nil, err
	}

	cart.DiscountCode = code
	cart.Discount = amount
	cart.Total = nonNegative(cart.Subtotal - amount)
	cart.UpdatedAt = s.now().UTC()

	if err := s.store.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveDiscount clears the stored code and restores total = subtotal.
func (s *Service) RemoveDiscount(ctx context.Context, cartID string) (*models.Cart, error) {
	cart, err := s.store.FindCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	cart.DiscountCode = ""
	cart.Discount = 0
	cart.Total = cart.Subtotal
	cart.UpdatedAt = s.now().UTC()

	if err := s.store.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// CountItems sums the quantities across all lines of the identity's cart.
func (s *Service) CountItems(ctx context.Context, userID string) (int, error) {
	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, item := range cart.Items {
		count += item.Quantity
	}
	return count, nil
}

// saveRecomputed rebuilds the totals from the current lines, re-evaluates
// a stored discount code (dropping it if it no longer applies) and
// persists the cart.
func (s *Service) saveRecomputed(ctx context.Context, cart *models.Cart) error {
	subtotal := 0.0
	for _, item := range cart.Items {
		subtotal += item.Subtotal
	}
	cart.Subtotal = subtotal

	if cart.DiscountCode != "" {
		amount, err := s.discounts.Evaluate(ctx, cart.DiscountCode, subtotal, s.now())
		if err != nil {
			s.logger.Debug("stored discount code no longer applies, dropping it",
				zap.String("cart_id", cart.ID),
				zap.String("code", cart.DiscountCode),
				zap.Error(err))
			cart.DiscountCode = ""
			cart.Discount = 0
		} else {
			cart.Discount = amount
		}
	}

	cart.Total = nonNegative(cart.Subtotal - cart.Discount)
	cart.UpdatedAt = s.now().UTC()

	return s.store.SaveCart(ctx, cart)
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
