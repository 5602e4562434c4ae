package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
	"github.com/jvaldezc/tienda-core/internal/service/stock"
)

// Pricing rules frozen into every order at checkout.
const (
	taxRate           = 0.19
	shippingFee       = 10.0
	freeShippingAbove = 100.0
)

// Store is the order persistence contract.
type Store interface {
	InsertOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error)
	UpdateOrder(ctx context.Context, order *models.Order) error
	DeleteOrder(ctx context.Context, id string) error
}

// ProductSource supplies catalog snapshots for price and availability.
type ProductSource interface {
	FindProduct(ctx context.Context, id string) (*models.Product, error)
}

// Notifier publishes best-effort interaction events.
type Notifier interface {
	Publish(event models.InteractionEvent)
}

// Line is one requested checkout position.
type Line struct {
	ProductID string
	Quantity  int
}

// Pipeline describes the order operations the HTTP layer can perform.
type Pipeline interface {
	Checkout(ctx context.Context, userID string, lines []Line) (*models.Order, error)
	Get(ctx context.Context, actorID, id string) (*models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) (*models.PaginatedOrders, error)
	Update(ctx context.Context, id string, status models.OrderStatus, trackingNumber string) (*models.Order, error)
	Remove(ctx context.Context, id string) error
}

// Service is the one-shot order creation pipeline plus the administrative
// order operations.
type Service struct {
	store    Store
	products ProductSource
	ledger   stock.Ledger
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new order pipeline.
func NewService(store Store, products ProductSource, ledger stock.Ledger, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		products: products,
		ledger:   ledger,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Checkout converts a line list into a persisted order: validate every
// product and its availability, freeze unit prices, compute totals, persist
// the order as pending and debit the ledger for each line. A failure at any
// step leaves no partial order and no partial debit.
func (s *Service) Checkout(ctx context.Context, userID string, lines []Line) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, models.NewValidationError("order must contain at least one item")
	}

	subtotal := 0.0
	items := make([]models.OrderItem, 0, len(lines))

	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, models.NewValidationError("quantity for product %s must be at least 1, got %d", line.ProductID, line.Quantity)
		}

		product, err := s.products.FindProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Stock < line.Quantity {
			return nil, &models.InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   line.Quantity,
			}
		}

		itemSubtotal := product.Price * float64(line.Quantity)
		subtotal += itemSubtotal
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			Subtotal:  itemSubtotal,
		})
	}

	tax := subtotal * taxRate
	shipping := shippingFee
	if subtotal > freeShippingAbove {
		shipping = 0
	}

	order := &models.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Items:     items,
		Subtotal:  subtotal,
		Tax:       tax,
		Shipping:  shipping,
		Total:     subtotal + tax + shipping,
		Status:    models.OrderPending,
		CreatedAt: s.now().UTC(),
	}

	if err := s.store.InsertOrder(ctx, order); err != nil {
		return nil, err
	}

	for i, item := range order.Items {
		if _, err := s.ledger.Debit(ctx, item.ProductID, item.Quantity); err != nil {
			// The advisory check above passed but the authoritative debit
			// lost a race. Undo the debits taken so far and drop the order.
			s.compensate(ctx, order, i)
			return nil, err
		}
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.Float64("total", order.Total))
	return order, nil
}

// Get loads an order and emits a best-effort "view" event per item for the
// acting identity.
func (s *Service) Get(ctx context.Context, actorID, id string) (*models.Order, error) {
	order, err := s.store.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil && actorID != "" {
		for _, item := range order.Items {
			s.notifier.Publish(models.InteractionEvent{
				UserID:    actorID,
				ProductID: item.ProductID,
				Kind:      models.InteractionView,
			})
		}
	}

	return order, nil
}

// List returns a page of orders, newest first.
func (s *Service) List(ctx context.Context, filter models.OrderFilter) (*models.PaginatedOrders, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, models.NewValidationError("unknown order status %q", filter.Status)
	}

	items, total, err := s.store.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &models.PaginatedOrders{
		Items: items,
		PageInfo: models.PageInfo{
			CurrentPage:     filter.Page,
			TotalPages:      totalPages,
			TotalItems:      total,
			ItemsPerPage:    filter.Limit,
			HasNextPage:     filter.Page < totalPages,
			HasPreviousPage: filter.Page > 1,
		},
	}, nil
}

// Update sets the order's status and/or tracking number.
func (s *Service) Update(ctx context.Context, id string, status models.OrderStatus, trackingNumber string) (*models.Order, error) {
	order, err := s.store.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if status != "" {
		if !status.Valid() {
			return nil, models.NewValidationError("unknown order status %q", status)
		}
		order.Status = status
	}
	if trackingNumber != "" {
		order.TrackingNumber = trackingNumber
	}

	if err := s.store.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Remove credits every line's quantity back to stock, then deletes the
// order record.
func (s *Service) Remove(ctx context.Context, id string) error {
	order, err := s.store.FindOrder(ctx, id)
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		if _, err := s.ledger.Credit(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	if err := s.store.DeleteOrder(ctx, id); err != nil {
		return err
	}

	s.logger.Info("order removed, stock restored", zap.String("order_id", id))
	return nil
}

// compensate credits back the first debited lines of a failed checkout and
// deletes the pending order. Failures here are logged loudly; they mean
// manual stock reconciliation.
func (s *Service) compensate(ctx context.Context, order *models.Order, debited int) {
	for _, item := range order.Items[:debited] {
		if _, err := s.ledger.Credit(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("failed to restore stock after aborted checkout",
				zap.String("order_id", order.ID),
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}

	if err := s.store.DeleteOrder(ctx, order.ID); err != nil {
		s.logger.Error("failed to delete aborted order",
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
}
