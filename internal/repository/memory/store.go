// Package memory is a mutex-guarded in-memory implementation of every
// persistence interface the services declare. It backs the test suites and
// local development; production uses the MongoDB repository.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
)

// Store holds all state behind one mutex. The stock operations replicate
// the MongoDB adapter's contract: the debit guard and decrement happen
// under the same lock, so stock can never be observed negative.
type Store struct {
	mu             sync.Mutex
	products       map[string]models.Product
	carts          map[string]models.Cart
	orders         map[string]models.Order
	salesNotes     map[string]models.SalesNote
	receivingNotes map[string]models.ReceivingNote
	discounts      map[string]models.Discount
	counters       map[string]int
	reports        []models.DailySalesReport
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		products:       map[string]models.Product{},
		carts:          map[string]models.Cart{},
		orders:         map[string]models.Order{},
		salesNotes:     map[string]models.SalesNote{},
		receivingNotes: map[string]models.ReceivingNote{},
		discounts:      map[string]models.Discount{},
		counters:       map[string]int{},
	}
}

// PutProduct seeds or replaces a product.
func (s *Store) PutProduct(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// PutDiscount seeds or replaces a discount.
func (s *Store) PutDiscount(d models.Discount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discounts[d.Code] = d
}

// StockOf reports a product's current stock, for assertions.
func (s *Store) StockOf(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

// Reports returns the stored daily report snapshots.
func (s *Store) Reports() []models.DailySalesReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.DailySalesReport, len(s.reports))
	copy(out, s.reports)
	return out
}

// FindProduct loads a product by id.
func (s *Store) FindProduct(_ context.Context, id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	return &p, nil
}

// DebitStock decrements stock under the guard `stock >= qty`, atomically.
func (s *Store) DebitStock(_ context.Context, productID string, qty int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return 0, models.ErrProductNotFound
	}
	if p.Stock < qty {
		return 0, &models.InsufficientStockError{
			ProductID:   productID,
			ProductName: p.Name,
			Available:   p.Stock,
			Requested:   qty,
		}
	}

	p.Stock -= qty
	s.products[productID] = p
	return p.Stock, nil
}

// CreditStock increments stock.
func (s *Store) CreditStock(_ context.Context, productID string, qty int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return 0, models.ErrProductNotFound
	}

	p.Stock += qty
	s.products[productID] = p
	return p.Stock, nil
}

// FindCart loads a cart by id.
func (s *Store) FindCart(_ context.Context, id string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[id]
	if !ok {
		return nil, models.ErrCartNotFound
	}
	return cloneCart(c), nil
}

// FindCartByUser loads the open cart of the given identity.
func (s *Store) FindCartByUser(_ context.Context, userID string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.carts {
		if c.UserID == userID {
			return cloneCart(c), nil
		}
	}
	return nil, models.ErrCartNotFound
}

// FindCartByItem loads the cart containing the given line item.
func (s *Store) FindCartByItem(_ context.Context, itemID string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.carts {
		for _, item := range c.Items {
			if item.ID == itemID {
				return cloneCart(c), nil
			}
		}
	}
	return nil, models.ErrCartItemNotFound
}

// SaveCart upserts the full cart document.
func (s *Store) SaveCart(_ context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[cart.ID] = *cloneCart(*cart)
	return nil
}

// InsertOrder persists a new order.
func (s *Store) InsertOrder(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[order.ID] = *order
	return nil
}

// FindOrder loads an order by id.
func (s *Store) FindOrder(_ context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return &o, nil
}

// ListOrders returns one page of matching orders, newest first.
func (s *Store) ListOrders(_ context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := []models.Order{}
	for _, o := range s.orders {
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		matched = append(matched, o)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(matched) {
		return []models.Order{}, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// UpdateOrder replaces a stored order.
func (s *Store) UpdateOrder(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.ID]; !ok {
		return models.ErrOrderNotFound
	}
	s.orders[order.ID] = *order
	return nil
}

// DeleteOrder removes an order.
func (s *Store) DeleteOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return models.ErrOrderNotFound
	}
	delete(s.orders, id)
	return nil
}

// NextSequence increments and returns the named counter.
func (s *Store) NextSequence(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[key]++
	return s.counters[key], nil
}

// FindDiscountByCode loads an active discount by code.
func (s *Store) FindDiscountByCode(_ context.Context, code string) (*models.Discount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.discounts[code]
	if !ok || !d.Active {
		return nil, models.ErrDiscountInvalid
	}
	return &d, nil
}

// InsertSalesNote persists a new sales note.
func (s *Store) InsertSalesNote(_ context.Context, note *models.SalesNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.salesNotes[note.ID] = *note
	return nil
}

// FindSalesNote loads a sales note by id.
func (s *Store) FindSalesNote(_ context.Context, id string) (*models.SalesNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.salesNotes[id]
	if !ok {
		return nil, models.ErrNoteNotFound
	}
	return &n, nil
}

// ListSalesNotes returns sales notes, optionally limited to one user.
func (s *Store) ListSalesNotes(_ context.Context, userID string) ([]models.SalesNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.SalesNote{}
	for _, n := range s.salesNotes {
		if userID != "" && n.UserID != userID {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// UpdateSalesNote replaces a stored sales note.
func (s *Store) UpdateSalesNote(_ context.Context, note *models.SalesNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.salesNotes[note.ID]; !ok {
		return models.ErrNoteNotFound
	}
	s.salesNotes[note.ID] = *note
	return nil
}

// DeleteSalesNote removes a sales note.
func (s *Store) DeleteSalesNote(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.salesNotes[id]; !ok {
		return models.ErrNoteNotFound
	}
	delete(s.salesNotes, id)
	return nil
}

// SalesNoteStats aggregates note counts by status plus the processed amount.
func (s *Store) SalesNoteStats(_ context.Context) (*models.SalesNoteStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &models.SalesNoteStats{}
	for _, n := range s.salesNotes {
		stats.Total++
		switch n.Status {
		case models.NotePending:
			stats.Pending++
		case models.NoteProcessed:
			stats.Processed++
			stats.ProcessedAmount += n.Total
		case models.NoteCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

// InsertReceivingNote persists a new receiving note.
func (s *Store) InsertReceivingNote(_ context.Context, note *models.ReceivingNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.receivingNotes[note.ID] = *note
	return nil
}

// FindReceivingNote loads a receiving note by id.
func (s *Store) FindReceivingNote(_ context.Context, id string) (*models.ReceivingNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.receivingNotes[id]
	if !ok {
		return nil, models.ErrNoteNotFound
	}
	return &n, nil
}

// ListReceivingNotes returns receiving notes, optionally limited to one user.
func (s *Store) ListReceivingNotes(_ context.Context, userID string) ([]models.ReceivingNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.ReceivingNote{}
	for _, n := range s.receivingNotes {
		if userID != "" && n.UserID != userID {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// UpdateReceivingNote replaces a stored receiving note.
func (s *Store) UpdateReceivingNote(_ context.Context, note *models.ReceivingNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.receivingNotes[note.ID]; !ok {
		return models.ErrNoteNotFound
	}
	s.receivingNotes[note.ID] = *note
	return nil
}

// SaveDailySalesReport stores a report snapshot.
func (s *Store) SaveDailySalesReport(_ context.Context, report models.DailySalesReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append(s.reports, report)
	return nil
}

func cloneCart(c models.Cart) *models.Cart {
	items := make([]models.CartItem, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return &c
}
