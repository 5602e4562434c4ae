package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
	"github.com/jvaldezc/tienda-core/internal/repository/memory"
	"github.com/jvaldezc/tienda-core/internal/service/stock"
)

type capturingNotifier struct {
	mu     sync.Mutex
	events []models.InteractionEvent
}

func (n *capturingNotifier) Publish(event models.InteractionEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *capturingNotifier) all() []models.InteractionEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.InteractionEvent{}, n.events...)
}

// racingLedger lets one product pass the advisory availability check and
// then fail the authoritative debit, simulating a lost race.
type racingLedger struct {
	inner  stock.Ledger
	failOn string
}

func (l *racingLedger) Debit(ctx context.Context, productID string, qty int) (int, error) {
	if productID == l.failOn {
		return 0, &models.InsufficientStockError{ProductID: productID, Requested: qty}
	}
	return l.inner.Debit(ctx, productID, qty)
}

func (l *racingLedger) Credit(ctx context.Context, productID string, qty int) (int, error) {
	return l.inner.Credit(ctx, productID, qty)
}

func newFixture(t *testing.T) (*Service, *memory.Store, *capturingNotifier) {
	t.Helper()

	store := memory.NewStore()
	notifier := &capturingNotifier{}
	svc := NewService(store, store, stock.NewService(store, nil), notifier, nil)
	svc.now = func() time.Time {
		return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc, store, notifier
}

func TestCheckoutComputesTotals(t *testing.T) {
	svc, store, _ := newFixture(t)
	store.PutProduct(models.Product{ID: "p1", Name: "Lamp", Price: 50, Stock: 5})

	order, err := svc.Checkout(context.Background(), "u1", []Line{{ProductID: "p1", Quantity: 2}})
	require.NoError(t, err)

	assert.InDelta(t, 100, order.Subtotal, 1e-9)
	assert.InDelta(t, 19, order.Tax, 1e-9)
	// Exactly 100 does not clear the free shipping bar.
	assert.InDelta(t, 10, order.Shipping, 1e-9)
	assert.InDelta(t, 129, order.Total, 1e-9)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, 3, store.StockOf("p1"))

	stored, err := store.FindOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.UserID)
}

func TestCheckoutWaivesShippingAboveThreshold(t *testing.T) {
	svc, store, _ := newFixture(t)
	store.PutProduct(models.Product{ID: "p1", Name: "Lamp", Price: 50, Stock: 5})

	order, err := svc.Checkout(context.Background(), "u1", []Line{{ProductID: "p1", Quantity: 3}})
	require.NoError(t, err)

	assert.InDelta(t, 150, order.Subtotal, 1e-9)
	assert.Zero(t, order.Shipping)
	assert.InDelta(t, 178.5, order.Total, 1e-9)
}

func TestCheckoutRejectsEmptyOrder(t *testing.T) {
	svc, _, _ := newFixture(t)

	_, err := svc.Checkout(context.Background(), "u1", nil)

	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCheckoutRejectsUnknownProduct(t *testing.T) {
	svc, _, _ := newFixture(t)

	_, err := svc.Checkout(context.Background(), "u1", []Line{{ProductID: "ghost", Quantity: 1}})
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestCheckoutRejectsInsufficientStockUpfront(t *testing.T) {
	svc, store, _ := newFixture(t)
	store.PutProduct(models.Product{ID: "p1", Name: "Lamp", Price: 50, Stock: 1})

	_, err := svc.Checkout(context.Background(), "u1", []Line{{ProductID: "p1", Quantity: 2}})

	var insufficient *models.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 1, insufficient.Available)
	assert.Equal(t, 1, store.StockOf("p1"))

	_, total, err := store.ListOrders(context.Background(), models.OrderFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCheckoutCompensatesLostDebitRace(t *testing.T) {
	svc, store, _ := newFixture(t)
	store.PutProduct(models.Product{ID: "p1", Name: "Lamp", Price: 50, Stock: 5})
	store.PutProduct(models.Product{ID: "p2", Name: "Desk", Price: 80, Stock: 5})
	svc.ledger = &racingLedger{inner: stock.NewService(store, nil), failOn: "p2"}

	_, err := svc.Checkout(context.Background(), "u1", []Line{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	})

	var insufficient *models.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)

	// The first line's debit is rolled back and the pending order is gone.
	assert.Equal(t, 5, store.StockOf("p1"))
	assert.Equal(t, 5, store.StockOf("p2"))

	_, total, err := store.ListOrders(context.Background(), models.OrderFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGetEmitsViewEvents(t *testing.T) {
	svc, store, notifier := newFixture(t)
	store.PutProduct(models.Product{ID: "p1", Price: 50, Stock: 5})
	store.PutProduct(models.Product{ID: "p2", Price: 80, Stock: 5})

	order, err := svc.Checkout(context.Background(), "u1", []Line{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 1},
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "viewer", order.ID)
	require.NoError(t, err)

	views := 0
	for _, event := range notifier.all() {
		if event.Kind == models.InteractionView {
			views++
			assert.Equal(t, "viewer", event.UserID)
		}
	}
	assert.Equal(t, 2, views)
}

func TestListPaginates(t *testing.T) {
	svc, store, _ := newFixture(t)
	store.PutProduct(models.Product{ID: "p1", Price: 10, Stock: 100})

	for i := 0; i < 3; i++ {
		_, err := svc.Checkout(context.Background(), "u1", []Line{{ProductID: "p1", Quantity: 1}})
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), models.OrderFilter{UserID: "u1", Page: 1, Limit: 2})
	require.NoError(t, err)

	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.PageInfo.TotalItems)
	assert.Equal(t, 2, page.PageInfo.TotalPages)
	assert.True(t, page.PageInfo.HasNextPage)
	assert.False(t, page.PageInfo.HasPreviousPage)

	page, err = svc.List(context.Background(), models.OrderFilter{UserID: "u1", Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.False(t, page.PageInfo.HasNextPage)
	assert.True(t, page.PageInfo.HasPreviousPage)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newFixture(t)

	_, err := svc.List(context.Background(), models.OrderFilter{Status: "bogus"})

	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpdateStatusAndTracking(t *testing.T) {
	svc, store, _ := newFixture(t)
	store.PutProduct(models.Product{ID: "p1", Price: 10, Stock: 10})

	order, err := svc.Checkout(context.Background(), "u1", []Line{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), order.ID, models.OrderShipped, "TRK-42")
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)
	assert.Equal(t, "TRK-42", updated.TrackingNumber)

	_, err = svc.Update(context.Background(), order.ID, "bogus", "")
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRemoveRestoresStock(t *testing.T) {
	svc, store, _ := newFixture(t)
	store.PutProduct(models.Product{ID: "p1", Price: 10, Stock: 10})

	order, err := svc.Checkout(context.Background(), "u1", []Line{{ProductID: "p1", Quantity: 4}})
	require.NoError(t, err)
	require.Equal(t, 6, store.StockOf("p1"))

	require.NoError(t, svc.Remove(context.Background(), order.ID))

	assert.Equal(t, 10, store.StockOf("p1"))
	_, err = store.FindOrder(context.Background(), order.ID)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}
