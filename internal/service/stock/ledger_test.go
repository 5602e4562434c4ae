package stock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
	"github.com/jvaldezc/tienda-core/internal/repository/memory"
)

func TestDebitReducesStock(t *testing.T) {
	store := memory.NewStore()
	store.PutProduct(models.Product{ID: "p1", Name: "Keyboard", Stock: 10})
	svc := NewService(store, nil)

	remaining, err := svc.Debit(context.Background(), "p1", 4)
	require.NoError(t, err)
	assert.Equal(t, 6, remaining)
	assert.Equal(t, 6, store.StockOf("p1"))
}

func TestDebitInsufficientStockLeavesLevelUntouched(t *testing.T) {
	store := memory.NewStore()
	store.PutProduct(models.Product{ID: "p1", Name: "Keyboard", Stock: 3})
	svc := NewService(store, nil)

	_, err := svc.Debit(context.Background(), "p1", 5)

	var insufficient *models.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "p1", insufficient.ProductID)
	assert.Equal(t, 3, insufficient.Available)
	assert.Equal(t, 5, insufficient.Requested)
	assert.Equal(t, 3, store.StockOf("p1"))
}

func TestDebitUnknownProduct(t *testing.T) {
	svc := NewService(memory.NewStore(), nil)

	_, err := svc.Debit(context.Background(), "ghost", 1)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestDebitRejectsNonPositiveQuantity(t *testing.T) {
	store := memory.NewStore()
	store.PutProduct(models.Product{ID: "p1", Stock: 10})
	svc := NewService(store, nil)

	for _, qty := range []int{0, -3} {
		_, err := svc.Debit(context.Background(), "p1", qty)

		var verr *models.ValidationError
		assert.ErrorAs(t, err, &verr)
	}
	assert.Equal(t, 10, store.StockOf("p1"))
}

func TestCreditRejectsNonPositiveQuantity(t *testing.T) {
	store := memory.NewStore()
	store.PutProduct(models.Product{ID: "p1", Stock: 10})
	svc := NewService(store, nil)

	_, err := svc.Credit(context.Background(), "p1", 0)

	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCreditThenDebitRoundTrip(t *testing.T) {
	store := memory.NewStore()
	store.PutProduct(models.Product{ID: "p1", Stock: 7})
	svc := NewService(store, nil)

	level, err := svc.Credit(context.Background(), "p1", 5)
	require.NoError(t, err)
	assert.Equal(t, 12, level)

	level, err = svc.Debit(context.Background(), "p1", 5)
	require.NoError(t, err)
	assert.Equal(t, 7, level)
}

// A hundred concurrent single-unit debits against a stock of fifty must
// yield exactly fifty successes, fifty floor rejections and a final level
// of zero. This is the guarantee the single conditional update provides.
func TestConcurrentDebitsNeverOversell(t *testing.T) {
	store := memory.NewStore()
	store.PutProduct(models.Product{ID: "p1", Name: "Keyboard", Stock: 50})
	svc := NewService(store, nil)

	const attempts = 100
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Debit(context.Background(), "p1", 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, rejected := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var insufficient *models.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		rejected++
	}

	assert.Equal(t, 50, succeeded)
	assert.Equal(t, 50, rejected)
	assert.Equal(t, 0, store.StockOf("p1"))
}
