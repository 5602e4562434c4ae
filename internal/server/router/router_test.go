package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
	"github.com/jvaldezc/tienda-core/internal/repository/memory"
	"github.com/jvaldezc/tienda-core/internal/server/handlers"
	cartsvc "github.com/jvaldezc/tienda-core/internal/service/cart"
	discountsvc "github.com/jvaldezc/tienda-core/internal/service/discount"
	notesvc "github.com/jvaldezc/tienda-core/internal/service/notes"
	ordersvc "github.com/jvaldezc/tienda-core/internal/service/order"
	stocksvc "github.com/jvaldezc/tienda-core/internal/service/stock"
)

func newTestServer(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	ledger := stocksvc.NewService(store, nil)
	evaluator := discountsvc.NewService(store, nil)

	engine := New(Handlers{
		Cart:           handlers.NewCartHandler(cartsvc.NewService(store, store, evaluator, nil, nil), nil),
		Orders:         handlers.NewOrderHandler(ordersvc.NewService(store, store, ledger, nil, nil), nil),
		SalesNotes:     handlers.NewSalesNoteHandler(notesvc.NewSalesService(store, store, store, store, ledger, nil), nil),
		ReceivingNotes: handlers.NewReceivingNoteHandler(notesvc.NewReceivingService(store, store, store, ledger, nil), nil),
	}, nil)

	return engine, store
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func asUser(id string) map[string]string {
	return map[string]string{"X-User-Id": id}
}

func asAdmin(id string) map[string]string {
	return map[string]string{"X-User-Id": id, "X-User-Role": "admin"}
}

func TestHealthzNeedsNoIdentity(t *testing.T) {
	engine, _ := newTestServer(t)

	rec := doJSON(t, engine, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMissingIdentityIsRejected(t *testing.T) {
	engine, _ := newTestServer(t)

	rec := doJSON(t, engine, http.MethodGet, "/api/v1/cart", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartFlowOverHTTP(t *testing.T) {
	engine, store := newTestServer(t)
	store.PutProduct(models.Product{ID: "p1", Name: "Mouse", Price: 25, Stock: 3})

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/cart/items",
		gin.H{"product_id": "p1", "quantity": 2}, asUser("u1"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var cart models.Cart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	require.Len(t, cart.Items, 1)
	assert.InDelta(t, 50, cart.Total, 1e-9)

	// Merging past the available stock surfaces the floor with the
	// remaining quantity in the body.
	rec = doJSON(t, engine, http.MethodPost, "/api/v1/cart/items",
		gin.H{"product_id": "p1", "quantity": 2}, asUser("u1"))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var failure struct {
		Available int `json:"available"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &failure))
	assert.Equal(t, 3, failure.Available)
}

func TestCheckoutOverHTTP(t *testing.T) {
	engine, store := newTestServer(t)
	store.PutProduct(models.Product{ID: "p1", Name: "Lamp", Price: 50, Stock: 5})

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/orders",
		gin.H{"items": []gin.H{{"product_id": "p1", "quantity": 2}}}, asUser("u1"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.InDelta(t, 129, order.Total, 1e-9)
	assert.Equal(t, 3, store.StockOf("p1"))
}

func TestUnknownOrderMapsToNotFound(t *testing.T) {
	engine, _ := newTestServer(t)

	rec := doJSON(t, engine, http.MethodGet, "/api/v1/orders/nope", nil, asUser("u1"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderOwnershipEnforced(t *testing.T) {
	engine, store := newTestServer(t)
	store.PutProduct(models.Product{ID: "p1", Price: 50, Stock: 5})

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/orders",
		gin.H{"items": []gin.H{{"product_id": "p1", "quantity": 1}}}, asUser("owner"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))

	rec = doJSON(t, engine, http.MethodGet, "/api/v1/orders/"+order.ID, nil, asUser("intruder"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, engine, http.MethodGet, "/api/v1/orders/"+order.ID, nil, asAdmin("staff"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminOnlyEndpoints(t *testing.T) {
	engine, _ := newTestServer(t)

	rec := doJSON(t, engine, http.MethodGet, "/api/v1/sales-notes", nil, asUser("u1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, engine, http.MethodGet, "/api/v1/sales-notes/stats", nil, asUser("u1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, engine, http.MethodGet, "/api/v1/sales-notes/stats", nil, asAdmin("staff"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNoteLifecycleOverHTTP(t *testing.T) {
	engine, store := newTestServer(t)
	store.PutProduct(models.Product{ID: "p1", Name: "Lamp", Price: 50, Stock: 10})

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/sales-notes", gin.H{
		"details": []gin.H{{"product_id": "p1", "quantity": 4, "unit_price": 45}},
	}, asUser("u1"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var note models.SalesNote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &note))
	assert.Regexp(t, `^NV-\d{4}-0001$`, note.Number)

	rec = doJSON(t, engine, http.MethodPost, "/api/v1/sales-notes/"+note.ID+"/process", nil, asUser("u1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6, store.StockOf("p1"))

	// Terminal state: a second process maps to 400.
	rec = doJSON(t, engine, http.MethodPost, "/api/v1/sales-notes/"+note.ID+"/process", nil, asUser("u1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
