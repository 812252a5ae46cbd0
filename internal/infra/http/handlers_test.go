package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/print-shop/internal/infra/metrics"

	"github.com/Spok95/print-shop/internal/domain/materials"
	"github.com/Spok95/print-shop/internal/domain/orders"
	"github.com/Spok95/print-shop/internal/domain/stock"
)

type stubMaterials struct {
	mat *materials.Material
}

func (s *stubMaterials) GetByID(_ context.Context, id int64) (*materials.Material, error) {
	if s.mat != nil && s.mat.ID == id {
		return s.mat, nil
	}
	return nil, nil
}

type stubStock struct {
	entries []stock.Entry
}

func (s *stubStock) ListByMaterial(_ context.Context, materialID int64) ([]stock.Entry, error) {
	var out []stock.Entry
	for _, e := range s.entries {
		if e.MaterialID == materialID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubStock) ConsumeChecked(_ context.Context, entryID int64, qty float64, _ string) (float64, error) {
	for i := range s.entries {
		if s.entries[i].ID == entryID {
			if s.entries[i].QuantityInStock < qty {
				return 0, fmt.Errorf("%w: need %.2f", stock.ErrInsufficientStock, qty)
			}
			s.entries[i].QuantityInStock -= qty
			return s.entries[i].QuantityInStock, nil
		}
	}
	return 0, fmt.Errorf("entry %d not found", entryID)
}

func (s *stubStock) Receive(_ context.Context, _ int64, _ float64, _ string) error { return nil }

type stubStore struct {
	nextID int64
}

func (s *stubStore) Create(_ context.Context, _ *orders.Order) (int64, error) {
	s.nextID++
	return s.nextID, nil
}
func (s *stubStore) GetByID(_ context.Context, _ int64) (*orders.Order, error) { return nil, nil }
func (s *stubStore) List(_ context.Context, _ int) ([]orders.Order, error)     { return nil, nil }
func (s *stubStore) SetStatus(_ context.Context, _ int64, _, _ orders.Status) (bool, error) {
	return true, nil
}

func testRouter(entries []stock.Entry) http.Handler {
	log := slog.New(slog.DiscardHandler)
	mats := &stubMaterials{mat: &materials.Material{
		ID:           1,
		Name:         "vinyl banner",
		Unit:         materials.UnitSquareMeter,
		PricePerUnit: 1000,
		Options:      map[string]float64{"lamination": 200},
	}}
	svc := orders.NewService(log, mats, &stubStock{entries: entries}, &stubStore{}, nil)
	h := NewHandler(log, nil, nil, nil, svc)
	return NewRouter(log, h, false)
}

func defaultEntries() []stock.Entry {
	return []stock.Entry{
		{ID: 11, MaterialID: 1, Width: 60, QuantityInStock: 5000, AlertThreshold: 100},
		{ID: 12, MaterialID: 1, Width: 100, QuantityInStock: 5000, AlertThreshold: 100},
	}
}

func TestHealth(t *testing.T) {
	r := testRouter(defaultEntries())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestQuoteEndpoint(t *testing.T) {
	r := testRouter(defaultEntries())

	body := `{"material_id":1,"width":100,"length":200,"quantity":1,"options":["lamination"]}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/quotes", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	resp := w.Body.String()
	assert.Contains(t, resp, `"total_price":2400`)
	assert.Contains(t, resp, `"selected_width":100`)
	assert.Contains(t, resp, `"valid":true`)
}

func TestQuoteEndpointInsufficientStock(t *testing.T) {
	entries := defaultEntries()
	entries[1].QuantityInStock = 100
	r := testRouter(entries)

	body := `{"material_id":1,"width":100,"length":200,"quantity":1}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/quotes", strings.NewReader(body)))

	// a quote always answers 200; the verdict carries the blocking reason
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":false`)
	assert.Contains(t, w.Body.String(), `"insufficient_stock"`)
}

func TestQuoteEndpointRejectsBadBody(t *testing.T) {
	r := testRouter(defaultEntries())
	before := testutil.ToFloat64(metrics.QuotesTotal.WithLabelValues("bad_request"))

	bodies := []string{
		`{"material_id":1,"width":0,"length":200,"quantity":1}`,
		`{"material_id":1,"width":100,"length":200}`,
		`not json`,
	}
	for _, body := range bodies {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/quotes", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	// parse failures are counted apart from the validation taxonomy
	after := testutil.ToFloat64(metrics.QuotesTotal.WithLabelValues("bad_request"))
	assert.Equal(t, float64(len(bodies)), after-before)
}

func TestCreateOrderEndpoint(t *testing.T) {
	r := testRouter(defaultEntries())

	body := `{"material_id":1,"width":80,"length":200,"quantity":1,"customer":"Acme Signs"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"confirmed"`)
	assert.Contains(t, w.Body.String(), `"total_price":1600`)
}

func TestCreateSpecialOrderWithoutMaterialEndpoint(t *testing.T) {
	r := testRouter(defaultEntries())

	body := `{"width":80,"length":200,"quantity":1,"special_order":true,"customer":"Acme Signs"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"confirmed"`)
	assert.Contains(t, w.Body.String(), `"total_price":0`)
	assert.Contains(t, w.Body.String(), `"material_id":0`)
}

func TestCategoryAndStockRoutesRejectBadID(t *testing.T) {
	r := testRouter(defaultEntries())

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/v1/categories/abc", nil),
		httptest.NewRequest(http.MethodPut, "/api/v1/categories/abc", strings.NewReader(`{"name":"x"}`)),
		httptest.NewRequest(http.MethodPut, "/api/v1/categories/abc/active", strings.NewReader(`{"active":true}`)),
		httptest.NewRequest(http.MethodGet, "/api/v1/stock/abc", nil),
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, req.URL.Path)
	}
}

func TestCreateOrderEndpointBlocked(t *testing.T) {
	entries := defaultEntries()
	entries[1].QuantityInStock = 100
	r := testRouter(entries)

	body := `{"material_id":1,"width":100,"length":200,"quantity":1}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body)))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"insufficient_stock"`)
}
