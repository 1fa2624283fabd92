package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/bikeconfig/internal/adapters/export"
	"github.com/phenrril/bikeconfig/internal/adapters/httpserver"
	"github.com/phenrril/bikeconfig/internal/adapters/repo/memory"
	"github.com/phenrril/bikeconfig/internal/domain"
	"github.com/phenrril/bikeconfig/internal/usecase"
)

func money(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// seedTrailBike stores product 1 with Frame (Carbon 11, Aluminum 12 out of
// stock) and Wheels (Road 21, Mountain 22), a Carbon/Road restriction and a
// 35.00 premium on Carbon/Mountain.
func seedTrailBike(t *testing.T, s *memory.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.SaveProduct(ctx, &domain.Product{ID: 1, Name: "Trail Bike", BasePrice: decimal.RequireFromString("50.00")}))
	require.NoError(t, s.SavePart(ctx, &domain.Part{ID: 2, ProductID: 1, Name: "Frame", Position: 1}))
	require.NoError(t, s.SavePart(ctx, &domain.Part{ID: 3, ProductID: 1, Name: "Wheels", Position: 2}))
	for _, o := range []domain.Option{
		{ID: 11, PartID: 2, Name: "Carbon", Price: money("500.00"), InStock: true},
		{ID: 12, PartID: 2, Name: "Aluminum", Price: money("200.00")},
		{ID: 21, PartID: 3, Name: "Road", Price: money("100.00"), InStock: true},
		{ID: 22, PartID: 3, Name: "Mountain", Price: money("150.00"), InStock: true},
	} {
		require.NoError(t, s.SaveOption(ctx, &o))
	}
	require.NoError(t, s.SaveRestriction(ctx, &domain.Restriction{ID: 1, OptionID: 11, RestrictedOptionID: 21}))
	require.NoError(t, s.SavePriceRule(ctx, &domain.PriceRule{ID: 1, OptionAID: 11, OptionBID: 22, Premium: decimal.RequireFromString("35.00")}))
}

func newServer(t *testing.T, src domain.SnapshotSource, store *memory.Store) http.Handler {
	t.Helper()
	cfg := &usecase.ConfigurationUC{Snapshots: src, Log: zerolog.Nop()}
	return httpserver.New(
		cfg,
		&usecase.CatalogUC{Products: store},
		&usecase.RuleUC{Rules: store, Products: store},
		&usecase.OrderUC{Orders: store.Orders(), Customers: store.Customers(), Config: cfg, Exporter: export.XLSX{}},
		[]string{"http://localhost:5173"},
	)
}

func newTrailBikeServer(t *testing.T) http.Handler {
	store := memory.NewStore()
	seedTrailBike(t, store)
	return newServer(t, store, store)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func TestValidateSelection(t *testing.T) {
	h := newTrailBikeServer(t)

	tests := []struct {
		name  string
		body  string
		valid bool
		errs  []string
	}{
		{"restricted pair", `{"selected_part_option_ids":[11,21]}`, false, []string{"Carbon cannot be combined with Road"}},
		{"out of stock", `{"selected_part_option_ids":[12,21]}`, false, []string{"Aluminum is out of stock"}},
		{"bare array", `[11,22]`, true, []string{}},
		{"empty", `{"selected_part_option_ids":[]}`, true, []string{}},
		{"unknown id", `{"selected_part_option_ids":[11,404]}`, false, []string{"Unknown option: 404"}},
		{"malformed", `{"selected_part_option_ids":"eleven"}`, false, nil},
		{"missing key", `{}`, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/product_configuration/validate_selection", tt.body)
			require.Equal(t, http.StatusOK, rec.Code)
			got := decode[validation](t, rec)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.errs != nil {
				assert.Equal(t, tt.errs, got.Errors)
			} else {
				require.Len(t, got.Errors, 1)
				assert.True(t, strings.HasPrefix(got.Errors[0], "Malformed selection: "))
			}
		})
	}
}

func TestCalculatePrice(t *testing.T) {
	h := newTrailBikeServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/product_configuration/calculate_price", `{"selected_part_option_ids":[12,21]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_price":"350.00"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/v1/product_configuration/calculate_price", `{"selected_part_option_ids":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_price":"0.00"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/v1/product_configuration/calculate_price", `{"product_id":1,"selected_part_option_ids":[]}`)
	assert.JSONEq(t, `{"total_price":"50.00"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/v1/product_configuration/calculate_price", `{"product_id":9,"selected_part_option_ids":[]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/product_configuration/calculate_price", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluate(t *testing.T) {
	h := newTrailBikeServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/product_configuration/evaluate", `[22,11]`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"validation":{"valid":true,"errors":[]},"pricing":{"total_price":"735.00"}}`, rec.Body.String())
}

type brokenSource struct{}

func (brokenSource) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestLookupFailureIs503(t *testing.T) {
	h := newServer(t, brokenSource{}, memory.NewStore())

	for _, path := range []string{"validate_selection", "calculate_price", "evaluate"} {
		rec := do(t, h, http.MethodPost, "/api/v1/product_configuration/"+path, `[1]`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		got := decode[httpserver.ErrorResponse](t, rec)
		assert.Equal(t, "lookup_failure", got.Error)
	}
}

func TestCatalogAdministration(t *testing.T) {
	h := newTrailBikeServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/products", `{"product":{"name":"City Bike","base_price":"80.00"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := decode[domain.Product](t, rec)
	assert.Equal(t, "City Bike", product.Name)

	base := "/api/v1/products/" + itoa(product.ID)
	rec = do(t, h, http.MethodPost, base+"/parts", `{"part":{"name":"Basket"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	part := decode[domain.Part](t, rec)

	rec = do(t, h, http.MethodPost, base+"/parts/"+itoa(part.ID)+"/part_options", `{"part_option":{"name":"Wicker","price":30}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	opt := decode[domain.Option](t, rec)
	assert.True(t, opt.InStock, "new options default to in stock")

	rec = do(t, h, http.MethodPatch, base+"/parts/"+itoa(part.ID)+"/part_options/"+itoa(opt.ID), `{"part_option":{"in_stock":false}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	opt = decode[domain.Option](t, rec)
	assert.False(t, opt.InStock)
	assert.Equal(t, "Wicker", opt.Name)

	rec = do(t, h, http.MethodPost, "/api/v1/product_configuration/validate_selection",
		`{"selected_part_option_ids":[`+itoa(opt.ID)+`]}`)
	assert.Equal(t, []string{"Wicker is out of stock"}, decode[validation](t, rec).Errors)

	rec = do(t, h, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[domain.Product](t, rec)
	require.Len(t, got.Parts, 1)
	require.Len(t, got.Parts[0].Options, 1)

	rec = do(t, h, http.MethodPost, "/api/v1/products", `{"product":{"name":""}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name can't be blank", decode[httpserver.ErrorResponse](t, rec).Message)

	rec = do(t, h, http.MethodGet, "/api/v1/products/1/parts/"+itoa(part.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRuleAdministration(t *testing.T) {
	h := newTrailBikeServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/part_restrictions", `{"part_restriction":{"part_option_id":12,"restricted_part_option_id":22}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	restriction := decode[domain.Restriction](t, rec)

	rec = do(t, h, http.MethodPost, "/api/v1/part_restrictions", `{"part_restriction":{"part_option_id":12,"restricted_part_option_id":12}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/price_rules", `{"price_rule":{"part_option_a_id":22,"part_option_b_id":11,"price_premium":"5.50"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/product_configuration/calculate_price", `[11,22]`)
	assert.JSONEq(t, `{"total_price":"740.50"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/part_restrictions", "")
	assert.Len(t, decode[[]domain.Restriction](t, rec), 2)

	rec = do(t, h, http.MethodDelete, "/api/v1/part_restrictions/"+itoa(restriction.ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/v1/price_rules/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type orderBody struct {
	ID         string  `json:"id"`
	Status     string  `json:"status"`
	ProductID  int64   `json:"product_id"`
	OptionIDs  []int64 `json:"selected_part_option_ids"`
	TotalPrice string  `json:"total_price"`
}

func TestOrders(t *testing.T) {
	h := newTrailBikeServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/orders",
		`{"order":{"customer_name":"Ana","customer_email":"ana@example.com","selected_part_option_ids":[22,11],"total_price":"1.00"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[orderBody](t, rec)
	assert.Equal(t, "Pending", order.Status)
	assert.Equal(t, "735.00", order.TotalPrice, "client totals are ignored")
	assert.Equal(t, []int64{11, 22}, order.OptionIDs)
	assert.EqualValues(t, 1, order.ProductID)

	rec = do(t, h, http.MethodPost, "/api/v1/orders",
		`{"order":{"customer_name":"Ana","customer_email":"ana@example.com","selected_part_option_ids":[11,21]}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"invalid_selection","message":"Carbon cannot be combined with Road","valid":false,"errors":["Carbon cannot be combined with Road"]}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/v1/orders/"+order.ID, `{"order":{"status":"Shipped"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Shipped", decode[orderBody](t, rec).Status)

	rec = do(t, h, http.MethodGet, "/api/v1/orders?status=shipped", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))
	assert.Len(t, decode[[]orderBody](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/api/v1/orders/export.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"), "xlsx is a zip archive")

	rec = do(t, h, http.MethodGet, "/api/v1/orders/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/orders/"+order.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/v1/orders/"+order.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndCORS(t *testing.T) {
	h := newTrailBikeServer(t)

	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/products", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	assert.Equal(t, http.StatusNoContent, res.Code)
	assert.Equal(t, "http://localhost:5173", res.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Origin", "http://evil.example")
	res = httptest.NewRecorder()
	h.ServeHTTP(res, req)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Empty(t, res.Header().Get("Access-Control-Allow-Origin"))
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
