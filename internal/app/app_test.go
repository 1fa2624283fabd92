package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/bikeconfig/internal/app"
	"github.com/phenrril/bikeconfig/internal/config"
	"github.com/phenrril/bikeconfig/internal/domain"
)

func newMemoryApp(t *testing.T) *app.App {
	t.Helper()
	a, err := app.NewApp(config.Config{Store: config.StoreMemory, SeedDemo: true, CORSOrigins: []string{"*"}}, nil)
	require.NoError(t, err)
	require.NoError(t, a.MigrateAndSeed(context.Background()))
	return a
}

func optionIDs(t *testing.T, a *app.App) map[string]int64 {
	t.Helper()
	products, err := a.Catalog.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	ids := map[string]int64{}
	for _, part := range products[0].Parts {
		for _, o := range part.Options {
			ids[o.Name] = o.ID
		}
	}
	return ids
}

func TestSeededTrailBikeScenario(t *testing.T) {
	a := newMemoryApp(t)
	ids := optionIDs(t, a)
	ctx := context.Background()

	v, err := a.Configuration.Validate(ctx, domain.Selection{OptionIDs: []int64{ids["Carbon"], ids["Road"]}})
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, []string{"Carbon cannot be combined with Road"}, v.Errors)

	ev, err := a.Configuration.Evaluate(ctx, domain.Selection{OptionIDs: []int64{ids["Aluminum"], ids["Road"]}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Aluminum is out of stock"}, ev.Validation.Errors)
	assert.Equal(t, "350.00", ev.Pricing.TotalPrice.String())
}

func TestSeedIsIdempotent(t *testing.T) {
	a := newMemoryApp(t)
	require.NoError(t, a.MigrateAndSeed(context.Background()))

	products, err := a.Catalog.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
	rules, err := a.Rules.ListRestrictions(context.Background())
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

func TestHTTPHandlerServesSeededCatalog(t *testing.T) {
	a := newMemoryApp(t)
	h := a.HTTPHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"Trail Bike"`))
}

func TestNoSeedWhenDisabled(t *testing.T) {
	a, err := app.NewApp(config.Config{Store: config.StoreMemory}, nil)
	require.NoError(t, err)
	require.NoError(t, a.MigrateAndSeed(context.Background()))

	products, err := a.Catalog.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}
