package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/bikeconfig/internal/adapters/repo/memory"
	"github.com/phenrril/bikeconfig/internal/domain"
)

const (
	trailBike int64 = 1
	cityBike  int64 = 2

	frame  int64 = 10
	wheels int64 = 20
	basket int64 = 30

	carbon   int64 = 101
	aluminum int64 = 102
	steel    int64 = 103
	road     int64 = 201
	mountain int64 = 202
	wicker   int64 = 301
)

func money(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// trailBikeStore seeds a memory store with two products: a Trail Bike with a
// frame and wheels, and a City Bike with a basket. Carbon cannot be combined
// with Road, and Carbon with Mountain costs 35.00 extra.
func trailBikeStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	for _, p := range []domain.Product{
		{ID: trailBike, Name: "Trail Bike", BasePrice: decimal.RequireFromString("50.00")},
		{ID: cityBike, Name: "City Bike", BasePrice: decimal.RequireFromString("80.00")},
	} {
		require.NoError(t, s.SaveProduct(ctx, &p))
	}
	for _, p := range []domain.Part{
		{ID: frame, ProductID: trailBike, Name: "Frame", Position: 1},
		{ID: wheels, ProductID: trailBike, Name: "Wheels", Position: 2},
		{ID: basket, ProductID: cityBike, Name: "Basket", Position: 1},
	} {
		require.NoError(t, s.SavePart(ctx, &p))
	}
	for _, o := range []domain.Option{
		{ID: carbon, PartID: frame, Name: "Carbon", Price: money("500.00"), InStock: true},
		{ID: aluminum, PartID: frame, Name: "Aluminum", Price: money("200.00"), InStock: false},
		{ID: steel, PartID: frame, Name: "Steel", Price: money("120.00"), InStock: true},
		{ID: road, PartID: wheels, Name: "Road", Price: money("100.00"), InStock: true},
		{ID: mountain, PartID: wheels, Name: "Mountain", Price: money("150.00"), InStock: true},
		{ID: wicker, PartID: basket, Name: "Wicker", Price: money("30.00"), InStock: true},
	} {
		require.NoError(t, s.SaveOption(ctx, &o))
	}
	require.NoError(t, s.SaveRestriction(ctx, &domain.Restriction{ID: 1, OptionID: carbon, RestrictedOptionID: road}))
	require.NoError(t, s.SavePriceRule(ctx, &domain.PriceRule{ID: 1, OptionAID: carbon, OptionBID: mountain, Premium: decimal.RequireFromString("35.00")}))
	return s
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingInvalidator) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.err
}

func (c *countingInvalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
