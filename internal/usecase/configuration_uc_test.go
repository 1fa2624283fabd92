package usecase_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/bikeconfig/internal/domain"
	"github.com/phenrril/bikeconfig/internal/usecase"
)

type failingSource struct{ err error }

func (f failingSource) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	return nil, f.err
}

// flippingSource alternates between two catalogs that disagree on Carbon's
// stock and price, and counts loads.
type flippingSource struct {
	loads atomic.Int64
}

func (f *flippingSource) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	n := f.loads.Add(1)
	inStock := n%2 == 0
	p := "500.00"
	if !inStock {
		p = "900.00"
	}
	return &domain.Snapshot{
		Products: []domain.Product{{ID: trailBike, Name: "Trail Bike", BasePrice: decimal.Zero}},
		Parts:    []domain.Part{{ID: frame, ProductID: trailBike, Name: "Frame"}},
		Options:  []domain.Option{{ID: carbon, PartID: frame, Name: "Carbon", Price: money(p), InStock: inStock}},
	}, nil
}

func TestEvaluateTrailBike(t *testing.T) {
	uc := &usecase.ConfigurationUC{Snapshots: trailBikeStore(t), Log: zerolog.Nop()}
	ctx := context.Background()

	ev, err := uc.Evaluate(ctx, domain.Selection{OptionIDs: []int64{carbon, road}})
	require.NoError(t, err)
	assert.False(t, ev.Validation.Valid)
	assert.Equal(t, []string{"Carbon cannot be combined with Road"}, ev.Validation.Errors)
	assert.Equal(t, "650.00", ev.Pricing.TotalPrice.String())

	ev, err = uc.Evaluate(ctx, domain.Selection{OptionIDs: []int64{carbon, mountain}})
	require.NoError(t, err)
	assert.True(t, ev.Validation.Valid)
	assert.Equal(t, "735.00", ev.Pricing.TotalPrice.String())
}

func TestValidateAndPriceSeparately(t *testing.T) {
	uc := &usecase.ConfigurationUC{Snapshots: trailBikeStore(t), Log: zerolog.Nop()}
	ctx := context.Background()

	v, err := uc.Validate(ctx, domain.Selection{OptionIDs: []int64{aluminum, road}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Aluminum is out of stock"}, v.Errors)

	p, err := uc.Price(ctx, domain.Selection{OptionIDs: []int64{aluminum, road}})
	require.NoError(t, err)
	assert.Equal(t, "350.00", p.TotalPrice.String())
}

func TestLookupFailureIsNotAValidationError(t *testing.T) {
	uc := &usecase.ConfigurationUC{Snapshots: failingSource{err: errors.New("connection reset")}, Log: zerolog.Nop()}
	ctx := context.Background()

	_, err := uc.Validate(ctx, domain.Selection{OptionIDs: []int64{carbon}})
	var lf *domain.LookupFailure
	require.ErrorAs(t, err, &lf)
	assert.Equal(t, "snapshot", lf.Source)
	assert.EqualError(t, lf.Err, "connection reset")

	_, err = uc.Price(ctx, domain.Selection{OptionIDs: []int64{carbon}})
	assert.ErrorAs(t, err, &lf)

	_, err = uc.Evaluate(ctx, domain.Selection{OptionIDs: []int64{carbon}})
	assert.ErrorAs(t, err, &lf)
}

func TestLookupFailureIsNotWrappedTwice(t *testing.T) {
	inner := &domain.LookupFailure{Source: "postgres", Err: errors.New("timeout")}
	uc := &usecase.ConfigurationUC{Snapshots: failingSource{err: inner}, Log: zerolog.Nop()}

	_, err := uc.Validate(context.Background(), domain.Selection{})
	assert.Same(t, inner, err)
}

func TestEvaluateUnknownProduct(t *testing.T) {
	uc := &usecase.ConfigurationUC{Snapshots: trailBikeStore(t), Log: zerolog.Nop()}

	_, err := uc.Evaluate(context.Background(), domain.Selection{ProductID: 99, OptionIDs: []int64{steel}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEvaluateUsesOneSnapshot(t *testing.T) {
	src := &flippingSource{}
	uc := &usecase.ConfigurationUC{Snapshots: src, Log: zerolog.Nop()}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ev, err := uc.Evaluate(context.Background(), domain.Selection{OptionIDs: []int64{carbon}})
			if !assert.NoError(t, err) {
				return
			}
			// In stock goes with 500.00, out of stock with 900.00; a mix
			// would mean validation and pricing saw different data.
			if ev.Validation.Valid {
				assert.Equal(t, "500.00", ev.Pricing.TotalPrice.String())
			} else {
				assert.Equal(t, "900.00", ev.Pricing.TotalPrice.String())
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 32, src.loads.Load())
}
