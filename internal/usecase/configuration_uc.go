package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/phenrril/bikeconfig/internal/configurator"
	"github.com/phenrril/bikeconfig/internal/domain"
)

// Evaluation is a validation and a price computed from the same snapshot.
type Evaluation struct {
	Validation configurator.ValidationResult `json:"validation"`
	Pricing    configurator.PriceResult      `json:"pricing"`
}

type ConfigurationUC struct {
	Snapshots domain.SnapshotSource
	Log       zerolog.Logger
}

// Index loads one snapshot and indexes it. Any failure to read catalog or
// rule data is returned as *domain.LookupFailure.
func (uc *ConfigurationUC) Index(ctx context.Context) (*configurator.Index, error) {
	snap, err := uc.Snapshots.LoadSnapshot(ctx)
	if err != nil {
		var lf *domain.LookupFailure
		if errors.As(err, &lf) {
			return nil, err
		}
		return nil, &domain.LookupFailure{Source: "snapshot", Err: err}
	}
	return configurator.NewIndex(snap, uc.Log), nil
}

func (uc *ConfigurationUC) Validate(ctx context.Context, sel domain.Selection) (configurator.ValidationResult, error) {
	ix, err := uc.Index(ctx)
	if err != nil {
		return configurator.ValidationResult{}, err
	}
	return ix.Validate(sel), nil
}

func (uc *ConfigurationUC) Price(ctx context.Context, sel domain.Selection) (configurator.PriceResult, error) {
	ix, err := uc.Index(ctx)
	if err != nil {
		return configurator.PriceResult{}, err
	}
	return ix.Price(sel)
}

// Evaluate validates and prices sel concurrently over a single index.
func (uc *ConfigurationUC) Evaluate(ctx context.Context, sel domain.Selection) (Evaluation, error) {
	ix, err := uc.Index(ctx)
	if err != nil {
		return Evaluation{}, err
	}
	var ev Evaluation
	var g errgroup.Group
	g.Go(func() error {
		ev.Validation = ix.Validate(sel)
		return nil
	})
	g.Go(func() error {
		p, err := ix.Price(sel)
		ev.Pricing = p
		return err
	})
	if err := g.Wait(); err != nil {
		return Evaluation{}, err
	}
	return ev, nil
}
