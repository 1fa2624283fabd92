package usecase

import (
	"context"

	"github.com/phenrril/bikeconfig/internal/domain"
)

type RuleUC struct {
	Rules    domain.RuleRepo
	Products domain.ProductRepo
	Cache    domain.SnapshotInvalidator
}

func (uc *RuleUC) ListRestrictions(ctx context.Context) ([]domain.Restriction, error) {
	return uc.Rules.ListRestrictions(ctx)
}

func (uc *RuleUC) CreateRestriction(ctx context.Context, r *domain.Restriction) error {
	if err := uc.checkPair(ctx, r.OptionID, r.RestrictedOptionID); err != nil {
		return err
	}
	r.ID = 0
	if err := uc.Rules.SaveRestriction(ctx, r); err != nil {
		return err
	}
	invalidate(ctx, uc.Cache)
	return nil
}

func (uc *RuleUC) DeleteRestriction(ctx context.Context, id int64) error {
	if err := uc.Rules.DeleteRestriction(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, uc.Cache)
	return nil
}

func (uc *RuleUC) ListPriceRules(ctx context.Context) ([]domain.PriceRule, error) {
	return uc.Rules.ListPriceRules(ctx)
}

func (uc *RuleUC) CreatePriceRule(ctx context.Context, r *domain.PriceRule) error {
	if err := domain.CheckAmount("price_premium", r.Premium); err != nil {
		return err
	}
	if err := uc.checkPair(ctx, r.OptionAID, r.OptionBID); err != nil {
		return err
	}
	r.ID = 0
	if err := uc.Rules.SavePriceRule(ctx, r); err != nil {
		return err
	}
	invalidate(ctx, uc.Cache)
	return nil
}

func (uc *RuleUC) DeletePriceRule(ctx context.Context, id int64) error {
	if err := uc.Rules.DeletePriceRule(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, uc.Cache)
	return nil
}

// checkPair rejects rules that could never be enforced: missing ids, an
// option paired with itself, or options that do not exist.
func (uc *RuleUC) checkPair(ctx context.Context, a, b int64) error {
	if a <= 0 || b <= 0 {
		return domain.Invalidf("both part options are required")
	}
	if a == b {
		return domain.Invalidf("a part option cannot be paired with itself")
	}
	_, missing, err := uc.Products.FindOptionsByIDs(ctx, []int64{a, b})
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return domain.Invalidf("unknown part option %d", missing[0])
	}
	return nil
}
