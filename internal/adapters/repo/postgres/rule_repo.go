package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/phenrril/bikeconfig/internal/domain"
)

var _ domain.RuleRepo = (*RuleRepo)(nil)

type RuleRepo struct{ db *gorm.DB }

func NewRuleRepo(db *gorm.DB) *RuleRepo { return &RuleRepo{db: db} }

func (r *RuleRepo) ListRestrictions(ctx context.Context) ([]domain.Restriction, error) {
	var list []domain.Restriction
	if err := r.db.WithContext(ctx).Order("id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *RuleRepo) SaveRestriction(ctx context.Context, x *domain.Restriction) error {
	return r.db.WithContext(ctx).Save(x).Error
}

func (r *RuleRepo) DeleteRestriction(ctx context.Context, id int64) error {
	return deleteByID(r.db.WithContext(ctx), &domain.Restriction{}, id)
}

func (r *RuleRepo) ListPriceRules(ctx context.Context) ([]domain.PriceRule, error) {
	var list []domain.PriceRule
	if err := r.db.WithContext(ctx).Order("id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *RuleRepo) SavePriceRule(ctx context.Context, x *domain.PriceRule) error {
	return r.db.WithContext(ctx).Save(x).Error
}

func (r *RuleRepo) DeletePriceRule(ctx context.Context, id int64) error {
	return deleteByID(r.db.WithContext(ctx), &domain.PriceRule{}, id)
}

func deleteByID(db *gorm.DB, model any, id any) error {
	res := db.Delete(model, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
