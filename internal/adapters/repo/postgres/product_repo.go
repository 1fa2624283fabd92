package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/bikeconfig/internal/domain"
)

var _ domain.ProductRepo = (*ProductRepo)(nil)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func byPosition(db *gorm.DB) *gorm.DB { return db.Order("position asc, id asc") }

func (r *ProductRepo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var list []domain.Product
	if err := r.db.WithContext(ctx).
		Preload("Parts", byPosition).
		Preload("Parts.Options", byPosition).
		Order("id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ProductRepo) FindProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).
		Preload("Parts", byPosition).
		Preload("Parts.Options", byPosition).
		First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) SaveProduct(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

// DeleteProduct removes the product, its parts and options, and the rules
// that point at those options, in one transaction.
func (r *ProductRepo) DeleteProduct(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		partIDs := tx.Model(&domain.Part{}).Select("id").Where("product_id = ?", id)
		optionIDs := tx.Model(&domain.Option{}).Select("id").Where("part_id IN (?)", partIDs)
		if err := deleteRulesFor(tx, optionIDs); err != nil {
			return err
		}
		if err := tx.Where("part_id IN (?)", partIDs).Delete(&domain.Option{}).Error; err != nil {
			return err
		}
		return tx.Where("product_id = ?", id).Delete(&domain.Part{}).Error
	})
}

func (r *ProductRepo) ListParts(ctx context.Context, productID int64) ([]domain.Part, error) {
	var list []domain.Part
	if err := byPosition(r.db.WithContext(ctx)).Where("product_id = ?", productID).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ProductRepo) FindPart(ctx context.Context, id int64) (*domain.Part, error) {
	var p domain.Part
	if err := r.db.WithContext(ctx).Preload("Options", byPosition).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) SavePart(ctx context.Context, p *domain.Part) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *ProductRepo) DeletePart(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.Part{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		optionIDs := tx.Model(&domain.Option{}).Select("id").Where("part_id = ?", id)
		if err := deleteRulesFor(tx, optionIDs); err != nil {
			return err
		}
		return tx.Where("part_id = ?", id).Delete(&domain.Option{}).Error
	})
}

func (r *ProductRepo) ListOptions(ctx context.Context, partID int64) ([]domain.Option, error) {
	var list []domain.Option
	if err := byPosition(r.db.WithContext(ctx)).Where("part_id = ?", partID).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ProductRepo) FindOption(ctx context.Context, id int64) (*domain.Option, error) {
	var o domain.Option
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *ProductRepo) FindOptionsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Option, []int64, error) {
	found := make(map[int64]domain.Option, len(ids))
	if len(ids) == 0 {
		return found, nil, nil
	}
	var list []domain.Option
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, nil, err
	}
	for _, o := range list {
		found[o.ID] = o
	}
	var missing []int64
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return found, missing, nil
}

func (r *ProductRepo) SaveOption(ctx context.Context, o *domain.Option) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *ProductRepo) DeleteOption(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.Option{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return deleteRulesFor(tx, []int64{id})
	})
}

// deleteRulesFor drops restrictions and price rules that reference any of
// optionIDs, which may be a slice or a subquery.
func deleteRulesFor(tx *gorm.DB, optionIDs any) error {
	if err := tx.Where("part_option_id IN (?) OR restricted_part_option_id IN (?)", optionIDs, optionIDs).
		Delete(&domain.Restriction{}).Error; err != nil {
		return err
	}
	return tx.Where("part_option_a_id IN (?) OR part_option_b_id IN (?)", optionIDs, optionIDs).
		Delete(&domain.PriceRule{}).Error
}
