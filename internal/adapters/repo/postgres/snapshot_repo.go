package postgres

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"github.com/phenrril/bikeconfig/internal/domain"
)

var _ domain.SnapshotSource = (*SnapshotRepo)(nil)

// SnapshotRepo reads every catalog and rule table inside one read-only
// REPEATABLE READ transaction, so a single evaluation never mixes versions.
type SnapshotRepo struct{ db *gorm.DB }

func NewSnapshotRepo(db *gorm.DB) *SnapshotRepo { return &SnapshotRepo{db: db} }

func (r *SnapshotRepo) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Order("id asc").Find(&snap.Products).Error; err != nil {
			return err
		}
		if err := tx.Order("id asc").Find(&snap.Parts).Error; err != nil {
			return err
		}
		if err := tx.Order("id asc").Find(&snap.Options).Error; err != nil {
			return err
		}
		if err := tx.Order("id asc").Find(&snap.Restrictions).Error; err != nil {
			return err
		}
		return tx.Order("id asc").Find(&snap.PriceRules).Error
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, err
	}
	snap.LoadedAt = time.Now().UTC()
	return snap, nil
}
