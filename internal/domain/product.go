package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:180;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"base_price"`
	Parts       []Part          `json:"parts,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Part is a customizable slot of a Product. A complete configuration picks
// exactly one of its options.
type Part struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	ProductID int64     `gorm:"index;not null" json:"product_id"`
	Name      string    `gorm:"size:140;not null" json:"name"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	Options   []Option  `gorm:"foreignKey:PartID" json:"part_options,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Option is a selectable variant of a Part. Price is nullable in storage;
// the pricer treats NULL and negative values as zero. InStock has no
// column default so that false is always written.
type Option struct {
	ID        int64               `gorm:"primaryKey" json:"id"`
	PartID    int64               `gorm:"index;not null" json:"part_id"`
	Name      string              `gorm:"size:140;not null" json:"name"`
	Price     decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"price"`
	InStock   bool                `gorm:"not null" json:"in_stock"`
	Position  int                 `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func (Option) TableName() string { return "part_options" }
