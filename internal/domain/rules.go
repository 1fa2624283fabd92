package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Restriction forbids RestrictedOptionID from being selected together with
// OptionID. It is stored directionally but enforced in both directions.
type Restriction struct {
	ID                 int64     `gorm:"primaryKey" json:"id"`
	OptionID           int64     `gorm:"column:part_option_id;index;not null" json:"part_option_id"`
	RestrictedOptionID int64     `gorm:"column:restricted_part_option_id;index;not null" json:"restricted_part_option_id"`
	CreatedAt          time.Time `json:"created_at"`
}

func (Restriction) TableName() string { return "part_restrictions" }

// PriceRule adds Premium once when both options are selected, regardless of
// the order they were stored in.
type PriceRule struct {
	ID        int64           `gorm:"primaryKey" json:"id"`
	OptionAID int64           `gorm:"column:part_option_a_id;index;not null" json:"part_option_a_id"`
	OptionBID int64           `gorm:"column:part_option_b_id;index;not null" json:"part_option_b_id"`
	Premium   decimal.Decimal `gorm:"column:price_premium;type:decimal(12,2);not null;default:0" json:"price_premium"`
	CreatedAt time.Time       `json:"created_at"`
}
