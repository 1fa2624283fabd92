package domain

import (
	"context"
	"time"
)

// Snapshot is a point-in-time copy of every table the engine reads. A
// snapshot is never mutated after it has been loaded.
type Snapshot struct {
	Products     []Product     `json:"products"`
	Parts        []Part        `json:"parts"`
	Options      []Option      `json:"options"`
	Restrictions []Restriction `json:"restrictions"`
	PriceRules   []PriceRule   `json:"price_rules"`
	LoadedAt     time.Time     `json:"loaded_at"`
}

// Selection is one configuration request. ProductID is optional; when zero
// the product is inferred from the selected options.
type Selection struct {
	ProductID int64
	OptionIDs []int64
}

type SnapshotSource interface {
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
}

// SnapshotInvalidator is notified after catalog or rule writes.
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context) error
}
