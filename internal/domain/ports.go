package domain

import (
	"context"

	"github.com/google/uuid"
)

type ProductRepo interface {
	ListProducts(ctx context.Context) ([]Product, error)
	FindProduct(ctx context.Context, id int64) (*Product, error)
	SaveProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id int64) error

	ListParts(ctx context.Context, productID int64) ([]Part, error)
	FindPart(ctx context.Context, id int64) (*Part, error)
	SavePart(ctx context.Context, p *Part) error
	DeletePart(ctx context.Context, id int64) error

	ListOptions(ctx context.Context, partID int64) ([]Option, error)
	FindOption(ctx context.Context, id int64) (*Option, error)
	// FindOptionsByIDs returns the options found and, separately, the ids
	// that do not exist.
	FindOptionsByIDs(ctx context.Context, ids []int64) (map[int64]Option, []int64, error)
	SaveOption(ctx context.Context, o *Option) error
	DeleteOption(ctx context.Context, id int64) error
}

type RuleRepo interface {
	ListRestrictions(ctx context.Context) ([]Restriction, error)
	SaveRestriction(ctx context.Context, r *Restriction) error
	DeleteRestriction(ctx context.Context, id int64) error

	ListPriceRules(ctx context.Context) ([]PriceRule, error)
	SavePriceRule(ctx context.Context, r *PriceRule) error
	DeletePriceRule(ctx context.Context, id int64) error
}

type OrderFilter struct {
	Status   *OrderStatus
	Page     int
	PageSize int
}

type OrderRepo interface {
	Save(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, f OrderFilter) ([]Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CustomerRepo interface {
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	Save(ctx context.Context, c *Customer) error
}
