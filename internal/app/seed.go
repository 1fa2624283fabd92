package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/phenrril/bikeconfig/internal/domain"
	"github.com/phenrril/bikeconfig/internal/usecase"
)

type seedOption struct {
	name    string
	price   string
	inStock bool
}

type seedPart struct {
	name    string
	options []seedOption
}

var trailBikeParts = []seedPart{
	{"Frame", []seedOption{{"Carbon", "500.00", true}, {"Aluminum", "200.00", false}, {"Steel", "120.00", true}}},
	{"Wheels", []seedOption{{"Road", "100.00", true}, {"Mountain", "150.00", true}, {"Fat bike", "180.00", true}}},
	{"Chain", []seedOption{{"Single-speed", "43.00", true}, {"8-speed", "80.00", true}}},
}

// SeedDemo loads the Trail Bike catalog when there are no products yet.
// It reports whether anything was written.
func SeedDemo(ctx context.Context, cat *usecase.CatalogUC, rules *usecase.RuleUC) (bool, error) {
	existing, err := cat.ListProducts(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	p := &domain.Product{
		Name:        "Trail Bike",
		Description: "Full-suspension bike for rough terrain, built to order.",
		BasePrice:   decimal.RequireFromString("50.00"),
	}
	if err := cat.SaveProduct(ctx, p); err != nil {
		return false, err
	}
	ids := map[string]int64{}
	for i, sp := range trailBikeParts {
		part := &domain.Part{Name: sp.name, Position: i + 1}
		if err := cat.SavePart(ctx, p.ID, part); err != nil {
			return false, err
		}
		for j, so := range sp.options {
			o := &domain.Option{
				Name:     so.name,
				Price:    decimal.NewNullDecimal(decimal.RequireFromString(so.price)),
				InStock:  so.inStock,
				Position: j + 1,
			}
			if err := cat.SaveOption(ctx, p.ID, part.ID, o); err != nil {
				return false, err
			}
			ids[so.name] = o.ID
		}
	}

	if err := rules.CreateRestriction(ctx, &domain.Restriction{OptionID: ids["Carbon"], RestrictedOptionID: ids["Road"]}); err != nil {
		return false, err
	}
	if err := rules.CreateRestriction(ctx, &domain.Restriction{OptionID: ids["Fat bike"], RestrictedOptionID: ids["Single-speed"]}); err != nil {
		return false, err
	}
	if err := rules.CreatePriceRule(ctx, &domain.PriceRule{OptionAID: ids["Carbon"], OptionBID: ids["Mountain"], Premium: decimal.RequireFromString("35.00")}); err != nil {
		return false, err
	}
	return true, nil
}
