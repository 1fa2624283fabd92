package configurator_test

import (
	"github.com/shopspring/decimal"

	"github.com/phenrril/bikeconfig/internal/domain"
)

const (
	trailBike int64 = 1
	cityBike  int64 = 2

	frame  int64 = 10
	wheels int64 = 20
	basket int64 = 30

	carbon   int64 = 101
	aluminum int64 = 102
	steel    int64 = 103
	road     int64 = 201
	mountain int64 = 202
	wicker   int64 = 301
)

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// trailBikeSnapshot is the catalog used across the engine tests:
//
//	Trail Bike (base 50.00)
//	  Frame:  Carbon 500.00, Aluminum 200.00 (out of stock), Steel 120.00
//	  Wheels: Road 100.00, Mountain 150.00
//	City Bike (base 80.00)
//	  Basket: Wicker 30.00
//
// Restriction 1 forbids Carbon with Road; price rule 1 adds 35.00 for Carbon
// with Mountain.
func trailBikeSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Products: []domain.Product{
			{ID: trailBike, Name: "Trail Bike", BasePrice: decimal.RequireFromString("50.00")},
			{ID: cityBike, Name: "City Bike", BasePrice: decimal.RequireFromString("80.00")},
		},
		Parts: []domain.Part{
			{ID: frame, ProductID: trailBike, Name: "Frame", Position: 1},
			{ID: wheels, ProductID: trailBike, Name: "Wheels", Position: 2},
			{ID: basket, ProductID: cityBike, Name: "Basket", Position: 1},
		},
		Options: []domain.Option{
			{ID: carbon, PartID: frame, Name: "Carbon", Price: price("500.00"), InStock: true},
			{ID: aluminum, PartID: frame, Name: "Aluminum", Price: price("200.00"), InStock: false},
			{ID: steel, PartID: frame, Name: "Steel", Price: price("120.00"), InStock: true},
			{ID: road, PartID: wheels, Name: "Road", Price: price("100.00"), InStock: true},
			{ID: mountain, PartID: wheels, Name: "Mountain", Price: price("150.00"), InStock: true},
			{ID: wicker, PartID: basket, Name: "Wicker", Price: price("30.00"), InStock: true},
		},
		Restrictions: []domain.Restriction{
			{ID: 1, OptionID: carbon, RestrictedOptionID: road},
		},
		PriceRules: []domain.PriceRule{
			{ID: 1, OptionAID: carbon, OptionBID: mountain, Premium: decimal.RequireFromString("35.00")},
		},
	}
}

func sel(ids ...int64) domain.Selection {
	return domain.Selection{OptionIDs: ids}
}
