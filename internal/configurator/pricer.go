package configurator

import (
	"fmt"

	"github.com/phenrril/bikeconfig/internal/domain"
)

type PriceResult struct {
	TotalPrice domain.Cents `json:"-"`
}

// MarshalJSON keeps the wire format the storefront expects:
// {"total_price":"123.45"}.
func (p PriceResult) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"total_price":%q}`, p.TotalPrice.String())), nil
}

// Price computes base price + option prices + premiums. Unknown option ids
// are skipped. Every price rule matching a selected pair applies, so two
// rules on the same pair add both premiums.
//
// The base product is sel.ProductID when set, otherwise the product owning
// the lowest-id resolved option. An explicit but unknown product is
// domain.ErrNotFound. A total beyond the Cents range is domain.ErrInvalid.
func (ix *Index) Price(sel domain.Selection) (PriceResult, error) {
	resolved, _ := ix.resolve(sel.OptionIDs)

	if sel.ProductID != 0 {
		if _, ok := ix.products[sel.ProductID]; !ok {
			return PriceResult{}, fmt.Errorf("product %d: %w", sel.ProductID, domain.ErrNotFound)
		}
	}
	productID := ix.ProductFor(sel)

	var sum priceSum
	if p, ok := ix.products[productID]; ok {
		base := domain.CentsFromDecimal(p.BasePrice)
		if base < 0 {
			ix.log.Warn().Int64("product_id", p.ID).Str("base_price", p.BasePrice.String()).
				Msg("pricing anomaly: negative base price treated as zero")
			base = 0
		}
		sum.add(base)
	}

	for _, o := range resolved {
		sum.add(ix.optionPrice(o))
	}

	eachPair(resolved, func(a, b domain.Option) {
		for _, pr := range ix.premiums[NewPairKey(a.ID, b.ID)] {
			ix.log.Debug().Int64("price_rule_id", pr.ruleID).Int64("option_a", a.ID).Int64("option_b", b.ID).
				Str("premium", pr.amount.String()).Msg("premium applied")
			sum.add(pr.amount)
		}
	})

	if sum.err != nil {
		ix.log.Error().Int64("product_id", productID).Ints64("option_ids", sel.OptionIDs).
			Msg("pricing anomaly: total out of range")
		return PriceResult{}, domain.Invalidf("total price is out of range")
	}
	return PriceResult{TotalPrice: sum.total}, nil
}

// priceSum accumulates cents and keeps the first overflow.
type priceSum struct {
	total domain.Cents
	err   error
}

func (s *priceSum) add(c domain.Cents) {
	if s.err != nil {
		return
	}
	s.total, s.err = s.total.Add(c)
}

func (ix *Index) optionPrice(o domain.Option) domain.Cents {
	if !o.Price.Valid {
		ix.log.Warn().Int64("option_id", o.ID).Msg("pricing anomaly: option without price treated as zero")
		return 0
	}
	c := domain.CentsFromDecimal(o.Price.Decimal)
	if c < 0 {
		ix.log.Warn().Int64("option_id", o.ID).Str("price", o.Price.Decimal.String()).
			Msg("pricing anomaly: negative option price treated as zero")
		return 0
	}
	return c
}
