// Package configurator evaluates bicycle configurations: it decides whether
// a set of selected part options is valid and what it costs.
//
// All evaluation happens against an Index built from a single
// domain.Snapshot. An Index is immutable once built and safe for concurrent
// use, so a validation and a price computed from the same Index always agree
// on the catalog and rule data they saw.
package configurator

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/phenrril/bikeconfig/internal/domain"
)

// PairKey identifies an unordered pair of options. Lo is always <= Hi so a
// rule stored as (a, b) and a lookup for (b, a) land on the same key.
type PairKey struct {
	Lo, Hi int64
}

func NewPairKey(a, b int64) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Lo: a, Hi: b}
}

// premium is a price rule reduced to its amount in cents.
type premium struct {
	ruleID int64
	amount domain.Cents
}

type Index struct {
	log zerolog.Logger

	products map[int64]domain.Product
	parts    map[int64]domain.Part
	options  map[int64]domain.Option

	restrictions map[PairKey][]domain.Restriction
	premiums     map[PairKey][]premium
}

// NewIndex indexes s. Malformed rule rows are logged and left out of the
// index; they never fail the build.
func NewIndex(s *domain.Snapshot, log zerolog.Logger) *Index {
	ix := &Index{
		log:          log,
		products:     make(map[int64]domain.Product, len(s.Products)),
		parts:        make(map[int64]domain.Part, len(s.Parts)),
		options:      make(map[int64]domain.Option, len(s.Options)),
		restrictions: make(map[PairKey][]domain.Restriction),
		premiums:     make(map[PairKey][]premium),
	}
	for _, p := range s.Products {
		ix.products[p.ID] = p
	}
	for _, p := range s.Parts {
		ix.parts[p.ID] = p
	}
	for _, o := range s.Options {
		ix.options[o.ID] = o
	}

	for _, r := range s.Restrictions {
		if r.OptionID == r.RestrictedOptionID {
			log.Warn().Int64("restriction_id", r.ID).Int64("option_id", r.OptionID).
				Msg("rule data integrity: self-referencing restriction ignored")
			continue
		}
		k := NewPairKey(r.OptionID, r.RestrictedOptionID)
		ix.restrictions[k] = append(ix.restrictions[k], r)
	}
	for _, pr := range s.PriceRules {
		if pr.OptionAID == pr.OptionBID {
			log.Warn().Int64("price_rule_id", pr.ID).Int64("option_id", pr.OptionAID).
				Msg("rule data integrity: self-referencing price rule ignored")
			continue
		}
		amount := domain.CentsFromDecimal(pr.Premium)
		if amount < 0 {
			log.Warn().Int64("price_rule_id", pr.ID).Str("premium", pr.Premium.String()).
				Msg("rule data integrity: negative premium treated as zero")
			amount = 0
		}
		k := NewPairKey(pr.OptionAID, pr.OptionBID)
		ix.premiums[k] = append(ix.premiums[k], premium{ruleID: pr.ID, amount: amount})
	}
	return ix
}

// Product returns the product with the given id.
func (ix *Index) Product(id int64) (domain.Product, bool) {
	p, ok := ix.products[id]
	return p, ok
}

// OptionsByIDs resolves ids. Ids that do not exist are reported in missing,
// in input order.
func (ix *Index) OptionsByIDs(ids []int64) (found map[int64]domain.Option, missing []int64) {
	found = make(map[int64]domain.Option, len(ids))
	for _, id := range ids {
		if o, ok := ix.options[id]; ok {
			found[id] = o
			continue
		}
		missing = append(missing, id)
	}
	return found, missing
}

// PartsOf returns the parts of a product ordered by position, then id.
func (ix *Index) PartsOf(productID int64) []domain.Part {
	var out []domain.Part
	for _, p := range ix.parts {
		if p.ProductID == productID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// productOf returns the product owning o, or 0 when o's part is unknown.
func (ix *Index) productOf(o domain.Option) int64 {
	return ix.parts[o.PartID].ProductID
}

// resolve dedupes ids, splits them into known options (sorted by id) and
// unknown ids (input order).
func (ix *Index) resolve(ids []int64) ([]domain.Option, []int64) {
	seen := make(map[int64]struct{}, len(ids))
	var resolved []domain.Option
	var unknown []int64
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if o, ok := ix.options[id]; ok {
			resolved = append(resolved, o)
			continue
		}
		unknown = append(unknown, id)
	}
	sort.Slice(resolved, func(i, j int) bool { return resolved[i].ID < resolved[j].ID })
	return resolved, unknown
}

// eachPair calls fn for every unordered pair of distinct options.
func eachPair(opts []domain.Option, fn func(a, b domain.Option)) {
	for i := 0; i < len(opts); i++ {
		for j := i + 1; j < len(opts); j++ {
			fn(opts[i], opts[j])
		}
	}
}
