package configurator

import (
	"fmt"
	"sort"

	"github.com/phenrril/bikeconfig/internal/domain"
)

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Validate checks a selection and collects every violation, never stopping at
// the first one. Errors are emitted in a fixed order: unknown product,
// unknown options (input order), options of another product (option id),
// part conflicts (part id), stock (option id), restrictions (restriction id).
func (ix *Index) Validate(sel domain.Selection) ValidationResult {
	res := ValidationResult{Valid: true, Errors: []string{}}

	productName := ""
	if sel.ProductID != 0 {
		p, ok := ix.products[sel.ProductID]
		if !ok {
			res.fail("Unknown product: %d", sel.ProductID)
		}
		productName = p.Name
	}

	resolved, unknown := ix.resolve(sel.OptionIDs)
	for _, id := range unknown {
		res.fail("Unknown option: %d", id)
	}

	if productName != "" {
		for _, o := range resolved {
			if ix.productOf(o) != sel.ProductID {
				res.fail("%s does not belong to %s", o.Name, productName)
			}
		}
	}

	ix.checkParts(resolved, &res)

	for _, o := range resolved {
		if !o.InStock {
			res.fail("%s is out of stock", o.Name)
		}
	}

	var violated []domain.Restriction
	eachPair(resolved, func(a, b domain.Option) {
		violated = append(violated, ix.restrictions[NewPairKey(a.ID, b.ID)]...)
	})
	sort.Slice(violated, func(i, j int) bool { return violated[i].ID < violated[j].ID })
	for _, r := range violated {
		res.fail("%s cannot be combined with %s", ix.options[r.OptionID].Name, ix.options[r.RestrictedOptionID].Name)
	}

	return res
}

// checkParts reports parts with more than one selected option. resolved must
// be sorted by option id; the lowest id is paired with each other option.
func (ix *Index) checkParts(resolved []domain.Option, res *ValidationResult) {
	byPart := make(map[int64][]domain.Option, len(resolved))
	partIDs := make([]int64, 0, len(resolved))
	for _, o := range resolved {
		if _, ok := byPart[o.PartID]; !ok {
			partIDs = append(partIDs, o.PartID)
		}
		byPart[o.PartID] = append(byPart[o.PartID], o)
	}
	sort.Slice(partIDs, func(i, j int) bool { return partIDs[i] < partIDs[j] })

	for _, pid := range partIDs {
		opts := byPart[pid]
		if len(opts) < 2 {
			continue
		}
		partName := ix.parts[pid].Name
		if partName == "" {
			partName = fmt.Sprintf("#%d", pid)
		}
		for _, other := range opts[1:] {
			res.fail("Conflicting selection for part %s: %s vs %s", partName, opts[0].Name, other.Name)
		}
	}
}

// MissingParts lists a "Missing selection for part <name>" message for every
// part of productID with no selected option. An empty selection is valid for
// Validate, but an order needs one option per part.
func (ix *Index) MissingParts(productID int64, optionIDs []int64) []string {
	chosen := make(map[int64]bool, len(optionIDs))
	for _, id := range optionIDs {
		if o, ok := ix.options[id]; ok {
			chosen[o.PartID] = true
		}
	}
	var out []string
	for _, p := range ix.PartsOf(productID) {
		if !chosen[p.ID] {
			out = append(out, fmt.Sprintf("Missing selection for part %s", p.Name))
		}
	}
	return out
}

// ProductFor returns sel.ProductID, or the product inferred from the
// lowest-id known option.
func (ix *Index) ProductFor(sel domain.Selection) int64 {
	if sel.ProductID != 0 {
		return sel.ProductID
	}
	resolved, _ := ix.resolve(sel.OptionIDs)
	if len(resolved) == 0 {
		return 0
	}
	return ix.productOf(resolved[0])
}
