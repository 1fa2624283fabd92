// Package memory is an in-process store used by STORE=memory and by tests.
// Every read hands out copies so callers can never mutate stored rows.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/bikeconfig/internal/domain"
)

var (
	_ domain.ProductRepo    = (*Store)(nil)
	_ domain.RuleRepo       = (*Store)(nil)
	_ domain.OrderRepo      = (*Orders)(nil)
	_ domain.CustomerRepo   = (*Customers)(nil)
	_ domain.SnapshotSource = (*Store)(nil)
)

type Store struct {
	mu     sync.RWMutex
	nextID int64

	products     map[int64]domain.Product
	parts        map[int64]domain.Part
	options      map[int64]domain.Option
	restrictions map[int64]domain.Restriction
	priceRules   map[int64]domain.PriceRule
	orders       map[uuid.UUID]domain.Order
	customers    map[uuid.UUID]domain.Customer
}

func NewStore() *Store {
	return &Store{
		products:     map[int64]domain.Product{},
		parts:        map[int64]domain.Part{},
		options:      map[int64]domain.Option{},
		restrictions: map[int64]domain.Restriction{},
		priceRules:   map[int64]domain.PriceRule{},
		orders:       map[uuid.UUID]domain.Order{},
		customers:    map[uuid.UUID]domain.Customer{},
	}
}

func (s *Store) id(current int64) int64 {
	if current != 0 {
		if current > s.nextID {
			s.nextID = current
		}
		return current
	}
	s.nextID++
	return s.nextID
}

// LoadSnapshot copies every catalog and rule table under one read lock.
func (s *Store) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &domain.Snapshot{LoadedAt: time.Now().UTC()}
	for _, p := range s.products {
		p.Parts = nil
		snap.Products = append(snap.Products, p)
	}
	for _, p := range s.parts {
		p.Options = nil
		snap.Parts = append(snap.Parts, p)
	}
	for _, o := range s.options {
		snap.Options = append(snap.Options, o)
	}
	for _, r := range s.restrictions {
		snap.Restrictions = append(snap.Restrictions, r)
	}
	for _, r := range s.priceRules {
		snap.PriceRules = append(snap.PriceRules, r)
	}
	sort.Slice(snap.Products, func(i, j int) bool { return snap.Products[i].ID < snap.Products[j].ID })
	sort.Slice(snap.Parts, func(i, j int) bool { return snap.Parts[i].ID < snap.Parts[j].ID })
	sort.Slice(snap.Options, func(i, j int) bool { return snap.Options[i].ID < snap.Options[j].ID })
	sort.Slice(snap.Restrictions, func(i, j int) bool { return snap.Restrictions[i].ID < snap.Restrictions[j].ID })
	sort.Slice(snap.PriceRules, func(i, j int) bool { return snap.PriceRules[i].ID < snap.PriceRules[j].ID })
	return snap, nil
}

// --- Catalogo ---

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, s.withParts(p))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *Store) FindProduct(ctx context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p = s.withParts(p)
	return &p, nil
}

func (s *Store) SaveProduct(ctx context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id(p.ID)
	stamp(&p.CreatedAt, &p.UpdatedAt)
	cp := *p
	cp.Parts = nil
	s.products[p.ID] = cp
	return nil
}

// DeleteProduct removes the product with its parts, options and every rule
// that references one of those options.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return domain.ErrNotFound
	}
	for pid, part := range s.parts {
		if part.ProductID == id {
			s.deletePartLocked(pid)
		}
	}
	delete(s.products, id)
	return nil
}

func (s *Store) ListParts(ctx context.Context, productID int64) ([]domain.Part, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.partsOf(productID), nil
}

func (s *Store) FindPart(ctx context.Context, id int64) (*domain.Part, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.Options = s.optionsOf(id)
	return &p, nil
}

func (s *Store) SavePart(ctx context.Context, p *domain.Part) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id(p.ID)
	stamp(&p.CreatedAt, &p.UpdatedAt)
	cp := *p
	cp.Options = nil
	s.parts[p.ID] = cp
	return nil
}

func (s *Store) DeletePart(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parts[id]; !ok {
		return domain.ErrNotFound
	}
	s.deletePartLocked(id)
	return nil
}

func (s *Store) ListOptions(ctx context.Context, partID int64) ([]domain.Option, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.optionsOf(partID), nil
}

func (s *Store) FindOption(ctx context.Context, id int64) (*domain.Option, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.options[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

func (s *Store) FindOptionsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Option, []int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make(map[int64]domain.Option, len(ids))
	var missing []int64
	for _, id := range ids {
		if o, ok := s.options[id]; ok {
			found[id] = o
			continue
		}
		missing = append(missing, id)
	}
	return found, missing, nil
}

func (s *Store) SaveOption(ctx context.Context, o *domain.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.id(o.ID)
	stamp(&o.CreatedAt, &o.UpdatedAt)
	s.options[o.ID] = *o
	return nil
}

func (s *Store) DeleteOption(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.options[id]; !ok {
		return domain.ErrNotFound
	}
	s.deleteOptionLocked(id)
	return nil
}

func (s *Store) withParts(p domain.Product) domain.Product {
	p.Parts = s.partsOf(p.ID)
	for i := range p.Parts {
		p.Parts[i].Options = s.optionsOf(p.Parts[i].ID)
	}
	return p
}

func (s *Store) partsOf(productID int64) []domain.Part {
	list := []domain.Part{}
	for _, p := range s.parts {
		if p.ProductID == productID {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Position != list[j].Position {
			return list[i].Position < list[j].Position
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func (s *Store) optionsOf(partID int64) []domain.Option {
	list := []domain.Option{}
	for _, o := range s.options {
		if o.PartID == partID {
			list = append(list, o)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Position != list[j].Position {
			return list[i].Position < list[j].Position
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func (s *Store) deletePartLocked(id int64) {
	for oid, o := range s.options {
		if o.PartID == id {
			s.deleteOptionLocked(oid)
		}
	}
	delete(s.parts, id)
}

func (s *Store) deleteOptionLocked(id int64) {
	for rid, r := range s.restrictions {
		if r.OptionID == id || r.RestrictedOptionID == id {
			delete(s.restrictions, rid)
		}
	}
	for rid, r := range s.priceRules {
		if r.OptionAID == id || r.OptionBID == id {
			delete(s.priceRules, rid)
		}
	}
	delete(s.options, id)
}

// --- Reglas ---

func (s *Store) ListRestrictions(ctx context.Context) ([]domain.Restriction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]domain.Restriction, 0, len(s.restrictions))
	for _, r := range s.restrictions {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *Store) SaveRestriction(ctx context.Context, r *domain.Restriction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id(r.ID)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	s.restrictions[r.ID] = *r
	return nil
}

func (s *Store) DeleteRestriction(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.restrictions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.restrictions, id)
	return nil
}

func (s *Store) ListPriceRules(ctx context.Context) ([]domain.PriceRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]domain.PriceRule, 0, len(s.priceRules))
	for _, r := range s.priceRules {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *Store) SavePriceRule(ctx context.Context, r *domain.PriceRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id(r.ID)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	s.priceRules[r.ID] = *r
	return nil
}

func (s *Store) DeletePriceRule(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.priceRules[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.priceRules, id)
	return nil
}

// --- Ordenes ---

// Orders is the OrderRepo view of a Store.
type Orders struct{ s *Store }

func (s *Store) Orders() *Orders { return &Orders{s: s} }

func (r *Orders) Save(ctx context.Context, o *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	stamp(&o.CreatedAt, &o.UpdatedAt)
	cp := *o
	cp.OptionIDs = append([]int64(nil), o.OptionIDs...)
	r.s.orders[o.ID] = cp
	return nil
}

func (r *Orders) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	o.OptionIDs = append([]int64(nil), o.OptionIDs...)
	return &o, nil
}

func (r *Orders) List(ctx context.Context, f domain.OrderFilter) ([]domain.Order, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []domain.Order
	for _, o := range r.s.orders {
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		all = append(all, o)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})
	total := int64(len(all))
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	start := (f.Page - 1) * f.PageSize
	if start >= len(all) {
		return []domain.Order{}, total, nil
	}
	end := start + f.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *Orders) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.s.orders[id] = o
	return nil
}

func (r *Orders) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.orders, id)
	return nil
}

// --- Clientes ---

// Customers is the CustomerRepo view of a Store.
type Customers struct{ s *Store }

func (s *Store) Customers() *Customers { return &Customers{s: s} }

func (r *Customers) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.customers {
		if c.Email == e {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *Customers) Save(ctx context.Context, c *domain.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Email = strings.ToLower(c.Email)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.s.customers[c.ID] = *c
	return nil
}

func stamp(created, updated *time.Time) {
	now := time.Now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}
