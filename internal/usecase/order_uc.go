package usecase

import (
	"context"
	"errors"
	"io"
	"net/mail"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/bikeconfig/internal/domain"
)

type PlaceOrder struct {
	CustomerName  string
	CustomerEmail string
	// ProductID is optional; the product is inferred from the options.
	ProductID int64
	OptionIDs []int64
}

type OrderExporter interface {
	WriteOrders(w io.Writer, orders []domain.Order) error
}

type OrderUC struct {
	Orders    domain.OrderRepo
	Customers domain.CustomerRepo
	Config    *ConfigurationUC
	Exporter  OrderExporter
}

// Place re-validates and re-prices the selection server side. Client-side
// totals are never trusted.
func (uc *OrderUC) Place(ctx context.Context, in PlaceOrder) (*domain.Order, error) {
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return nil, domain.Invalidf("customer_name can't be blank")
	}
	email := strings.ToLower(strings.TrimSpace(in.CustomerEmail))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, domain.Invalidf("customer_email is invalid")
	}
	ids := uniqueSorted(in.OptionIDs)
	if len(ids) == 0 {
		return nil, &domain.SelectionError{Errors: []string{"Selection is empty"}}
	}

	ix, err := uc.Config.Index(ctx)
	if err != nil {
		return nil, err
	}
	sel := domain.Selection{ProductID: in.ProductID, OptionIDs: ids}
	res := ix.Validate(sel)
	productID := ix.ProductFor(sel)
	errs := append(res.Errors, ix.MissingParts(productID, ids)...)
	if len(errs) > 0 {
		return nil, &domain.SelectionError{Errors: errs}
	}
	price, err := ix.Price(sel)
	if err != nil {
		return nil, err
	}

	cust, err := uc.upsertCustomer(ctx, name, email)
	if err != nil {
		return nil, err
	}
	o := &domain.Order{
		ID:            uuid.New(),
		Status:        domain.OrderStatusPending,
		ProductID:     productID,
		CustomerID:    &cust.ID,
		CustomerName:  name,
		CustomerEmail: email,
		OptionIDs:     ids,
		TotalPrice:    price.TotalPrice.Decimal(),
	}
	if err := uc.Orders.Save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *OrderUC) upsertCustomer(ctx context.Context, name, email string) (*domain.Customer, error) {
	c, err := uc.Customers.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c = &domain.Customer{ID: uuid.New(), Email: email, Name: name}
	case err != nil:
		return nil, err
	case c.Name == name:
		return c, nil
	default:
		c.Name = name
	}
	if err := uc.Customers.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *OrderUC) List(ctx context.Context, f domain.OrderFilter) ([]domain.Order, int64, error) {
	if f.PageSize <= 0 || f.PageSize > 200 {
		f.PageSize = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	return uc.Orders.List(ctx, f)
}

func (uc *OrderUC) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return uc.Orders.FindByID(ctx, id)
}

func (uc *OrderUC) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	st, ok := domain.ParseOrderStatus(string(status))
	if !ok {
		return nil, domain.Invalidf("unknown status %q", status)
	}
	if err := uc.Orders.UpdateStatus(ctx, id, st); err != nil {
		return nil, err
	}
	return uc.Orders.FindByID(ctx, id)
}

func (uc *OrderUC) Delete(ctx context.Context, id uuid.UUID) error {
	return uc.Orders.Delete(ctx, id)
}

// Export writes every order, newest first, through the configured exporter.
func (uc *OrderUC) Export(ctx context.Context, w io.Writer) error {
	var all []domain.Order
	for page := 1; ; page++ {
		list, total, err := uc.Orders.List(ctx, domain.OrderFilter{Page: page, PageSize: 200})
		if err != nil {
			return err
		}
		all = append(all, list...)
		if len(list) == 0 || int64(len(all)) >= total {
			break
		}
	}
	return uc.Exporter.WriteOrders(w, all)
}

func uniqueSorted(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
