package usecase

import (
	"context"
	"strings"

	zlog "github.com/rs/zerolog/log"

	"github.com/phenrril/bikeconfig/internal/domain"
)

type CatalogUC struct {
	Products domain.ProductRepo
	// Cache is optional; it is told about every write.
	Cache domain.SnapshotInvalidator
}

func (uc *CatalogUC) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return uc.Products.ListProducts(ctx)
}

func (uc *CatalogUC) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return uc.Products.FindProduct(ctx, id)
}

// SaveProduct creates p when p.ID is zero and updates it otherwise.
func (uc *CatalogUC) SaveProduct(ctx context.Context, p *domain.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.Invalidf("name can't be blank")
	}
	if err := domain.CheckAmount("base_price", p.BasePrice); err != nil {
		return err
	}
	if p.ID != 0 {
		if _, err := uc.Products.FindProduct(ctx, p.ID); err != nil {
			return err
		}
	}
	p.Parts = nil
	if err := uc.Products.SaveProduct(ctx, p); err != nil {
		return err
	}
	uc.invalidate(ctx)
	return nil
}

func (uc *CatalogUC) DeleteProduct(ctx context.Context, id int64) error {
	if err := uc.Products.DeleteProduct(ctx, id); err != nil {
		return err
	}
	uc.invalidate(ctx)
	return nil
}

// --- Partes ---

func (uc *CatalogUC) ListParts(ctx context.Context, productID int64) ([]domain.Part, error) {
	if _, err := uc.Products.FindProduct(ctx, productID); err != nil {
		return nil, err
	}
	return uc.Products.ListParts(ctx, productID)
}

// GetPart returns the part only when it belongs to productID.
func (uc *CatalogUC) GetPart(ctx context.Context, productID, id int64) (*domain.Part, error) {
	p, err := uc.Products.FindPart(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.ProductID != productID {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (uc *CatalogUC) SavePart(ctx context.Context, productID int64, p *domain.Part) error {
	if _, err := uc.Products.FindProduct(ctx, productID); err != nil {
		return err
	}
	if p.ID != 0 {
		if _, err := uc.GetPart(ctx, productID, p.ID); err != nil {
			return err
		}
	}
	p.ProductID = productID
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.Invalidf("name can't be blank")
	}
	p.Options = nil
	if err := uc.Products.SavePart(ctx, p); err != nil {
		return err
	}
	uc.invalidate(ctx)
	return nil
}

func (uc *CatalogUC) DeletePart(ctx context.Context, productID, id int64) error {
	if _, err := uc.GetPart(ctx, productID, id); err != nil {
		return err
	}
	if err := uc.Products.DeletePart(ctx, id); err != nil {
		return err
	}
	uc.invalidate(ctx)
	return nil
}

// --- Opciones ---

func (uc *CatalogUC) ListOptions(ctx context.Context, productID, partID int64) ([]domain.Option, error) {
	if _, err := uc.GetPart(ctx, productID, partID); err != nil {
		return nil, err
	}
	return uc.Products.ListOptions(ctx, partID)
}

func (uc *CatalogUC) GetOption(ctx context.Context, productID, partID, id int64) (*domain.Option, error) {
	if _, err := uc.GetPart(ctx, productID, partID); err != nil {
		return nil, err
	}
	o, err := uc.Products.FindOption(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.PartID != partID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (uc *CatalogUC) SaveOption(ctx context.Context, productID, partID int64, o *domain.Option) error {
	if _, err := uc.GetPart(ctx, productID, partID); err != nil {
		return err
	}
	if o.ID != 0 {
		if _, err := uc.GetOption(ctx, productID, partID, o.ID); err != nil {
			return err
		}
	}
	o.PartID = partID
	o.Name = strings.TrimSpace(o.Name)
	if o.Name == "" {
		return domain.Invalidf("name can't be blank")
	}
	if o.Price.Valid {
		if err := domain.CheckAmount("price", o.Price.Decimal); err != nil {
			return err
		}
	}
	if err := uc.Products.SaveOption(ctx, o); err != nil {
		return err
	}
	uc.invalidate(ctx)
	return nil
}

func (uc *CatalogUC) DeleteOption(ctx context.Context, productID, partID, id int64) error {
	if _, err := uc.GetOption(ctx, productID, partID, id); err != nil {
		return err
	}
	if err := uc.Products.DeleteOption(ctx, id); err != nil {
		return err
	}
	uc.invalidate(ctx)
	return nil
}

func (uc *CatalogUC) invalidate(ctx context.Context) {
	invalidate(ctx, uc.Cache)
}

// invalidate never fails a write: a stale cache entry expires by TTL.
func invalidate(ctx context.Context, c domain.SnapshotInvalidator) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx); err != nil {
		zlog.Warn().Err(err).Msg("snapshot cache invalidation failed")
	}
}
