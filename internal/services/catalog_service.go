package services

import (
	"context"
	"io"
	"time"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/validate"

	"github.com/google/uuid"
)

// ImageStore persists product images and returns their media-relative path.
type ImageStore interface {
	SaveProductImage(productID string, r io.Reader) (string, error)
	Remove(rel string) error
}

type CatalogService struct {
	Prods  *repos.ProductRepo
	Images ImageStore
	Now    func() time.Time
}

func NewCatalogService(prods *repos.ProductRepo, images ImageStore) *CatalogService {
	return &CatalogService{Prods: prods, Images: images, Now: time.Now}
}

func (s *CatalogService) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	return s.Prods.List(ctx, f)
}

// Categories lists the distinct categories with "All" first.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	cats, err := s.Prods.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return append([]string{"All"}, cats...), nil
}

func (s *CatalogService) WorthyPicks(ctx context.Context) ([]domain.Product, error) {
	return s.Prods.ListWorthy(ctx)
}

func (s *CatalogService) OnSale(ctx context.Context) ([]domain.Product, error) {
	return s.Prods.ListOnSale(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return s.Prods.Get(ctx, id)
}

func (s *CatalogService) MyProducts(ctx context.Context, owner *domain.User) ([]domain.Product, error) {
	return s.Prods.ListByOwner(ctx, owner.ID)
}

// CreateProduct lists a new product owned by owner. image may be nil.
func (s *CatalogService) CreateProduct(ctx context.Context, owner *domain.User, f validate.ProductForm, image io.Reader) (domain.Product, error) {
	p, err := f.Parse()
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = uuid.NewString()
	p.OwnerID = owner.ID
	p.CreatedAt = s.Now().UTC()
	if image != nil {
		if p.Image, err = s.Images.SaveProductImage(p.ID, image); err != nil {
			return domain.Product{}, err
		}
	}
	if err := s.Prods.Create(ctx, p); err != nil {
		s.dropImage(p.ID, p.Image)
		return domain.Product{}, err
	}
	return p, nil
}

// owned loads the product and checks that actor owns it.
func (s *CatalogService) owned(ctx context.Context, actor *domain.User, id string) (domain.Product, error) {
	p, err := s.Prods.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if actor == nil || p.OwnerID != actor.ID {
		return domain.Product{}, domain.ErrForbidden
	}
	return p, nil
}

// UpdateProduct edits a product; only its owner may do so.
func (s *CatalogService) UpdateProduct(ctx context.Context, actor *domain.User, id string, f validate.ProductForm, image io.Reader) (domain.Product, error) {
	cur, err := s.owned(ctx, actor, id)
	if err != nil {
		return domain.Product{}, err
	}
	next, err := f.Parse()
	if err != nil {
		return domain.Product{}, err
	}
	next.ID, next.OwnerID, next.CreatedAt = cur.ID, cur.OwnerID, cur.CreatedAt
	next.IsWorthyPick, next.OnSale, next.Image = cur.IsWorthyPick, cur.OnSale, cur.Image
	if image != nil {
		if next.Image, err = s.Images.SaveProductImage(cur.ID, image); err != nil {
			return domain.Product{}, err
		}
	}
	if err := s.Prods.Update(ctx, next); err != nil {
		if next.Image != cur.Image {
			s.dropImage(next.ID, next.Image)
		}
		return domain.Product{}, err
	}
	if next.Image != cur.Image {
		s.dropImage(cur.ID, cur.Image)
	}
	return next, nil
}

// dropImage removes an image file that no row points at any more. The row is
// already committed, so a failure is logged rather than returned.
func (s *CatalogService) dropImage(productID, rel string) {
	if err := s.Images.Remove(rel); err != nil {
		applog.Error(nil, "product.image.remove", err, map[string]any{"product_id": productID, "image": rel})
	}
}

// DeleteProduct removes a product; only its owner may do so. Order history
// keeps the frozen line items with a cleared product reference.
func (s *CatalogService) DeleteProduct(ctx context.Context, actor *domain.User, id string) error {
	p, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.Prods.Delete(ctx, p.ID); err != nil {
		return err
	}
	s.dropImage(p.ID, p.Image)
	return nil
}
