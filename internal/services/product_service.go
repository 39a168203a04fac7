package services

import (
	"context"
	"errors"

	"github.com/adeyemi/marketplace-backend/internal/models"
	repo "github.com/adeyemi/marketplace-backend/internal/repository"
	"github.com/google/uuid"
)

type ProductService struct {
	products repo.Products
	minPrice int64
}

func NewProductService(products repo.Products, minPrice int64) *ProductService {
	return &ProductService{products: products, minPrice: minPrice}
}

func (s *ProductService) Create(ctx context.Context, p models.Product) (models.Product, error) {
	if err := p.Validate(s.minPrice); err != nil {
		return models.Product{}, wrap(KindValidation, "invalid product", err)
	}
	out, err := s.products.Create(ctx, p)
	if err != nil {
		return models.Product{}, wrap(KindPersistence, "product create failed", err)
	}
	return out, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (models.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Product{}, E(KindValidation, "invalid product id format")
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Product{}, E(KindNotFound, "no product found with that id")
		}
		return models.Product{}, wrap(KindPersistence, "product lookup failed", err)
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	out, err := s.products.List(ctx)
	if err != nil {
		return nil, wrap(KindPersistence, "product list failed", err)
	}
	return out, nil
}

func (s *ProductService) ListMine(ctx context.Context, ownerID string) ([]models.Product, error) {
	out, err := s.products.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, wrap(KindPersistence, "product list failed", err)
	}
	return out, nil
}

// Update is owner-scoped; updating someone else's listing reports not found.
func (s *ProductService) Update(ctx context.Context, p models.Product) (models.Product, error) {
	if _, err := uuid.Parse(p.ID); err != nil {
		return models.Product{}, E(KindValidation, "invalid product id format")
	}
	if err := p.Validate(s.minPrice); err != nil {
		return models.Product{}, wrap(KindValidation, "invalid product", err)
	}
	out, err := s.products.Update(ctx, p)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Product{}, E(KindNotFound, "no product found with that id or no permission")
		}
		return models.Product{}, wrap(KindPersistence, "product update failed", err)
	}
	return out, nil
}

func (s *ProductService) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return E(KindValidation, "invalid product id format")
	}
	if err := s.products.Delete(ctx, id, ownerID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return E(KindNotFound, "no product found with that id or no permission")
		}
		return wrap(KindPersistence, "product delete failed", err)
	}
	return nil
}
