package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/stockroom/catalog-service/internal/domain"
	"github.com/stockroom/catalog-service/internal/repository"
	apperrors "github.com/stockroom/catalog-service/pkg/util"
)

// ProductCreateInput carries fields for product creation. The owner comes
// from the bearer identity, never from the payload.
type ProductCreateInput struct {
	Type domain.ProductType
	Name string
	SSN  string
}

// ProductUpdateInput carries optional fields for partial update.
type ProductUpdateInput struct {
	Type *domain.ProductType
	Name *string
	SSN  *string
}

// ProductService implements the product collection endpoints.
type ProductService struct {
	products repository.ProductRepository
}

// NewProductService builds the service.
func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

// List returns all products with their owners.
func (s *ProductService) List(ctx context.Context) ([]repository.ProductWithOwner, error) {
	return s.products.List(ctx)
}

// Get returns a single product with its owner.
func (s *ProductService) Get(ctx context.Context, id int64) (*repository.ProductWithOwner, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Product")
		}
		return nil, err
	}
	return product, nil
}

// Create persists a product owned by ownerID.
func (s *ProductService) Create(ctx context.Context, ownerID int64, in ProductCreateInput) (*domain.Product, error) {
	if in.Type == "" || strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.SSN) == "" {
		return nil, apperrors.NewValidationError("Required fields: type, name, ssn", nil)
	}
	if !domain.ValidProductType(in.Type) {
		return nil, apperrors.NewValidationError(invalidTypeMessage(), nil)
	}

	product := &domain.Product{
		Type:   in.Type,
		Name:   in.Name,
		SSN:    in.SSN,
		UserID: ownerID,
	}
	if err := s.products.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("SSN already exists")
		}
		return nil, err
	}
	return product, nil
}

// Update applies a partial update, revalidating the type when provided.
func (s *ProductService) Update(ctx context.Context, id int64, in ProductUpdateInput) (*domain.Product, error) {
	if in.Type != nil && !domain.ValidProductType(*in.Type) {
		return nil, apperrors.NewValidationError(invalidTypeMessage(), nil)
	}

	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Product")
		}
		return nil, err
	}

	product := existing.Product
	if in.Type != nil {
		product.Type = *in.Type
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		product.Name = *in.Name
	}
	if in.SSN != nil && strings.TrimSpace(*in.SSN) != "" {
		product.SSN = *in.SSN
	}

	if err := s.products.Update(ctx, &product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("SSN already exists")
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Product")
		}
		return nil, err
	}
	return &product, nil
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Product")
		}
		return err
	}
	return nil
}

func invalidTypeMessage() string {
	allowed := make([]string, 0, len(domain.ProductTypes))
	for _, t := range domain.ProductTypes {
		allowed = append(allowed, string(t))
	}
	return fmt.Sprintf("Invalid type. Allowed values: %s", strings.Join(allowed, ", "))
}
