package dto

import (
	"time"

	"github.com/stockroom/catalog-service/internal/domain"
	"github.com/stockroom/catalog-service/internal/repository"
)

// CreateProductRequest payload. The owner is taken from the bearer token.
type CreateProductRequest struct {
	Type string `json:"type"`
	Name string `json:"name"`
	SSN  string `json:"ssn"`
}

// UpdateProductRequest payload; absent fields are left unchanged.
type UpdateProductRequest struct {
	Type *string `json:"type"`
	Name *string `json:"name"`
	SSN  *string `json:"ssn"`
}

// ProductResponse is the outward product projection.
type ProductResponse struct {
	ID        int64              `json:"id"`
	Type      domain.ProductType `json:"type"`
	Name      string             `json:"name"`
	SSN       string             `json:"ssn"`
	UserID    int64              `json:"userId"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
	User      *OwnerResponse     `json:"user,omitempty"`
}

// NewProductResponse projects a bare product.
func NewProductResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:        product.ID,
		Type:      product.Type,
		Name:      product.Name,
		SSN:       product.SSN,
		UserID:    product.UserID,
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
}

// NewProductWithOwnerResponse projects a product and its owner.
func NewProductWithOwnerResponse(row repository.ProductWithOwner) ProductResponse {
	resp := NewProductResponse(&row.Product)
	owner := NewOwnerResponse(row.Owner)
	resp.User = &owner
	return resp
}
