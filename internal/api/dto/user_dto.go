package dto

import (
	"time"

	"github.com/stockroom/catalog-service/internal/domain"
	"github.com/stockroom/catalog-service/internal/repository"
	"github.com/stockroom/catalog-service/internal/service"
)

// CreateUserRequest payload for the users collection.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// UpdateUserRequest payload; only the display name is mutable.
type UpdateUserRequest struct {
	Name string `json:"name"`
}

// KeySummaryResponse is the key projection nested under a user.
type KeySummaryResponse struct {
	ID        int64     `json:"id"`
	Requests  int64     `json:"requests"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductSummaryResponse is the product projection nested under a user.
type ProductSummaryResponse struct {
	ID   int64              `json:"id"`
	Name string             `json:"name"`
	Type domain.ProductType `json:"type"`
	SSN  string             `json:"ssn"`
}

// UserDetailResponse is a user with its owned rows.
type UserDetailResponse struct {
	PublicUser
	Keys     []KeySummaryResponse     `json:"keys"`
	Products []ProductSummaryResponse `json:"products"`
}

// NewUserDetailResponse projects a service detail for responses.
func NewUserDetailResponse(detail service.UserDetail) UserDetailResponse {
	keys := make([]KeySummaryResponse, 0, len(detail.Keys))
	for _, k := range detail.Keys {
		keys = append(keys, KeySummaryResponse(k))
	}
	products := make([]ProductSummaryResponse, 0, len(detail.Products))
	for _, p := range detail.Products {
		products = append(products, ProductSummaryResponse(p))
	}
	return UserDetailResponse{
		PublicUser: NewPublicUser(&detail.User),
		Keys:       keys,
		Products:   products,
	}
}

// OwnerResponse is the reduced user projection on owned resources.
type OwnerResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewOwnerResponse projects a repository owner.
func NewOwnerResponse(owner repository.Owner) OwnerResponse {
	return OwnerResponse(owner)
}
