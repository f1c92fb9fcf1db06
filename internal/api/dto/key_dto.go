package dto

import (
	"time"

	"github.com/stockroom/catalog-service/internal/domain"
	"github.com/stockroom/catalog-service/internal/repository"
)

// GenerateKeyRequest payload.
type GenerateKeyRequest struct {
	UserID int64 `json:"userId"`
}

// GeneratedKeyResponse is the one-time response carrying the key material.
type GeneratedKeyResponse struct {
	ID       int64  `json:"id"`
	Token    string `json:"token"`
	UserID   int64  `json:"userId"`
	Requests int64  `json:"requests"`
}

// NewGeneratedKeyResponse projects a freshly generated key.
func NewGeneratedKeyResponse(key *domain.APIKey) GeneratedKeyResponse {
	return GeneratedKeyResponse{
		ID:       key.ID,
		Token:    key.Data,
		UserID:   key.UserID,
		Requests: key.Requests,
	}
}

// KeyResponse is the listing projection; the key material is omitted.
type KeyResponse struct {
	ID        int64          `json:"id"`
	Requests  int64          `json:"requests"`
	UserID    int64          `json:"userId"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	User      *OwnerResponse `json:"user,omitempty"`
}

// NewKeyResponse projects a key and its owner for listings.
func NewKeyResponse(row repository.KeyWithOwner) KeyResponse {
	owner := NewOwnerResponse(row.Owner)
	return KeyResponse{
		ID:        row.ID,
		Requests:  row.Requests,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		User:      &owner,
	}
}
