package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/stockroom/catalog-service/internal/domain"
	"github.com/stockroom/catalog-service/internal/events"
	"github.com/stockroom/catalog-service/internal/repository"
	apperrors "github.com/stockroom/catalog-service/pkg/util"
)

const keyMaterialBytes = 32

// KeyService implements API key generation, listing and revocation.
type KeyService struct {
	keys       repository.KeyRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// NewKeyService builds the service.
func NewKeyService(keys repository.KeyRepository, users repository.UserRepository, dispatcher events.Dispatcher) *KeyService {
	return &KeyService{keys: keys, users: users, dispatcher: dispatcher}
}

// Generate creates a new opaque key for the user. The key material is shown
// once in the response and never again.
func (s *KeyService) Generate(ctx context.Context, userID int64) (*domain.APIKey, error) {
	if userID <= 0 {
		return nil, apperrors.NewValidationError("Required field: userId", nil)
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User")
		}
		return nil, err
	}

	material := make([]byte, keyMaterialBytes)
	if _, err := rand.Read(material); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	key := &domain.APIKey{
		Data:   hex.EncodeToString(material),
		UserID: userID,
	}
	if err := s.keys.Create(ctx, key); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:      events.EventAPIKeyGenerated,
			UserID:    userID,
			Timestamp: time.Now(),
			Payload:   events.APIKeyGeneratedPayload{KeyID: key.ID},
		})
	}
	return key, nil
}

// List returns all keys with their owners.
func (s *KeyService) List(ctx context.Context) ([]repository.KeyWithOwner, error) {
	return s.keys.List(ctx)
}

// Revoke deletes a key by id.
func (s *KeyService) Revoke(ctx context.Context, id int64) error {
	if err := s.keys.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Key")
		}
		return err
	}
	return nil
}
