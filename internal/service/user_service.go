package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/stockroom/catalog-service/internal/auth"
	"github.com/stockroom/catalog-service/internal/config"
	"github.com/stockroom/catalog-service/internal/domain"
	"github.com/stockroom/catalog-service/internal/events"
	"github.com/stockroom/catalog-service/internal/persistence"
	"github.com/stockroom/catalog-service/internal/repository"
	apperrors "github.com/stockroom/catalog-service/pkg/util"
)

// UserDetail is a user together with its owned key and product summaries.
type UserDetail struct {
	User     domain.User
	Keys     []repository.KeySummary
	Products []repository.ProductSummary
}

// UserService implements the user collection endpoints.
type UserService struct {
	users      repository.UserRepository
	keys       repository.KeyRepository
	products   repository.ProductRepository
	cache      *profileCache
	dispatcher events.Dispatcher
	bcryptCost int
}

// UserDependencies encapsulates collaborators for the user service.
type UserDependencies struct {
	UserRepo    repository.UserRepository
	KeyRepo     repository.KeyRepository
	ProductRepo repository.ProductRepository
	Redis       *persistence.Redis
	Dispatcher  events.Dispatcher
}

// NewUserService builds the service.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		keys:       deps.KeyRepo,
		products:   deps.ProductRepo,
		cache:      newProfileCache(deps.Redis, cfg.Auth.ProfileCacheTTLSec),
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// List returns all users with their owned key and product summaries.
func (s *UserService) List(ctx context.Context) ([]UserDetail, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	details := make([]UserDetail, 0, len(users))
	for _, user := range users {
		detail, err := s.attachOwned(ctx, user)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

// Get returns a single user with owned summaries.
func (s *UserService) Get(ctx context.Context, id int64) (*UserDetail, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User")
		}
		return nil, err
	}
	detail, err := s.attachOwned(ctx, *user)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create persists a new account without issuing a token.
func (s *UserService) Create(ctx context.Context, name, email, password string, role *domain.Role) (*domain.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, apperrors.NewValidationError("Fields name, email and password are required", nil)
	}

	userRole := domain.RoleUser
	if role != nil {
		if !domain.ValidRole(*role) {
			return nil, apperrors.NewValidationError("Invalid role. Allowed values: user, admin", nil)
		}
		userRole = *role
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         userRole,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("Email already exists")
		}
		return nil, err
	}
	return user, nil
}

// Update changes the display name. Other fields are immutable through this
// endpoint.
func (s *UserService) Update(ctx context.Context, id int64, name string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User")
		}
		return nil, err
	}

	if strings.TrimSpace(name) != "" {
		user.Name = name
	}
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User")
		}
		return nil, err
	}

	s.cache.invalidate(ctx, id)
	return user, nil
}

// Delete removes the user; the store cascades removal of owned keys and
// products through foreign keys.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("User")
		}
		return err
	}

	s.cache.invalidate(ctx, id)
	s.publish(ctx, events.Event{
		Type:      events.EventUserDeleted,
		UserID:    id,
		Timestamp: time.Now(),
	})
	return nil
}

func (s *UserService) attachOwned(ctx context.Context, user domain.User) (UserDetail, error) {
	keys, err := s.keys.ListByUser(ctx, user.ID)
	if err != nil {
		return UserDetail{}, err
	}
	products, err := s.products.ListByUser(ctx, user.ID)
	if err != nil {
		return UserDetail{}, err
	}
	return UserDetail{User: user, Keys: keys, Products: products}, nil
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, event)
	}
}
