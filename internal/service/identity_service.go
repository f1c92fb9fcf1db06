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

// invalidCredentials is returned for both unknown email and wrong password so
// that login failures cannot be used to enumerate accounts.
const invalidCredentials = "Invalid email or password"

// IdentityService coordinates registration, login and self-lookup flows.
type IdentityService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	cache      *profileCache
	dispatcher events.Dispatcher
	bcryptCost int
}

// IdentityDependencies encapsulates collaborators for the identity service.
type IdentityDependencies struct {
	UserRepo   repository.UserRepository
	Redis      *persistence.Redis
	Dispatcher events.Dispatcher
}

// NewIdentityService builds the service.
func NewIdentityService(cfg config.Config, deps IdentityDependencies) *IdentityService {
	return &IdentityService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLHours),
		cache:      newProfileCache(deps.Redis, cfg.Auth.ProfileCacheTTLSec),
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account and issues a token for it. The email
// pre-check exists only for a friendlier error; the unique constraint on
// insert is the actual guarantee against duplicates.
func (s *IdentityService) Register(ctx context.Context, name, email, password string, role *domain.Role) (*domain.User, string, time.Time, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("Fields name, email and password are required", nil)
	}

	userRole := domain.RoleUser
	if role != nil {
		if !domain.ValidRole(*role) {
			return nil, "", time.Time{}, apperrors.NewValidationError("Invalid role. Allowed values: user, admin", nil)
		}
		userRole = *role
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("Email is already taken")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         userRole,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", time.Time{}, apperrors.NewConflict("Email is already taken")
		}
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.Generate(user.ID, user.Email, &user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventUserRegistered,
		UserID:    user.ID,
		Timestamp: time.Now(),
		Payload:   events.UserRegisteredPayload{Email: user.Email, Role: string(user.Role)},
	})
	return user, token, exp, nil
}

// Login authenticates an account by email and password.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("Fields email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized(invalidCredentials)
		}
		return nil, "", time.Time{}, err
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, "", time.Time{}, apperrors.NewUnauthorized(invalidCredentials)
	}

	token, exp, err := s.tokenMgr.Generate(user.ID, user.Email, &user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// Me returns the public identity for the id attached by the auth middleware.
// A structurally valid token can outlive its account; the lookup fails here.
func (s *IdentityService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	if cached, ok := s.cache.get(ctx, userID); ok {
		return cached, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User")
		}
		return nil, err
	}

	s.cache.set(ctx, user)
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *IdentityService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *IdentityService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, event)
	}
}
