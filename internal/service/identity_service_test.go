package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/catalog-service/internal/domain"
	"github.com/stockroom/catalog-service/internal/events"
	"github.com/stockroom/catalog-service/internal/repository/repositorytest"
	apperrors "github.com/stockroom/catalog-service/pkg/util"
)

func newIdentityService(t *testing.T, store *repositorytest.Store) (*IdentityService, *recordingDispatcher) {
	t.Helper()
	dispatcher := &recordingDispatcher{}
	svc := NewIdentityService(testConfig(), IdentityDependencies{
		UserRepo:   store.Users(),
		Redis:      testRedis(t),
		Dispatcher: dispatcher,
	})
	return svc, dispatcher
}

func TestRegister_IssuesTokenForStoredIdentity(t *testing.T) {
	store := repositorytest.NewStore()
	svc, dispatcher := newIdentityService(t, store)

	user, token, exp, err := svc.Register(context.Background(), "A", "a@x.com", "p1", nil)
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.False(t, exp.IsZero())

	claims, err := svc.TokenManager().Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)

	stored, err := store.Users().GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, stored.ID)
	assert.NotEqual(t, "p1", stored.PasswordHash)

	published := dispatcher.events()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventUserRegistered, published[0].Type)
	assert.Equal(t, user.ID, published[0].UserID)
}

func TestRegister_BlankFields(t *testing.T) {
	svc, _ := newIdentityService(t, repositorytest.NewStore())

	for _, tc := range []struct{ name, email, password string }{
		{"", "a@x.com", "p1"},
		{"A", "", "p1"},
		{"A", "a@x.com", ""},
		{"  ", "a@x.com", "p1"},
	} {
		_, _, _, err := svc.Register(context.Background(), tc.name, tc.email, tc.password, nil)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	}
}

func TestRegister_InvalidRole(t *testing.T) {
	svc, _ := newIdentityService(t, repositorytest.NewStore())

	bogus := domain.Role("superuser")
	_, _, _, err := svc.Register(context.Background(), "A", "a@x.com", "p1", &bogus)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestRegister_AdminRoleCarriedInClaims(t *testing.T) {
	svc, _ := newIdentityService(t, repositorytest.NewStore())

	admin := domain.RoleAdmin
	user, token, _, err := svc.Register(context.Background(), "A", "a@x.com", "p1", &admin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)

	claims, err := svc.TokenManager().Parse(token)
	require.NoError(t, err)
	require.NotNil(t, claims.Role)
	assert.Equal(t, domain.RoleAdmin, *claims.Role)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newIdentityService(t, repositorytest.NewStore())

	_, _, _, err := svc.Register(context.Background(), "A", "a@x.com", "p1", nil)
	require.NoError(t, err)

	_, _, _, err = svc.Register(context.Background(), "B", "a@x.com", "p2", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

func TestRegister_ConstraintIsAuthoritative(t *testing.T) {
	// The pre-check passes (no row visible) but the insert loses the race;
	// the constraint violation must still surface as Conflict.
	store := repositorytest.NewStore()
	svc, _ := newIdentityService(t, store)

	store.ForceUserCreateDuplicate = true
	_, _, _, err := svc.Register(context.Background(), "A", "a@x.com", "p1", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

func TestLogin_Success(t *testing.T) {
	svc, _ := newIdentityService(t, repositorytest.NewStore())

	registered, _, _, err := svc.Register(context.Background(), "A", "a@x.com", "p1", nil)
	require.NoError(t, err)

	user, token, _, err := svc.Login(context.Background(), "a@x.com", "p1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := svc.TokenManager().Parse(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
}

func TestLogin_DoesNotRevealFailureCause(t *testing.T) {
	svc, _ := newIdentityService(t, repositorytest.NewStore())

	_, _, _, err := svc.Register(context.Background(), "A", "a@x.com", "p1", nil)
	require.NoError(t, err)

	_, _, _, unknownErr := svc.Login(context.Background(), "nobody@x.com", "p1")
	require.Error(t, unknownErr)
	_, _, _, wrongErr := svc.Login(context.Background(), "a@x.com", "wrong")
	require.Error(t, wrongErr)

	unknownDomain := apperrors.ToDomainError(unknownErr)
	wrongDomain := apperrors.ToDomainError(wrongErr)
	assert.Equal(t, http.StatusUnauthorized, unknownDomain.HTTPStatus)
	assert.Equal(t, unknownDomain.HTTPStatus, wrongDomain.HTTPStatus)
	assert.Equal(t, unknownDomain.Message, wrongDomain.Message)
}

func TestLogin_BlankFields(t *testing.T) {
	svc, _ := newIdentityService(t, repositorytest.NewStore())

	_, _, _, err := svc.Login(context.Background(), "", "p1")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, _, _, err = svc.Login(context.Background(), "a@x.com", "")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestMe_ReturnsPublicIdentity(t *testing.T) {
	svc, _ := newIdentityService(t, repositorytest.NewStore())

	registered, _, _, err := svc.Register(context.Background(), "A", "a@x.com", "p1", nil)
	require.NoError(t, err)

	user, err := svc.Me(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
}

func TestMe_DeletedIdentity(t *testing.T) {
	svc, _ := newIdentityService(t, repositorytest.NewStore())

	_, err := svc.Me(context.Background(), 12345)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestMe_ServedFromCacheUntilInvalidated(t *testing.T) {
	store := repositorytest.NewStore()
	svc, _ := newIdentityService(t, store)

	registered, _, _, err := svc.Register(context.Background(), "A", "a@x.com", "p1", nil)
	require.NoError(t, err)

	// prime the cache, then make the row disappear underneath it
	_, err = svc.Me(context.Background(), registered.ID)
	require.NoError(t, err)
	store.RemoveUserRow(registered.ID)

	cached, err := svc.Me(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, cached.ID)
	assert.Empty(t, cached.PasswordHash)
}
