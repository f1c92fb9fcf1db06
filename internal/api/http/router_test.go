package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/stockroom/catalog-service/internal/api/http"
	"github.com/stockroom/catalog-service/internal/api/http/handlers"
	"github.com/stockroom/catalog-service/internal/auth"
	"github.com/stockroom/catalog-service/internal/config"
	"github.com/stockroom/catalog-service/internal/observability"
	"github.com/stockroom/catalog-service/internal/persistence"
	"github.com/stockroom/catalog-service/internal/repository/repositorytest"
	"github.com/stockroom/catalog-service/internal/service"
)

type testEnv struct {
	app      *fiber.App
	store    *repositorytest.Store
	identity *service.IdentityService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:           "test-secret",
			AccessTokenTTLHours: 1,
			BcryptCost:          4,
			ProfileCacheTTLSec:  60,
		},
	}

	store := repositorytest.NewStore()
	identityService := service.NewIdentityService(cfg, service.IdentityDependencies{
		UserRepo: store.Users(),
	})
	userService := service.NewUserService(cfg, service.UserDependencies{
		UserRepo:    store.Users(),
		KeyRepo:     store.Keys(),
		ProductRepo: store.Products(),
	})
	productService := service.NewProductService(store.Products())
	keyService := service.NewKeyService(store.Keys(), store.Users(), nil)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(identityService),
		Users:          handlers.NewUsersHandler(userService),
		Products:       handlers.NewProductsHandler(productService),
		Keys:           handlers.NewKeysHandler(keyService),
		AuthMiddleware: auth.NewAuthMiddleware(identityService.TokenManager()),
	})

	return &testEnv{app: app, store: store, identity: identityService}
}

func (env *testEnv) do(t *testing.T, method, path, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.app.Test(req)
	require.NoError(t, err)

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func (env *testEnv) register(t *testing.T, name, email, password string) string {
	t.Helper()
	resp, body := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterLoginMeFlow(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "A", "email": "a@x.com", "password": "p1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	user := body["user"].(map[string]any)
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")

	resp, _ = env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "A", "email": "a@x.com", "password": "p1",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := body["user"].(map[string]any)
	assert.Equal(t, user["id"], me["id"])
}

func TestRegister_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "a@x.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestLogin_GenericFailure(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "A", "a@x.com", "p1")

	resp, wrongBody := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, unknownBody := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "nobody@x.com", "password": "p1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	assert.Equal(t, wrongBody["message"], unknownBody["message"])
}

func TestMe_StatusPerTokenState(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "A", "a@x.com", "p1")

	// no header
	resp, _ := env.do(t, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// tampered / wrong secret
	foreign := auth.NewTokenManager("other-secret", 1)
	badToken, _, err := foreign.Generate(1, "a@x.com", nil)
	require.NoError(t, err)
	resp, _ = env.do(t, http.MethodGet, "/auth/me", badToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestMe_DeletedIdentity(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "A", "a@x.com", "p1")

	claims, err := env.identity.TokenManager().Parse(token)
	require.NoError(t, err)
	env.store.RemoveUserRow(claims.UserID)

	resp, _ := env.do(t, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProducts_CRUD(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "A", "a@x.com", "p1")

	// unauthenticated access is rejected before the handler runs
	resp, _ := env.do(t, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/products", token, map[string]string{
		"type": "Electronics", "name": "MacBook Pro", "ssn": "SN-999-2024",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := body["data"].(map[string]any)
	productID := created["id"]

	resp, _ = env.do(t, http.MethodPost, "/api/products", token, map[string]string{
		"type": "Electronics", "name": "Another", "ssn": "SN-999-2024",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/products", token, map[string]string{
		"type": "Vehicles", "name": "Car", "ssn": "SN-1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/products", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["data"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, productID, item["id"])
	owner := item["user"].(map[string]any)
	assert.Equal(t, "A", owner["name"])
}

func TestKeys_GenerateWithoutAuth(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "A", "a@x.com", "p1")

	claims, err := env.identity.TokenManager().Parse(token)
	require.NoError(t, err)

	// key generation sits outside the bearer gate
	resp, body := env.do(t, http.MethodPost, "/api/keys/generate", "", map[string]any{
		"userId": claims.UserID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]any)
	material := data["token"].(string)
	assert.Len(t, material, 64)

	// unknown owner
	resp, _ = env.do(t, http.MethodPost, "/api/keys/generate", "", map[string]any{
		"userId": 9999,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// listing requires auth and omits key material
	resp, _ = env.do(t, http.MethodGet, "/api/keys", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/keys", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["data"].([]any)
	require.Len(t, items, 1)
	listed := items[0].(map[string]any)
	assert.NotContains(t, listed, "token")
	assert.NotContains(t, listed, "data")
}

func TestUsers_DeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "A", "a@x.com", "p1")

	claims, err := env.identity.TokenManager().Parse(token)
	require.NoError(t, err)

	resp, body := env.do(t, http.MethodPost, "/api/products", token, map[string]string{
		"type": "Furniture", "name": "Desk", "ssn": "SN-7",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	productID := int64(body["data"].(map[string]any)["id"].(float64))

	// second account to keep a valid token for follow-up requests
	otherToken := env.register(t, "B", "b@x.com", "p2")

	resp, _ = env.do(t, http.MethodDelete, "/api/users/"+strconv.FormatInt(claims.UserID, 10), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/products/"+strconv.FormatInt(productID, 10), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
