package service

import (
	"context"
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/catalog-service/internal/events"
	"github.com/stockroom/catalog-service/internal/repository/repositorytest"
)

func TestKeyService_Generate(t *testing.T) {
	store := repositorytest.NewStore()
	owner := seedUser(t, store, "A", "a@x.com")
	dispatcher := &recordingDispatcher{}
	svc := NewKeyService(store.Keys(), store.Users(), dispatcher)

	key, err := svc.Generate(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.NotZero(t, key.ID)
	assert.Equal(t, owner.ID, key.UserID)
	assert.Zero(t, key.Requests)

	// 32 random bytes, hex encoded
	assert.Len(t, key.Data, 64)
	_, err = hex.DecodeString(key.Data)
	assert.NoError(t, err)

	published := dispatcher.events()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAPIKeyGenerated, published[0].Type)
}

func TestKeyService_GenerateUniqueMaterial(t *testing.T) {
	store := repositorytest.NewStore()
	owner := seedUser(t, store, "A", "a@x.com")
	svc := NewKeyService(store.Keys(), store.Users(), nil)

	first, err := svc.Generate(context.Background(), owner.ID)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Data, second.Data)
}

func TestKeyService_GenerateUnknownUser(t *testing.T) {
	store := repositorytest.NewStore()
	svc := NewKeyService(store.Keys(), store.Users(), nil)

	_, err := svc.Generate(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestKeyService_GenerateMissingUserID(t *testing.T) {
	store := repositorytest.NewStore()
	svc := NewKeyService(store.Keys(), store.Users(), nil)

	_, err := svc.Generate(context.Background(), 0)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestKeyService_ListWithOwners(t *testing.T) {
	store := repositorytest.NewStore()
	owner := seedUser(t, store, "A", "a@x.com")
	svc := NewKeyService(store.Keys(), store.Users(), nil)

	_, err := svc.Generate(context.Background(), owner.ID)
	require.NoError(t, err)

	rows, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, owner.Name, rows[0].Owner.Name)
}

func TestKeyService_Revoke(t *testing.T) {
	store := repositorytest.NewStore()
	owner := seedUser(t, store, "A", "a@x.com")
	svc := NewKeyService(store.Keys(), store.Users(), nil)

	key, err := svc.Generate(context.Background(), owner.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), key.ID))

	err = svc.Revoke(context.Background(), key.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}
