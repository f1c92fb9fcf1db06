package service

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/stockroom/catalog-service/internal/config"
	"github.com/stockroom/catalog-service/internal/events"
	"github.com/stockroom/catalog-service/internal/persistence"
	apperrors "github.com/stockroom/catalog-service/pkg/util"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:           "test-secret",
			AccessTokenTTLHours: 1,
			BcryptCost:          4,
			ProfileCacheTTLSec:  60,
		},
	}
}

func testRedis(t *testing.T) *persistence.Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &persistence.Redis{Client: client}
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) events() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event{}, d.published...)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	domainErr := apperrors.ToDomainError(err)
	if domainErr == nil {
		t.Fatalf("expected error, got nil")
	}
	return domainErr.HTTPStatus
}
