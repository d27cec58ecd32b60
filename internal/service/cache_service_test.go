package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/Igor-Vicente/English.Registration.API/pkg/errors"
)

type mockCacheRepo struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	deleted []string
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *mockCacheRepo) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	n := 0
	for key := range m.data {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.data, key)
			m.deleted = append(m.deleted, key)
			n++
		}
	}
	return n, nil
}

func TestCacheServiceHitMissMetrics(t *testing.T) {
	repo := newMockCacheRepo()
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var out []string
	assert.False(t, svc.Get(ctx, "modules:all", &out))

	svc.Set(ctx, "modules:all", []string{"a"}, 0)
	assert.Equal(t, time.Minute, repo.ttls["modules:all"])

	assert.True(t, svc.Get(ctx, "modules:all", &out))
	assert.Equal(t, []string{"a"}, out)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("miss")))
}

func TestCacheServiceSwallowsBackendErrors(t *testing.T) {
	repo := newMockCacheRepo()
	repo.getErr = errors.New("connection refused")
	svc := NewCacheService(repo, nil, 0, nil, true)

	var out []string
	assert.False(t, svc.Get(context.Background(), "modules:all", &out))
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMockCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil, false)

	svc.Set(context.Background(), "modules:all", []string{"a"}, 0)
	require.Empty(t, repo.data)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Get(context.Background(), "modules:all", &[]string{}))
	nilSvc.Invalidate(context.Background(), "modules:*")
}
