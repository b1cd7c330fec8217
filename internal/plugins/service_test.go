package plugins

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeck/agentdeck/internal/console"
	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

type fakeRepo struct {
	byID map[string]Plugin
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[string]Plugin{}}
}

func (f *fakeRepo) List(_ context.Context, _ ListFilters) ([]Plugin, int, error) {
	out := make([]Plugin, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (Plugin, error) {
	p, ok := f.byID[id]
	if !ok {
		return Plugin{}, httpx.ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) Create(_ context.Context, p Plugin) (Plugin, error) {
	for _, existing := range f.byID {
		if existing.Name == p.Name {
			return Plugin{}, httpx.ErrDuplicate
		}
	}
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakeRepo) Update(_ context.Context, p Plugin) (Plugin, error) {
	if _, ok := f.byID[p.ID]; !ok {
		return Plugin{}, httpx.ErrNotFound
	}
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func TestInstallAndToggle(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	plugin, err := svc.Install(context.Background(), InstallPluginInput{
		Name:    "linter",
		Version: "1.2.0",
		Source:  "https://marketplace.example.com/linter",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, plugin.ID)
	assert.True(t, plugin.Enabled)

	toggled, err := svc.Toggle(context.Background(), plugin.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Enabled)
}

func TestInstallRejectsBadSource(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	_, err := svc.Install(context.Background(), InstallPluginInput{
		Name:    "linter",
		Version: "1.2.0",
		Source:  "not-a-url",
	})

	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestInstallDuplicate(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	input := InstallPluginInput{Name: "linter", Version: "1.0.0", Source: "https://m.example.com/linter"}

	_, err := svc.Install(context.Background(), input)
	require.NoError(t, err)
	_, err = svc.Install(context.Background(), input)

	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestSearchMarketplaceWithoutConfig(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	_, _, err := svc.SearchMarketplace(context.Background(), "lint", 10)

	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestMarketplaceSearchCachesResults(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "lint", r.URL.Query().Get("search"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items":       []MarketplaceEntry{{Name: "linter", Version: "1.2.0", Source: "https://m.example.com/linter"}},
			"total_count": 1,
		})
	}))
	t.Cleanup(srv.Close)

	client, err := console.New(srv.URL)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	m := NewMarketplace(client, cache)

	entries, total, err := m.Search(context.Background(), "lint", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, entries, 1)

	_, _, err = m.Search(context.Background(), "lint", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}
