package plugins

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agentdeck/agentdeck/internal/console"
)

const marketplaceCacheTTL = 5 * time.Minute

// MarketplaceSearcher queries the plugin marketplace.
type MarketplaceSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]MarketplaceEntry, int, error)
}

// Marketplace queries the remote marketplace through the console client and
// caches results in Redis. A nil redis client disables caching.
type Marketplace struct {
	listings *console.Collection[MarketplaceEntry]
	cache    *redis.Client
}

// NewMarketplace constructs a marketplace client.
func NewMarketplace(client *console.Client, cache *redis.Client) *Marketplace {
	return &Marketplace{
		listings: console.NewCollection[MarketplaceEntry](client, "plugins"),
		cache:    cache,
	}
}

type cachedSearch struct {
	Entries []MarketplaceEntry `json:"entries"`
	Total   int                `json:"total"`
}

// Search returns marketplace entries matching the query.
func (m *Marketplace) Search(ctx context.Context, query string, limit int) ([]MarketplaceEntry, int, error) {
	if limit <= 0 {
		limit = 25
	}
	key := fmt.Sprintf("marketplace:search:%s:%d", query, limit)

	if m.cache != nil {
		raw, err := m.cache.Get(ctx, key).Bytes()
		if err == nil {
			var hit cachedSearch
			if json.Unmarshal(raw, &hit) == nil {
				return hit.Entries, hit.Total, nil
			}
		}
	}

	page, err := m.listings.List(ctx, console.ListOptions{Search: query, Limit: limit})
	if err != nil {
		return nil, 0, fmt.Errorf("marketplace: search: %w", err)
	}

	if m.cache != nil {
		raw, err := json.Marshal(cachedSearch{Entries: page.Items, Total: page.TotalCount})
		if err == nil {
			// Cache write failures are not worth surfacing to the caller.
			_ = m.cache.Set(ctx, key, raw, marketplaceCacheTTL).Err()
		}
	}
	return page.Items, page.TotalCount, nil
}
