package plugins

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// Service handles plugin business logic.
type Service struct {
	repo        Repository
	marketplace MarketplaceSearcher
	validate    *validator.Validate
}

// NewService builds a Service instance. marketplace may be nil when no
// marketplace is configured.
func NewService(repo Repository, marketplace MarketplaceSearcher) *Service {
	return &Service{repo: repo, marketplace: marketplace, validate: validator.New()}
}

// List returns installed plugins matching the filters plus the unfiltered
// total.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Plugin, int, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one plugin.
func (s *Service) Get(ctx context.Context, id string) (Plugin, error) {
	return s.repo.Get(ctx, id)
}

// Install validates input and records a newly installed plugin.
func (s *Service) Install(ctx context.Context, input InstallPluginInput) (Plugin, error) {
	if err := s.validate.Struct(input); err != nil {
		return Plugin{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}
	return s.repo.Create(ctx, Plugin{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Version:     input.Version,
		Description: input.Description,
		Source:      input.Source,
		Enabled:     enabled,
	})
}

// Uninstall removes a plugin.
func (s *Service) Uninstall(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Toggle flips the enabled flag and returns the stored record.
func (s *Service) Toggle(ctx context.Context, id string) (Plugin, error) {
	plugin, err := s.repo.Get(ctx, id)
	if err != nil {
		return Plugin{}, err
	}
	plugin.Enabled = !plugin.Enabled
	return s.repo.Update(ctx, plugin)
}

// SearchMarketplace queries the marketplace for installable plugins.
func (s *Service) SearchMarketplace(ctx context.Context, query string, limit int) ([]MarketplaceEntry, int, error) {
	if s.marketplace == nil {
		return nil, 0, fmt.Errorf("%w: no marketplace configured", httpx.ErrValidation)
	}
	return s.marketplace.Search(ctx, query, limit)
}
