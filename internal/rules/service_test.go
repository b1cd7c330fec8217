package rules

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

type fakeRepo struct {
	byID map[string]Rule
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[string]Rule{}}
}

func (f *fakeRepo) List(_ context.Context, filters ListFilters) ([]Rule, int, error) {
	var out []Rule
	for _, r := range f.byID {
		if filters.Enabled != nil && r.Enabled != *filters.Enabled {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, len(out), nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (Rule, error) {
	r, ok := f.byID[id]
	if !ok {
		return Rule{}, httpx.ErrNotFound
	}
	return r, nil
}

func (f *fakeRepo) Create(_ context.Context, r Rule) (Rule, error) {
	f.byID[r.ID] = r
	return r, nil
}

func (f *fakeRepo) Update(_ context.Context, r Rule) (Rule, error) {
	if _, ok := f.byID[r.ID]; !ok {
		return Rule{}, httpx.ErrNotFound
	}
	f.byID[r.ID] = r
	return r, nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func TestCreateRejectsMalformedPattern(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Create(context.Background(), CreateRuleInput{Pattern: "[unclosed", Action: ActionDeny})

	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRejectsUnknownAction(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Create(context.Background(), CreateRuleInput{Pattern: "tool:*", Action: "explode"})

	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestMatchHonorsPriorityOrder(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Create(context.Background(), CreateRuleInput{Pattern: "bash:*", Action: ActionDeny, Priority: 0})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateRuleInput{Pattern: "*", Action: ActionAllow, Priority: 10})
	require.NoError(t, err)

	action, err := svc.Match(context.Background(), "bash:rm")
	require.NoError(t, err)
	assert.Equal(t, ActionDeny, action)

	action, err = svc.Match(context.Background(), "read:file")
	require.NoError(t, err)
	assert.Equal(t, ActionAllow, action)
}

func TestMatchSkipsDisabledRules(t *testing.T) {
	svc := NewService(newFakeRepo())
	disabled := false

	_, err := svc.Create(context.Background(), CreateRuleInput{Pattern: "bash:*", Action: ActionDeny, Priority: 0, Enabled: &disabled})
	require.NoError(t, err)

	action, err := svc.Match(context.Background(), "bash:rm")
	require.NoError(t, err)
	assert.Equal(t, ActionAsk, action)
}

func TestMatchDefaultsToAsk(t *testing.T) {
	svc := NewService(newFakeRepo())

	action, err := svc.Match(context.Background(), "anything")

	require.NoError(t, err)
	assert.Equal(t, ActionAsk, action)
}
