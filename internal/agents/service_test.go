package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

type fakeRepo struct {
	byID map[string]Agent
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[string]Agent{}}
}

func (f *fakeRepo) List(_ context.Context, _ ListFilters) ([]Agent, int, error) {
	out := make([]Agent, 0, len(f.byID))
	for _, a := range f.byID {
		out = append(out, a)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (Agent, error) {
	a, ok := f.byID[id]
	if !ok {
		return Agent{}, httpx.ErrNotFound
	}
	return a, nil
}

func (f *fakeRepo) Create(_ context.Context, a Agent) (Agent, error) {
	for _, existing := range f.byID {
		if existing.Name == a.Name {
			return Agent{}, httpx.ErrDuplicate
		}
	}
	f.byID[a.ID] = a
	return a, nil
}

func (f *fakeRepo) Update(_ context.Context, a Agent) (Agent, error) {
	if _, ok := f.byID[a.ID]; !ok {
		return Agent{}, httpx.ErrNotFound
	}
	f.byID[a.ID] = a
	return a, nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeQueue struct {
	enqueued []string
}

func (f *fakeQueue) EnqueueAgentRun(_ context.Context, agentID string) (string, error) {
	f.enqueued = append(f.enqueued, agentID)
	return "task-1", nil
}

func TestCreateGeneratesID(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeQueue{})

	agent, err := svc.Create(context.Background(), CreateAgentInput{
		Name:         "reviewer",
		Model:        "sonnet",
		SystemPrompt: "Review pull requests.",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, agent.ID)
	assert.True(t, agent.Enabled)
	assert.NotNil(t, agent.Tools)
}

func TestCreateRejectsMissingFields(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeQueue{})

	_, err := svc.Create(context.Background(), CreateAgentInput{Name: "x"})

	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateDuplicateName(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeQueue{})
	input := CreateAgentInput{Name: "reviewer", Model: "sonnet", SystemPrompt: "p"}

	_, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), input)

	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestUpdateAppliesPartialFields(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeQueue{})
	agent, err := svc.Create(context.Background(), CreateAgentInput{Name: "reviewer", Model: "sonnet", SystemPrompt: "p"})
	require.NoError(t, err)

	name := "renamed"
	updated, err := svc.Update(context.Background(), agent.ID, UpdateAgentInput{Name: &name})

	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, "sonnet", updated.Model)
}

func TestToggleFlipsEnabled(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeQueue{})
	agent, err := svc.Create(context.Background(), CreateAgentInput{Name: "reviewer", Model: "sonnet", SystemPrompt: "p"})
	require.NoError(t, err)

	toggled, err := svc.Toggle(context.Background(), agent.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Enabled)

	toggled, err = svc.Toggle(context.Background(), agent.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Enabled)
}

func TestRunEnqueuesTask(t *testing.T) {
	queue := &fakeQueue{}
	svc := NewService(newFakeRepo(), queue)
	agent, err := svc.Create(context.Background(), CreateAgentInput{Name: "reviewer", Model: "sonnet", SystemPrompt: "p"})
	require.NoError(t, err)

	taskID, err := svc.Run(context.Background(), agent.ID)

	require.NoError(t, err)
	assert.Equal(t, "task-1", taskID)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, agent.ID, queue.enqueued[0])
}

func TestRunRejectsDisabledAgent(t *testing.T) {
	queue := &fakeQueue{}
	svc := NewService(newFakeRepo(), queue)
	disabled := false
	agent, err := svc.Create(context.Background(), CreateAgentInput{Name: "reviewer", Model: "sonnet", SystemPrompt: "p", Enabled: &disabled})
	require.NoError(t, err)

	_, err = svc.Run(context.Background(), agent.ID)

	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Empty(t, queue.enqueued)
}

func TestRunUnknownAgent(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeQueue{})

	_, err := svc.Run(context.Background(), "missing")

	assert.ErrorIs(t, err, httpx.ErrNotFound)
}
