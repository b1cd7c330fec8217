package teams

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

type fakeRepo struct {
	byID map[string]Team
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[string]Team{}}
}

func (f *fakeRepo) List(_ context.Context, _ ListFilters) ([]Team, int, error) {
	out := make([]Team, 0, len(f.byID))
	for _, t := range f.byID {
		out = append(out, t)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (Team, error) {
	t, ok := f.byID[id]
	if !ok {
		return Team{}, httpx.ErrNotFound
	}
	return t, nil
}

func (f *fakeRepo) Create(_ context.Context, t Team) (Team, error) {
	f.byID[t.ID] = t
	return t, nil
}

func (f *fakeRepo) Update(_ context.Context, t Team) (Team, error) {
	if _, ok := f.byID[t.ID]; !ok {
		return Team{}, httpx.ErrNotFound
	}
	f.byID[t.ID] = t
	return t, nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func TestCreateRequiresLeadMembership(t *testing.T) {
	svc := NewService(newFakeRepo())
	lead := uuid.NewString()
	other := uuid.NewString()

	_, err := svc.Create(context.Background(), CreateTeamInput{
		Name:        "review-squad",
		LeadAgentID: lead,
		Members:     []MemberInput{{AgentID: other}},
	})

	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRejectsDuplicateMembers(t *testing.T) {
	svc := NewService(newFakeRepo())
	lead := uuid.NewString()

	_, err := svc.Create(context.Background(), CreateTeamInput{
		Name:        "review-squad",
		LeadAgentID: lead,
		Members:     []MemberInput{{AgentID: lead}, {AgentID: lead}},
	})

	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateAndUpdateMembers(t *testing.T) {
	svc := NewService(newFakeRepo())
	lead := uuid.NewString()
	second := uuid.NewString()

	team, err := svc.Create(context.Background(), CreateTeamInput{
		Name:        "review-squad",
		LeadAgentID: lead,
		Members:     []MemberInput{{AgentID: lead, Role: "lead"}},
	})
	require.NoError(t, err)
	require.Len(t, team.Members, 1)

	members := []MemberInput{{AgentID: lead, Role: "lead"}, {AgentID: second, Role: "reviewer"}}
	updated, err := svc.Update(context.Background(), team.ID, UpdateTeamInput{Members: &members})
	require.NoError(t, err)
	assert.Len(t, updated.Members, 2)
}

func TestUpdateCannotOrphanLead(t *testing.T) {
	svc := NewService(newFakeRepo())
	lead := uuid.NewString()
	second := uuid.NewString()

	team, err := svc.Create(context.Background(), CreateTeamInput{
		Name:        "review-squad",
		LeadAgentID: lead,
		Members:     []MemberInput{{AgentID: lead}},
	})
	require.NoError(t, err)

	members := []MemberInput{{AgentID: second}}
	_, err = svc.Update(context.Background(), team.ID, UpdateTeamInput{Members: &members})

	assert.ErrorIs(t, err, httpx.ErrValidation)
}
