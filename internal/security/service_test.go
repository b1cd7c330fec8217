package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

type fakeRepo struct {
	byID map[string]Scan
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[string]Scan{}}
}

func (f *fakeRepo) List(_ context.Context, _ ListFilters) ([]Scan, int, error) {
	out := make([]Scan, 0, len(f.byID))
	for _, s := range f.byID {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (Scan, error) {
	s, ok := f.byID[id]
	if !ok {
		return Scan{}, httpx.ErrNotFound
	}
	return s, nil
}

func (f *fakeRepo) Create(_ context.Context, s Scan) (Scan, error) {
	f.byID[s.ID] = s
	return s, nil
}

func (f *fakeRepo) MarkRunning(_ context.Context, id string) error {
	s, ok := f.byID[id]
	if !ok {
		return httpx.ErrNotFound
	}
	s.Status = StatusRunning
	f.byID[id] = s
	return nil
}

func (f *fakeRepo) MarkCompleted(_ context.Context, id string, critical, high, medium, low int) error {
	s, ok := f.byID[id]
	if !ok {
		return httpx.ErrNotFound
	}
	s.Status = StatusCompleted
	s.Critical, s.High, s.Medium, s.Low = critical, high, medium, low
	f.byID[id] = s
	return nil
}

func (f *fakeRepo) MarkFailed(_ context.Context, id string) error {
	s, ok := f.byID[id]
	if !ok {
		return httpx.ErrNotFound
	}
	s.Status = StatusFailed
	f.byID[id] = s
	return nil
}

func (f *fakeRepo) Summarize(_ context.Context) (Summary, error) {
	var sum Summary
	for _, s := range f.byID {
		sum.TotalScans++
		if s.Status == StatusCompleted {
			sum.CompletedScans++
			sum.OpenCritical += s.Critical
			sum.OpenHigh += s.High
		}
	}
	return sum, nil
}

type fakeQueue struct {
	enqueued []string
}

func (f *fakeQueue) EnqueueSecurityScan(_ context.Context, scanID string) (string, error) {
	f.enqueued = append(f.enqueued, scanID)
	return "task-7", nil
}

func TestRunQueuesScan(t *testing.T) {
	queue := &fakeQueue{}
	svc := NewService(newFakeRepo(), queue)

	scan, taskID, err := svc.Run(context.Background(), CreateScanInput{Target: "github.com/acme/api"})

	require.NoError(t, err)
	assert.Equal(t, StatusQueued, scan.Status)
	assert.Equal(t, "task-7", taskID)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, scan.ID, queue.enqueued[0])
}

func TestRunRejectsEmptyTarget(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeQueue{})

	_, _, err := svc.Run(context.Background(), CreateScanInput{})

	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestSummaryCountsCompletedOnly(t *testing.T) {
	repo := newFakeRepo()
	queue := &fakeQueue{}
	svc := NewService(repo, queue)

	scan, _, err := svc.Run(context.Background(), CreateScanInput{Target: "github.com/acme/api"})
	require.NoError(t, err)
	_, _, err = svc.Run(context.Background(), CreateScanInput{Target: "github.com/acme/web"})
	require.NoError(t, err)

	require.NoError(t, repo.MarkCompleted(context.Background(), scan.ID, 2, 5, 0, 1))

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalScans)
	assert.Equal(t, 1, summary.CompletedScans)
	assert.Equal(t, 2, summary.OpenCritical)
	assert.Equal(t, 5, summary.OpenHigh)
}
