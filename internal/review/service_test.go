package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

type fakeQueue struct {
	rechecks []string
}

func (f *fakeQueue) EnqueueReviewRecheck(_ context.Context, reviewID string) (string, error) {
	f.rechecks = append(f.rechecks, reviewID)
	return "task-1", nil
}

type fakeRepo struct {
	byID map[string]PRReview
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[string]PRReview{}}
}

func (f *fakeRepo) List(_ context.Context, filters ListFilters) ([]PRReview, int, error) {
	var out []PRReview
	for _, r := range f.byID {
		if filters.Verdict != "" && r.Verdict != filters.Verdict {
			continue
		}
		out = append(out, r)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (PRReview, error) {
	r, ok := f.byID[id]
	if !ok {
		return PRReview{}, httpx.ErrNotFound
	}
	return r, nil
}

func (f *fakeRepo) Create(_ context.Context, r PRReview) (PRReview, error) {
	for _, existing := range f.byID {
		if existing.Repo == r.Repo && existing.Number == r.Number {
			return PRReview{}, httpx.ErrDuplicate
		}
	}
	f.byID[r.ID] = r
	return r, nil
}

func (f *fakeRepo) SetVerdict(_ context.Context, id string, verdict Verdict, confidence float64, summary string) error {
	r, ok := f.byID[id]
	if !ok {
		return httpx.ErrNotFound
	}
	now := time.Now()
	r.Verdict, r.Confidence, r.Summary, r.ReviewedAt = verdict, confidence, summary, &now
	f.byID[id] = r
	return nil
}

func (f *fakeRepo) ResetVerdict(_ context.Context, id string) error {
	r, ok := f.byID[id]
	if !ok {
		return httpx.ErrNotFound
	}
	r.Verdict, r.Confidence, r.Summary, r.ReviewedAt = VerdictPending, 0, "", nil
	f.byID[id] = r
	return nil
}

func (f *fakeRepo) Stats(_ context.Context) (Stats, error) {
	var s Stats
	for _, r := range f.byID {
		s.Total++
		switch r.Verdict {
		case VerdictPending:
			s.Pending++
		case VerdictApprove:
			s.Approved++
		case VerdictRequestChanges:
			s.ChangesAsked++
		case VerdictComment:
			s.CommentedOnly++
		}
	}
	return s, nil
}

func TestRegisterStartsPending(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeQueue{})

	review, err := svc.Register(context.Background(), CreateReviewInput{
		Repo: "acme/api", Number: 42, Title: "Add rate limiting", Author: "kim",
	})

	require.NoError(t, err)
	assert.Equal(t, VerdictPending, review.Verdict)
	assert.Nil(t, review.ReviewedAt)
}

func TestRegisterDuplicatePR(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeQueue{})
	input := CreateReviewInput{Repo: "acme/api", Number: 42, Title: "t", Author: "kim"}

	_, err := svc.Register(context.Background(), input)
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), input)

	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestRecordVerdictAndRecheck(t *testing.T) {
	queue := &fakeQueue{}
	svc := NewService(newFakeRepo(), queue)
	review, err := svc.Register(context.Background(), CreateReviewInput{Repo: "acme/api", Number: 1, Title: "t", Author: "kim"})
	require.NoError(t, err)

	reviewed, err := svc.RecordVerdict(context.Background(), review.ID, VerdictApprove, 0.92, "LGTM")
	require.NoError(t, err)
	assert.Equal(t, VerdictApprove, reviewed.Verdict)
	assert.NotNil(t, reviewed.ReviewedAt)

	rechecked, taskID, err := svc.Recheck(context.Background(), review.ID)
	require.NoError(t, err)
	assert.Equal(t, VerdictPending, rechecked.Verdict)
	assert.Nil(t, rechecked.ReviewedAt)
	assert.Zero(t, rechecked.Confidence)
	assert.Equal(t, "task-1", taskID)
	require.Len(t, queue.rechecks, 1)
	assert.Equal(t, review.ID, queue.rechecks[0])
}

func TestRecordVerdictValidation(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeQueue{})
	review, err := svc.Register(context.Background(), CreateReviewInput{Repo: "acme/api", Number: 1, Title: "t", Author: "kim"})
	require.NoError(t, err)

	_, err = svc.RecordVerdict(context.Background(), review.ID, "ship_it", 0.5, "")
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.RecordVerdict(context.Background(), review.ID, VerdictApprove, 1.5, "")
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestStats(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeQueue{})
	a, err := svc.Register(context.Background(), CreateReviewInput{Repo: "acme/api", Number: 1, Title: "t", Author: "kim"})
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), CreateReviewInput{Repo: "acme/api", Number: 2, Title: "t", Author: "kim"})
	require.NoError(t, err)

	_, err = svc.RecordVerdict(context.Background(), a.ID, VerdictRequestChanges, 0.7, "needs tests")
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.ChangesAsked)
}
