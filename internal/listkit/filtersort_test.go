package listkit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID      int
	Name    string
	Runs    float64
	Created time.Time
}

func testSchema() *Schema[testRecord] {
	return NewSchema(
		StringField("name", func(r testRecord) string { return r.Name }, true),
		NumberField("runs", func(r testRecord) float64 { return r.Runs }),
		TimeField("created", func(r testRecord) time.Time { return r.Created }),
	)
}

func TestApplyEmptyQueryIsNoOp(t *testing.T) {
	records := []testRecord{{Name: "Alpha"}, {Name: "Beta"}, {Name: "Gamma"}}

	res := Apply(records, FilterState{}, testSchema())

	assert.Len(t, res.Items, len(records))
	assert.Equal(t, 3, res.ResultCount)
	assert.Equal(t, 3, res.TotalCount)
}

func TestApplyCaseInsensitiveSubstring(t *testing.T) {
	records := []testRecord{{Name: "Alpha"}, {Name: "Beta"}}

	res := Apply(records, FilterState{SearchQuery: "al"}, testSchema())

	require.Len(t, res.Items, 1)
	assert.Equal(t, "Alpha", res.Items[0].Name)
	assert.Equal(t, 1, res.ResultCount)
	assert.Equal(t, 2, res.TotalCount)
}

func TestApplyExcludesNonMatching(t *testing.T) {
	records := []testRecord{
		{Name: "code-review"},
		{Name: "Security Scan"},
		{Name: "deploy"},
	}

	res := Apply(records, FilterState{SearchQuery: "SCAN"}, testSchema())

	require.Len(t, res.Items, 1)
	assert.Equal(t, "Security Scan", res.Items[0].Name)
}

func TestApplySortStable(t *testing.T) {
	records := []testRecord{
		{ID: 1, Name: "B"},
		{ID: 2, Name: "B"},
		{ID: 3, Name: "A"},
	}

	res := Apply(records, FilterState{SortField: "name", SortOrder: SortAsc}, testSchema())

	require.Len(t, res.Items, 3)
	assert.Equal(t, 3, res.Items[0].ID)
	// Ties keep insertion order.
	assert.Equal(t, 1, res.Items[1].ID)
	assert.Equal(t, 2, res.Items[2].ID)
}

func TestApplySortDescending(t *testing.T) {
	records := []testRecord{
		{Name: "one", Runs: 1},
		{Name: "three", Runs: 3},
		{Name: "two", Runs: 2},
	}

	res := Apply(records, FilterState{SortField: "runs", SortOrder: SortDesc}, testSchema())

	require.Len(t, res.Items, 3)
	assert.Equal(t, float64(3), res.Items[0].Runs)
	assert.Equal(t, float64(2), res.Items[1].Runs)
	assert.Equal(t, float64(1), res.Items[2].Runs)
}

func TestApplySortChronological(t *testing.T) {
	now := time.Now()
	records := []testRecord{
		{ID: 1, Created: now},
		{ID: 2, Created: now.Add(-time.Hour)},
	}

	res := Apply(records, FilterState{SortField: "created", SortOrder: SortAsc}, testSchema())

	require.Len(t, res.Items, 2)
	assert.Equal(t, 2, res.Items[0].ID)
}

func TestApplyUnknownSortFieldKeepsOrder(t *testing.T) {
	records := []testRecord{{ID: 2}, {ID: 1}}

	res := Apply(records, FilterState{SortField: "bogus"}, testSchema())

	require.Len(t, res.Items, 2)
	assert.Equal(t, 2, res.Items[0].ID)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	records := []testRecord{{ID: 2, Name: "b"}, {ID: 1, Name: "a"}}

	_ = Apply(records, FilterState{SortField: "name", SortOrder: SortAsc}, testSchema())

	assert.Equal(t, 2, records[0].ID)
	assert.Equal(t, 1, records[1].ID)
}

func TestSchemaSortable(t *testing.T) {
	s := testSchema()
	assert.True(t, s.Sortable("name"))
	assert.True(t, s.Sortable("runs"))
	assert.False(t, s.Sortable("nope"))
}
