package listkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPagerGoToPageBounds(t *testing.T) {
	p := NewPager(25)
	p.SetTotal(10)

	assert.Equal(t, 1, p.TotalPages())
	assert.False(t, p.GoToPage(2))
	assert.Equal(t, 1, p.Page())
	assert.False(t, p.GoToPage(0))
	assert.Equal(t, 1, p.Page())
}

func TestPagerGoToPageValid(t *testing.T) {
	p := NewPager(10)
	p.SetTotal(35)

	assert.Equal(t, 4, p.TotalPages())
	assert.True(t, p.GoToPage(3))
	assert.Equal(t, 3, p.Page())
	assert.Equal(t, 20, p.Offset())
}

func TestPagerSetPageSizeResetsToFirstPage(t *testing.T) {
	p := NewPager(10)
	p.SetTotal(100)
	p.GoToPage(3)

	assert.True(t, p.SetPageSize(10)) // page changes back to 1 even for same size
	assert.Equal(t, 1, p.Page())

	p.GoToPage(5)
	assert.True(t, p.SetPageSize(25))
	assert.Equal(t, 1, p.Page())
	assert.Equal(t, 25, p.PageSize())
}

func TestPagerDisallowedSizeFallsBack(t *testing.T) {
	p := NewPager(7)
	assert.Equal(t, DefaultPageSizes[0], p.PageSize())
}

func TestPagerResetToFirstPage(t *testing.T) {
	p := NewPager(10)
	p.SetTotal(100)
	p.GoToPage(7)

	assert.True(t, p.ResetToFirstPage())
	assert.Equal(t, 1, p.Page())
	assert.False(t, p.ResetToFirstPage())
}

func TestPagerSetTotalClampsPage(t *testing.T) {
	p := NewPager(10)
	p.SetTotal(100)
	p.GoToPage(10)

	// Collection shrank while navigated deep in it.
	p.SetTotal(15)
	assert.Equal(t, 2, p.TotalPages())
	assert.Equal(t, 2, p.Page())
}

func TestPagerRangeLabels(t *testing.T) {
	p := NewPager(10)
	p.SetTotal(35)
	p.GoToPage(4)

	assert.Equal(t, 31, p.RangeStart())
	assert.Equal(t, 35, p.RangeEnd())
	assert.Equal(t, "Showing 31-35 of 35", p.RangeLabel())
	assert.False(t, p.IsFirstPage())
	assert.True(t, p.IsLastPage())
}

func TestPagerEmptyCollection(t *testing.T) {
	p := NewPager(10)
	p.SetTotal(0)

	assert.Equal(t, 1, p.TotalPages())
	assert.Equal(t, 0, p.RangeStart())
	assert.Equal(t, 0, p.RangeEnd())
	assert.True(t, p.IsFirstPage())
	assert.True(t, p.IsLastPage())
}

func TestPagerSnapshotReadsOnValue(t *testing.T) {
	p := NewPager(10)
	p.SetTotal(42)
	p.GoToPage(2)

	// A copied snapshot answers reads without the original pointer and is
	// detached from later transitions.
	snap := *p
	assert.Equal(t, 2, snap.Page())
	assert.Equal(t, 42, snap.Total())
	assert.Equal(t, 10, snap.Offset())
	assert.Equal(t, 5, snap.TotalPages())
	assert.Equal(t, "Showing 11-20 of 42", snap.RangeLabel())

	p.GoToPage(3)
	assert.Equal(t, 2, snap.Page())
	assert.Equal(t, 3, p.Page())
}
