package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-system/internal/domain"
)

var (
	springs = domain.CatalogItem{Name: "SPRINGS", UnitPrice: 2000}
	drill   = domain.CatalogItem{Name: "Drill", UnitPrice: 20000}
)

func TestAddLine_TotalInvariant(t *testing.T) {
	c := New()
	assert.Zero(t, c.Total())

	c.AddLine(springs, 2)
	assert.Equal(t, int64(4000), c.Total())

	c.AddLine(drill, 1)
	assert.Equal(t, int64(24000), c.Total())

	// Total always equals the sum of current line totals.
	var sum int64
	for _, l := range c.Lines() {
		sum += l.LineTotal
	}
	assert.Equal(t, sum, c.Total())
}

func TestAddLine_NoDeduplication(t *testing.T) {
	c := New()
	c.AddLine(springs, 1)
	c.AddLine(springs, 1)
	assert.Equal(t, 2, c.Len())
}

func TestAddLine_QuantityDefaultsToOne(t *testing.T) {
	c := New()
	c.AddLine(springs, 0)
	c.AddLine(drill, -3)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, int64(2000), lines[0].LineTotal)
	assert.Equal(t, 1, lines[1].Quantity)
}

func TestRemoveLine(t *testing.T) {
	c := New()
	c.AddLine(springs, 1)
	c.AddLine(drill, 1)

	c.RemoveLine(0)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "Drill", c.Lines()[0].Name)
	assert.Equal(t, int64(20000), c.Total())

	// Out-of-range removal is a no-op, not an error.
	c.RemoveLine(5)
	c.RemoveLine(-1)
	assert.Equal(t, 1, c.Len())
}

func TestSnapshot_Immutable(t *testing.T) {
	c := New()
	c.AddLine(springs, 2)
	c.AddLine(drill, 1)

	items, total := c.Snapshot()
	require.Len(t, items, 2)
	require.Equal(t, int64(24000), total)

	c.Clear()
	c.AddLine(drill, 4)

	// The snapshot taken before Clear is unaffected.
	assert.Len(t, items, 2)
	assert.Equal(t, "SPRINGS", items[0].Name)
	assert.Equal(t, int64(24000), total)
}
