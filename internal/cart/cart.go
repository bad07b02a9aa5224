package cart

import "storefront-system/internal/domain"

// Cart accumulates line items for a single identity session. It is exclusive
// to that session and discarded once an order is created from it.
type Cart struct {
	lines []domain.CartLine
}

func New() *Cart { return &Cart{} }

// AddLine appends a line for quantity units of the item. There is no
// de-duplication: adding the same item twice yields two lines. Quantities
// below 1 default to 1.
func (c *Cart) AddLine(item domain.CatalogItem, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	c.lines = append(c.lines, domain.CartLine{
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Quantity:  quantity,
		LineTotal: item.UnitPrice * int64(quantity),
	})
}

// RemoveLine drops the line at index. Out-of-range indexes are a no-op.
func (c *Cart) RemoveLine(index int) {
	if index < 0 || index >= len(c.lines) {
		return
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
}

func (c *Cart) Len() int    { return len(c.lines) }
func (c *Cart) Empty() bool { return len(c.lines) == 0 }

// Total is the sum of the current lines' line totals.
func (c *Cart) Total() int64 {
	var sum int64
	for _, l := range c.lines {
		sum += l.LineTotal
	}
	return sum
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Snapshot copies the cart into an immutable order payload. Later cart
// mutations do not affect the returned slice.
func (c *Cart) Snapshot() (items []domain.CartLine, total int64) {
	return c.Lines(), c.Total()
}

func (c *Cart) Clear() { c.lines = nil }
