package catalog

import "storefront-system/internal/domain"

// Catalog is the fixed reference data the storefront sells from. It is loaded
// once at startup and never persisted.
type Catalog struct {
	categories map[string][]domain.CatalogItem
	order      []string // stable category listing order
}

// Default returns the stock catalog.
func Default() *Catalog {
	return New(map[string][]domain.CatalogItem{
		"gun-parts": {
			{Name: "SPRINGS", UnitPrice: 2000},
			{Name: "PIPE PARTS", UnitPrice: 2500},
			{Name: "RIFLE PARTS", UnitPrice: 1000},
			{Name: "SNIPER PARTS", UnitPrice: 1500},
			{Name: "Shotgun parts", UnitPrice: 1000},
			{Name: "Pistol Parts", UnitPrice: 500},
			{Name: "SMG PARTS", UnitPrice: 2000},
		},
		"ores-bars": {
			{Name: "IRON (per locker - 99 bars)", UnitPrice: 49500},
			{Name: "GOLD (per locker - 99 bars)", UnitPrice: 54450},
			{Name: "DIAMOND (per locker - 99 bars)", UnitPrice: 69300},
		},
		"heist-gear": {
			{Name: "Reinforced drill bits", UnitPrice: 7000},
			{Name: "Golden drill bits", UnitPrice: 14000},
			{Name: "Monitor", UnitPrice: 8500},
			{Name: "Mill Saw", UnitPrice: 25000},
			{Name: "Powercores (Normal)", UnitPrice: 2500},
			{Name: "Large Drill", UnitPrice: 35000},
			{Name: "Small Drill", UnitPrice: 30000},
			{Name: "Drill", UnitPrice: 20000},
		},
	}, []string{"gun-parts", "ores-bars", "heist-gear"})
}

func New(categories map[string][]domain.CatalogItem, order []string) *Catalog {
	return &Catalog{categories: categories, order: order}
}

func (c *Catalog) Categories() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// HasCategory reports whether the category exists in the catalog.
func (c *Catalog) HasCategory(category string) bool {
	_, ok := c.categories[category]
	return ok
}

// Items lists the items of a category. Unknown or empty categories yield an
// empty listing, which clears any stale selection downstream.
func (c *Catalog) Items(category string) []domain.CatalogItem {
	items := c.categories[category]
	out := make([]domain.CatalogItem, len(items))
	copy(out, items)
	return out
}

// Lookup resolves one item within a category.
func (c *Catalog) Lookup(category, name string) (domain.CatalogItem, bool) {
	for _, it := range c.categories[category] {
		if it.Name == name {
			return it, true
		}
	}
	return domain.CatalogItem{}, false
}

// Price resolves an item's unit price for display. Lookup failure yields 0;
// the price readout is informational only and never blocks cart actions.
func (c *Catalog) Price(category, name string) int64 {
	it, ok := c.Lookup(category, name)
	if !ok {
		return 0
	}
	return it.UnitPrice
}
