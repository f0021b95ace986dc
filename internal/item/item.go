// Package item holds the static item catalog.
package item

import "strings"

// ItemType classifies an item.
type ItemType string

const (
	ItemTypeConsumable ItemType = "consumable"
	ItemTypeCurrency   ItemType = "currency"
)

// Item is a static item definition.
type Item struct {
	ID   string   `yaml:"-"`
	Name string   `yaml:"name"`
	Type ItemType `yaml:"type"`

	// Heal is the HP restored when a consumable is used (0 = none).
	Heal int `yaml:"heal"`
}

// IsConsumable reports whether using the item has an effect.
func (i *Item) IsConsumable() bool {
	return i.Type == ItemTypeConsumable && i.Heal > 0
}

// Catalog holds all item definitions keyed by ID.
type Catalog struct {
	items map[string]*Item
}

// NewCatalog creates an empty item catalog.
func NewCatalog() *Catalog {
	return &Catalog{items: make(map[string]*Item)}
}

// Add registers an item under its ID.
func (c *Catalog) Add(it *Item) {
	c.items[it.ID] = it
}

// Get returns an item by ID.
func (c *Catalog) Get(id string) (*Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// FindByName returns an item whose display name matches, case-insensitively.
func (c *Catalog) FindByName(name string) (*Item, bool) {
	needle := strings.ToLower(name)
	for _, it := range c.items {
		if strings.ToLower(it.Name) == needle {
			return it, true
		}
	}
	return nil, false
}

// DisplayName returns the item's display name, or the raw ID for
// items not in the catalog.
func (c *Catalog) DisplayName(id string) string {
	if it, ok := c.items[id]; ok {
		return it.Name
	}
	return id
}

// Count returns the number of items in the catalog.
func (c *Catalog) Count() int {
	return len(c.items)
}
