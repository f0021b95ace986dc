// Package world holds the static location catalog: the graph of places a
// player can stand in and the exits between them. The catalog is read-only
// after loading; mutable world conditions live in the persistence layer's
// world-state table.
package world

import (
	"fmt"
	"strings"
)

// Exit connects a location to a neighbour under a travel label.
type Exit struct {
	To    string `yaml:"to" json:"to"`
	Label string `yaml:"label" json:"label"`
}

// Location is a single place in the world.
type Location struct {
	ID          string `yaml:"-" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Exits       []Exit `yaml:"exits" json:"exits"`
}

// FindExit matches a destination against the location's exits,
// case-insensitively, by exit label or by target location ID.
func (l *Location) FindExit(dest string) (Exit, bool) {
	needle := strings.ToLower(strings.TrimSpace(dest))
	for _, e := range l.Exits {
		if strings.ToLower(e.Label) == needle || strings.ToLower(e.To) == needle {
			return e, true
		}
	}
	return Exit{}, false
}

// ExitLabels returns the comma-joined exit labels, or "none".
func (l *Location) ExitLabels() string {
	if len(l.Exits) == 0 {
		return "none"
	}
	labels := make([]string, len(l.Exits))
	for i, e := range l.Exits {
		labels[i] = e.Label
	}
	return strings.Join(labels, ", ")
}

// Catalog is the full location graph.
type Catalog struct {
	locations map[string]*Location
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{locations: make(map[string]*Location)}
}

// AddLocation registers a location under its ID.
func (c *Catalog) AddLocation(loc *Location) {
	c.locations[loc.ID] = loc
}

// Location returns a location by ID.
func (c *Catalog) Location(id string) (*Location, error) {
	loc, ok := c.locations[id]
	if !ok {
		return nil, fmt.Errorf("unknown location: %s", id)
	}
	return loc, nil
}

// Has reports whether a location ID exists.
func (c *Catalog) Has(id string) bool {
	_, ok := c.locations[id]
	return ok
}

// Count returns the number of locations in the catalog.
func (c *Catalog) Count() int {
	return len(c.locations)
}
