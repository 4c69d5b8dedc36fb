package worldmodel

import (
	"fmt"

	"github.com/udisondev/vtrace/internal/avatarid"
)

// Continent is a dense 2D grid of Locations plus a named-zone index. It owns
// every Location for the life of the World.
type Continent struct {
	name    string
	initial string
	width   int32
	height  int32

	grid  [][]*Location // grid[x][y]
	zones map[string]*Zone
}

func newContinent(name, initial string, width, height int32) *Continent {
	c := &Continent{
		name:    name,
		initial: initial,
		width:   width,
		height:  height,
		zones:   make(map[string]*Zone),
	}

	c.grid = make([][]*Location, width)
	for x := range c.grid {
		c.grid[x] = make([]*Location, height)
		for y := range c.grid[x] {
			c.grid[x][y] = newLocation(c, int32(x), int32(y))
		}
	}

	return c
}

// Name returns the continent's name.
func (c *Continent) Name() string { return c.name }

// Initial returns the short code used in Location ids, "LO_<initial>_x_y".
func (c *Continent) Initial() string { return c.initial }

// Bounds returns the continent's width and height.
func (c *Continent) Bounds() (width, height int32) { return c.width, c.height }

// Location returns the Location at (x, y) in O(1), or nil if out of bounds.
func (c *Continent) Location(x, y int32) *Location {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return nil
	}
	return c.grid[x][y]
}

// Zone returns the named zone on this continent, or nil.
func (c *Continent) Zone(name string) *Zone { return c.zones[name] }

// Zones returns every zone on this continent.
func (c *Continent) Zones() []*Zone {
	zones := make([]*Zone, 0, len(c.zones))
	for _, z := range c.zones {
		zones = append(zones, z)
	}
	return zones
}

// Reset empties every location's avatar set, used between scene runs.
func (c *Continent) Reset() {
	for x := range c.grid {
		for y := range c.grid[x] {
			loc := c.grid[x][y]
			loc.mu.Lock()
			loc.avatars = make(map[avatarid.ID]struct{})
			loc.mu.Unlock()
		}
	}
}

func (c *Continent) addZone(z *Zone) error {
	if _, exists := c.zones[z.name]; exists {
		return fmt.Errorf("worldmodel: duplicate zone name %q on continent %q", z.name, c.name)
	}
	c.zones[z.name] = z
	return nil
}
