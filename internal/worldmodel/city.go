package worldmodel

import "github.com/udisondev/vtrace/internal/simrand"

// CityType is the fixed footprint category of a City.
type CityType int

const (
	Minor CityType = iota
	Major
	Capital
	Instance
)

func (t CityType) String() string {
	switch t {
	case Minor:
		return "minor city"
	case Major:
		return "major city"
	case Capital:
		return "capital"
	case Instance:
		return "instance"
	default:
		return "unknown"
	}
}

// City is a named region with a fixed-footprint rectangle, clipped to its
// owning zone's bounds. Every Location inside the footprint has its city
// back-reference set at World construction.
type City struct {
	name     string
	cityType CityType
	zone     *Zone
	tl, br   Point // half-open [tl, br)
}

// Name returns the city's name; may be "NO NAME", in which case the city is
// excluded from World's named-city index but still occupies its footprint
// and is addressable via its Zone.
func (c *City) Name() string { return c.name }

// Type returns the city's footprint category.
func (c *City) Type() CityType { return c.cityType }

// Zone returns the owning zone.
func (c *City) Zone() *Zone { return c.zone }

// Bounds returns the city's half-open rectangle [tl, br).
func (c *City) Bounds() (tl, br Point) { return c.tl, c.br }

// Continent returns the continent the city's zone lies on.
func (c *City) Continent() *Continent { return c.zone.Continent() }

// RandomLocation samples a location uniformly inside the city's footprint.
// prev is accepted to satisfy the Place interface but is unused: City
// sampling is always uniform and carries no "same place" bias.
func (c *City) RandomLocation(prev *Location, rng *simrand.Source) *Location {
	x := c.tl.X + rng.Int32N(c.br.X-c.tl.X)
	y := c.tl.Y + rng.Int32N(c.br.Y-c.tl.Y)
	return c.zone.continent.Location(x, y)
}
