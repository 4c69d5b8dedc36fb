package worldmodel

import (
	"github.com/udisondev/vtrace/internal/config"
	"github.com/udisondev/vtrace/internal/simrand"
)

// Zone is a named rectangular region on one continent, holding its cities by
// type and its adjacency set (which always includes itself).
type Zone struct {
	name      string
	continent *Continent
	tl, br    Point // half-open [tl, br)

	cities   map[CityType][]*City
	adjacent map[string]struct{} // zone names, includes self

	probs config.Probabilities
}

func newZone(name string, cont *Continent, tl, br Point, probs config.Probabilities) *Zone {
	z := &Zone{
		name:      name,
		continent: cont,
		tl:        tl,
		br:        br,
		cities:    make(map[CityType][]*City),
		adjacent:  make(map[string]struct{}),
		probs:     probs,
	}
	z.adjacent[name] = struct{}{}
	return z
}

// Name returns the zone's name.
func (z *Zone) Name() string { return z.name }

// Continent returns the owning continent.
func (z *Zone) Continent() *Continent { return z.continent }

// Bounds returns the zone's half-open rectangle [tl, br).
func (z *Zone) Bounds() (tl, br Point) { return z.tl, z.br }

// Cities returns the zone's cities of the given type.
func (z *Zone) Cities(t CityType) []*City { return z.cities[t] }

// claimLocations sets the zone back-reference on every location inside the
// zone's rectangle. A location belongs to at most one zone.
func (z *Zone) claimLocations() {
	for x := z.tl.X; x < z.br.X; x++ {
		for y := z.tl.Y; y < z.br.Y; y++ {
			if loc := z.continent.Location(x, y); loc != nil {
				loc.zone = z
			}
		}
	}
}

// AddAdjacent records other as a neighboring zone name. Called from both
// sides during adjacency loading so the relation is always bidirectional.
func (z *Zone) AddAdjacent(name string) { z.adjacent[name] = struct{}{} }

// IsAdjacentTo reports whether other is in z's adjacency set (self always
// is).
func (z *Zone) IsAdjacentTo(other *Zone) bool {
	if other == nil {
		return false
	}
	_, ok := z.adjacent[other.name]
	return ok
}

// addCity registers city under its type and backfills every location in its
// footprint with the city back-reference.
func (z *Zone) addCity(c *City) {
	z.cities[c.cityType] = append(z.cities[c.cityType], c)

	for x := c.tl.X; x < c.br.X; x++ {
		for y := c.tl.Y; y < c.br.Y; y++ {
			loc := z.continent.Location(x, y)
			if loc != nil {
				loc.city = c
			}
		}
	}
}

// RandomLocation samples the end point of the next vtime's path. Branches
// are evaluated top-to-bottom, each independently drawn, falling through on
// miss:
//
//  1. prev is in this zone, inside a city, U < P_SAME_CITY: sample inside
//     prev's city.
//  2. zone has >=1 capital and U < P_CAPITAL: sample inside a random
//     capital.
//  3. zone has >=1 major and U < P_MAJOR_CITY: sample inside a random
//     major.
//  4. zone has >=1 minor and U < P_MINOR_CITY: likewise.
//  5. zone has >=1 instance and U < P_INSTANCE: likewise.
//  6. uniform random point inside the zone rectangle.
//
// Each U is drawn only when its branch is structurally eligible (the zone
// actually has that kind of city): "zone has cities AND U < P" with
// left-to-right short-circuit evaluation.
func (z *Zone) RandomLocation(prev *Location, rng *simrand.Source) *Location {
	if prev != nil && prev.zone == z && prev.city != nil {
		if rng.Float64() < z.probs.SameCity {
			return prev.city.RandomLocation(prev, rng)
		}
	}

	if caps := z.cities[Capital]; len(caps) > 0 {
		if rng.Float64() < z.probs.Capital {
			return caps[rng.IntN(len(caps))].RandomLocation(prev, rng)
		}
	}

	if majors := z.cities[Major]; len(majors) > 0 {
		if rng.Float64() < z.probs.Major {
			return majors[rng.IntN(len(majors))].RandomLocation(prev, rng)
		}
	}

	if minors := z.cities[Minor]; len(minors) > 0 {
		if rng.Float64() < z.probs.Minor {
			return minors[rng.IntN(len(minors))].RandomLocation(prev, rng)
		}
	}

	if instances := z.cities[Instance]; len(instances) > 0 {
		if rng.Float64() < z.probs.Instance {
			return instances[rng.IntN(len(instances))].RandomLocation(prev, rng)
		}
	}

	x := z.tl.X + rng.Int32N(z.br.X-z.tl.X)
	y := z.tl.Y + rng.Int32N(z.br.Y-z.tl.Y)
	return z.continent.Location(x, y)
}
