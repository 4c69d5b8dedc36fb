package worldmodel

import "github.com/udisondev/vtrace/internal/simrand"

// Place is the abstract location a scene CSV row names: either a Zone or a
// named City.
type Place interface {
	Continent() *Continent
	RandomLocation(prev *Location, rng *simrand.Source) *Location
}

var (
	_ Place = (*Zone)(nil)
	_ Place = (*City)(nil)
)
