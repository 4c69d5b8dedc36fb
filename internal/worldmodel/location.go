package worldmodel

import (
	"fmt"
	"sync"

	"github.com/udisondev/vtrace/internal/avatarid"
)

// Location is a single grid cell. It is created and owned by its Continent
// for the Continent's lifetime; Zones and Cities hold non-owning
// back-references to it, and it holds a non-owning membership set of the
// avatars currently there. Keying the set by avatarid.ID rather than by
// pointer keeps Location free of any reference back into the avatar arena.
type Location struct {
	continent *Continent
	x, y      int32
	zone      *Zone
	city      *City

	mu      sync.RWMutex
	avatars map[avatarid.ID]struct{}
}

func newLocation(cont *Continent, x, y int32) *Location {
	return &Location{
		continent: cont,
		x:         x,
		y:         y,
		avatars:   make(map[avatarid.ID]struct{}),
	}
}

// X returns the location's x coordinate.
func (l *Location) X() int32 { return l.x }

// Y returns the location's y coordinate.
func (l *Location) Y() int32 { return l.y }

// Continent returns the owning continent.
func (l *Location) Continent() *Continent { return l.continent }

// Zone returns the zone containing this location, or nil if the location
// lies in no zone.
func (l *Location) Zone() *Zone { return l.zone }

// City returns the city containing this location, or nil if the location
// lies in no city.
func (l *Location) City() *City { return l.city }

// ID returns the location's stable id, "LO_<continent-initial>_<x>_<y>".
func (l *Location) ID() string {
	return fmt.Sprintf("LO_%s_%d_%d", l.continent.Initial(), l.x, l.y)
}

// AddAvatar marks id as present at this location.
func (l *Location) AddAvatar(id avatarid.ID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.avatars[id] = struct{}{}
}

// RemoveAvatar marks id as no longer present at this location.
func (l *Location) RemoveAvatar(id avatarid.ID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.avatars, id)
}

// Avatars returns the ids currently present at this location, in no
// particular order. Callers that need a stable order (the trace emitters)
// sort the derived object ids themselves.
func (l *Location) Avatars() []avatarid.ID {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]avatarid.ID, 0, len(l.avatars))
	for id := range l.avatars {
		ids = append(ids, id)
	}
	return ids
}

// ManhattanTo returns the Manhattan distance between l and other, plus the
// per-axis step sequences (each entry +1 or -1) needed to walk from l to
// other one grid cell at a time. Precondition: l and other share a
// continent, and the total distance does not exceed vtime.SecondsInVtime.
func (l *Location) ManhattanTo(other *Location) (dist int, xs, ys []int32, err error) {
	if l.continent != other.continent {
		return 0, nil, nil, fmt.Errorf("worldmodel: ManhattanTo across continents (%s, %s)", l.continent.Name(), other.continent.Name())
	}

	dx := other.x - l.x
	dy := other.y - l.y

	xs = stepsOf(dx)
	ys = stepsOf(dy)

	return len(xs) + len(ys), xs, ys, nil
}

// stepsOf returns a slice of len(|d|) entries, each +1 or -1 matching the
// sign of d, representing one unit step per entry.
func stepsOf(d int32) []int32 {
	n := d
	if n < 0 {
		n = -n
	}
	step := int32(1)
	if d < 0 {
		step = -1
	}

	steps := make([]int32, n)
	for i := range steps {
		steps[i] = step
	}
	return steps
}
