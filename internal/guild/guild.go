// Package guild implements the avatar-group membership tracked alongside
// location: a Guild is simply the set of avatars currently in it.
package guild

import (
	"fmt"
	"sync"

	"github.com/udisondev/vtrace/internal/avatarid"
)

// Guild is a named set of avatars. An avatar is a member iff its current
// guild reference points at this Guild; Guild never holds an owning
// reference back to the Avatar, only its id.
type Guild struct {
	id   string
	name string

	mu      sync.RWMutex
	members map[avatarid.ID]struct{}
}

// New creates an empty Guild with the given raw id ("gid" from the scene
// CSV's guild column); its I/O-trace object id is "GO_<gid>".
func New(gid string) *Guild {
	return &Guild{
		id:      gid,
		name:    gid,
		members: make(map[avatarid.ID]struct{}),
	}
}

// ID returns the guild's raw id (as it appeared in the scene CSV).
func (g *Guild) ID() string { return g.id }

// ObjectID returns the guild's I/O-trace object id, "GO_<gid>".
func (g *Guild) ObjectID() string {
	return fmt.Sprintf("GO_%s", g.id)
}

// Add marks id as a member.
func (g *Guild) Add(id avatarid.ID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members[id] = struct{}{}
}

// Remove marks id as no longer a member.
func (g *Guild) Remove(id avatarid.ID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.members, id)
}

// Has reports whether id is currently a member.
func (g *Guild) Has(id avatarid.ID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.members[id]
	return ok
}

// Members returns the current member ids. Iteration order matches the
// underlying map and is not guaranteed stable across calls.
func (g *Guild) Members() []avatarid.ID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := make([]avatarid.ID, 0, len(g.members))
	for id := range g.members {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the current member count.
func (g *Guild) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.members)
}
