// Package avatar implements the per-avatar state machine: its current
// location and guild, its place/guild Change Logs, its pending future path,
// and the per-tick read/write lines it contributes to the I/O trace.
package avatar

import (
	"fmt"
	"sort"

	"github.com/udisondev/vtrace/internal/avatarid"
	"github.com/udisondev/vtrace/internal/changelog"
	"github.com/udisondev/vtrace/internal/guild"
	"github.com/udisondev/vtrace/internal/pathplan"
	"github.com/udisondev/vtrace/internal/simrand"
	"github.com/udisondev/vtrace/internal/vtime"
	"github.com/udisondev/vtrace/internal/worldmodel"
)

// Avatar owns its current location and guild, the change logs that drive
// them, its pending future path, and the transitions produced at the last
// vtime boundary. It holds no owning reference into Location or Guild:
// membership is tracked there by avatarid.ID.
type Avatar struct {
	id avatarid.ID

	placeLog *changelog.Log[worldmodel.Place]
	guildLog *changelog.Log[*guild.Guild]

	location *worldmodel.Location
	curGuild *guild.Guild

	futurePath   []*worldmodel.Location
	locUpdates   map[int]*worldmodel.Location
	guildUpdates []*guild.Guild

	clock int64
}

// New creates an Avatar with the given id and place/guild change logs. The
// avatar starts with clock == -1, no location, and no guild, matching the
// real-time clock's pre-start state.
func New(id avatarid.ID, placeLog *changelog.Log[worldmodel.Place], guildLog *changelog.Log[*guild.Guild]) *Avatar {
	return &Avatar{
		id:       id,
		placeLog: placeLog,
		guildLog: guildLog,
		clock:    -1,
	}
}

// ID returns the avatar's raw id.
func (a *Avatar) ID() avatarid.ID { return a.id }

// Clock returns the avatar's internal clock, which equals the Simulator
// clock once Step returns.
func (a *Avatar) Clock() int64 { return a.clock }

// Location returns the avatar's current location, or nil if offline.
func (a *Avatar) Location() *worldmodel.Location { return a.location }

// Guild returns the avatar's current guild, or nil if unaffiliated.
func (a *Avatar) Guild() *guild.Guild { return a.curGuild }

// LocUpdates returns the offset→Location breakpoints produced by the most
// recent vtime-boundary path-plan.
func (a *Avatar) LocUpdates() map[int]*worldmodel.Location { return a.locUpdates }

// GuildUpdates returns the guild transitions (old side, then new side, when
// they differ) produced at the most recent vtime boundary.
func (a *Avatar) GuildUpdates() []*guild.Guild { return a.guildUpdates }

// Step advances the avatar by one second: at a vtime boundary (an empty
// future path) it advances both Change Logs, updates guild membership,
// re-plans the path, then always pops the path head and applies it as the
// new location. Precondition: (clock+1)/SecondsInVtime == placeLog.VClock()+1
// == guildLog.VClock()+1 when a boundary is about to be processed.
func (a *Avatar) Step(rng *simrand.Source) error {
	if len(a.futurePath) == 0 {
		if err := a.checkBoundaryPrecondition(); err != nil {
			return err
		}
		a.advanceGuild()

		place := a.placeLog.Advance()

		result, err := pathplan.Plan(a.location, place, rng)
		if err != nil {
			return fmt.Errorf("avatar %s: path planning: %w", a.id, err)
		}
		a.futurePath = result.Path
		a.locUpdates = result.LocUpdates
	}

	head := a.futurePath[0]
	a.futurePath = a.futurePath[1:]
	a.setLocation(head)
	a.clock++

	return nil
}

func (a *Avatar) checkBoundaryPrecondition() error {
	want := (a.clock + 1) / vtime.SecondsInVtime
	if want != a.placeLog.VClock()+1 {
		return fmt.Errorf("avatar %s: place log vclock desync: want %d, have %d", a.id, want-1, a.placeLog.VClock())
	}
	if want != a.guildLog.VClock()+1 {
		return fmt.Errorf("avatar %s: guild log vclock desync: want %d, have %d", a.id, want-1, a.guildLog.VClock())
	}
	return nil
}

// advanceGuild clears the prior boundary's transitions, advances the guild
// change log, and, if membership changed, updates both guilds' member sets
// and records the transitions (old side, new side).
func (a *Avatar) advanceGuild() {
	a.guildUpdates = nil

	old := a.curGuild
	next := a.guildLog.Advance()
	if next == old {
		return
	}

	if old != nil {
		old.Remove(a.id)
		a.guildUpdates = append(a.guildUpdates, old)
	}
	a.curGuild = next
	if next != nil {
		next.Add(a.id)
		a.guildUpdates = append(a.guildUpdates, next)
	}
}

// setLocation applies loc as the avatar's new current location, updating
// the old and new Location's avatar membership sets if it changed.
func (a *Avatar) setLocation(loc *worldmodel.Location) {
	if loc == a.location {
		return
	}
	if a.location != nil {
		a.location.RemoveAvatar(a.id)
	}
	a.location = loc
	if loc != nil {
		loc.AddAvatar(a.id)
	}
}

// GenerateIO returns this avatar's read/write lines for the current second:
// one per object in {current_location} ∪ current_location.avatars ∪
// ({current_guild} ∪ current_guild.members), the avatar's own object id
// tagged WRITE (when includeWrites) and every other object tagged READ.
// Lines are ordered by object id so that identically-seeded runs emit
// byte-identical traces.
func (a *Avatar) GenerateIO(includeWrites bool) []Line {
	if a.location == nil {
		return nil
	}

	objects := make(map[string]struct{})
	objects[a.location.ID()] = struct{}{}
	for _, id := range a.location.Avatars() {
		objects[id.ObjectID()] = struct{}{}
	}
	if a.curGuild != nil {
		objects[a.curGuild.ObjectID()] = struct{}{}
		for _, id := range a.curGuild.Members() {
			objects[id.ObjectID()] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(objects))
	for obj := range objects {
		sorted = append(sorted, obj)
	}
	sort.Strings(sorted)

	self := a.id.ObjectID()
	lines := make([]Line, 0, len(sorted))
	for _, obj := range sorted {
		op := OpRead
		if includeWrites && obj == self {
			op = OpWrite
		}
		lines = append(lines, Line{
			Device:   a.id.Device(),
			Clock:    a.clock,
			ObjectID: obj,
			Op:       op,
		})
	}
	return lines
}

// Op is an I/O trace operation.
type Op string

const (
	OpRead  Op = "READ"
	OpWrite Op = "WRITE"
)

// Line is one emitted I/O trace record.
type Line struct {
	Device   string
	Clock    int64
	ObjectID string
	Op       Op
}
