// Package pathplan implements the per-avatar path planner: turning a
// (current location, next place) pair into a one-vtime, second-resolution
// schedule of locations.
package pathplan

import (
	"fmt"

	"github.com/udisondev/vtrace/internal/simrand"
	"github.com/udisondev/vtrace/internal/vtime"
	"github.com/udisondev/vtrace/internal/worldmodel"
)

// cityPreStaySeconds is the fixed stay at the start of a within-zone walk
// when the avatar begins inside a city.
const cityPreStaySeconds = 3 * vtime.Minute

// Result is the output of a single Plan call: a FIFO of exactly
// vtime.SecondsInVtime locations (entries may be nil for "offline"), and the
// sparse map of second-offsets at which a new location first appears.
type Result struct {
	Path       []*worldmodel.Location
	LocUpdates map[int]*worldmodel.Location
}

// Plan computes the one-vtime schedule for an avatar currently at cur
// (possibly nil, meaning offline) whose next place for the upcoming vtime is
// next (possibly nil, meaning the avatar goes offline for the vtime).
func Plan(cur *worldmodel.Location, next worldmodel.Place, rng *simrand.Source) (*Result, error) {
	res := &Result{
		LocUpdates: make(map[int]*worldmodel.Location),
	}

	if next == nil {
		res.Path = make([]*worldmodel.Location, vtime.SecondsInVtime)
		return res, nil
	}

	if cur == nil {
		// Just came online: sample a starting point with no "previous
		// location" bias, then continue planning as if it were already
		// current.
		cur = next.RandomLocation(nil, rng)
	}

	last := next.RandomLocation(cur, rng)

	if last == cur {
		// Staying put schedules no system location write: the path is the
		// same cell for the whole vtime and LocUpdates stays empty.
		res.Path = repeat(cur, vtime.SecondsInVtime)
		return res, nil
	}

	curZone := cur.Zone()
	lastZone := last.Zone()
	if curZone == nil || lastZone == nil || !curZone.IsAdjacentTo(lastZone) {
		half := vtime.SecondsInVtime / 2
		res.Path = append(repeat(cur, half), repeat(last, half)...)
		res.LocUpdates[0] = cur
		res.LocUpdates[half] = last
		return res, nil
	}

	return planWalk(cur, last, rng)
}

// planWalk builds the within-zone Manhattan-walk schedule.
func planWalk(cur, last *worldmodel.Location, rng *simrand.Source) (*Result, error) {
	res := &Result{LocUpdates: make(map[int]*worldmodel.Location)}

	remaining := vtime.SecondsInVtime
	offset := 0

	if cur.City() != nil {
		res.Path = append(res.Path, repeat(cur, cityPreStaySeconds)...)
		res.LocUpdates[offset] = cur
		offset += cityPreStaySeconds
		remaining -= cityPreStaySeconds
	}

	d, xs, ys, err := cur.ManhattanTo(last)
	if err != nil {
		return nil, fmt.Errorf("pathplan: %w", err)
	}
	if d == 0 {
		return nil, fmt.Errorf("pathplan: zero-distance walk between distinct locations")
	}

	secondsPerStep := remaining / d
	if secondsPerStep < 1 {
		return nil, fmt.Errorf("pathplan: walk distance %d exceeds remaining budget %d", d, remaining)
	}

	cont := cur.Continent()
	x, y := cur.X(), cur.Y()

	for len(xs) > 0 || len(ys) > 0 {
		var step int32
		vertical := false

		switch {
		case len(ys) == 0:
			vertical = false
		case len(xs) == 0:
			vertical = true
		default:
			vertical = rng.Bool()
		}

		if vertical {
			step, ys = ys[0], ys[1:]
			y += step
		} else {
			step, xs = xs[0], xs[1:]
			x += step
		}

		loc := cont.Location(x, y)
		if loc == nil {
			return nil, fmt.Errorf("pathplan: walk stepped out of bounds to (%d,%d)", x, y)
		}

		res.Path = append(res.Path, repeat(loc, secondsPerStep)...)
		res.LocUpdates[offset] = loc
		offset += secondsPerStep
		remaining -= secondsPerStep
	}

	// Residual padding absorbs any truncation from the integer division,
	// without a further LocUpdates entry.
	if remaining > 0 {
		finalLoc := cont.Location(x, y)
		res.Path = append(res.Path, repeat(finalLoc, remaining)...)
	}

	if len(res.Path) != vtime.SecondsInVtime {
		return nil, fmt.Errorf("pathplan: built path of length %d, want %d", len(res.Path), vtime.SecondsInVtime)
	}

	return res, nil
}

func repeat(loc *worldmodel.Location, n int) []*worldmodel.Location {
	path := make([]*worldmodel.Location, n)
	for i := range path {
		path[i] = loc
	}
	return path
}
