// Package simulator drives a single scene: it loads the scene CSV into
// per-avatar change logs, steps every avatar each second, merges their
// updates into the boundary-relative system write set, and writes the
// segmented I/O trace.
package simulator

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/udisondev/vtrace/internal/avatar"
	"github.com/udisondev/vtrace/internal/avatarid"
	"github.com/udisondev/vtrace/internal/config"
	"github.com/udisondev/vtrace/internal/guild"
	"github.com/udisondev/vtrace/internal/simrand"
	"github.com/udisondev/vtrace/internal/vtime"
	"github.com/udisondev/vtrace/internal/worldmodel"
)

// Simulator runs one scene to completion. It is strictly single-threaded:
// all shared state (the World's Location sets, Guild member sets, the PRNG,
// output buffers) is touched only from the goroutine driving
// Step/GenerateIO. Independent Simulators share nothing and may run
// concurrently, each against its own World.
type Simulator struct {
	number int
	cfg    config.Config
	world  *worldmodel.World

	order   []avatarid.ID
	avatars map[avatarid.ID]*avatar.Avatar
	guilds  map[string]*guild.Guild

	totalVtime    int64
	actualMinutes int64
	truncated     bool

	rng   *simrand.Source
	clock int64

	// locUpdates maps a real-time second to the set of Location objects
	// first reached at that second by any avatar during the vtime boundary
	// that scheduled it.
	locUpdates map[int64]map[string]*worldmodel.Location
	// guildWrites maps a boundary's real-time second to the guilds selected
	// for the system write set at that boundary.
	guildWrites map[int64][]*guild.Guild
}

// New constructs a Simulator for the given scene number and scene CSV path,
// against world. Reset must be called before the first Step.
func New(cfg config.Config, world *worldmodel.World, number int, scenePath string) (*Simulator, error) {
	rows, err := loadSceneCSV(scenePath)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("simulator: scene %s has no rows", scenePath)
	}

	var maxVtime int64
	for _, row := range rows {
		if row.vtime > maxVtime {
			maxVtime = row.vtime
		}
	}

	sceneMinutes := (maxVtime + 1) * vtime.MinutesInVtime
	actualMinutes := sceneMinutes
	truncated := false
	if cfg.MinuteLimit > 0 {
		if int64(cfg.MinuteLimit) > sceneMinutes {
			slog.Warn("minute limit is longer than the scene, using scene length",
				"scene", number, "limit_minutes", cfg.MinuteLimit, "scene_minutes", sceneMinutes)
		}
		if int64(cfg.MinuteLimit) < sceneMinutes {
			actualMinutes = int64(cfg.MinuteLimit)
			truncated = true
		}
	}
	if actualMinutes <= 0 {
		return nil, fmt.Errorf("simulator: scene %s: configured minute limit leaves nothing to run", scenePath)
	}

	// Rows past the clipped run never influence it: an avatar or guild that
	// first appears beyond the limit must not exist at all, or it would shift
	// the iteration order and the guild write-probability denominator.
	totalVtime := (actualMinutes-1)/vtime.MinutesInVtime + 1
	kept := rows[:0]
	for _, row := range rows {
		if row.vtime < totalVtime {
			kept = append(kept, row)
		}
	}

	order, avatars, guilds, err := buildScene(world, scenePath, kept)
	if err != nil {
		return nil, err
	}

	return &Simulator{
		number:        number,
		cfg:           cfg,
		world:         world,
		order:         order,
		avatars:       avatars,
		guilds:        guilds,
		totalVtime:    totalVtime,
		actualMinutes: actualMinutes,
		truncated:     truncated,
	}, nil
}

// Truncated reports whether the scene was clipped by the configured minute
// limit.
func (s *Simulator) Truncated() bool { return s.truncated }

// TotalVtime returns the scene's vtime count after any minute-limit clipping.
func (s *Simulator) TotalVtime() int64 { return s.totalVtime }

// Reset seeds the per-scene PRNG, clears the World's per-location avatar
// sets, and sets the simulator clock to -1.
func (s *Simulator) Reset() {
	seed := s.cfg.Seed
	if seed == 0 {
		seed = int64(s.number)
	}
	s.rng = simrand.New(seed)
	s.world.Reset()
	s.clock = -1
	s.locUpdates = make(map[int64]map[string]*worldmodel.Location)
	s.guildWrites = make(map[int64][]*guild.Guild)
}

// Step advances every avatar by one second, in stable insertion order, then
// the simulator clock. If the new clock opens a vtime boundary, it merges
// the boundary's location updates and samples its guild write set.
func (s *Simulator) Step() error {
	for _, id := range s.order {
		if err := s.avatars[id].Step(s.rng); err != nil {
			return fmt.Errorf("simulator: scene %d: %w", s.number, err)
		}
	}
	s.clock++

	if s.clock%vtime.SecondsInVtime == 0 {
		// The previous boundary's schedule has been fully consumed; start the
		// new vtime's write schedule from scratch.
		s.locUpdates = make(map[int64]map[string]*worldmodel.Location)
		s.guildWrites = make(map[int64][]*guild.Guild)
		s.mergeLocUpdates()
		s.sampleGuildWrites()
	}

	return nil
}

func (s *Simulator) mergeLocUpdates() {
	for _, id := range s.order {
		for offset, loc := range s.avatars[id].LocUpdates() {
			key := s.clock + int64(offset)
			bucket := s.locUpdates[key]
			if bucket == nil {
				bucket = make(map[string]*worldmodel.Location)
				s.locUpdates[key] = bucket
			}
			bucket[loc.ID()] = loc
		}
	}
}

// sampleGuildWrites builds the boundary's guild write set: for every avatar
// (in order), for every guild transition it produced this boundary, include
// the guild with probability |members|/|all avatars|, or unconditionally at
// the scene's very first boundary (clock 0).
func (s *Simulator) sampleGuildWrites() {
	total := len(s.order)
	if total == 0 {
		return
	}

	var set []*guild.Guild
	included := make(map[string]bool)

	for _, id := range s.order {
		for _, g := range s.avatars[id].GuildUpdates() {
			// The draw happens even for a guild already selected this
			// boundary: one draw per recorded transition keeps the PRNG
			// sequence independent of earlier outcomes.
			include := s.clock == 0
			if !include {
				p := float64(g.Count()) / float64(total)
				include = s.rng.Float64() < p
			}
			if include && !included[g.ObjectID()] {
				included[g.ObjectID()] = true
				set = append(set, g)
			}
		}
	}

	if len(set) > 0 {
		s.guildWrites[s.clock] = set
	}
}

// GenerateIO writes this second's I/O trace lines to out: system writes
// first (if enabled), then each avatar's own lines, concatenated and written
// in one call.
func (s *Simulator) GenerateIO(out *segment) error {
	var sb strings.Builder

	if s.cfg.IncludeWrites {
		objs := make(map[string]struct{})
		for id := range s.locUpdates[s.clock] {
			objs[id] = struct{}{}
		}
		for _, g := range s.guildWrites[s.clock] {
			objs[g.ObjectID()] = struct{}{}
		}
		// Sorted so identically-seeded runs emit byte-identical traces.
		sorted := make([]string, 0, len(objs))
		for obj := range objs {
			sorted = append(sorted, obj)
		}
		sort.Strings(sorted)
		for _, obj := range sorted {
			fmt.Fprintf(&sb, "sys, %d.0, %s, WRITE\n", s.clock, obj)
		}
	}

	for _, id := range s.order {
		for _, line := range s.avatars[id].GenerateIO(s.cfg.IncludeWrites) {
			fmt.Fprintf(&sb, "%s, %d.0, %s, %s\n", line.Device, line.Clock, line.ObjectID, line.Op)
		}
	}

	_, err := out.w.Write([]byte(sb.String()))
	return err
}

// Run drives the scene to completion, writing one segment file per 10-minute
// chunk. Reset must have been called first.
func (s *Simulator) Run() error {
	width := segmentWidth(s.actualMinutes)

	if !s.cfg.KeepOutput {
		if err := cleanSceneDir(s.cfg.OutputDir, s.number); err != nil {
			return err
		}
	}

	for start := int64(0); start < s.actualMinutes; start += segmentMinutes {
		end := start + segmentMinutes
		if end > s.actualMinutes {
			end = s.actualMinutes
		}

		seg, err := openSegment(s.cfg.OutputDir, s.number, start, end, width, s.cfg.GzipLevel)
		if err != nil {
			return err
		}

		ticks := (end - start) * vtime.Minute
		var runErr error
		for i := int64(0); i < ticks; i++ {
			if runErr = s.Step(); runErr != nil {
				break
			}
			if runErr = s.GenerateIO(seg); runErr != nil {
				break
			}
		}

		if flushErr := seg.flush(); flushErr != nil && runErr == nil {
			runErr = flushErr
		}
		if closeErr := seg.close(); closeErr != nil && runErr == nil {
			runErr = closeErr
		}
		if runErr != nil {
			return fmt.Errorf("simulator: scene %d segment [%d,%d): %w", s.number, start, end, runErr)
		}
	}

	return nil
}
