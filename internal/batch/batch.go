// Package batch discovers scene CSVs under the configured scenes directory
// and drives them through internal/simulator on a bounded worker pool.
// Parallelism is across scenes only: each scene gets its own World, PRNG,
// and output stream, and workers share nothing mutable.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/vtrace/internal/config"
	"github.com/udisondev/vtrace/internal/runlog"
	"github.com/udisondev/vtrace/internal/simulator"
	"github.com/udisondev/vtrace/internal/worldmodel"
)

// SceneResult is one scene's outcome within a batch run.
type SceneResult struct {
	Number    int
	Path      string
	Truncated bool
	Err       error
}

// Summary is the outcome of one batch run: a stable RunID (for correlating
// with internal/runlog records, when enabled) plus each scene's result.
type Summary struct {
	RunID   uuid.UUID
	Results []SceneResult
}

// Failed reports whether any scene in the summary errored.
func (s *Summary) Failed() bool {
	for _, r := range s.Results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// DiscoverScenes globs "scene*.csv" under dir and returns the paths sorted
// by their numeric scene suffix.
func DiscoverScenes(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "scene*.csv"))
	if err != nil {
		return nil, fmt.Errorf("batch: globbing %s: %w", dir, err)
	}

	sort.Slice(matches, func(i, j int) bool {
		ni, _ := sceneNumber(matches[i])
		nj, _ := sceneNumber(matches[j])
		return ni < nj
	})
	return matches, nil
}

func sceneNumber(path string) (int, error) {
	base := filepath.Base(path)
	trimmed := strings.TrimSuffix(strings.TrimPrefix(base, "scene"), ".csv")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("batch: scene file %q does not match scene<N>.csv: %w", base, err)
	}
	return n, nil
}

// Run discovers and drives every scene under cfg.ScenesDir, running up to
// cfg.Workers scenes concurrently. A scene's error fails only that scene and
// the rest of the batch continues; Run itself only returns an error for
// discovery failure, a failure to open the run log, or a worker bookkeeping
// bug.
func Run(ctx context.Context, cfg config.Config) (*Summary, error) {
	scenes, err := DiscoverScenes(cfg.ScenesDir)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	var store *runlog.Store
	if cfg.RunLogDSN != "" {
		store, err = runlog.Open(ctx, cfg.RunLogDSN)
		if err != nil {
			return nil, fmt.Errorf("batch: %w", err)
		}
		defer store.Close()
	}

	summary := &Summary{
		RunID:   uuid.New(),
		Results: make([]SceneResult, len(scenes)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range scenes {
		i, path := i, path
		g.Go(func() error {
			summary.Results[i] = runOne(gctx, cfg, store, summary.RunID, path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, fmt.Errorf("batch: %w", err)
	}
	return summary, nil
}

// runOne builds an isolated World and Simulator for one scene and drives it
// to completion, converting any failure into a SceneResult rather than
// propagating it (so sibling scenes are unaffected). store is nil unless
// cfg.RunLogDSN is configured.
func runOne(ctx context.Context, cfg config.Config, store *runlog.Store, runID uuid.UUID, path string) SceneResult {
	number, err := sceneNumber(path)
	if err != nil {
		return SceneResult{Path: path, Err: err}
	}

	if store != nil {
		if err := store.RecordStart(ctx, runID, number, path); err != nil {
			slog.Warn("runlog: failed to record scene start", "scene", number, "error", err)
		}
	}

	result := runScene(cfg, number, path)

	if store != nil {
		if err := store.RecordFinish(ctx, runID, number, result.Err); err != nil {
			slog.Warn("runlog: failed to record scene finish", "scene", number, "error", err)
		}
	}

	return result
}

// runScene builds an isolated World and Simulator for one scene and drives
// it to completion.
func runScene(cfg config.Config, number int, path string) SceneResult {
	world, err := worldmodel.New(cfg)
	if err != nil {
		slog.Error("scene failed: building world", "scene", number, "error", err)
		return SceneResult{Number: number, Path: path, Err: err}
	}

	sim, err := simulator.New(cfg, world, number, path)
	if err != nil {
		slog.Error("scene failed: constructing simulator", "scene", number, "error", err)
		return SceneResult{Number: number, Path: path, Err: err}
	}
	if sim.Truncated() {
		slog.Warn("scene truncated by minute limit", "scene", number)
	}

	sim.Reset()
	if err := sim.Run(); err != nil {
		slog.Error("scene failed", "scene", number, "error", err)
		return SceneResult{Number: number, Path: path, Truncated: sim.Truncated(), Err: err}
	}

	slog.Info("scene completed", "scene", number, "total_vtime", sim.TotalVtime())
	return SceneResult{Number: number, Path: path, Truncated: sim.Truncated()}
}
