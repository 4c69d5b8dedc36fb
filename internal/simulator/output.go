package simulator

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/udisondev/vtrace/internal/vtime"
)

// segment is one open output file for a 10-minute chunk of a scene run.
type segment struct {
	w     io.Writer
	flush func() error
	close func() error
}

// openSegment opens (creating directories as needed) the output file for
// [startMinute, endMinute) of scene number, plain or gzip-compressed per
// cfg.GzipLevel. width is the left-pad width shared by every segment of this
// scene, derived from the scene's total minute count.
func openSegment(outputDir string, number int, startMinute, endMinute int64, width int, gzipLevel int) (*segment, error) {
	dir := filepath.Join(outputDir, fmt.Sprintf("Scene%d", number))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("simulator: creating segment directory %s: %w", dir, err)
	}

	name := fmt.Sprintf("scene%d_%s-%s.txt", number, pad(startMinute, width), pad(endMinute-1, width))
	if gzipLevel != 0 {
		name += ".gz"
	}

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("simulator: creating segment file %s: %w", name, err)
	}

	if gzipLevel == 0 {
		return &segment{
			w:     f,
			flush: func() error { return nil },
			close: f.Close,
		}, nil
	}

	gw, err := gzip.NewWriterLevel(f, gzipLevel)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("simulator: creating gzip writer for %s: %w", name, err)
	}
	return &segment{
		w:     gw,
		flush: gw.Flush,
		close: func() error {
			if err := gw.Close(); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}, nil
}

// cleanSceneDir removes any leftover files from a previous run of the scene,
// so a rerun never mixes old segments with new ones.
func cleanSceneDir(outputDir string, number int) error {
	dir := filepath.Join(outputDir, fmt.Sprintf("Scene%d", number))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("simulator: reading scene directory %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("simulator: removing stale output %s: %w", e.Name(), err)
		}
	}
	return nil
}

// pad left-pads a non-negative minute value to width with zeros.
func pad(minute int64, width int) string {
	s := strconv.FormatInt(minute, 10)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// segmentWidth returns the common left-pad width for a scene whose total
// length is totalMinutes input-minutes, so every segment suffix of one scene
// shares a width.
func segmentWidth(totalMinutes int64) int {
	last := totalMinutes - 1
	if last < 0 {
		last = 0
	}
	return len(strconv.FormatInt(last, 10))
}

// segmentMinutes is the fixed segment length in input-minutes: one vtime
// unit.
const segmentMinutes = int64(vtime.MinutesInVtime)
