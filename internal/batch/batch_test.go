package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/vtrace/internal/config"
)

func TestDiscoverScenesSortsByNumber(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"scene10.csv", "scene2.csv", "scene1.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("virtual_time,avatar_id,place,guild\n"), 0o644))
	}
	// An unrelated file must be ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644))

	scenes, err := DiscoverScenes(dir)
	require.NoError(t, err)
	require.Len(t, scenes, 3)

	assert.Equal(t, "scene1.csv", filepath.Base(scenes[0]))
	assert.Equal(t, "scene2.csv", filepath.Base(scenes[1]))
	assert.Equal(t, "scene10.csv", filepath.Base(scenes[2]))
}

func TestRunDrivesAllScenesAndIsolatesFailures(t *testing.T) {
	dir := t.TempDir()

	zones := "name,tl_x,tl_y,br_x,br_y,capitals,major cities,minor cities\n" +
		"Z1,0,0,10,10,0,0,0\n"
	cities := "name,tl_x,tl_y,zone,type\n"
	adjacency := "Z1: Z1\n"
	writeFile(t, filepath.Join(dir, "zones.csv"), zones)
	writeFile(t, filepath.Join(dir, "cities.csv"), cities)
	writeFile(t, filepath.Join(dir, "adjacency.txt"), adjacency)

	scenesDir := filepath.Join(dir, "Scenes")
	require.NoError(t, os.MkdirAll(scenesDir, 0o755))
	writeFile(t, filepath.Join(scenesDir, "scene1.csv"), "virtual_time,avatar_id,place,guild\n0,a1,Z1,NO\n")
	// scene2 references a place that doesn't exist: this scene fails, scene1
	// must still complete.
	writeFile(t, filepath.Join(scenesDir, "scene2.csv"), "virtual_time,avatar_id,place,guild\n0,a1,Nowhere,NO\n")

	cfg := config.Default()
	cfg.Continents = []config.ContinentSource{
		{Name: "Aden", Width: 20, Height: 20, ZonesCSV: filepath.Join(dir, "zones.csv"), CitiesCSV: filepath.Join(dir, "cities.csv")},
	}
	cfg.AdjacencyPath = filepath.Join(dir, "adjacency.txt")
	cfg.ScenesDir = scenesDir
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.MinuteLimit = 10
	cfg.Workers = 2

	summary, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.True(t, summary.Failed())

	byNumber := map[int]SceneResult{}
	for _, r := range summary.Results {
		byNumber[r.Number] = r
	}
	assert.NoError(t, byNumber[1].Err)
	assert.Error(t, byNumber[2].Err)

	_, statErr := os.Stat(filepath.Join(cfg.OutputDir, "Scene1", "scene1_0-9.txt"))
	assert.NoError(t, statErr)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
