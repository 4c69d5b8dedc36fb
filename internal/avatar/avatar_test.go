package avatar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/udisondev/vtrace/internal/avatarid"
	"github.com/udisondev/vtrace/internal/changelog"
	"github.com/udisondev/vtrace/internal/config"
	"github.com/udisondev/vtrace/internal/guild"
	"github.com/udisondev/vtrace/internal/simrand"
	"github.com/udisondev/vtrace/internal/worldmodel"
)

func buildTestWorld(t *testing.T) *worldmodel.World {
	t.Helper()
	dir := t.TempDir()

	zones := "name,tl_x,tl_y,br_x,br_y,capitals,major cities,minor cities\n" +
		"Z1,0,0,10,10,0,0,0\n"
	cities := "name,tl_x,tl_y,zone,type\n"
	adjacency := "Z1: Z1\n"

	mustWrite(t, filepath.Join(dir, "zones.csv"), zones)
	mustWrite(t, filepath.Join(dir, "cities.csv"), cities)
	mustWrite(t, filepath.Join(dir, "adjacency.txt"), adjacency)

	cfg := config.Default()
	cfg.Continents = []config.ContinentSource{
		{Name: "Aden", Width: 20, Height: 20, ZonesCSV: filepath.Join(dir, "zones.csv"), CitiesCSV: filepath.Join(dir, "cities.csv")},
	}
	cfg.AdjacencyPath = filepath.Join(dir, "adjacency.txt")

	w, err := worldmodel.New(cfg)
	if err != nil {
		t.Fatalf("worldmodel.New: %v", err)
	}
	return w
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// An avatar present for one vtime then absent from the scene goes offline
// at the next vtime boundary, releasing its location.
func TestOfflineTransition(t *testing.T) {
	w := buildTestWorld(t)
	zone1 := w.Zone("Z1")

	placeLog := changelog.New[worldmodel.Place](nil)
	if err := placeLog.Append(0, zone1); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := placeLog.Append(1, nil); err != nil {
		t.Fatalf("Append: %v", err)
	}
	guildLog := changelog.New[*guild.Guild](nil)

	av := New(avatarid.ID("a1"), placeLog, guildLog)
	rng := simrand.New(11)

	for i := 0; i < 600; i++ {
		if err := av.Step(rng); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if av.Location() == nil {
		t.Fatal("Location should be set after the first vtime")
	}

	if err := av.Step(rng); err != nil {
		t.Fatalf("Step 600: %v", err)
	}
	if av.Location() != nil {
		t.Errorf("Location = %v, want nil after going offline", av.Location())
	}
}

// A guild change at a vtime boundary removes the avatar from its old guild,
// adds it to the new one, and records both sides in GuildUpdates.
func TestGuildTransition(t *testing.T) {
	w := buildTestWorld(t)
	zone1 := w.Zone("Z1")

	placeLog := changelog.New[worldmodel.Place](nil)
	if err := placeLog.Append(0, zone1); err != nil {
		t.Fatalf("Append: %v", err)
	}

	g1 := guild.New("g1")
	g2 := guild.New("g2")
	guildLog := changelog.New[*guild.Guild](nil)
	if err := guildLog.Append(0, g1); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := guildLog.Append(1, g2); err != nil {
		t.Fatalf("Append: %v", err)
	}

	id := avatarid.ID("a1")
	av := New(id, placeLog, guildLog)
	rng := simrand.New(5)

	for i := 0; i < 600; i++ {
		if err := av.Step(rng); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if av.Guild() != g1 {
		t.Fatalf("Guild = %v, want g1", av.Guild())
	}
	if !g1.Has(id) {
		t.Error("g1 should have the avatar as a member")
	}

	if err := av.Step(rng); err != nil {
		t.Fatalf("Step 600: %v", err)
	}
	if av.Guild() != g2 {
		t.Fatalf("Guild = %v, want g2", av.Guild())
	}
	if g1.Has(id) {
		t.Error("g1 should no longer have the avatar as a member")
	}
	if !g2.Has(id) {
		t.Error("g2 should have the avatar as a member")
	}

	updates := av.GuildUpdates()
	if len(updates) != 2 {
		t.Fatalf("len(GuildUpdates) = %d, want 2", len(updates))
	}
	if updates[0] != g1 || updates[1] != g2 {
		t.Errorf("GuildUpdates = %v, want [g1, g2]", updates)
	}
}

// TestGenerateIOWriteFlag checks that the avatar's own object id is tagged
// WRITE only when writes are enabled, and READ otherwise.
func TestGenerateIOWriteFlag(t *testing.T) {
	w := buildTestWorld(t)
	zone1 := w.Zone("Z1")

	placeLog := changelog.New[worldmodel.Place](nil)
	if err := placeLog.Append(0, zone1); err != nil {
		t.Fatalf("Append: %v", err)
	}
	guildLog := changelog.New[*guild.Guild](nil)

	id := avatarid.ID("a1")
	av := New(id, placeLog, guildLog)
	rng := simrand.New(9)

	if err := av.Step(rng); err != nil {
		t.Fatalf("Step: %v", err)
	}

	selfObj := id.ObjectID()

	withWrites := av.GenerateIO(true)
	foundWrite := false
	for _, l := range withWrites {
		if l.ObjectID == selfObj {
			if l.Op != OpWrite {
				t.Errorf("own object op = %v, want WRITE", l.Op)
			}
			foundWrite = true
		}
	}
	if !foundWrite {
		t.Fatal("expected a line for the avatar's own object id")
	}

	readOnly := av.GenerateIO(false)
	for _, l := range readOnly {
		if l.Op != OpRead {
			t.Errorf("op = %v, want READ when writes are disabled", l.Op)
		}
	}
}
