package worldmodel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/udisondev/vtrace/internal/config"
	"github.com/udisondev/vtrace/internal/simrand"
)

// buildTestWorld creates a small two-zone world: Z1 (0,0)-(10,10) with one
// capital at (1,1), Z2 (20,0)-(30,10) with no cities. Z1 and Z2 are not
// adjacent to each other, only to themselves.
func buildTestWorld(t *testing.T) *World {
	t.Helper()
	dir := t.TempDir()

	zonesCSV := "name,tl_x,tl_y,br_x,br_y,capitals,major cities,minor cities\n" +
		"Z1,0,0,10,10,1,0,0\n" +
		"Z2,20,0,30,10,0,0,0\n"
	citiesCSV := "name,tl_x,tl_y,zone,type\n" +
		"Capitol,1,1,Z1,capital\n"
	adjacency := "Z1: Z1\nZ2: Z2\n"

	writeFile(t, filepath.Join(dir, "zones.csv"), zonesCSV)
	writeFile(t, filepath.Join(dir, "cities.csv"), citiesCSV)
	writeFile(t, filepath.Join(dir, "adjacency.txt"), adjacency)

	cfg := config.Default()
	cfg.Continents = []config.ContinentSource{
		{Name: "Aden", Width: 40, Height: 40, ZonesCSV: filepath.Join(dir, "zones.csv"), CitiesCSV: filepath.Join(dir, "cities.csv")},
	}
	cfg.AdjacencyPath = filepath.Join(dir, "adjacency.txt")

	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestResolvePlaceCityPrecedence(t *testing.T) {
	w := buildTestWorld(t)

	p, err := w.ResolvePlace("Capitol")
	if err != nil {
		t.Fatalf("ResolvePlace: %v", err)
	}
	if _, ok := p.(*City); !ok {
		t.Errorf("ResolvePlace(%q) = %T, want *City", "Capitol", p)
	}

	p, err = w.ResolvePlace("Z2")
	if err != nil {
		t.Fatalf("ResolvePlace: %v", err)
	}
	if _, ok := p.(*Zone); !ok {
		t.Errorf("ResolvePlace(%q) = %T, want *Zone", "Z2", p)
	}
}

func TestResolvePlaceUnknown(t *testing.T) {
	w := buildTestWorld(t)
	if _, err := w.ResolvePlace("Nowhere"); err == nil {
		t.Error("ResolvePlace(unknown) should error")
	}
}

func TestCityBackReferenceSetOnFootprint(t *testing.T) {
	w := buildTestWorld(t)
	cont := w.Continent("Aden")

	for x := int32(1); x < 4; x++ {
		for y := int32(1); y < 4; y++ {
			loc := cont.Location(x, y)
			if loc.City() == nil {
				t.Errorf("location (%d,%d) inside capital footprint has nil City()", x, y)
			}
		}
	}

	outside := cont.Location(5, 5)
	if outside.City() != nil {
		t.Error("location outside any city footprint should have nil City()")
	}
}

func TestZoneLocationHasZoneBackReference(t *testing.T) {
	w := buildTestWorld(t)
	cont := w.Continent("Aden")

	loc := cont.Location(5, 5)
	if loc.Zone() == nil || loc.Zone().Name() != "Z1" {
		t.Errorf("location (5,5) Zone() = %v, want Z1", loc.Zone())
	}

	outside := cont.Location(15, 5) // between zones, in neither
	if outside.Zone() != nil {
		t.Errorf("location (15,5) Zone() = %v, want nil", outside.Zone())
	}
}

func TestAdjacencySelfIncluded(t *testing.T) {
	w := buildTestWorld(t)
	z1 := w.Zone("Z1")
	if !z1.IsAdjacentTo(z1) {
		t.Error("zone should be adjacent to itself")
	}
}

func TestAdjacencyAbsentBetweenUndeclaredZones(t *testing.T) {
	w := buildTestWorld(t)
	z1 := w.Zone("Z1")
	z2 := w.Zone("Z2")
	if z1.IsAdjacentTo(z2) || z2.IsAdjacentTo(z1) {
		t.Error("Z1 and Z2 were not declared adjacent and should not be")
	}
}

func TestManhattanToSameContinent(t *testing.T) {
	w := buildTestWorld(t)
	cont := w.Continent("Aden")

	a := cont.Location(0, 0)
	b := cont.Location(3, 4)

	d, xs, ys, err := a.ManhattanTo(b)
	if err != nil {
		t.Fatalf("ManhattanTo: %v", err)
	}
	if d != 7 {
		t.Errorf("distance = %d, want 7", d)
	}
	if len(xs) != 3 {
		t.Errorf("len(xs) = %d, want 3", len(xs))
	}
	if len(ys) != 4 {
		t.Errorf("len(ys) = %d, want 4", len(ys))
	}
	for _, s := range xs {
		if s != 1 {
			t.Errorf("xs step = %d, want +1", s)
		}
	}
}

func TestZoneRandomLocationUniformFallback(t *testing.T) {
	w := buildTestWorld(t)
	z2 := w.Zone("Z2") // no cities at all, so every draw falls through to uniform
	rng := simrand.New(1)

	tl, br := z2.Bounds()
	for range 50 {
		loc := z2.RandomLocation(nil, rng)
		if loc.X() < tl.X || loc.X() >= br.X || loc.Y() < tl.Y || loc.Y() >= br.Y {
			t.Fatalf("uniform sample (%d,%d) outside zone bounds [%v,%v)", loc.X(), loc.Y(), tl, br)
		}
	}
}

func TestCityRandomLocationUniformInsideFootprint(t *testing.T) {
	w := buildTestWorld(t)
	city := w.City("Capitol")
	rng := simrand.New(2)

	tl, br := city.Bounds()
	for range 50 {
		loc := city.RandomLocation(nil, rng)
		if loc.X() < tl.X || loc.X() >= br.X || loc.Y() < tl.Y || loc.Y() >= br.Y {
			t.Fatalf("city sample (%d,%d) outside footprint [%v,%v)", loc.X(), loc.Y(), tl, br)
		}
	}
}
