// Package worldmodel implements the static game-world geometry the
// simulator runs on: continents tiled with zones, zones containing typed
// cities, a zone adjacency graph, and the per-cell Location grid avatars
// occupy. None of it changes shape once built; only the avatar membership
// sets change at runtime, and Place sampling draws from the scene's PRNG.
package worldmodel

import (
	"fmt"

	"github.com/udisondev/vtrace/internal/config"
)

// World is the full collection of continents plus the global named-zone and
// named-city indexes and the (already bidirectional) zone adjacency graph.
type World struct {
	continents   map[string]*Continent
	zonesByName  map[string]*Zone
	citiesByName map[string]*City
}

// New builds a World from cfg: one Continent per cfg.Continents entry, its
// zones and cities loaded from the configured CSV files, and the zone
// adjacency graph loaded from cfg.AdjacencyPath and enforced bidirectional.
func New(cfg config.Config) (*World, error) {
	w := &World{
		continents:   make(map[string]*Continent),
		zonesByName:  make(map[string]*Zone),
		citiesByName: make(map[string]*City),
	}

	for _, cs := range cfg.Continents {
		if err := w.loadContinent(cs, cfg.Probabilities, cfg.Footprints); err != nil {
			return nil, fmt.Errorf("worldmodel: loading continent %q: %w", cs.Name, err)
		}
	}

	if cfg.AdjacencyPath != "" {
		if err := w.loadAdjacencyGraph(cfg.AdjacencyPath); err != nil {
			return nil, fmt.Errorf("worldmodel: loading adjacency: %w", err)
		}
	}

	return w, nil
}

func (w *World) loadContinent(cs config.ContinentSource, probs config.Probabilities, footprints config.Footprints) error {
	initial := cs.Name
	if len(initial) > 0 {
		initial = string([]rune(cs.Name)[:1])
	}

	cont := newContinent(cs.Name, initial, cs.Width, cs.Height)
	w.continents[cs.Name] = cont

	zoneRows, err := loadZonesCSV(cs.ZonesCSV)
	if err != nil {
		return err
	}
	for _, zr := range zoneRows {
		z := newZone(zr.name, cont, zr.tl, zr.br, probs)
		if err := cont.addZone(z); err != nil {
			return err
		}
		z.claimLocations()
		w.zonesByName[zr.name] = z
	}

	cityRows, err := loadCitiesCSV(cs.CitiesCSV)
	if err != nil {
		return err
	}
	for _, cr := range cityRows {
		zone, ok := cont.zones[cr.zoneName]
		if !ok {
			return fmt.Errorf("city %q references unknown zone %q", cr.name, cr.zoneName)
		}

		br := clippedFootprint(cr.tl, cr.cityType, footprints, zone)
		city := &City{
			name:     cr.name,
			cityType: cr.cityType,
			zone:     zone,
			tl:       cr.tl,
			br:       br,
		}
		zone.addCity(city)

		if city.name != "NO NAME" {
			w.citiesByName[city.name] = city
		}
	}

	return nil
}

// clippedFootprint computes the city's br corner from its type's fixed
// footprint size, clipped to the owning zone's br.
func clippedFootprint(tl Point, t CityType, footprints config.Footprints, zone *Zone) Point {
	var size int32
	switch t {
	case Capital:
		size = int32(footprints.Capital)
	case Major:
		size = int32(footprints.Major)
	case Minor:
		size = int32(footprints.Minor)
	case Instance:
		size = int32(footprints.Instance)
	}

	_, zoneBR := zone.Bounds()
	br := Point{X: tl.X + size, Y: tl.Y + size}
	if br.X > zoneBR.X {
		br.X = zoneBR.X
	}
	if br.Y > zoneBR.Y {
		br.Y = zoneBR.Y
	}
	return br
}

func (w *World) loadAdjacencyGraph(path string) error {
	adj, err := loadAdjacency(path)
	if err != nil {
		return err
	}

	for name, neighbors := range adj {
		z, ok := w.zonesByName[name]
		if !ok {
			return fmt.Errorf("adjacency references unknown zone %q", name)
		}
		for _, n := range neighbors {
			nz, ok := w.zonesByName[n]
			if !ok {
				return fmt.Errorf("adjacency references unknown zone %q (neighbor of %q)", n, name)
			}
			// Enforced bidirectional: both directions are recorded
			// regardless of which side the input line named.
			z.AddAdjacent(n)
			nz.AddAdjacent(name)
		}
	}

	return nil
}

// Continent returns the named continent, or nil.
func (w *World) Continent(name string) *Continent { return w.continents[name] }

// Zone returns the named zone (world-wide, not per-continent), or nil.
func (w *World) Zone(name string) *Zone { return w.zonesByName[name] }

// City returns the named city (excluding "NO NAME" cities), or nil.
func (w *World) City(name string) *City { return w.citiesByName[name] }

// ResolvePlace resolves a scene CSV place name to a Place: a named City
// takes precedence over a same-named Zone.
func (w *World) ResolvePlace(name string) (Place, error) {
	if c, ok := w.citiesByName[name]; ok {
		return c, nil
	}
	if z, ok := w.zonesByName[name]; ok {
		return z, nil
	}
	return nil, fmt.Errorf("worldmodel: unknown place %q", name)
}

// Reset empties every continent's location avatar sets, used between scene
// runs.
func (w *World) Reset() {
	for _, c := range w.continents {
		c.Reset()
	}
}
