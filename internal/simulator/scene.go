package simulator

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/udisondev/vtrace/internal/avatar"
	"github.com/udisondev/vtrace/internal/avatarid"
	"github.com/udisondev/vtrace/internal/changelog"
	"github.com/udisondev/vtrace/internal/guild"
	"github.com/udisondev/vtrace/internal/worldmodel"
)

// sceneRow is one parsed row of a scene CSV.
type sceneRow struct {
	vtime    int64
	avatarID string
	place    string
	guild    string
}

func loadSceneCSV(path string) ([]sceneRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("simulator: opening scene %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("simulator: reading scene %s header: %w", path, err)
	}
	if len(header) != 4 || header[0] != "virtual_time" || header[1] != "avatar_id" || header[2] != "place" || header[3] != "guild" {
		return nil, fmt.Errorf("simulator: scene %s has unexpected header %v", path, header)
	}

	var rows []sceneRow
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("simulator: reading scene %s: %w", path, err)
		}

		vt, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("simulator: scene %s: non-integer virtual_time %q: %w", path, rec[0], err)
		}
		rows = append(rows, sceneRow{vtime: vt, avatarID: rec[1], place: rec[2], guild: rec[3]})
	}
	return rows, nil
}

// avatarBuild accumulates one avatar's logs and first-appearance position
// during scene construction.
type avatarBuild struct {
	id       avatarid.ID
	placeLog *changelog.Log[worldmodel.Place]
	guildLog *changelog.Log[*guild.Guild]
}

// buildScene walks the already-clipped scene rows in file order, appending
// offline transitions as avatars drop out of a vtime group, and builds the
// ordered Avatar list plus the scene's Guild registry. Only rows inside the
// run's minute limit may be passed in: avatars and guilds that first appear
// beyond the limit must not exist, or the guild write-probability
// denominator and the avatar iteration order would drift.
func buildScene(world *worldmodel.World, path string, rows []sceneRow) (order []avatarid.ID, avatars map[avatarid.ID]*avatar.Avatar, guilds map[string]*guild.Guild, err error) {
	builds := make(map[avatarid.ID]*avatarBuild)
	guilds = make(map[string]*guild.Guild)

	curVtime := rows[0].vtime
	activeThisVtime := make(map[avatarid.ID]bool)

	markOffline := func(at int64) error {
		for _, id := range order {
			if activeThisVtime[id] {
				continue
			}
			if err := builds[id].placeLog.Append(at, nil); err != nil {
				return fmt.Errorf("simulator: marking %s offline at vtime %d: %w", id, at, err)
			}
		}
		return nil
	}

	for _, row := range rows {
		id := avatarid.ID(row.avatarID)

		if row.vtime > curVtime {
			if err := markOffline(curVtime); err != nil {
				return nil, nil, nil, err
			}
			activeThisVtime = make(map[avatarid.ID]bool)
			curVtime = row.vtime
		}
		if row.vtime < curVtime {
			return nil, nil, nil, fmt.Errorf("simulator: scene %s: virtual_time decreased at row (%d, %s)", path, row.vtime, row.avatarID)
		}

		if _, ok := builds[id]; !ok {
			b := &avatarBuild{
				id:       id,
				placeLog: changelog.New[worldmodel.Place](nil),
				guildLog: changelog.New[*guild.Guild](nil),
			}
			builds[id] = b
			order = append(order, id)
		}
		activeThisVtime[id] = true

		var g *guild.Guild
		if row.guild != "NO" {
			g = guilds[row.guild]
			if g == nil {
				g = guild.New(row.guild)
				guilds[row.guild] = g
			}
		}
		if err := builds[id].guildLog.Append(row.vtime, g); err != nil {
			return nil, nil, nil, fmt.Errorf("simulator: %s guild log: %w", id, err)
		}

		place, err := world.ResolvePlace(row.place)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("simulator: scene %s vtime %d: %w", path, row.vtime, err)
		}
		if err := builds[id].placeLog.Append(row.vtime, place); err != nil {
			return nil, nil, nil, fmt.Errorf("simulator: %s place log: %w", id, err)
		}
	}

	if err := markOffline(curVtime); err != nil {
		return nil, nil, nil, err
	}

	avatars = make(map[avatarid.ID]*avatar.Avatar, len(order))
	for _, id := range order {
		b := builds[id]
		avatars[id] = avatar.New(id, b.placeLog, b.guildLog)
	}

	return order, avatars, guilds, nil
}
