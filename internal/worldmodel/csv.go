package worldmodel

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// zoneRow is one row of a continent's zone CSV: header
// `name,tl_x,tl_y,br_x,br_y,capitals,major cities,minor cities`. The
// capitals/major/minor-city count columns drive the external random-city-
// placement tool and are parsed only to validate the row is well-formed; the
// cities themselves are loaded separately from the cities CSV.
type zoneRow struct {
	name   string
	tl, br Point
}

func loadZonesCSV(path string) ([]zoneRow, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, fmt.Errorf("loading zones csv %s: %w", path, err)
	}

	const wantCols = 8
	var rows []zoneRow
	for i, rec := range records {
		if len(rec) != wantCols {
			return nil, fmt.Errorf("zones csv %s: row %d: want %d columns, got %d", path, i, wantCols, len(rec))
		}
		if hasEmptyField(rec) {
			continue // rows with any empty field are dropped
		}

		tlX, err1 := strconv.ParseInt(rec[1], 10, 32)
		tlY, err2 := strconv.ParseInt(rec[2], 10, 32)
		brX, err3 := strconv.ParseInt(rec[3], 10, 32)
		brY, err4 := strconv.ParseInt(rec[4], 10, 32)
		// capitals/major/minor counts (rec[5], rec[6], rec[7]) are validated
		// as integers but not otherwise used.
		_, err5 := strconv.ParseInt(rec[5], 10, 32)
		_, err6 := strconv.ParseInt(rec[6], 10, 32)
		_, err7 := strconv.ParseInt(rec[7], 10, 32)
		if err := firstErr(err1, err2, err3, err4, err5, err6, err7); err != nil {
			return nil, fmt.Errorf("zones csv %s: row %d: %w", path, i, err)
		}

		rows = append(rows, zoneRow{
			name: rec[0],
			tl:   Point{X: int32(tlX), Y: int32(tlY)},
			br:   Point{X: int32(brX), Y: int32(brY)},
		})
	}

	return rows, nil
}

// cityRow is one row of the Cities CSV: header `name,tl_x,tl_y,zone,type`.
type cityRow struct {
	name     string
	tl       Point
	zoneName string
	cityType CityType
}

func loadCitiesCSV(path string) ([]cityRow, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, fmt.Errorf("loading cities csv %s: %w", path, err)
	}

	const wantCols = 5
	var rows []cityRow
	for i, rec := range records {
		if len(rec) != wantCols {
			return nil, fmt.Errorf("cities csv %s: row %d: want %d columns, got %d", path, i, wantCols, len(rec))
		}

		// "NO NAME" is a valid name, so only tl_x/tl_y/zone/type being
		// non-empty is required.
		if hasEmptyField(rec[1:]) {
			continue
		}

		tlX, err1 := strconv.ParseInt(rec[1], 10, 32)
		tlY, err2 := strconv.ParseInt(rec[2], 10, 32)
		if err := firstErr(err1, err2); err != nil {
			return nil, fmt.Errorf("cities csv %s: row %d: %w", path, i, err)
		}

		ct, err := parseCityType(rec[4])
		if err != nil {
			return nil, fmt.Errorf("cities csv %s: row %d: %w", path, i, err)
		}

		rows = append(rows, cityRow{
			name:     rec[0],
			tl:       Point{X: int32(tlX), Y: int32(tlY)},
			zoneName: rec[3],
			cityType: ct,
		})
	}

	return rows, nil
}

func parseCityType(s string) (CityType, error) {
	switch s {
	case "capital":
		return Capital, nil
	case "major city":
		return Major, nil
	case "minor city":
		return Minor, nil
	case "instance":
		return Instance, nil
	default:
		return 0, fmt.Errorf("unknown city type %q", s)
	}
}

// loadAdjacency parses lines of the form "<zone>: <neighbor>, <neighbor>, …".
// "#" starts a comment; blank lines are skipped. The returned map is not yet
// symmetric; callers must enforce bidirectionality.
func loadAdjacency(path string) (map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loading adjacency %s: %w", path, err)
	}
	defer f.Close()

	adj := make(map[string][]string)

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("adjacency %s: line %d: missing ':'", path, lineNo)
		}

		zone := strings.TrimSpace(parts[0])
		var neighbors []string
		for _, n := range strings.Split(parts[1], ",") {
			n = strings.TrimSpace(n)
			if n != "" {
				neighbors = append(neighbors, n)
			}
		}
		adj[zone] = append(adj[zone], neighbors...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("adjacency %s: %w", path, err)
	}

	return adj, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	_ = header

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return records, nil
}

func hasEmptyField(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
