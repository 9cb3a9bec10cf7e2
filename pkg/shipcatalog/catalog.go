// Package shipcatalog loads and validates the ship attribute table from
// CSV (spec §4.7). Header-variant tolerance and row-level error context
// follow the teacher's actionable-validation-error idiom
// (internal/sde/dto/validators.go).
package shipcatalog

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/evefrontier/routecore/pkg/coreerr"
	"github.com/evefrontier/routecore/pkg/fuel"
)

// headerAliases maps every accepted header spelling to its canonical field
// name (spec §4.7).
var headerAliases = map[string]string{
	"shipname":           "name",
	"name":               "name",
	"mass_kg":            "base_mass_kg",
	"base_mass_kg":       "base_mass_kg",
	"specificheat_c":     "specific_heat",
	"specific_heat":      "specific_heat",
	"fuelcapacity_units": "fuel_capacity",
	"fuel_capacity":      "fuel_capacity",
	"cargocapacity_kg":   "cargo_capacity",
	"cargo_capacity":     "cargo_capacity",
}

// Catalog is a validated, loaded table of ships, case-insensitive by name.
type Catalog struct {
	ships  map[string]fuel.Ship // normalized name -> ship
	byName map[string]string    // normalized name -> display name
}

// Get returns the ship with the given name (case-insensitive), or false if
// not present.
func (c *Catalog) Get(name string) (fuel.Ship, bool) {
	s, ok := c.ships[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// List returns every ship in the catalog.
func (c *Catalog) List() []fuel.Ship {
	out := make([]fuel.Ship, 0, len(c.ships))
	for _, s := range c.ships {
		out = append(out, s)
	}
	return out
}

// FromPath loads and validates a ship catalog CSV.
func FromPath(path string) (*Catalog, *coreerr.Error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, coreerr.IoError(path, err)
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) (*Catalog, *coreerr.Error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headerRow, err := reader.Read()
	if err != nil {
		return nil, coreerr.DatasetFormat("ship catalog: failed to read header: " + err.Error())
	}

	colIndex := make(map[string]int) // canonical field -> column index
	for i, raw := range headerRow {
		canon, ok := headerAliases[strings.ToLower(strings.TrimSpace(raw))]
		if ok {
			colIndex[canon] = i
		}
	}
	required := []string{"name", "base_mass_kg", "specific_heat", "fuel_capacity", "cargo_capacity"}
	for _, field := range required {
		if _, ok := colIndex[field]; !ok {
			return nil, coreerr.DatasetFormat("ship catalog: missing required column for " + field)
		}
	}

	catalog := &Catalog{ships: make(map[string]fuel.Ship), byName: make(map[string]string)}

	rowNum := 1 // header is row 1; data starts at row 2
	for {
		rowNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, coreerr.DatasetFormat("ship catalog: row " + strconv.Itoa(rowNum) + ": " + err.Error())
		}

		ship, cerr := parseRow(rowNum, record, colIndex)
		if cerr != nil {
			return nil, cerr
		}

		key := strings.ToLower(strings.TrimSpace(ship.Name))
		if _, dup := catalog.ships[key]; dup {
			return nil, coreerr.ShipDataValidation(rowNum, "name", "duplicate ship name (case-insensitive): "+ship.Name)
		}
		catalog.ships[key] = ship
		catalog.byName[key] = ship.Name
	}

	return catalog, nil
}

func parseRow(row int, record []string, colIndex map[string]int) (fuel.Ship, *coreerr.Error) {
	name := strings.TrimSpace(column(record, colIndex, "name"))
	if name == "" {
		return fuel.Ship{}, coreerr.ShipDataValidation(row, "name", "must not be empty")
	}

	baseMass, err := parsePositiveFinite(record, colIndex, "base_mass_kg", row)
	if err != nil {
		return fuel.Ship{}, err
	}
	specificHeat, err := parsePositiveFinite(record, colIndex, "specific_heat", row)
	if err != nil {
		return fuel.Ship{}, err
	}
	fuelCapacity, err := parsePositiveFinite(record, colIndex, "fuel_capacity", row)
	if err != nil {
		return fuel.Ship{}, err
	}
	cargoCapacity, err := parsePositiveFinite(record, colIndex, "cargo_capacity", row)
	if err != nil {
		return fuel.Ship{}, err
	}

	return fuel.Ship{
		Name:          name,
		BaseMassKg:    baseMass,
		SpecificHeat:  specificHeat,
		FuelCapacity:  fuelCapacity,
		CargoCapacity: cargoCapacity,
	}, nil
}

func column(record []string, colIndex map[string]int, field string) string {
	idx, ok := colIndex[field]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func parsePositiveFinite(record []string, colIndex map[string]int, field string, row int) (float64, *coreerr.Error) {
	raw := strings.TrimSpace(column(record, colIndex, field))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, coreerr.ShipDataValidation(row, field, "not a valid number: "+raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, coreerr.ShipDataValidation(row, field, "must be finite")
	}
	if v <= 0 {
		return 0, coreerr.ShipDataValidation(row, field, "must be positive")
	}
	return v, nil
}

// ResolvePath implements the CSV file resolution rule from spec §4.7: a
// path ending in .sha256 resolves to the adjacent .csv; any other non-empty
// path is returned as-is; an empty path resolves to the first
// *_ship_data.csv file in cacheDir.
func ResolvePath(path, cacheDir string) (string, *coreerr.Error) {
	if strings.HasSuffix(path, ".sha256") {
		return strings.TrimSuffix(path, ".sha256"), nil
	}
	if path != "" {
		return path, nil
	}

	matches, err := filepath.Glob(filepath.Join(cacheDir, "*_ship_data.csv"))
	if err != nil {
		return "", coreerr.IoError(cacheDir, err)
	}
	if len(matches) == 0 {
		return "", coreerr.DatasetFormat("no *_ship_data.csv found in " + cacheDir)
	}
	return matches[0], nil
}
