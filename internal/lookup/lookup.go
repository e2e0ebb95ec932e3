// Package lookup provides the process-wide lookup tables built once at
// startup: country name to ISO alpha-2 code, and ISO code to a representative
// coordinate. Both are read-only after initialization and safe to share
// across concurrent callers.
package lookup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pariz/gountries"

	"github.com/Houeta/meridian/internal/models"
)

// ErrMissingEntry reports that a table has no entry for the requested key.
var ErrMissingEntry = errors.New("no matching lookup entry")

// CountryRegistry maps country names to ISO alpha-2 codes.
type CountryRegistry struct {
	nameToISO map[string]string
}

// NewCountryRegistry builds the name to ISO table from the embedded country
// registry data.
func NewCountryRegistry() *CountryRegistry {
	query := gountries.New()
	countries := query.FindAllCountries()

	nameToISO := make(map[string]string, len(countries))
	for _, country := range countries {
		if country.Name.Common == "" || country.Alpha2 == "" {
			continue
		}
		nameToISO[country.Name.Common] = country.Alpha2
	}

	return &CountryRegistry{nameToISO: nameToISO}
}

// ISOCode returns the ISO alpha-2 code for a country name.
// It returns ErrMissingEntry when the name is unknown to the registry.
func (r *CountryRegistry) ISOCode(name string) (string, error) {
	code, ok := r.nameToISO[name]
	if !ok {
		return "", fmt.Errorf("%w: country name %q", ErrMissingEntry, name)
	}
	return code, nil
}

// coordEntry mirrors one record of the country coordinate JSON file.
type coordEntry struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// CoordTable maps ISO alpha-2 codes to a representative coordinate for the
// country, used when an identifier resolves to a country but not to a point.
type CoordTable struct {
	codeToCoord map[string]models.Coordinates
}

// LoadCoordTable reads the country coordinate table from a JSON file keyed by
// lower-cased ISO alpha-2 codes. An unreadable or malformed file is a startup
// failure for the caller to abort on.
func LoadCoordTable(path string) (*CoordTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read country coordinate table: %w", err)
	}

	var raw map[string]coordEntry
	if err = json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode country coordinate table: %w", err)
	}

	codeToCoord := make(map[string]models.Coordinates, len(raw))
	for code, entry := range raw {
		codeToCoord[strings.ToLower(code)] = models.Coordinates{Lat: entry.Lat, Lon: entry.Long}
	}

	return &CoordTable{codeToCoord: codeToCoord}, nil
}

// Coordinates returns the representative coordinate for an ISO alpha-2 code.
// Codes are matched case-insensitively; the table stores lower-cased keys.
// It returns ErrMissingEntry when the code has no entry.
func (t *CoordTable) Coordinates(isoCode string) (models.Coordinates, error) {
	coord, ok := t.codeToCoord[strings.ToLower(isoCode)]
	if !ok {
		return models.Coordinates{}, fmt.Errorf("%w: country code %q", ErrMissingEntry, isoCode)
	}
	return coord, nil
}
