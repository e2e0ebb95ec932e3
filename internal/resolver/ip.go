package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/oschwald/geoip2-golang"

	"github.com/Houeta/meridian/internal/geo"
	"github.com/Houeta/meridian/internal/models"
)

// IPResolver resolves IP addresses through an MMDB city database, falling
// back to the registered-country coordinate table when the database entry
// carries no location.
type IPResolver struct {
	reader CityReader
	coords CoordTable
	log    *slog.Logger
}

// NewIPResolver creates an IP resolver from a city database reader and the
// country coordinate table.
func NewIPResolver(reader CityReader, coords CoordTable, log *slog.Logger) *IPResolver {
	return &IPResolver{reader: reader, coords: coords, log: log}
}

// Resolve looks up an IP address and returns its resolved location with
// coordinates truncated to the storage precision.
//
// Identity fields prefer the primary country of the record and fall back to
// the registered country, which is what anonymizing proxies usually resolve
// through.
func (r *IPResolver) Resolve(ctx context.Context, value string) (models.ResolvedLocation, error) {
	ip := net.ParseIP(value)
	if ip == nil {
		return models.ResolvedLocation{}, fmt.Errorf("%w: invalid IP address %q", ErrMalformedInput, value)
	}

	record, err := r.reader.City(ip)
	if err != nil {
		return models.ResolvedLocation{}, fmt.Errorf("failed to query geolocation database: %w", err)
	}
	if record.Country.IsoCode == "" && record.RegisteredCountry.IsoCode == "" && !hasLocation(record) {
		return models.ResolvedLocation{}, fmt.Errorf("%w: %s", ErrNotFound, value)
	}

	coord, err := r.recordCoordinates(ctx, value, record)
	if err != nil {
		return models.ResolvedLocation{}, err
	}

	isoCode := record.Country.IsoCode
	if isoCode == "" {
		isoCode = record.RegisteredCountry.IsoCode
	}
	countryName := record.Country.Names["en"]
	if countryName == "" {
		countryName = record.RegisteredCountry.Names["en"]
	}

	subdivision := ""
	if len(record.Subdivisions) > 0 {
		subdivision = record.Subdivisions[len(record.Subdivisions)-1].Names["en"]
	}

	return models.ResolvedLocation{
		Coordinates:     geo.TruncateCoordinates(coord),
		RegionCode:      isoCode,
		CountryName:     countryName,
		CityName:        record.City.Names["en"],
		SubdivisionName: subdivision,
	}, nil
}

// recordCoordinates extracts the location of a database record, falling back
// to the representative coordinate of the registered country.
func (r *IPResolver) recordCoordinates(
	ctx context.Context,
	value string,
	record *geoip2.City,
) (models.Coordinates, error) {
	if hasLocation(record) {
		return models.Coordinates{
			Lat: record.Location.Latitude,
			Lon: record.Location.Longitude,
		}, nil
	}

	r.log.InfoContext(ctx, "No location in geolocation record, using registered country", "ip", value)

	isoCode := record.RegisteredCountry.IsoCode
	if isoCode == "" {
		return models.Coordinates{}, fmt.Errorf("%w: record for %s has no location and no registered country", ErrNotFound, value)
	}

	coord, err := r.coords.Coordinates(isoCode)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("failed to resolve registered country %q: %w", isoCode, err)
	}
	return coord, nil
}

// hasLocation reports whether the record carries an actual coordinate. The
// database leaves both fields zero when the location is unknown.
func hasLocation(record *geoip2.City) bool {
	return record.Location.Latitude != 0 || record.Location.Longitude != 0
}
