package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Houeta/meridian/internal/geo"
	"github.com/Houeta/meridian/internal/models"
)

// PhoneResolver resolves phone numbers to the representative coordinate of
// their country. Phone resolution never yields city-level precision, so the
// city and subdivision fields of its results are always empty.
type PhoneResolver struct {
	geocoder PhoneGeocoder
	registry CountryRegistry
	coords   CoordTable
	log      *slog.Logger
}

// NewPhoneResolver creates a phone resolver from a phone geocoder, the
// country registry and the country coordinate table.
func NewPhoneResolver(
	geocoder PhoneGeocoder,
	registry CountryRegistry,
	coords CoordTable,
	log *slog.Logger,
) *PhoneResolver {
	return &PhoneResolver{geocoder: geocoder, registry: registry, coords: coords, log: log}
}

// Resolve parses a phone number in international format, requires it to be
// valid or at least possible, and maps its country through the
// name-to-ISO registry and the ISO-to-coordinate table.
func (r *PhoneResolver) Resolve(ctx context.Context, value string) (models.ResolvedLocation, error) {
	number, err := r.geocoder.Parse(value)
	if err != nil {
		return models.ResolvedLocation{}, fmt.Errorf("%w: invalid phone number %q: %w", ErrMalformedInput, value, err)
	}

	if !r.geocoder.IsValid(number) && !r.geocoder.IsPossible(number) {
		return models.ResolvedLocation{}, fmt.Errorf("%w: phone number %q is neither valid nor possible", ErrMalformedInput, value)
	}

	countryName, err := r.geocoder.CountryName(number)
	if err != nil {
		return models.ResolvedLocation{}, fmt.Errorf("failed to resolve phone number country: %w", err)
	}
	if countryName == "" {
		return models.ResolvedLocation{}, fmt.Errorf("%w: no country for phone number %q", ErrNotFound, value)
	}

	isoCode, err := r.registry.ISOCode(countryName)
	if err != nil {
		return models.ResolvedLocation{}, fmt.Errorf("failed to map country %q to ISO code: %w", countryName, err)
	}

	coord, err := r.coords.Coordinates(isoCode)
	if err != nil {
		return models.ResolvedLocation{}, fmt.Errorf("failed to resolve coordinate for country %q: %w", isoCode, err)
	}

	r.log.DebugContext(ctx, "Resolved phone number country", "country", countryName, "iso_code", isoCode)

	return models.ResolvedLocation{
		Coordinates: geo.TruncateCoordinates(coord),
		RegionCode:  isoCode,
		CountryName: countryName,
	}, nil
}
