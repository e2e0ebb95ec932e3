// Package resolver turns raw location-indicating identifiers into resolved
// locations. Each resolver delegates the actual geolocation or phone parsing
// to an injectable collaborator so the pipeline can be tested with fakes.
package resolver

import (
	"context"
	"errors"
	"net"

	"github.com/nyaruka/phonenumbers"
	"github.com/oschwald/geoip2-golang"

	"github.com/Houeta/meridian/internal/models"
)

// Common resolution failures. All of them are per-event conditions: the
// caller logs a warning and drops the event, nothing is retried.
var (
	// ErrMalformedInput reports an identifier that could not be parsed.
	ErrMalformedInput = errors.New("identifier could not be parsed")
	// ErrNotFound reports an identifier with no entry in the geolocation data.
	ErrNotFound = errors.New("identifier not present in geolocation data")
)

// Resolver converts one raw identifier into a resolved location.
type Resolver interface {
	Resolve(ctx context.Context, value string) (models.ResolvedLocation, error)
}

// CityReader is the lookup contract of the IP geolocation database.
// *geoip2.Reader satisfies it directly.
type CityReader interface {
	City(ip net.IP) (*geoip2.City, error)
}

// CoordTable resolves an ISO alpha-2 country code to a representative
// coordinate.
type CoordTable interface {
	Coordinates(isoCode string) (models.Coordinates, error)
}

// CountryRegistry resolves a country name to its ISO alpha-2 code.
type CountryRegistry interface {
	ISOCode(name string) (string, error)
}

// PhoneGeocoder is the phone parsing and country inference contract.
type PhoneGeocoder interface {
	Parse(raw string) (*phonenumbers.PhoneNumber, error)
	IsValid(number *phonenumbers.PhoneNumber) bool
	IsPossible(number *phonenumbers.PhoneNumber) bool
	CountryName(number *phonenumbers.PhoneNumber) (string, error)
}
