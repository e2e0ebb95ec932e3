package resolver

import (
	"github.com/nyaruka/phonenumbers"
)

// LibPhoneGeocoder implements PhoneGeocoder on top of the libphonenumber
// port, with country descriptions resolved in English.
type LibPhoneGeocoder struct {
	lang string
}

// NewLibPhoneGeocoder creates the production phone geocoder.
func NewLibPhoneGeocoder() *LibPhoneGeocoder {
	return &LibPhoneGeocoder{lang: "en"}
}

// Parse parses a raw phone number without a default region, so only numbers
// in international format resolve.
func (g *LibPhoneGeocoder) Parse(raw string) (*phonenumbers.PhoneNumber, error) {
	return phonenumbers.Parse(raw, "")
}

// IsValid reports whether the number is valid for its region.
func (g *LibPhoneGeocoder) IsValid(number *phonenumbers.PhoneNumber) bool {
	return phonenumbers.IsValidNumber(number)
}

// IsPossible reports whether the number is at least possible by length.
func (g *LibPhoneGeocoder) IsPossible(number *phonenumbers.PhoneNumber) bool {
	return phonenumbers.IsPossibleNumber(number)
}

// CountryName returns the country-level description of the number.
func (g *LibPhoneGeocoder) CountryName(number *phonenumbers.PhoneNumber) (string, error) {
	return phonenumbers.GetGeocodingForNumber(number, g.lang)
}
