package models

// Coordinates represents a geographical point. The JSON field order is part
// of the storage contract: every serialized form writes lat before lon.
type Coordinates struct {
	Lat float64 `json:"lat"` // Latitude of the geographical point.
	Lon float64 `json:"lon"` // Longitude of the geographical point.
}

// ResolvedLocation is the outcome of resolving a raw identifier (IP address
// or phone number) to a place. It is immutable once constructed; coordinates
// are already truncated to the storage precision.
type ResolvedLocation struct {
	Coordinates     Coordinates // Representative coordinate for the identifier.
	RegionCode      string      // ISO alpha-2 code of the country.
	CountryName     string      // Human readable country name.
	CityName        string      // City name, empty when resolution has no city precision.
	SubdivisionName string      // Most specific subdivision name, empty when unknown.
}
