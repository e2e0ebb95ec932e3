package models

// GeoEvent is the record published for every accepted sighting. Struct field
// order fixes the wire layout, so consumers always see the same key sequence.
type GeoEvent struct {
	Coord           Coordinates `json:"coord"`
	Categ           string      `json:"categ"`      // Caller supplied free-form tag.
	Value           string      `json:"value"`      // Original identifier (IP or phone string).
	Country         string      `json:"country"`    // Country name, empty when unknown.
	SubdivisionName string      `json:"specifName"` // Most specific subdivision name.
	CityName        string      `json:"cityName"`
	RegionCode      string      `json:"regionCode"` // ISO alpha-2 code.
}

// CoordEntry is the member layout of the per-day coordinate frequency set.
// The identical serialization of an identical entry is what makes repeated
// recordings accumulate on one counter.
type CoordEntry struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Categ string  `json:"categ"`
	Value string  `json:"value"`
}

// GeoPayload is the member carried by each entry of the per-day geospatial
// index.
type GeoPayload struct {
	Categ string `json:"categ"`
	Value string `json:"value"`
}
