// Package geo holds the coordinate policy shared by the whole pipeline:
// validity bounds of the geospatial index, the fixed storage precision and
// the closeness predicate used when clustering radius query results.
package geo

import (
	"errors"
	"math"
	"strconv"

	"github.com/Houeta/meridian/internal/models"
)

// Latitude bounds of the EPSG:900913 / EPSG:3785 / OSGEO:41001 projection,
// which is what the geospatial index accepts.
const (
	MinLatitude  = -85.05112878
	MaxLatitude  = 85.05112878
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// precisionDigits is the number of decimal digits every stored coordinate is
// truncated to. 0.0001 degrees corresponds to roughly 10 meters. This is a
// fixed policy, not a configuration knob: the truncated value doubles as the
// deduplication key of the coordinate frequency counter.
const precisionDigits = 4

// ErrInvalidCoordinate reports a coordinate outside the projectable range.
var ErrInvalidCoordinate = errors.New("coordinate outside EPSG:900913 / EPSG:3785 / OSGEO:41001 bounds")

// Valid reports whether the coordinate pair fits the geospatial index bounds.
func Valid(lat, lon float64) bool {
	return lon >= MinLongitude && lon <= MaxLongitude &&
		lat >= MinLatitude && lat <= MaxLatitude
}

// Truncate rounds v to exactly four decimal digits. Rounding is
// round-half-to-even, the same policy the decimal formatter applies, so equal
// inputs always produce byte-identical serialized forms downstream.
func Truncate(v float64) float64 {
	out, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', precisionDigits, 64), 64)
	if err != nil {
		// FormatFloat output is always parseable; keep the input on the
		// impossible path rather than panic.
		return v
	}
	return out
}

// TruncateCoordinates applies the storage precision to both fields of a pair.
func TruncateCoordinates(c models.Coordinates) models.Coordinates {
	return models.Coordinates{Lat: Truncate(c.Lat), Lon: Truncate(c.Lon)}
}

// ClusterThreshold maps a clustering distance in meters to a coordinate-space
// threshold: 10^(digits-7) where digits is the number of decimal digits of
// the rounded absolute meter value. An order-of-magnitude approximation by
// intent, not a meter-to-degree conversion; it keeps radius queries free of
// haversine math.
func ClusterThreshold(meters float64) float64 {
	digits := len(strconv.Itoa(int(math.Round(math.Abs(meters)))))
	return math.Pow(10, float64(digits-7))
}

// CloseTo reports whether two coordinates are within threshold of each other
// on both axes. The predicate is symmetric but not transitive.
func CloseTo(a, b models.Coordinates, threshold float64) bool {
	return math.Abs(a.Lat-b.Lat) <= threshold && math.Abs(a.Lon-b.Lon) <= threshold
}
