package coords

import (
	"github.com/golang/geo/s2"

	"github.com/intelligrit/guess-tally/internal/model"
)

const (
	// earthRadiusKm is the mean earth radius used for great-circle distances.
	earthRadiusKm = 6371.009
	kmPerMile     = 1.609344
)

// Distance returns the great-circle distance between a and b in miles and kilometers.
func Distance(a, b model.Coordinate) (miles, km float64) {
	angle := s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(b.Lat, b.Lon))
	km = angle.Radians() * earthRadiusKm
	return km / kmPerMile, km
}
