// Package geo holds the great-circle math used by the spot catalog.
package geo

import (
	"math"
	"sort"
)

// EarthRadiusKm is the mean radius of the spherical Earth approximation.
const EarthRadiusKm = 6371.0

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// Valid reports whether the coordinate is a finite point on the globe.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// DistanceKm returns the haversine distance between two coordinates.
func DistanceKm(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// Rounding can push h a hair past 1 for antipodal points.
	h = math.Min(1, h)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// BoundingBox returns a lat/lng box that contains every point within radiusKm of
// center. It is a coarse prefilter; callers still check DistanceKm.
func BoundingBox(center Coordinate, radiusKm float64) (minLat, maxLat, minLng, maxLng float64) {
	latDelta := radiusKm / EarthRadiusKm * 180 / math.Pi
	minLat = math.Max(-90, center.Lat-latDelta)
	maxLat = math.Min(90, center.Lat+latDelta)

	cosLat := math.Cos(center.Lat * math.Pi / 180)
	if cosLat < 1e-6 || maxLat >= 90 || minLat <= -90 {
		return minLat, maxLat, -180, 180
	}
	lngDelta := latDelta / cosLat
	if lngDelta >= 180 || center.Lng-lngDelta < -180 || center.Lng+lngDelta > 180 {
		// Wrapping across the antimeridian: don't filter on longitude.
		return minLat, maxLat, -180, 180
	}
	return minLat, maxLat, center.Lng - lngDelta, center.Lng + lngDelta
}

// Hit is one point that fell inside a radius query.
type Hit struct {
	Index      int
	DistanceKm float64
}

// WithinRadius returns the indexes of points within radiusKm of center (inclusive),
// ordered by ascending distance. Equal distances keep input order.
func WithinRadius(center Coordinate, radiusKm float64, points []Coordinate) []Hit {
	hits := []Hit{}
	if radiusKm <= 0 {
		return hits
	}
	for i, p := range points {
		d := DistanceKm(center, p)
		if d <= radiusKm {
			hits = append(hits, Hit{Index: i, DistanceKm: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].DistanceKm < hits[j].DistanceKm
	})
	return hits
}
