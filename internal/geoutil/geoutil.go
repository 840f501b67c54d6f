// Package geoutil provides the great-circle distance and centroid math
// shared by the location resolver and severity router. The facility store
// adapter leans on MySQL's spatial index for the coarse point-radius
// filter; this package recomputes distance server-side for the precision
// spec §4.4 requires, and computes median centroids for the resolver's
// local fallback strategies (spec §4.3).
package geoutil

import (
	"math"
	"sort"

	"github.com/golang/geo/s2"
)

const earthRadiusKM = 6371.0088

// HaversineKM returns the great-circle distance between two WGS84 points,
// in kilometres.
func HaversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lng1)
	b := s2.LatLngFromDegrees(lat2, lng2)
	angle := a.Distance(b)
	return float64(angle) * earthRadiusKM
}

// Point is a bare WGS84 coordinate.
type Point struct {
	Lat float64
	Lng float64
}

// MedianCentroid returns the median latitude and median longitude across
// points — robust to outlier records, per spec §4.3 strategy 2/3. Returns
// false if points is empty.
func MedianCentroid(points []Point) (Point, bool) {
	n := len(points)
	if n == 0 {
		return Point{}, false
	}
	lats := make([]float64, n)
	lngs := make([]float64, n)
	for i, p := range points {
		lats[i] = p.Lat
		lngs[i] = p.Lng
	}
	sort.Float64s(lats)
	sort.Float64s(lngs)
	return Point{Lat: median(lats), Lng: median(lngs)}, true
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Finite reports whether both coordinates are finite real numbers.
func Finite(lat, lng float64) bool {
	return !math.IsNaN(lat) && !math.IsInf(lat, 0) && !math.IsNaN(lng) && !math.IsInf(lng, 0)
}
