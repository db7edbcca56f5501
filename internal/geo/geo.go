package geo

import (
	"math"
	"net/http"
	"time"

	"go-attend/internal/shared/apperror"
)

// DefaultMaxAccuracyMeters is the coarsest position reading the evaluator
// accepts. A reading above this cannot reliably prove presence or absence.
const DefaultMaxAccuracyMeters = 50.0

const earthRadiusMeters = 6371000.0

var ErrAccuracyTooCoarse = apperror.New(
	apperror.CodeGeofenceRejected,
	"position accuracy too coarse to verify location",
	http.StatusUnprocessableEntity,
)

// Position is a single device location reading. Latitude and longitude
// carry range checks only: zero is a valid coordinate (equator, prime
// meridian), so `required` would wrongly reject it.
type Position struct {
	Latitude       float64   `json:"latitude" binding:"min=-90,max=90"`
	Longitude      float64   `json:"longitude" binding:"min=-180,max=180"`
	AccuracyMeters float64   `json:"accuracy_meters" binding:"required,gt=0"`
	ObservedAt     time.Time `json:"observed_at" binding:"required"`
}

// Point is a bare coordinate, used for boundary vertices and site centers.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Boundary is a registered geofence: a circle (center + radius) or, when
// Polygon has at least three vertices, a polygon. Polygon wins if both are set.
type Boundary struct {
	Center       Point
	RadiusMeters float64
	Polygon      []Point
}

// Evaluation is the result of checking a position against a boundary.
type Evaluation struct {
	Inside         bool
	DistanceMeters float64
}

type Evaluator struct {
	maxAccuracyMeters float64
}

func NewEvaluator(maxAccuracyMeters float64) *Evaluator {
	if maxAccuracyMeters <= 0 {
		maxAccuracyMeters = DefaultMaxAccuracyMeters
	}
	return &Evaluator{maxAccuracyMeters: maxAccuracyMeters}
}

// Evaluate answers inside/outside plus the distance from the boundary center.
// A reading coarser than the accuracy ceiling is rejected rather than
// evaluated.
func (e *Evaluator) Evaluate(pos Position, b Boundary) (Evaluation, error) {
	if pos.AccuracyMeters > e.maxAccuracyMeters {
		return Evaluation{}, ErrAccuracyTooCoarse
	}

	p := Point{Latitude: pos.Latitude, Longitude: pos.Longitude}
	distance := HaversineMeters(p, b.Center)

	if len(b.Polygon) >= 3 {
		return Evaluation{
			Inside:         pointInPolygon(p, b.Polygon),
			DistanceMeters: distance,
		}, nil
	}

	return Evaluation{
		Inside:         distance <= b.RadiusMeters,
		DistanceMeters: distance,
	}, nil
}

// HaversineMeters is the great-circle distance between two coordinates.
func HaversineMeters(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// pointInPolygon is a ray-casting test. Treats coordinates as planar, which
// is fine at training-site scale.
func pointInPolygon(p Point, polygon []Point) bool {
	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		pi, pj := polygon[i], polygon[j]
		intersects := (pi.Longitude > p.Longitude) != (pj.Longitude > p.Longitude) &&
			p.Latitude < (pj.Latitude-pi.Latitude)*(p.Longitude-pi.Longitude)/(pj.Longitude-pi.Longitude)+pi.Latitude
		if intersects {
			inside = !inside
		}
		j = i
	}
	return inside
}
