// Package route normalizes the two supported track-file dialects into a
// single ordered point sequence with cumulative distance.
package route

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Dialect tags the encoding of a raw track byte stream.
type Dialect string

const (
	// DialectGPX is the XML waypoint-trace encoding.
	DialectGPX Dialect = "gpx"
	// DialectFIT is the compact binary activity/course encoding.
	DialectFIT Dialect = "fit"
)

var (
	// ErrUnsupportedFormat reports a dialect tag this package does not recognize.
	ErrUnsupportedFormat = errors.New("unsupported track format")
	// ErrParseFailure reports bytes that do not decode as the claimed dialect.
	ErrParseFailure = errors.New("track parse failure")
	// ErrNoCoordinates reports a decodable file that yielded zero usable points.
	ErrNoCoordinates = errors.New("no coordinates found")
)

// Point is one normalized track point. ElevationM is nil when the source
// carried no elevation sample; Timestamp is zero when the source carried
// no time.
type Point struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	ElevationM *float64  `json:"elevation_m,omitempty"`
	DistanceM  float64   `json:"distance_m"`
	Timestamp  time.Time `json:"timestamp,omitempty"`
}

// Route is an ordered track with monotonic non-decreasing cumulative
// distance. Points are immutable once ingested.
type Route struct {
	Name   string  `json:"name,omitempty"`
	Points []Point `json:"points"`
}

// Load parses raw track bytes tagged with a dialect.
func Load(data []byte, dialect Dialect) (*Route, error) {
	switch dialect {
	case DialectGPX:
		return parseGPX(data)
	case DialectFIT:
		return parseFIT(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(dialect))
	}
}

// LoadFile reads a track file and infers its dialect from the extension.
func LoadFile(path string) (*Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read track file: %w", err)
	}
	dialect, err := DialectForPath(path)
	if err != nil {
		return nil, err
	}
	return Load(data, dialect)
}

// DialectForPath infers the track dialect from a file name's extension.
func DialectForPath(path string) (Dialect, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gpx":
		return DialectGPX, nil
	case ".fit":
		return DialectFIT, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// newRoute wraps parsed points, enforcing monotonic cumulative distance.
func newRoute(name string, points []Point) *Route {
	for i := 1; i < len(points); i++ {
		if points[i].DistanceM < points[i-1].DistanceM {
			points[i].DistanceM = points[i-1].DistanceM
		}
	}
	return &Route{Name: name, Points: points}
}

// TotalDistanceM returns the cumulative distance at the final point.
func (r *Route) TotalDistanceM() float64 {
	if len(r.Points) == 0 {
		return 0
	}
	return r.Points[len(r.Points)-1].DistanceM
}

// ElevationCoverage reports the fraction of points carrying a raw
// elevation sample.
func (r *Route) ElevationCoverage() float64 {
	if len(r.Points) == 0 {
		return 0
	}
	n := 0
	for _, p := range r.Points {
		if p.ElevationM != nil {
			n++
		}
	}
	return float64(n) / float64(len(r.Points))
}

// PointAtDistance returns the interpolated position at a cumulative
// distance along the route, clamping beyond either end.
func (r *Route) PointAtDistance(distanceM float64) Point {
	pts := r.Points
	if len(pts) == 0 {
		return Point{}
	}
	if distanceM <= pts[0].DistanceM {
		return pts[0]
	}
	if distanceM >= pts[len(pts)-1].DistanceM {
		return pts[len(pts)-1]
	}
	idx := sort.Search(len(pts), func(i int) bool {
		return pts[i].DistanceM >= distanceM
	})
	prev, next := pts[idx-1], pts[idx]
	span := next.DistanceM - prev.DistanceM
	if span <= 0 {
		return next
	}
	ratio := (distanceM - prev.DistanceM) / span
	return Point{
		Latitude:  prev.Latitude + (next.Latitude-prev.Latitude)*ratio,
		Longitude: prev.Longitude + (next.Longitude-prev.Longitude)*ratio,
		DistanceM: distanceM,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
