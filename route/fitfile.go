package route

import (
	"bytes"
	"fmt"
	"math"

	"github.com/tormoder/fit"
)

const semicircleDegrees = 180.0 / 2147483648.0

// SemicirclesToDegrees converts a 32-bit semicircle angle to degrees.
func SemicirclesToDegrees(s int32) float64 {
	return float64(s) * semicircleDegrees
}

// DegreesToSemicircles converts degrees to the nearest semicircle integer.
func DegreesToSemicircles(deg float64) int32 {
	return int32(math.Round(deg / semicircleDegrees))
}

// altitudeProbes lists altitude sources in priority order; the first
// valid reading wins.
var altitudeProbes = []func(*fit.RecordMsg) (float64, bool){
	func(rec *fit.RecordMsg) (float64, bool) { return finiteValue(rec.GetEnhancedAltitudeScaled()) },
	func(rec *fit.RecordMsg) (float64, bool) { return finiteValue(rec.GetAltitudeScaled()) },
}

// parseFIT decodes a binary activity or course stream. Activities carry
// record messages; courses prefer embedded records and fall back to the
// sparser course_point waypoints.
func parseFIT(data []byte) (*Route, error) {
	decoded, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	switch decoded.FileId.Type {
	case fit.FileTypeActivity:
		activity, err := decoded.Activity()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
		}
		pts := recordPoints(activity.Records)
		if len(pts) == 0 {
			return nil, fmt.Errorf("fit activity: %w", ErrNoCoordinates)
		}
		return newRoute("", pts), nil
	case fit.FileTypeCourse:
		course, err := decoded.Course()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
		}
		pts := recordPoints(course.Records)
		if len(pts) == 0 {
			pts = coursePointTrack(course.CoursePoints)
		}
		if len(pts) == 0 {
			return nil, fmt.Errorf("fit course: %w", ErrNoCoordinates)
		}
		name := ""
		if course.Course != nil {
			name = course.Course.Name
		}
		return newRoute(name, pts), nil
	default:
		return nil, fmt.Errorf("fit file type %v: %w", decoded.FileId.Type, ErrNoCoordinates)
	}
}

// recordPoints normalizes record messages, accumulating great-circle
// distance between consecutive valid fixes.
func recordPoints(records []*fit.RecordMsg) []Point {
	var pts []Point
	total := 0.0
	havePrev := false
	var prevLat, prevLon float64

	for _, rec := range records {
		lat, lon, ok := recordPosition(rec)
		if !ok {
			continue
		}
		if havePrev {
			total += Haversine(prevLat, prevLon, lat, lon)
		}
		pt := Point{Latitude: lat, Longitude: lon, DistanceM: total}
		if alt, ok := recordAltitude(rec); ok {
			pt.ElevationM = floatPtr(alt)
		}
		if ts := rec.Timestamp; !ts.IsZero() && !fit.IsBaseTime(ts) {
			pt.Timestamp = ts
		}
		pts = append(pts, pt)
		prevLat, prevLon = lat, lon
		havePrev = true
	}
	return pts
}

// coursePointTrack normalizes course_point waypoints. Their embedded
// cumulative-distance field is authoritative and used as-is.
func coursePointTrack(points []*fit.CoursePointMsg) []Point {
	var pts []Point
	total := 0.0

	for _, cp := range points {
		if cp.PositionLat.Invalid() || cp.PositionLong.Invalid() {
			continue
		}
		lat := SemicirclesToDegrees(cp.PositionLat.Semicircles())
		lon := SemicirclesToDegrees(cp.PositionLong.Semicircles())
		if lat == 0 && lon == 0 {
			continue
		}
		if d := cp.GetDistanceScaled(); isFinite(d) && d >= 0 {
			total = d
		}
		pt := Point{Latitude: lat, Longitude: lon, DistanceM: total}
		if ts := cp.Timestamp; !ts.IsZero() && !fit.IsBaseTime(ts) {
			pt.Timestamp = ts
		}
		pts = append(pts, pt)
	}
	return pts
}

func recordPosition(rec *fit.RecordMsg) (float64, float64, bool) {
	if rec.PositionLat.Invalid() || rec.PositionLong.Invalid() {
		return 0, 0, false
	}
	lat := SemicirclesToDegrees(rec.PositionLat.Semicircles())
	lon := SemicirclesToDegrees(rec.PositionLong.Semicircles())
	// (0,0) is the encoder's missing-fix sentinel, not a real coordinate.
	if lat == 0 && lon == 0 {
		return 0, 0, false
	}
	return lat, lon, true
}

func recordAltitude(rec *fit.RecordMsg) (float64, bool) {
	for _, probe := range altitudeProbes {
		if v, ok := probe(rec); ok {
			return v, true
		}
	}
	return 0, false
}

func finiteValue(v float64) (float64, bool) {
	if !isFinite(v) {
		return 0, false
	}
	return v, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
