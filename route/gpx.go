package route

import (
	"fmt"

	"github.com/tkrajina/gpxgo/gpx"
)

// parseGPX walks track segments in file order and falls back to route
// geometries when the file has no track points.
func parseGPX(data []byte) (*Route, error) {
	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	var pts []Point
	total := 0.0
	havePrev := false
	var prevLat, prevLon float64

	appendPoint := func(p *gpx.GPXPoint) {
		if havePrev {
			total += Haversine(prevLat, prevLon, p.Latitude, p.Longitude)
		}
		pt := Point{
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			DistanceM: total,
		}
		if p.Elevation.NotNull() {
			pt.ElevationM = floatPtr(p.Elevation.Value())
		}
		if !p.Timestamp.IsZero() {
			pt.Timestamp = p.Timestamp
		}
		pts = append(pts, pt)
		prevLat, prevLon = p.Latitude, p.Longitude
		havePrev = true
	}

	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for i := range seg.Points {
				appendPoint(&seg.Points[i])
			}
		}
	}
	if len(pts) == 0 {
		for _, rte := range doc.Routes {
			for i := range rte.Points {
				appendPoint(&rte.Points[i])
			}
		}
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("gpx: %w", ErrNoCoordinates)
	}
	return newRoute(gpxName(doc), pts), nil
}

// gpxName prefers the document-level name and falls back to the first
// named track, then the first named route. Files commonly name only
// the <trk> element.
func gpxName(doc *gpx.GPX) string {
	if doc.Name != "" {
		return doc.Name
	}
	for _, trk := range doc.Tracks {
		if trk.Name != "" {
			return trk.Name
		}
	}
	for _, rte := range doc.Routes {
		if rte.Name != "" {
			return rte.Name
		}
	}
	return ""
}
