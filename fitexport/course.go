// Package fitexport encodes a pacing plan as a binary FIT course so a
// head unit can navigate the route on the planned schedule. Record
// timestamps carry the plan's projected arrival at each profile point,
// and detected climbs become named summit waypoints.
package fitexport

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/muktihari/fit/encoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/proto"

	rideeta "github.com/faist23/RideWeather-Pro2-sub005"
	"github.com/faist23/RideWeather-Pro2-sub005/elevation"
	"github.com/faist23/RideWeather-Pro2-sub005/route"
)

// Altitude fields carry scale 5, offset 500; distance centimeters;
// speed millimeters per second; elapsed times milliseconds.
const (
	altitudeScale  = 5.0
	altitudeOffset = 500.0
	distanceScale  = 100.0
	speedScale     = 1000.0
	timeScale      = 1000.0
)

// courseSample is one record-to-be: a point along the route with its
// cumulative distance and, when known, an elevation.
type courseSample struct {
	distanceM  float64
	lat, lon   float64
	elevationM float64
	hasElev    bool
}

// WriteCourse encodes the plan for a route as a FIT course stream.
// Elevations come from the reconstructed profile when one is given and
// are omitted otherwise; the course name falls back to the route name.
// Timestamps count from the plan's start time, or from the current time
// when the plan has no clock.
func WriteCourse(w io.Writer, r *route.Route, a *elevation.Analysis, plan *rideeta.Result, climbs []rideeta.Climb, name string) error {
	if r == nil || len(r.Points) == 0 {
		return errors.New("route has no points")
	}
	if plan == nil {
		return errors.New("pacing plan is required")
	}
	if name == "" {
		name = r.Name
	}
	if name == "" {
		name = "planned ride"
	}
	base := plan.StartTime
	if base.IsZero() {
		base = time.Now().UTC()
	}
	end := base.Add(secondsDur(plan.TotalSec))
	samples := courseSamples(r, a)

	f := proto.FIT{}

	// Messages come from the NewX(nil) constructors so unset fields keep
	// the FIT invalid sentinel. A composite literal would encode every
	// zero value, and a zeroed compressed_speed_distance component would
	// overwrite speed and distance on re-decode.
	fileID := mesgdef.NewFileId(nil)
	fileID.Type = typedef.FileCourse
	fileID.Manufacturer = typedef.ManufacturerDevelopment
	fileID.Product = 0
	fileID.SerialNumber = uint32(base.Unix())
	fileID.TimeCreated = base
	f.Messages = append(f.Messages, fileID.ToMesg(nil))

	course := mesgdef.NewCourse(nil)
	course.Name = name
	course.Sport = typedef.SportCycling
	f.Messages = append(f.Messages, course.ToMesg(nil))

	first, last := samples[0], samples[len(samples)-1]
	lap := mesgdef.NewLap(nil)
	lap.Timestamp = end
	lap.StartTime = base
	lap.StartPositionLat = route.DegreesToSemicircles(first.lat)
	lap.StartPositionLong = route.DegreesToSemicircles(first.lon)
	lap.EndPositionLat = route.DegreesToSemicircles(last.lat)
	lap.EndPositionLong = route.DegreesToSemicircles(last.lon)
	lap.TotalElapsedTime = uint32(plan.TotalSec * timeScale)
	lap.TotalTimerTime = uint32(plan.TotalSec * timeScale)
	lap.TotalDistance = uint32(plan.TotalDistanceM * distanceScale)
	lap.Event = typedef.EventLap
	lap.EventType = typedef.EventTypeStop
	if a != nil {
		lap.TotalAscent = uint16(math.Round(a.TotalGainM))
		lap.TotalDescent = uint16(math.Round(a.TotalLossM))
	}
	f.Messages = append(f.Messages, lap.ToMesg(nil))

	startEvent := mesgdef.NewEvent(nil)
	startEvent.Timestamp = base
	startEvent.Event = typedef.EventTimer
	startEvent.EventType = typedef.EventTypeStart
	f.Messages = append(f.Messages, startEvent.ToMesg(nil))

	for _, s := range samples {
		speed := speedAtDistance(plan, s.distanceM)
		rec := mesgdef.NewRecord(nil)
		rec.Timestamp = base.Add(secondsDur(plan.ETAAtDistance(s.distanceM)))
		rec.PositionLat = route.DegreesToSemicircles(s.lat)
		rec.PositionLong = route.DegreesToSemicircles(s.lon)
		rec.Distance = uint32(s.distanceM * distanceScale)
		rec.Speed = uint16(speed * speedScale)
		rec.EnhancedSpeed = uint32(speed * speedScale)
		if s.hasElev {
			scaled := (s.elevationM + altitudeOffset) * altitudeScale
			rec.Altitude = uint16(scaled)
			rec.EnhancedAltitude = uint32(scaled)
		}
		f.Messages = append(f.Messages, rec.ToMesg(nil))
	}

	for _, c := range climbs {
		pt := r.PointAtDistance(c.StartDistanceM)
		cp := mesgdef.NewCoursePoint(nil)
		cp.Timestamp = base.Add(secondsDur(plan.ETAAtDistance(c.StartDistanceM)))
		cp.PositionLat = route.DegreesToSemicircles(pt.Latitude)
		cp.PositionLong = route.DegreesToSemicircles(pt.Longitude)
		cp.Distance = uint32(c.StartDistanceM * distanceScale)
		cp.Type = typedef.CoursePointSummit
		cp.Name = climbWaypointName(c)
		f.Messages = append(f.Messages, cp.ToMesg(nil))
	}

	stopEvent := mesgdef.NewEvent(nil)
	stopEvent.Timestamp = end
	stopEvent.Event = typedef.EventTimer
	stopEvent.EventType = typedef.EventTypeStopAll
	f.Messages = append(f.Messages, stopEvent.ToMesg(nil))

	enc := encoder.New(w)
	if err := enc.Encode(&f); err != nil {
		return fmt.Errorf("encode fit course: %w", err)
	}
	return nil
}

// courseSamples picks the record track: the reconstructed profile when
// available (denser and always carrying elevation), the raw route
// points otherwise.
func courseSamples(r *route.Route, a *elevation.Analysis) []courseSample {
	if a != nil && len(a.Points) > 0 {
		samples := make([]courseSample, 0, len(a.Points))
		for _, p := range a.Points {
			pt := r.PointAtDistance(p.DistanceM)
			samples = append(samples, courseSample{
				distanceM:  p.DistanceM,
				lat:        pt.Latitude,
				lon:        pt.Longitude,
				elevationM: p.ElevationM,
				hasElev:    true,
			})
		}
		return samples
	}
	samples := make([]courseSample, 0, len(r.Points))
	for _, p := range r.Points {
		s := courseSample{distanceM: p.DistanceM, lat: p.Latitude, lon: p.Longitude}
		if p.ElevationM != nil {
			s.elevationM = *p.ElevationM
			s.hasElev = true
		}
		samples = append(samples, s)
	}
	return samples
}

// speedAtDistance reads the planned speed for the segment containing a
// distance, falling back to the plan average past the last segment.
func speedAtDistance(plan *rideeta.Result, distanceM float64) float64 {
	for _, seg := range plan.Segments {
		if distanceM <= seg.EndDistanceM {
			return seg.SpeedMS
		}
	}
	if n := len(plan.Segments); n > 0 {
		return plan.Segments[n-1].SpeedMS
	}
	return plan.AvgSpeedMS
}

func climbWaypointName(c rideeta.Climb) string {
	switch c.Category {
	case "":
		return "Climb"
	case "HC":
		return "HC climb"
	default:
		return "Cat " + c.Category + " climb"
	}
}

func secondsDur(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
