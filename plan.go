// Package rideeta turns a route, an elevation profile, and a rider's
// physical profile into a segment-by-segment pacing plan with arrival
// times.
package rideeta

import (
	"time"

	"github.com/faist23/RideWeather-Pro2-sub005/elevation"
	"github.com/faist23/RideWeather-Pro2-sub005/physics"
	"github.com/faist23/RideWeather-Pro2-sub005/route"
)

// DefaultSegmentLengthM is the pacing granularity used when PlanOptions
// leaves SegmentLengthM unset.
const DefaultSegmentLengthM = 1000.0

// Wind is one forecast sample: speed in m/s and the meteorological
// direction the wind blows from, in degrees.
type Wind struct {
	SpeedMS      float64 `json:"speed_ms"`
	DirectionDeg float64 `json:"direction_deg"`
}

// WindForecast supplies the expected wind at a location for a projected
// arrival time.
type WindForecast interface {
	WindAt(arrival time.Time, lat, lon float64) Wind
}

// ConstantWind is a WindForecast reporting the same wind everywhere.
// The zero value is calm air.
type ConstantWind struct {
	SpeedMS      float64
	DirectionDeg float64
}

// WindAt implements WindForecast.
func (c ConstantWind) WindAt(time.Time, float64, float64) Wind {
	return Wind{SpeedMS: c.SpeedMS, DirectionDeg: c.DirectionDeg}
}

// PlanOptions controls segmentation and the pacing mode of PlanRide.
// The zero value plans 1 km segments at the rider's target power in dry
// standard air.
type PlanOptions struct {
	SegmentLengthM float64   // target segment length in meters; <= 0 selects the default
	PerPoint       bool      // one segment per ingested route point, overriding SegmentLengthM
	AverageSpeedMS float64   // > 0 fixes speed and reports the power it requires
	Wet            bool      // wet-surface rolling resistance
	AirDensityKGM3 float64   // <= 0 uses the standard default
	StartTime      time.Time // ride start; zero leaves wall-clock arrival fields unset
}

// Segment is one pacing step of a planned ride. ETASec counts from the
// ride start to the segment's end.
type Segment struct {
	Index          int       `json:"index"`
	StartDistanceM float64   `json:"start_distance_m"`
	EndDistanceM   float64   `json:"end_distance_m"`
	DistanceM      float64   `json:"distance_m"`
	GradePct       float64   `json:"grade_pct"`
	BearingDeg     float64   `json:"bearing_deg"`
	HeadwindMS     float64   `json:"headwind_ms"`
	CrosswindMS    float64   `json:"crosswind_ms"`
	SpeedMS        float64   `json:"speed_ms"`
	PowerW         float64   `json:"power_w"`
	DurationSec    float64   `json:"duration_sec"`
	ETASec         float64   `json:"eta_sec"`
	ArrivalTime    time.Time `json:"arrival_time"`
}

// Result is the complete pacing plan for one route.
type Result struct {
	RouteName      string    `json:"route_name,omitempty"`
	TotalDistanceM float64   `json:"total_distance_m"`
	TotalSec       float64   `json:"total_sec"`
	AvgSpeedMS     float64   `json:"avg_speed_ms"`
	AvgPowerW      float64   `json:"avg_power_w"`
	StartTime      time.Time `json:"start_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	Segments       []Segment `json:"segments"`
}

// PlanRide walks the route segment by segment: local grade from the
// elevation profile, wind from the forecast at each segment's projected
// arrival, speed from the power model (or fixed in average-speed mode),
// and elapsed time accumulated forward so that later segments see later
// wind. It is a pure function of its inputs and never fails; degenerate
// input yields an empty plan.
func PlanRide(r *route.Route, a *elevation.Analysis, rider physics.Rider, forecast WindForecast, opts PlanOptions) *Result {
	res := &Result{StartTime: opts.StartTime}
	if r != nil {
		res.RouteName = r.Name
		res.TotalDistanceM = r.TotalDistanceM()
	}
	if res.TotalDistanceM <= 0 {
		return res
	}
	if a == nil {
		a = &elevation.Analysis{}
	}
	if forecast == nil {
		forecast = ConstantWind{}
	}

	bounds := segmentBounds(r, opts, res.TotalDistanceM)
	hasClock := !opts.StartTime.IsZero()

	var etaSec, workSec float64
	segments := make([]Segment, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		seg := Segment{
			Index:          i,
			StartDistanceM: bounds[i],
			EndDistanceM:   bounds[i+1],
		}
		seg.DistanceM = seg.EndDistanceM - seg.StartDistanceM

		start := r.PointAtDistance(seg.StartDistanceM)
		end := r.PointAtDistance(seg.EndDistanceM)
		seg.BearingDeg = route.Bearing(start.Latitude, start.Longitude, end.Latitude, end.Longitude)

		arrival := opts.StartTime.Add(secondsToDuration(etaSec))
		w := forecast.WindAt(arrival, start.Latitude, start.Longitude)
		seg.HeadwindMS, seg.CrosswindMS = physics.WindComponents(w.SpeedMS, w.DirectionDeg, seg.BearingDeg)

		grade := segmentGrade(a, seg.StartDistanceM, seg.EndDistanceM)
		seg.GradePct = grade * 100.0

		cond := physics.Conditions{
			Grade:       grade,
			HeadwindMS:  seg.HeadwindMS,
			CrosswindMS: seg.CrosswindMS,
			AirDensity:  opts.AirDensityKGM3,
			Wet:         opts.Wet,
		}
		if opts.AverageSpeedMS > 0 {
			seg.SpeedMS = opts.AverageSpeedMS
			seg.PowerW = physics.PowerRequired(rider, seg.SpeedMS, cond)
		} else {
			seg.SpeedMS = physics.SpeedForPower(rider, rider.TargetPowerW, cond)
			seg.PowerW = rider.TargetPowerW
		}

		seg.DurationSec = seg.DistanceM / seg.SpeedMS
		etaSec += seg.DurationSec
		seg.ETASec = etaSec
		if hasClock {
			seg.ArrivalTime = opts.StartTime.Add(secondsToDuration(etaSec))
		}
		workSec += seg.PowerW * seg.DurationSec
		segments = append(segments, seg)
	}

	res.Segments = segments
	res.TotalSec = etaSec
	if etaSec > 0 {
		res.AvgSpeedMS = res.TotalDistanceM / etaSec
		res.AvgPowerW = workSec / etaSec
	}
	if hasClock {
		res.ArrivalTime = opts.StartTime.Add(secondsToDuration(etaSec))
	}
	return res
}

// ETAAtDistance interpolates the elapsed seconds at which the plan
// reaches a cumulative distance, clamping beyond the final segment.
func (r *Result) ETAAtDistance(distanceM float64) float64 {
	if r == nil {
		return 0
	}
	for _, s := range r.Segments {
		if distanceM > s.EndDistanceM {
			continue
		}
		into := distanceM - s.StartDistanceM
		if into <= 0 || s.SpeedMS <= 0 {
			return s.ETASec - s.DurationSec
		}
		return s.ETASec - s.DurationSec + into/s.SpeedMS
	}
	if n := len(r.Segments); n > 0 {
		return r.Segments[n-1].ETASec
	}
	return 0
}

// segmentBounds returns the strictly increasing distance cuts the plan
// is evaluated over, always starting at 0 and ending at totalM.
func segmentBounds(r *route.Route, opts PlanOptions, totalM float64) []float64 {
	bounds := []float64{0}
	if opts.PerPoint {
		last := 0.0
		for _, p := range r.Points {
			if p.DistanceM > last && p.DistanceM < totalM {
				bounds = append(bounds, p.DistanceM)
				last = p.DistanceM
			}
		}
		return append(bounds, totalM)
	}
	step := opts.SegmentLengthM
	if step <= 0 {
		step = DefaultSegmentLengthM
	}
	for d := step; d < totalM; d += step {
		bounds = append(bounds, d)
	}
	return append(bounds, totalM)
}

// segmentGrade derives rise over run from profile elevations sampled at
// the segment's endpoints. Missing profile data reads as flat.
func segmentGrade(a *elevation.Analysis, startM, endM float64) float64 {
	startElev, okStart := a.ElevationAt(startM)
	endElev, okEnd := a.ElevationAt(endM)
	if !okStart || !okEnd {
		return 0
	}
	return physics.GradeBetween(endElev-startElev, endM-startM)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
