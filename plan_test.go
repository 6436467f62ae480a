package rideeta

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/faist23/RideWeather-Pro2-sub005/elevation"
	"github.com/faist23/RideWeather-Pro2-sub005/physics"
	"github.com/faist23/RideWeather-Pro2-sub005/route"
)

func fptr(v float64) *float64 {
	return &v
}

// hillRoute is 3 km due north: 1 km flat, 1 km at 5%, 1 km flat.
func hillRoute() *route.Route {
	return &route.Route{
		Name: "hill test loop",
		Points: []route.Point{
			{Latitude: 45.000, Longitude: 0, ElevationM: fptr(100), DistanceM: 0},
			{Latitude: 45.009, Longitude: 0, ElevationM: fptr(100), DistanceM: 1000},
			{Latitude: 45.018, Longitude: 0, ElevationM: fptr(150), DistanceM: 2000},
			{Latitude: 45.027, Longitude: 0, ElevationM: fptr(150), DistanceM: 3000},
		},
	}
}

// flatRoute is 3 km due north at a constant 100 m elevation.
func flatRoute() *route.Route {
	r := hillRoute()
	r.Name = "flat test run"
	for i := range r.Points {
		r.Points[i].ElevationM = fptr(100)
	}
	return r
}

func planFor(t *testing.T, r *route.Route, forecast WindForecast, opts PlanOptions) (*Result, *elevation.Analysis) {
	t.Helper()
	a := elevation.Reconstruct(r)
	res := PlanRide(r, a, physics.NewRider(80, 200), forecast, opts)
	if res == nil {
		t.Fatal("PlanRide returned nil")
	}
	return res, a
}

func TestPlanRideSegments(t *testing.T) {
	res, _ := planFor(t, hillRoute(), ConstantWind{}, PlanOptions{})

	if res.RouteName != "hill test loop" {
		t.Fatalf("route name = %q", res.RouteName)
	}
	if res.TotalDistanceM != 3000 {
		t.Fatalf("total distance = %v", res.TotalDistanceM)
	}
	if len(res.Segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(res.Segments))
	}
	for i, want := range [][2]float64{{0, 1000}, {1000, 2000}, {2000, 3000}} {
		s := res.Segments[i]
		if s.Index != i || s.StartDistanceM != want[0] || s.EndDistanceM != want[1] {
			t.Fatalf("segment %d bounds = %v..%v (index %d)", i, s.StartDistanceM, s.EndDistanceM, s.Index)
		}
	}

	if g := res.Segments[1].GradePct; math.Abs(g-5.0) > 0.01 {
		t.Fatalf("climb segment grade = %v%%, want 5%%", g)
	}
	if g := res.Segments[0].GradePct; math.Abs(g) > 0.01 {
		t.Fatalf("flat segment grade = %v%%", g)
	}

	flat, climb := res.Segments[0].SpeedMS, res.Segments[1].SpeedMS
	if flat < 8.5 || flat > 10.5 {
		t.Fatalf("flat speed = %v m/s, want roughly 9.4", flat)
	}
	if climb >= flat {
		t.Fatalf("climb speed %v not below flat speed %v", climb, flat)
	}
	if climb < 3.5 || climb > 5.0 {
		t.Fatalf("climb speed = %v m/s, want roughly 4.2", climb)
	}

	var eta float64
	for i, s := range res.Segments {
		if s.PowerW != 200 {
			t.Fatalf("segment %d power = %v, want target 200", i, s.PowerW)
		}
		if s.ETASec <= eta {
			t.Fatalf("segment %d ETA %v not after %v", i, s.ETASec, eta)
		}
		eta = s.ETASec
	}
	if math.Abs(res.TotalSec-eta) > 1e-9 {
		t.Fatalf("total %v != final ETA %v", res.TotalSec, eta)
	}
	if math.Abs(res.AvgSpeedMS-3000/res.TotalSec) > 1e-9 {
		t.Fatalf("avg speed = %v", res.AvgSpeedMS)
	}
	if math.Abs(res.AvgPowerW-200) > 1e-9 {
		t.Fatalf("avg power = %v", res.AvgPowerW)
	}
}

func TestPlanRideIsPure(t *testing.T) {
	r := hillRoute()
	a := elevation.Reconstruct(r)
	rider := physics.NewRider(80, 200)
	first := PlanRide(r, a, rider, ConstantWind{SpeedMS: 3, DirectionDeg: 180}, PlanOptions{})
	second := PlanRide(r, a, rider, ConstantWind{SpeedMS: 3, DirectionDeg: 180}, PlanOptions{})
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical inputs produced different plans")
	}
}

func TestPlanRideAverageSpeedMode(t *testing.T) {
	res, _ := planFor(t, hillRoute(), ConstantWind{}, PlanOptions{AverageSpeedMS: 10})

	for i, s := range res.Segments {
		if s.SpeedMS != 10 {
			t.Fatalf("segment %d speed = %v, want fixed 10", i, s.SpeedMS)
		}
	}
	if math.Abs(res.TotalSec-300) > 1e-9 {
		t.Fatalf("total = %v s, want 300", res.TotalSec)
	}

	flat, climb := res.Segments[0].PowerW, res.Segments[1].PowerW
	if climb <= flat {
		t.Fatalf("climb power %v not above flat power %v", climb, flat)
	}
	want := physics.PowerRequired(physics.NewRider(80, 200), 10, physics.Conditions{})
	if math.Abs(flat-want) > 1e-9 {
		t.Fatalf("flat power = %v, want forward model %v", flat, want)
	}
}

// timedWind switches from calm to windy once the projected arrival
// passes a fixed offset from the zero time.
type timedWind struct {
	after time.Duration
	windy Wind
	calls int
}

func (f *timedWind) WindAt(arrival time.Time, lat, lon float64) Wind {
	f.calls++
	if arrival.Sub(time.Time{}) >= f.after {
		return f.windy
	}
	return Wind{}
}

func TestPlanRideWindFeedForward(t *testing.T) {
	forecast := &timedWind{after: 150 * time.Second, windy: Wind{SpeedMS: 8, DirectionDeg: 0}}
	res, _ := planFor(t, flatRoute(), forecast, PlanOptions{})

	if forecast.calls != len(res.Segments) {
		t.Fatalf("forecast queried %d times for %d segments", forecast.calls, len(res.Segments))
	}
	if h := res.Segments[0].HeadwindMS; math.Abs(h) > 1e-9 {
		t.Fatalf("first segment headwind = %v, want calm", h)
	}
	last := res.Segments[2]
	if math.Abs(last.HeadwindMS-8) > 1e-6 {
		t.Fatalf("late segment headwind = %v, want 8", last.HeadwindMS)
	}
	if last.SpeedMS >= res.Segments[0].SpeedMS {
		t.Fatalf("headwind segment %v m/s not slower than calm %v m/s", last.SpeedMS, res.Segments[0].SpeedMS)
	}
}

func TestPlanRideCrosswind(t *testing.T) {
	calm, _ := planFor(t, flatRoute(), ConstantWind{}, PlanOptions{})
	crossed, _ := planFor(t, flatRoute(), ConstantWind{SpeedMS: 6, DirectionDeg: 90}, PlanOptions{})

	s := crossed.Segments[0]
	if math.Abs(s.CrosswindMS-6) > 1e-6 {
		t.Fatalf("crosswind = %v, want 6", s.CrosswindMS)
	}
	if math.Abs(s.HeadwindMS) > 1e-6 {
		t.Fatalf("headwind = %v, want 0 for a pure crosswind", s.HeadwindMS)
	}
	if s.SpeedMS >= calm.Segments[0].SpeedMS {
		t.Fatalf("crosswind speed %v not below calm speed %v", s.SpeedMS, calm.Segments[0].SpeedMS)
	}
}

func TestPlanRidePerPoint(t *testing.T) {
	r := &route.Route{
		Name: "irregular",
		Points: []route.Point{
			{Latitude: 45.000, Longitude: 0, ElevationM: fptr(100), DistanceM: 0},
			{Latitude: 45.004, Longitude: 0, ElevationM: fptr(100), DistanceM: 400},
			{Latitude: 45.012, Longitude: 0, ElevationM: fptr(100), DistanceM: 1300},
			{Latitude: 45.027, Longitude: 0, ElevationM: fptr(100), DistanceM: 3000},
		},
	}

	perPoint, _ := planFor(t, r, ConstantWind{}, PlanOptions{PerPoint: true})
	if len(perPoint.Segments) != 3 {
		t.Fatalf("per-point plan has %d segments, want 3", len(perPoint.Segments))
	}
	for i, want := range [][2]float64{{0, 400}, {400, 1300}, {1300, 3000}} {
		s := perPoint.Segments[i]
		if s.StartDistanceM != want[0] || s.EndDistanceM != want[1] {
			t.Fatalf("per-point segment %d = %v..%v, want %v..%v", i, s.StartDistanceM, s.EndDistanceM, want[0], want[1])
		}
	}

	fixed, _ := planFor(t, r, ConstantWind{}, PlanOptions{})
	for i, want := range [][2]float64{{0, 1000}, {1000, 2000}, {2000, 3000}} {
		s := fixed.Segments[i]
		if s.StartDistanceM != want[0] || s.EndDistanceM != want[1] {
			t.Fatalf("fixed segment %d = %v..%v, want %v..%v", i, s.StartDistanceM, s.EndDistanceM, want[0], want[1])
		}
	}
}

func TestPlanRideDegenerateInput(t *testing.T) {
	rider := physics.NewRider(80, 200)

	res := PlanRide(nil, nil, rider, nil, PlanOptions{})
	if len(res.Segments) != 0 || res.TotalSec != 0 || res.TotalDistanceM != 0 {
		t.Fatalf("nil route produced %+v", res)
	}

	single := &route.Route{Points: []route.Point{{Latitude: 45, Longitude: 0}}}
	res = PlanRide(single, elevation.Reconstruct(single), rider, nil, PlanOptions{})
	if len(res.Segments) != 0 {
		t.Fatalf("zero-distance route produced %d segments", len(res.Segments))
	}

	res = PlanRide(hillRoute(), nil, rider, nil, PlanOptions{})
	if len(res.Segments) != 3 {
		t.Fatalf("nil analysis and forecast: %d segments, want 3", len(res.Segments))
	}
}

func TestPlanRideClock(t *testing.T) {
	start := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	res, _ := planFor(t, hillRoute(), ConstantWind{}, PlanOptions{StartTime: start})

	if got := res.ArrivalTime.Sub(start).Seconds(); math.Abs(got-res.TotalSec) > 1e-6 {
		t.Fatalf("arrival offset %v s, want total %v s", got, res.TotalSec)
	}
	if !res.Segments[0].ArrivalTime.After(start) {
		t.Fatalf("first segment arrival %v not after start", res.Segments[0].ArrivalTime)
	}

	relative, _ := planFor(t, hillRoute(), ConstantWind{}, PlanOptions{})
	if !relative.ArrivalTime.IsZero() || !relative.Segments[0].ArrivalTime.IsZero() {
		t.Fatal("zero start time should leave wall-clock arrivals unset")
	}
}

func TestETAAtDistance(t *testing.T) {
	res, _ := planFor(t, hillRoute(), ConstantWind{}, PlanOptions{})

	if got := res.ETAAtDistance(0); got != 0 {
		t.Fatalf("ETA at 0 = %v", got)
	}
	half := res.Segments[0].DurationSec / 2
	if got := res.ETAAtDistance(500); math.Abs(got-half) > 1e-9 {
		t.Fatalf("ETA at 500 = %v, want %v", got, half)
	}
	if got := res.ETAAtDistance(3000); math.Abs(got-res.TotalSec) > 1e-9 {
		t.Fatalf("ETA at route end = %v, want %v", got, res.TotalSec)
	}
	if got := res.ETAAtDistance(5000); math.Abs(got-res.TotalSec) > 1e-9 {
		t.Fatalf("ETA beyond route = %v, want clamp to %v", got, res.TotalSec)
	}
	if !(res.ETAAtDistance(1500) > res.ETAAtDistance(1000)) {
		t.Fatal("ETA not increasing with distance")
	}

	var missing *Result
	if got := missing.ETAAtDistance(100); got != 0 {
		t.Fatalf("nil result ETA = %v", got)
	}
}
