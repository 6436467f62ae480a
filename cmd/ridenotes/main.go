package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	rideeta "github.com/faist23/RideWeather-Pro2-sub005"
	"github.com/faist23/RideWeather-Pro2-sub005/elevation"
	"github.com/faist23/RideWeather-Pro2-sub005/physics"
	"github.com/faist23/RideWeather-Pro2-sub005/route"
)

func main() {
	var (
		weightKG  = flag.Float64("weight", 85, "Total rider+bike weight in kg")
		powerW    = flag.Float64("power", 200, "Target power in watts")
		speedMS   = flag.Float64("speed", 0, "Fixed average speed in m/s (replaces power pacing)")
		windSpeed = flag.Float64("wind-speed", 0, "Wind speed in m/s")
		windDir   = flag.Float64("wind-dir", 0, "Bearing the wind blows from, in degrees")
		wet       = flag.Bool("wet", false, "Wet-surface rolling resistance")
		start     = flag.String("start", "", "Ride start time, RFC 3339")
		jsonOut   = flag.Bool("json", false, "Emit the full plan as JSON instead of prose")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <path-to-route-file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	var startTime time.Time
	if strings.TrimSpace(*start) != "" {
		t, err := time.Parse(time.RFC3339, *start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -start: %v\n", err)
			os.Exit(2)
		}
		startTime = t
	}

	r, err := route.LoadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load route failed: %v\n", err)
		os.Exit(1)
	}

	analysis := elevation.Reconstruct(r)
	rider := physics.NewRider(*weightKG, *powerW)
	forecast := rideeta.ConstantWind{SpeedMS: *windSpeed, DirectionDeg: *windDir}
	plan := rideeta.PlanRide(r, analysis, rider, forecast, rideeta.PlanOptions{
		AverageSpeedMS: *speedMS,
		Wet:            *wet,
		StartTime:      startTime,
	})
	climbs := rideeta.DetectClimbs(analysis)

	if *jsonOut {
		doc := struct {
			RouteName string              `json:"route_name,omitempty"`
			Rider     physics.Rider       `json:"rider"`
			Elevation *elevation.Analysis `json:"elevation"`
			Climbs    []rideeta.Climb     `json:"climbs,omitempty"`
			Plan      *rideeta.Result     `json:"plan"`
		}{r.Name, rider, analysis, climbs, plan}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			fmt.Fprintf(os.Stderr, "json encode failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println(rideeta.BuildRideNotes(plan, analysis, climbs))
}
