package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	rideeta "github.com/faist23/RideWeather-Pro2-sub005"
	"github.com/faist23/RideWeather-Pro2-sub005/elevation"
	"github.com/faist23/RideWeather-Pro2-sub005/fitexport"
	"github.com/faist23/RideWeather-Pro2-sub005/physics"
	"github.com/faist23/RideWeather-Pro2-sub005/route"
)

func main() {
	var (
		routePath = flag.String("route", "", "Path to input .gpx or .fit route")
		outPath   = flag.String("out", "", "Output .fit course path")
		name      = flag.String("name", "", "Course name (defaults to the route name)")
		weightKG  = flag.Float64("weight", 85, "Total rider+bike weight in kg")
		powerW    = flag.Float64("power", 200, "Target power in watts")
		speedMS   = flag.Float64("speed", 0, "Fixed average speed in m/s (replaces power pacing)")
		windSpeed = flag.Float64("wind-speed", 0, "Wind speed in m/s")
		windDir   = flag.Float64("wind-dir", 0, "Bearing the wind blows from, in degrees")
		wet       = flag.Bool("wet", false, "Wet-surface rolling resistance")
		start     = flag.String("start", "", "Ride start time, RFC 3339")
		segmentM  = flag.Float64("segment", 0, "Pacing segment length in meters (default 1000)")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --route ride.gpx --out course.fit [--power 220] [--start 2026-07-04T07:30:00Z]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*routePath) == "" || strings.TrimSpace(*outPath) == "" {
		flag.Usage()
		os.Exit(2)
	}

	var startTime time.Time
	if strings.TrimSpace(*start) != "" {
		t, err := time.Parse(time.RFC3339, *start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --start: %v\n", err)
			os.Exit(2)
		}
		startTime = t
	}

	r, err := route.LoadFile(*routePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "routefit failed: %v\n", err)
		os.Exit(1)
	}

	analysis := elevation.Reconstruct(r)
	rider := physics.NewRider(*weightKG, *powerW)
	forecast := rideeta.ConstantWind{SpeedMS: *windSpeed, DirectionDeg: *windDir}
	plan := rideeta.PlanRide(r, analysis, rider, forecast, rideeta.PlanOptions{
		SegmentLengthM: *segmentM,
		AverageSpeedMS: *speedMS,
		Wet:            *wet,
		StartTime:      startTime,
	})
	climbs := rideeta.DetectClimbs(analysis)

	out, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "routefit failed: %v\n", err)
		os.Exit(1)
	}
	if err := fitexport.WriteCourse(out, r, analysis, plan, climbs, *name); err != nil {
		out.Close()
		fmt.Fprintf(os.Stderr, "routefit failed: %v\n", err)
		os.Exit(1)
	}
	if err := out.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "routefit failed: %v\n", err)
		os.Exit(1)
	}

	courseName := *name
	if courseName == "" {
		courseName = r.Name
	}
	estimated := time.Duration(plan.TotalSec * float64(time.Second)).Round(time.Second)

	fmt.Printf("routefit complete\n")
	fmt.Printf("Course file:  %s\n", *outPath)
	if courseName != "" {
		fmt.Printf("Course name:  %s\n", courseName)
	}
	fmt.Printf("Distance:     %.1f km\n", plan.TotalDistanceM/1000)
	fmt.Printf("Records:      %d\n", len(analysis.Points))
	fmt.Printf("Climbs:       %d\n", len(climbs))
	fmt.Printf("Est. time:    %s\n", estimated)
	if !analysis.HasActualData {
		fmt.Printf("warning:      elevation synthesized from distance; climbing totals are estimates\n")
	}
}
