package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faist23/RideWeather-Pro2-sub005/pipeline"
)

func main() {
	var (
		routePath = flag.String("route", "", "Path to input .gpx or .fit route")
		outDir    = flag.String("out", "", "Output directory")
		weightKG  = flag.Float64("weight", 0, "Total rider+bike weight in kg")
		powerW    = flag.Float64("power", 0, "Target power in watts")
		speedMS   = flag.Float64("speed", 0, "Fixed average speed in m/s (replaces power pacing)")
		windSpeed = flag.Float64("wind-speed", 0, "Wind speed in m/s")
		windDir   = flag.Float64("wind-dir", 0, "Bearing the wind blows from, in degrees")
		wet       = flag.Bool("wet", false, "Wet-surface rolling resistance")
		start     = flag.String("start", "", "Ride start time, RFC 3339 (e.g. 2026-07-04T07:30:00Z)")
		segmentM  = flag.Float64("segment", 0, "Pacing segment length in meters (default 1000)")
		format    = flag.String("format", "parquet", "Elevation profile format: parquet|csv")
		overwrite = flag.Bool("overwrite", true, "Allow writing into non-empty output directories")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --route ride.gpx --out outdir [--weight 85] [--power 220] [--wind-speed 4 --wind-dir 270] [--start 2026-07-04T07:30:00Z]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*routePath) == "" || strings.TrimSpace(*outDir) == "" {
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

	result, err := pipeline.Run(pipeline.Options{
		RoutePath:        *routePath,
		OutDir:           *outDir,
		WeightKG:         *weightKG,
		TargetPowerW:     *powerW,
		AverageSpeedMS:   *speedMS,
		WindSpeedMS:      *windSpeed,
		WindDirectionDeg: *windDir,
		Wet:              *wet,
		StartTime:        startTime,
		SegmentLengthM:   *segmentM,
		Format:           *format,
		Overwrite:        *overwrite,
		CopySource:       true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "rideeta failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("rideeta complete\n")
	fmt.Printf("Output dir:     %s\n", result.OutputDir)
	fmt.Printf("manifest.json:  %s\n", result.ManifestPath)
	fmt.Printf("plan.json:      %s\n", result.PlanPath)
	fmt.Printf("segments.csv:   %s\n", result.SegmentsPath)
	fmt.Printf("profile:        %s\n", result.ProfilePath)
	fmt.Printf("ride notes:     %s\n", result.NotesPath)
	if result.SourceCopyPath != "" {
		fmt.Printf("source copy:    %s\n", result.SourceCopyPath)
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning:        %s\n", w)
	}
}
