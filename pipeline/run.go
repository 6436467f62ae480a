// Package pipeline runs the full route-to-ride-plan flow and materializes
// its artifacts: manifest, plan document, segment table, elevation
// profile, and ride notes.
package pipeline

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	rideeta "github.com/faist23/RideWeather-Pro2-sub005"
	"github.com/faist23/RideWeather-Pro2-sub005/elevation"
	"github.com/faist23/RideWeather-Pro2-sub005/physics"
	"github.com/faist23/RideWeather-Pro2-sub005/route"
)

// Defaults applied when the caller leaves rider inputs unset. Both are
// surfaced as warnings so the plan is never silently built on them.
const (
	defaultTotalWeightKG = 85.0
	defaultTargetPowerW  = 200.0
)

// Run executes the pipeline against a route file and writes all
// artifacts into opts.OutDir.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.RoutePath) == "" {
		return nil, fmt.Errorf("route path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	data, err := os.ReadFile(opts.RoutePath)
	if err != nil {
		return nil, fmt.Errorf("read route file: %w", err)
	}

	bytesRes, err := RunBytes(BytesOptions{
		SourceFileName:   filepath.Base(opts.RoutePath),
		RouteData:        data,
		WeightKG:         opts.WeightKG,
		TargetPowerW:     opts.TargetPowerW,
		AverageSpeedMS:   opts.AverageSpeedMS,
		WindSpeedMS:      opts.WindSpeedMS,
		WindDirectionDeg: opts.WindDirectionDeg,
		Wet:              opts.Wet,
		StartTime:        opts.StartTime,
		SegmentLengthM:   opts.SegmentLengthM,
		Format:           opts.Format,
		CopySource:       opts.CopySource,
	})
	if err != nil {
		return nil, err
	}

	if err := ensureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}

	res := &Result{
		PlanID:    bytesRes.PlanID,
		OutputDir: opts.OutDir,
		Warnings:  bytesRes.Warnings,
	}
	for name, content := range bytesRes.Files {
		path := filepath.Join(opts.OutDir, name)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
		switch {
		case name == "manifest.json":
			res.ManifestPath = path
		case name == "plan.json":
			res.PlanPath = path
		case name == "segments.csv":
			res.SegmentsPath = path
		case name == "ride_notes.md":
			res.NotesPath = path
		case strings.HasPrefix(name, "profile."):
			res.ProfilePath = path
		case strings.HasPrefix(name, "source"):
			res.SourceCopyPath = path
		}
	}
	return res, nil
}

// RunBytes executes the pipeline fully in memory and returns the
// artifacts keyed by file name.
func RunBytes(opts BytesOptions) (*BytesResult, error) {
	name := strings.TrimSpace(opts.SourceFileName)
	if name == "" {
		return nil, fmt.Errorf("source file name is required")
	}
	if len(opts.RouteData) == 0 {
		return nil, fmt.Errorf("route data is required")
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	dialect, err := route.DialectForPath(name)
	if err != nil {
		return nil, err
	}
	r, err := route.Load(opts.RouteData, dialect)
	if err != nil {
		return nil, fmt.Errorf("load route: %w", err)
	}

	analysis := elevation.Reconstruct(r)

	var warnings []string
	weight := opts.WeightKG
	if weight <= 0 {
		weight = defaultTotalWeightKG
		warnings = append(warnings, fmt.Sprintf("rider weight not provided; using %.0f kg total system weight", defaultTotalWeightKG))
	}
	power := opts.TargetPowerW
	if power <= 0 && opts.AverageSpeedMS <= 0 {
		power = defaultTargetPowerW
		warnings = append(warnings, fmt.Sprintf("target power not provided; using %.0f W", defaultTargetPowerW))
	}
	rider := physics.NewRider(weight, power)
	wind := rideeta.Wind{SpeedMS: opts.WindSpeedMS, DirectionDeg: opts.WindDirectionDeg}

	plan := rideeta.PlanRide(r, analysis, rider, rideeta.ConstantWind(wind), rideeta.PlanOptions{
		SegmentLengthM: opts.SegmentLengthM,
		AverageSpeedMS: opts.AverageSpeedMS,
		Wet:            opts.Wet,
		StartTime:      opts.StartTime,
	})
	climbs := rideeta.DetectClimbs(analysis)
	notes := rideeta.BuildRideNotes(plan, analysis, climbs)

	if !analysis.HasActualData {
		warnings = append(warnings, "elevation synthesized from distance; climbing totals are estimates")
	}
	if analysis.OutlierPairs > 0 {
		warnings = append(warnings, fmt.Sprintf("%d implausible elevation jumps excluded from climbing totals", analysis.OutlierPairs))
	}

	planID := uuid.NewString()
	generated := time.Now().UTC()

	files := make(map[string][]byte, 6)

	planDoc := PlanDocument{
		FormatVersion: PlanFormatVersion,
		PlanID:        planID,
		GeneratedAt:   generated,
		RouteName:     r.Name,
		Dialect:       string(dialect),
		Rider:         rider,
		Wind:          wind,
		Elevation:     summarizeElevation(analysis),
		Climbs:        climbs,
		Plan:          plan,
	}
	planJSON, err := marshalJSON(planDoc)
	if err != nil {
		return nil, fmt.Errorf("marshal plan.json: %w", err)
	}
	files["plan.json"] = planJSON

	files["segments.csv"] = marshalSegmentsCSV(plan.Segments)

	profileName := "profile." + format
	switch format {
	case "csv":
		files[profileName] = marshalProfileCSV(analysis.Points)
	case "parquet":
		content, err := marshalProfileParquet(analysis.Points)
		if err != nil {
			return nil, fmt.Errorf("marshal profile parquet: %w", err)
		}
		files[profileName] = content
	}

	files["ride_notes.md"] = []byte(notes + "\n")

	if opts.CopySource {
		files["source"+strings.ToLower(filepath.Ext(name))] = append([]byte(nil), opts.RouteData...)
	}

	sum := sha256.Sum256(opts.RouteData)
	manifest := Manifest{
		FormatVersion:   PlanFormatVersion,
		PlanID:          planID,
		GeneratedAt:     generated,
		SourceFileName:  name,
		SourceSHA256:    hex.EncodeToString(sum[:]),
		SourceSizeBytes: int64(len(opts.RouteData)),
		Dialect:         string(dialect),
		RouteName:       r.Name,
		PointCount:      len(r.Points),
		Artifacts:       artifactNames(files),
	}
	manifestJSON, err := marshalJSON(manifest)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest.json: %w", err)
	}
	files["manifest.json"] = manifestJSON

	return &BytesResult{PlanID: planID, Files: files, Warnings: warnings}, nil
}

func normalizeFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		f = "parquet"
	}
	if f != "parquet" && f != "csv" {
		return "", fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	return f, nil
}

func summarizeElevation(a *elevation.Analysis) ElevationSummary {
	return ElevationSummary{
		TotalGainM:    a.TotalGainM,
		TotalLossM:    a.TotalLossM,
		MaxElevationM: a.MaxElevationM,
		MinElevationM: a.MinElevationM,
		PointCount:    len(a.Points),
		HasActualData: a.HasActualData,
		OutlierGainM:  a.OutlierGainM,
		OutlierLossM:  a.OutlierLossM,
		OutlierPairs:  a.OutlierPairs,
	}
}

func artifactNames(files map[string][]byte) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalSegmentsCSV(segments []rideeta.Segment) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{
		"index", "start_m", "end_m", "distance_m", "grade_pct", "bearing_deg",
		"headwind_ms", "crosswind_ms", "speed_ms", "power_w", "duration_s", "eta_s", "arrival_utc",
	}
	_ = w.Write(header)
	for _, s := range segments {
		arrival := ""
		if !s.ArrivalTime.IsZero() {
			arrival = s.ArrivalTime.UTC().Format(time.RFC3339)
		}
		row := []string{
			strconv.Itoa(s.Index),
			formatFloat(s.StartDistanceM),
			formatFloat(s.EndDistanceM),
			formatFloat(s.DistanceM),
			formatFloat(s.GradePct),
			formatFloat(s.BearingDeg),
			formatFloat(s.HeadwindMS),
			formatFloat(s.CrosswindMS),
			formatFloat(s.SpeedMS),
			formatFloat(s.PowerW),
			formatFloat(s.DurationSec),
			formatFloat(s.ETASec),
			arrival,
		}
		_ = w.Write(row)
	}
	w.Flush()
	return buf.Bytes()
}

func marshalProfileCSV(points []elevation.ProfilePoint) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"distance_m", "elevation_m", "grade_pct"})
	for _, p := range points {
		_ = w.Write([]string{
			formatFloat(p.DistanceM),
			formatFloat(p.ElevationM),
			formatFloat(p.GradePct),
		})
	}
	w.Flush()
	return buf.Bytes()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
