package pipeline

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/faist23/RideWeather-Pro2-sub005/route"
)

const pipelineGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test">
  <trk>
    <name>pipeline loop</name>
    <trkseg>
      <trkpt lat="45.000" lon="6.000"><ele>100</ele></trkpt>
      <trkpt lat="45.009" lon="6.000"><ele>150</ele></trkpt>
      <trkpt lat="45.018" lon="6.000"><ele>140</ele></trkpt>
    </trkseg>
  </trk>
</gpx>`

func TestRunWritesArtifacts(t *testing.T) {
	routePath := filepath.Join(t.TempDir(), "loop.gpx")
	if err := os.WriteFile(routePath, []byte(pipelineGPX), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	outDir := filepath.Join(t.TempDir(), "out")
	res, err := Run(Options{
		RoutePath:        routePath,
		OutDir:           outDir,
		WeightKG:         80,
		TargetPowerW:     200,
		WindSpeedMS:      3,
		WindDirectionDeg: 270,
		StartTime:        time.Date(2026, 7, 4, 7, 30, 0, 0, time.UTC),
		Overwrite:        true,
		CopySource:       true,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if _, err := uuid.Parse(res.PlanID); err != nil {
		t.Fatalf("plan id %q is not a uuid: %v", res.PlanID, err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	if !strings.HasSuffix(res.ProfilePath, "profile.parquet") {
		t.Fatalf("default profile artifact = %q, want parquet", res.ProfilePath)
	}

	for _, path := range []string{
		res.ManifestPath, res.PlanPath, res.SegmentsPath, res.ProfilePath, res.NotesPath, res.SourceCopyPath,
	} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("missing artifact: %v", err)
		}
		if info.Size() == 0 {
			t.Fatalf("empty artifact %s", path)
		}
	}

	var manifest Manifest
	data, err := os.ReadFile(res.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	sum := sha256.Sum256([]byte(pipelineGPX))
	if manifest.SourceSHA256 != hex.EncodeToString(sum[:]) {
		t.Fatalf("manifest sha = %s", manifest.SourceSHA256)
	}
	if manifest.Dialect != "gpx" || manifest.PointCount != 3 {
		t.Fatalf("manifest dialect/points = %s/%d", manifest.Dialect, manifest.PointCount)
	}
	if manifest.PlanID != res.PlanID {
		t.Fatalf("manifest plan id %s != result %s", manifest.PlanID, res.PlanID)
	}

	var plan PlanDocument
	data, err = os.ReadFile(res.PlanPath)
	if err != nil {
		t.Fatalf("read plan: %v", err)
	}
	if err := json.Unmarshal(data, &plan); err != nil {
		t.Fatalf("unmarshal plan: %v", err)
	}
	if plan.FormatVersion != PlanFormatVersion {
		t.Fatalf("plan format version = %q", plan.FormatVersion)
	}
	if plan.Rider.TotalWeightKG != 80 || plan.Rider.TargetPowerW != 200 {
		t.Fatalf("plan rider = %+v", plan.Rider)
	}
	if !plan.Elevation.HasActualData {
		t.Fatal("fully-sampled route marked synthetic")
	}
	if plan.Plan == nil || len(plan.Plan.Segments) == 0 {
		t.Fatal("plan document carries no segments")
	}

	f, err := os.Open(res.SegmentsPath)
	if err != nil {
		t.Fatalf("open segments: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read segments csv: %v", err)
	}
	if len(rows)-1 != len(plan.Plan.Segments) {
		t.Fatalf("segments.csv has %d rows for %d segments", len(rows)-1, len(plan.Plan.Segments))
	}
	if rows[0][0] != "index" || rows[0][12] != "arrival_utc" {
		t.Fatalf("unexpected segments header: %v", rows[0])
	}
	if rows[1][12] == "" {
		t.Fatal("arrival_utc empty despite a start time")
	}

	notes, err := os.ReadFile(res.NotesPath)
	if err != nil {
		t.Fatalf("read notes: %v", err)
	}
	if !strings.Contains(string(notes), "Ride plan: pipeline loop") {
		t.Fatalf("notes missing headline:\n%s", notes)
	}
}

func TestRunOverwriteGuard(t *testing.T) {
	routePath := filepath.Join(t.TempDir(), "loop.gpx")
	if err := os.WriteFile(routePath, []byte(pipelineGPX), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(outDir, "stale.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("seed out dir: %v", err)
	}

	_, err := Run(Options{RoutePath: routePath, OutDir: outDir, Format: "csv"})
	if err == nil || !strings.Contains(err.Error(), "not empty") {
		t.Fatalf("expected overwrite guard error, got %v", err)
	}

	if _, err := Run(Options{RoutePath: routePath, OutDir: outDir, Format: "csv", Overwrite: true}); err != nil {
		t.Fatalf("Run() with overwrite: %v", err)
	}
}

func TestRunBytesProducesArtifacts(t *testing.T) {
	res, err := RunBytes(BytesOptions{
		SourceFileName: "loop.gpx",
		RouteData:      []byte(pipelineGPX),
		Format:         "csv",
		CopySource:     true,
	})
	if err != nil {
		t.Fatalf("RunBytes() error: %v", err)
	}

	required := []string{
		"manifest.json",
		"plan.json",
		"segments.csv",
		"profile.csv",
		"ride_notes.md",
		"source.gpx",
	}
	for _, name := range required {
		if len(res.Files[name]) == 0 {
			t.Fatalf("missing artifact %s (have %v)", name, artifactNames(res.Files))
		}
	}
	if res.PlanID == "" {
		t.Fatal("empty plan id")
	}

	var sawWeight bool
	for _, w := range res.Warnings {
		if strings.Contains(w, "weight") {
			sawWeight = true
		}
	}
	if !sawWeight {
		t.Fatalf("defaulted weight not surfaced in warnings: %v", res.Warnings)
	}
}

func TestRunBytesRejectsBadInput(t *testing.T) {
	if _, err := RunBytes(BytesOptions{RouteData: []byte(pipelineGPX)}); err == nil {
		t.Fatal("missing source name accepted")
	}
	if _, err := RunBytes(BytesOptions{SourceFileName: "loop.gpx"}); err == nil {
		t.Fatal("empty route data accepted")
	}

	_, err := RunBytes(BytesOptions{SourceFileName: "loop.tcx", RouteData: []byte(pipelineGPX)})
	if !errors.Is(err, route.ErrUnsupportedFormat) {
		t.Fatalf("tcx input: %v", err)
	}

	_, err = RunBytes(BytesOptions{SourceFileName: "loop.gpx", RouteData: []byte("not xml at all")})
	if !errors.Is(err, route.ErrParseFailure) {
		t.Fatalf("garbage input: %v", err)
	}

	if _, err := RunBytes(BytesOptions{SourceFileName: "loop.gpx", RouteData: []byte(pipelineGPX), Format: "xlsx"}); err == nil {
		t.Fatal("bad format accepted")
	}
}
