package pipeline

import (
	"time"

	rideeta "github.com/faist23/RideWeather-Pro2-sub005"
	"github.com/faist23/RideWeather-Pro2-sub005/physics"
)

const (
	// PlanFormatVersion identifies the on-disk schema for plan exports.
	PlanFormatVersion = "ride_plan_v1"
)

// Options configures the rideeta pipeline.
type Options struct {
	RoutePath        string
	OutDir           string
	WeightKG         float64
	TargetPowerW     float64
	AverageSpeedMS   float64
	WindSpeedMS      float64
	WindDirectionDeg float64
	Wet              bool
	StartTime        time.Time
	SegmentLengthM   float64
	Format           string // parquet|csv
	Overwrite        bool
	CopySource       bool
}

// BytesOptions configures an in-memory run for callers without a
// filesystem, such as the wasm build.
type BytesOptions struct {
	SourceFileName   string
	RouteData        []byte
	WeightKG         float64
	TargetPowerW     float64
	AverageSpeedMS   float64
	WindSpeedMS      float64
	WindDirectionDeg float64
	Wet              bool
	StartTime        time.Time
	SegmentLengthM   float64
	Format           string
	CopySource       bool
}

// Result returns generated output paths.
type Result struct {
	PlanID         string   `json:"plan_id"`
	OutputDir      string   `json:"output_dir"`
	ManifestPath   string   `json:"manifest_path"`
	PlanPath       string   `json:"plan_path"`
	SegmentsPath   string   `json:"segments_path"`
	ProfilePath    string   `json:"profile_path"`
	NotesPath      string   `json:"notes_path"`
	SourceCopyPath string   `json:"source_copy_path,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
}

// BytesResult holds every artifact in memory, keyed by file name.
type BytesResult struct {
	PlanID   string
	Files    map[string][]byte
	Warnings []string
}

// Manifest captures run metadata and pointers to the artifacts.
type Manifest struct {
	FormatVersion   string    `json:"format_version"`
	PlanID          string    `json:"plan_id"`
	GeneratedAt     time.Time `json:"generated_at"`
	SourceFileName  string    `json:"source_file_name"`
	SourceSHA256    string    `json:"source_sha256"`
	SourceSizeBytes int64     `json:"source_size_bytes"`
	Dialect         string    `json:"dialect"`
	RouteName       string    `json:"route_name,omitempty"`
	PointCount      int       `json:"point_count"`
	Artifacts       []string  `json:"artifacts"`
}

// PlanDocument is the plan.json payload.
type PlanDocument struct {
	FormatVersion string           `json:"format_version"`
	PlanID        string           `json:"plan_id"`
	GeneratedAt   time.Time        `json:"generated_at"`
	RouteName     string           `json:"route_name,omitempty"`
	Dialect       string           `json:"dialect"`
	Rider         physics.Rider    `json:"rider"`
	Wind          rideeta.Wind     `json:"wind"`
	Elevation     ElevationSummary `json:"elevation"`
	Climbs        []rideeta.Climb  `json:"climbs,omitempty"`
	Plan          *rideeta.Result  `json:"plan"`
}

// ElevationSummary mirrors the analysis totals without the per-point
// profile, which ships separately as the profile artifact.
type ElevationSummary struct {
	TotalGainM    float64 `json:"total_gain_m"`
	TotalLossM    float64 `json:"total_loss_m"`
	MaxElevationM float64 `json:"max_elevation_m"`
	MinElevationM float64 `json:"min_elevation_m"`
	PointCount    int     `json:"point_count"`
	HasActualData bool    `json:"has_actual_data"`
	OutlierGainM  float64 `json:"outlier_gain_m,omitempty"`
	OutlierLossM  float64 `json:"outlier_loss_m,omitempty"`
	OutlierPairs  int     `json:"outlier_pairs,omitempty"`
}
