// Package elevation reconstructs elevation/grade profiles from ingested
// routes and answers interpolated elevation queries against them.
package elevation

import (
	"math"

	"github.com/faist23/RideWeather-Pro2-sub005/route"
)

const (
	// DisplayGradeClampPct bounds per-point grades reported for display.
	DisplayGradeClampPct = 25.0
	// NoiseGradeLimitPct is the implied-grade ceiling above which an
	// adjacent sample pair is excluded from gain/loss as sensor noise.
	NoiseGradeLimitPct = 35.0

	// minTrustedCoverage is the elevation-bearing fraction a route must
	// exceed before its raw samples are trusted.
	minTrustedCoverage = 0.5
)

// ProfilePoint is one sample of a reconstructed elevation profile.
// Within a profile, points are strictly increasing by distance.
type ProfilePoint struct {
	DistanceM  float64 `json:"distance_m"`
	ElevationM float64 `json:"elevation_m"`
	GradePct   float64 `json:"grade_pct"`
}

// Analysis is a reconstructed elevation profile with gain/loss totals.
// The Outlier fields account elevation change discarded by the noise
// filter; they are diagnostics and never feed back into the totals.
// An Analysis is read-only once built.
type Analysis struct {
	TotalGainM    float64        `json:"total_gain_m"`
	TotalLossM    float64        `json:"total_loss_m"`
	MaxElevationM float64        `json:"max_elevation_m"`
	MinElevationM float64        `json:"min_elevation_m"`
	Points        []ProfilePoint `json:"points"`
	HasActualData bool           `json:"has_actual_data"`
	OutlierGainM  float64        `json:"outlier_gain_m,omitempty"`
	OutlierLossM  float64        `json:"outlier_loss_m,omitempty"`
	OutlierPairs  int            `json:"outlier_pairs,omitempty"`
}

// Reconstruct builds an Analysis from an ingested route. It never
// fails: a route whose elevation data is unreliable gets a synthesized
// profile instead.
func Reconstruct(r *route.Route) *Analysis {
	if r == nil || len(r.Points) == 0 {
		return &Analysis{}
	}
	if r.ElevationCoverage() <= minTrustedCoverage {
		return synthesize(r)
	}
	return reconstructMeasured(r)
}

// reconstructMeasured walks consecutive elevation-bearing points in
// distance order. No smoothing window is applied anywhere: smoothing
// erases legitimate steep sections, so only the single-step
// implausible-jump filter guards the totals.
func reconstructMeasured(r *route.Route) *Analysis {
	a := &Analysis{HasActualData: true}

	first := true
	var prevDist, prevElev, lastProfileDist float64
	for _, p := range r.Points {
		if p.ElevationM == nil {
			continue
		}
		elev := *p.ElevationM
		grade := 0.0
		if !first {
			change := elev - prevElev
			horizontal := p.DistanceM - prevDist
			grade = displayGrade(change, horizontal)
			if horizontal > 0 && math.Abs(change/horizontal)*100 > NoiseGradeLimitPct {
				a.OutlierPairs++
				if change > 0 {
					a.OutlierGainM += change
				} else {
					a.OutlierLossM += -change
				}
			} else if change > 0 {
				a.TotalGainM += change
			} else {
				a.TotalLossM += -change
			}
		}
		if first || p.DistanceM > lastProfileDist {
			a.Points = append(a.Points, ProfilePoint{DistanceM: p.DistanceM, ElevationM: elev, GradePct: grade})
			lastProfileDist = p.DistanceM
		}
		if first || elev > a.MaxElevationM {
			a.MaxElevationM = elev
		}
		if first || elev < a.MinElevationM {
			a.MinElevationM = elev
		}
		prevDist, prevElev = p.DistanceM, elev
		first = false
	}
	return a
}

func displayGrade(changeM, horizontalM float64) float64 {
	if horizontalM <= 0 {
		return 0
	}
	grade := changeM / horizontalM * 100
	if grade > DisplayGradeClampPct {
		return DisplayGradeClampPct
	}
	if grade < -DisplayGradeClampPct {
		return -DisplayGradeClampPct
	}
	return grade
}
