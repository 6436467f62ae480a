package rideeta

import (
	"github.com/faist23/RideWeather-Pro2-sub005/elevation"
)

const (
	minClimbAvgGradePct = 2.0
	minClimbLengthM     = 500.0
	climbMergeGapM      = 200.0
)

// Climb is a contiguous climbing stretch detected in an elevation
// profile.
type Climb struct {
	StartDistanceM float64 `json:"start_distance_m"`
	EndDistanceM   float64 `json:"end_distance_m"`
	LengthM        float64 `json:"length_m"`
	GainM          float64 `json:"gain_m"`
	AvgGradePct    float64 `json:"avg_grade_pct"`
	MaxGradePct    float64 `json:"max_grade_pct"`
	Category       string  `json:"category,omitempty"`
}

// DetectClimbs scans a profile for stretches that average at least 2%
// grade over at least 500 m, bridging descents or flats shorter than
// 200 m, and grades each by the conventional length-times-grade score.
func DetectClimbs(a *elevation.Analysis) []Climb {
	if a == nil || len(a.Points) < 2 {
		return nil
	}
	spans := risingSpans(a.Points)
	spans = mergeSpans(a.Points, spans)

	var climbs []Climb
	for _, sp := range spans {
		c := buildClimb(a.Points, sp.start, sp.end)
		if c.LengthM >= minClimbLengthM && c.AvgGradePct >= minClimbAvgGradePct {
			climbs = append(climbs, c)
		}
	}
	return climbs
}

type profileSpan struct {
	start, end int
}

// risingSpans collects maximal runs of adjacent profile pairs whose
// grade meets the climb threshold.
func risingSpans(pts []elevation.ProfilePoint) []profileSpan {
	var spans []profileSpan
	open := -1
	for i := 0; i+1 < len(pts); i++ {
		if pairGradePct(pts[i], pts[i+1]) >= minClimbAvgGradePct {
			if open < 0 {
				open = i
			}
			continue
		}
		if open >= 0 {
			spans = append(spans, profileSpan{start: open, end: i})
			open = -1
		}
	}
	if open >= 0 {
		spans = append(spans, profileSpan{start: open, end: len(pts) - 1})
	}
	return spans
}

// mergeSpans bridges consecutive climbing spans separated by less than
// the merge gap.
func mergeSpans(pts []elevation.ProfilePoint, spans []profileSpan) []profileSpan {
	if len(spans) < 2 {
		return spans
	}
	merged := []profileSpan{spans[0]}
	for _, sp := range spans[1:] {
		last := &merged[len(merged)-1]
		gap := pts[sp.start].DistanceM - pts[last.end].DistanceM
		if gap < climbMergeGapM {
			last.end = sp.end
			continue
		}
		merged = append(merged, sp)
	}
	return merged
}

func buildClimb(pts []elevation.ProfilePoint, start, end int) Climb {
	c := Climb{
		StartDistanceM: pts[start].DistanceM,
		EndDistanceM:   pts[end].DistanceM,
	}
	c.LengthM = c.EndDistanceM - c.StartDistanceM
	for i := start; i < end; i++ {
		rise := pts[i+1].ElevationM - pts[i].ElevationM
		if rise > 0 {
			c.GainM += rise
		}
		if g := pairGradePct(pts[i], pts[i+1]); g > c.MaxGradePct {
			c.MaxGradePct = g
		}
	}
	c.AvgGradePct = safeDiv(pts[end].ElevationM-pts[start].ElevationM, c.LengthM) * 100.0
	c.Category = climbCategory(c.LengthM, c.AvgGradePct)
	return c
}

// climbCategory maps a length (m) x average grade (%) score onto the
// familiar road-racing categories.
func climbCategory(lengthM, avgGradePct float64) string {
	score := lengthM * avgGradePct
	switch {
	case score >= 80000:
		return "HC"
	case score >= 64000:
		return "1"
	case score >= 32000:
		return "2"
	case score >= 16000:
		return "3"
	case score >= 8000:
		return "4"
	default:
		return ""
	}
}

func pairGradePct(a, b elevation.ProfilePoint) float64 {
	return safeDiv(b.ElevationM-a.ElevationM, b.DistanceM-a.DistanceM) * 100.0
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
