package elevation

import "sort"

// sampleMatchToleranceM treats queries within this distance of a profile
// point as exact hits.
const sampleMatchToleranceM = 1.0

// ElevationAt interpolates elevation at a cumulative distance along the
// profile. Queries beyond either end clamp to the boundary point. The
// bool is false only for an empty profile: "no data" is an expected
// outcome, not an error.
func (a *Analysis) ElevationAt(distanceM float64) (float64, bool) {
	pts := a.Points
	if len(pts) == 0 {
		return 0, false
	}
	if distanceM <= pts[0].DistanceM {
		return pts[0].ElevationM, true
	}
	if distanceM >= pts[len(pts)-1].DistanceM {
		return pts[len(pts)-1].ElevationM, true
	}

	idx := sort.Search(len(pts), func(i int) bool {
		return pts[i].DistanceM >= distanceM
	})
	prev, next := pts[idx-1], pts[idx]
	if distanceM-prev.DistanceM <= sampleMatchToleranceM {
		return prev.ElevationM, true
	}
	if next.DistanceM-distanceM <= sampleMatchToleranceM {
		return next.ElevationM, true
	}

	ratio := (distanceM - prev.DistanceM) / (next.DistanceM - prev.DistanceM)
	return prev.ElevationM + (next.ElevationM-prev.ElevationM)*ratio, true
}
