package elevation

import (
	"math"

	"github.com/faist23/RideWeather-Pro2-sub005/route"
)

const (
	// SyntheticGainPerKM is the assumed climbing rate for routes without
	// trustworthy elevation data.
	SyntheticGainPerKM = 15.0
	// SyntheticLossFraction scales estimated loss from estimated gain.
	SyntheticLossFraction = 0.70

	syntheticBaseElevationM   = 100.0
	syntheticPrimaryCycles    = 3.0
	syntheticSecondaryCycles  = 7.0
	syntheticPrimaryAmpFrac   = 0.15
	syntheticSecondaryAmpFrac = 0.08
)

// synthesize fabricates a plausible-looking profile for a route whose
// elevation samples cannot be trusted. The totals come from the fixed
// per-kilometer rate; the curve is a linear ramp with two superimposed
// sinusoidal undulations and exists for visualization, not measurement.
func synthesize(r *route.Route) *Analysis {
	a := &Analysis{HasActualData: false}

	total := r.TotalDistanceM()
	if total <= 0 {
		a.Points = []ProfilePoint{{DistanceM: 0, ElevationM: syntheticBaseElevationM}}
		a.MaxElevationM = syntheticBaseElevationM
		a.MinElevationM = syntheticBaseElevationM
		return a
	}

	estGain := total / 1000 * SyntheticGainPerKM
	a.TotalGainM = estGain
	a.TotalLossM = estGain * SyntheticLossFraction

	primaryAmp := estGain * syntheticPrimaryAmpFrac
	secondaryAmp := estGain * syntheticSecondaryAmpFrac

	first := true
	var prevDist, prevElev, lastProfileDist float64
	for _, p := range r.Points {
		frac := p.DistanceM / total
		elev := syntheticBaseElevationM + estGain*frac +
			primaryAmp*math.Sin(2*math.Pi*syntheticPrimaryCycles*frac) +
			secondaryAmp*math.Sin(2*math.Pi*syntheticSecondaryCycles*frac)
		grade := 0.0
		if !first {
			grade = displayGrade(elev-prevElev, p.DistanceM-prevDist)
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
