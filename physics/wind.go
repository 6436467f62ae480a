package physics

import "math"

// WindComponents projects a wind vector onto a ride heading. Headwind
// is positive when it opposes travel; crosswind is the perpendicular
// component. Directions are compass degrees.
func WindComponents(windSpeedMS, windDirectionDeg, rideDirectionDeg float64) (headwindMS, crosswindMS float64) {
	diff := (windDirectionDeg - rideDirectionDeg) * math.Pi / 180
	return windSpeedMS * math.Cos(diff), windSpeedMS * math.Sin(diff)
}

// GradeBetween computes rise over run with a guarded divide: zero
// horizontal distance yields grade 0, never infinity.
func GradeBetween(elevationChangeM, horizontalDistanceM float64) float64 {
	if horizontalDistanceM <= 0 {
		return 0
	}
	return clampGrade(elevationChangeM / horizontalDistanceM)
}

// AverageGrade estimates a coarse whole-route grade from gain and
// distance totals.
func AverageGrade(totalGainM, totalDistanceM float64) float64 {
	if totalDistanceM <= 0 {
		return 0
	}
	return clampGrade(totalGainM / totalDistanceM)
}

func clampGrade(g float64) float64 {
	if math.IsNaN(g) {
		return 0
	}
	limit := GradeSanityClampPct / 100
	if g > limit {
		return limit
	}
	if g < -limit {
		return -limit
	}
	return g
}
