package physics

import "math"

const (
	minSolveSpeedMPS   = 0.1
	maxSolveSpeedMPS   = 25.0
	maxSolveIterations = 100
	speedToleranceMPS  = 0.01
	powerToleranceW    = 0.5
)

// SpeedForPower inverts the forward model by bounded bisection: the
// ground speed at which the rider's pedal power matches the target.
// The aero term is cubic in speed and coupled with wind, so there is no
// closed form, and on descents power can fall as speed rises, flipping
// the usual orientation. The result is deterministic, always within
// [0.1, 25] m/s, and never NaN or infinite.
func SpeedForPower(rider Rider, targetPowerW float64, cond Conditions) float64 {
	if math.IsNaN(targetPowerW) || math.IsInf(targetPowerW, 0) || targetPowerW < 0 {
		targetPowerW = 0
	}

	low, high := minSolveSpeedMPS, maxSolveSpeedMPS
	powerLow := PowerRequired(rider, low, cond)
	powerHigh := PowerRequired(rider, high, cond)
	inverted := powerHigh < powerLow

	// Targets outside the bracket's power range clamp to the endpoint
	// that orientation says is nearest.
	if !inverted {
		if targetPowerW <= powerLow {
			return low
		}
		if targetPowerW >= powerHigh {
			return high
		}
	} else {
		if targetPowerW >= powerLow {
			return low
		}
		if targetPowerW <= powerHigh {
			return high
		}
	}

	for i := 0; i < maxSolveIterations; i++ {
		if high-low < speedToleranceMPS {
			break
		}
		mid := (low + high) / 2
		power := PowerRequired(rider, mid, cond)
		if math.Abs(power-targetPowerW) < powerToleranceW {
			return mid
		}
		tooSlow := power < targetPowerW
		if inverted {
			tooSlow = power > targetPowerW
		}
		if tooSlow {
			low = mid
		} else {
			high = mid
		}
	}
	return (low + high) / 2
}
