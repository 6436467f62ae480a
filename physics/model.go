// Package physics models road-cycling power demand and inverts it to
// answer how fast a rider travels at a target power under grade, wind,
// and surface conditions.
package physics

import "math"

const (
	// GravityMPS2 is standard gravitational acceleration.
	GravityMPS2 = 9.80665
	// DefaultAirDensityKGM3 is sea-level air density at 15 C.
	DefaultAirDensityKGM3 = 1.225
	// DefaultCrrDry and DefaultCrrWet are rolling-resistance
	// coefficients for road tires; wet pavement rolls worse.
	DefaultCrrDry = 0.004
	DefaultCrrWet = 0.006
	// DefaultFrontalAreaM2 approximates a road rider on the hoods.
	DefaultFrontalAreaM2 = 0.38
	// DefaultDragCoeff is the matching drag coefficient.
	DefaultDragCoeff = 0.88
	// DefaultDrivetrainEfficiency is the pedal-to-road power fraction.
	DefaultDrivetrainEfficiency = 0.97

	// GradeSanityClampPct bounds grades fed into the model. It is
	// deliberately distinct from the elevation display clamp and the
	// reconstruction noise limit; the three are tuned independently.
	GradeSanityClampPct = 30.0
)

// Rider is the physical profile used by the power model. Values are
// read-only for the duration of one computation.
type Rider struct {
	TotalWeightKG        float64 `json:"total_weight_kg"`
	TargetPowerW         float64 `json:"target_power_w"`
	DragCoeff            float64 `json:"drag_coeff"`
	FrontalAreaM2        float64 `json:"frontal_area_m2"`
	CrrDry               float64 `json:"crr_dry"`
	CrrWet               float64 `json:"crr_wet"`
	DrivetrainEfficiency float64 `json:"drivetrain_efficiency"`
}

// NewRider returns a profile with conventional road-rig defaults for
// everything but weight and target power.
func NewRider(totalWeightKG, targetPowerW float64) Rider {
	return Rider{
		TotalWeightKG:        totalWeightKG,
		TargetPowerW:         targetPowerW,
		DragCoeff:            DefaultDragCoeff,
		FrontalAreaM2:        DefaultFrontalAreaM2,
		CrrDry:               DefaultCrrDry,
		CrrWet:               DefaultCrrWet,
		DrivetrainEfficiency: DefaultDrivetrainEfficiency,
	}
}

func (r Rider) crr(wet bool) float64 {
	if wet {
		return r.CrrWet
	}
	return r.CrrDry
}

func (r Rider) efficiency() float64 {
	if r.DrivetrainEfficiency <= 0 {
		return DefaultDrivetrainEfficiency
	}
	return r.DrivetrainEfficiency
}

// Conditions describes one segment's environment. Grade is rise over
// run; HeadwindMS is positive when the air component opposes travel.
type Conditions struct {
	Grade       float64 `json:"grade"`
	HeadwindMS  float64 `json:"headwind_ms"`
	CrosswindMS float64 `json:"crosswind_ms"`
	AirDensity  float64 `json:"air_density,omitempty"`
	Wet         bool    `json:"wet,omitempty"`
}

func (c Conditions) airDensity() float64 {
	if c.AirDensity <= 0 {
		return DefaultAirDensityKGM3
	}
	return c.AirDensity
}

// PowerRequired returns the pedal power in watts needed to hold a
// ground speed under the given conditions. It is never negative.
func PowerRequired(rider Rider, speedMS float64, cond Conditions) float64 {
	if speedMS <= 0 {
		return 0
	}
	theta := math.Atan(clampGrade(cond.Grade))
	weight := rider.TotalWeightKG * GravityMPS2

	rolling := rider.crr(cond.Wet) * weight * math.Cos(theta) * speedMS
	airspeed := relativeAirspeed(speedMS, cond.HeadwindMS, cond.CrosswindMS)
	aero := 0.5 * rider.DragCoeff * rider.FrontalAreaM2 * cond.airDensity() * airspeed * airspeed * speedMS
	climbing := weight * math.Sin(theta) * speedMS

	power := (rolling + aero + climbing) / rider.efficiency()
	if power < 0 {
		return 0
	}
	return power
}

// relativeAirspeed combines ground speed with the wind components into
// the magnitude of the air flow over the rider.
func relativeAirspeed(speedMS, headwindMS, crosswindMS float64) float64 {
	along := speedMS + headwindMS
	return math.Sqrt(along*along + crosswindMS*crosswindMS)
}
