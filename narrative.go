package rideeta

import (
	"fmt"
	"math"
	"strings"

	"github.com/faist23/RideWeather-Pro2-sub005/elevation"
)

// BuildRideNotes turns a pacing plan into a readable pre-ride briefing.
func BuildRideNotes(res *Result, a *elevation.Analysis, climbs []Climb) string {
	if res == nil {
		return ""
	}
	if a == nil {
		a = &elevation.Analysis{}
	}

	var b strings.Builder

	name := res.RouteName
	if name == "" {
		name = "unnamed route"
	}
	fmt.Fprintf(&b, "Ride plan: %s\n", name)
	if !res.StartTime.IsZero() {
		fmt.Fprintf(&b, "Start: %s\n", res.StartTime.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(
		&b,
		"Distance %.1f km | Climbing +%.0f/-%.0f m | Est. time %s\n",
		res.TotalDistanceM/1000.0,
		a.TotalGainM,
		a.TotalLossM,
		formatDuration(res.TotalSec),
	)
	fmt.Fprintf(
		&b,
		"Avg power %.0f W | Predicted avg speed %.1f km/h\n",
		res.AvgPowerW,
		mpsToKmh(res.AvgSpeedMS),
	)
	if !res.ArrivalTime.IsZero() {
		fmt.Fprintf(&b, "Projected arrival: %s\n", res.ArrivalTime.Format("15:04"))
	}
	if !a.HasActualData {
		b.WriteString("Elevation note: profile is estimated from distance; climbing totals are approximations.\n")
	}

	b.WriteString("\nClimbs\n")
	if len(climbs) > 0 {
		for i, c := range climbs {
			fmt.Fprintf(
				&b,
				"- %s %d: %.1f km at %.1f%% avg (max %.1f%%), %.0f m gain, starts at km %.1f, reached after %s.\n",
				climbLabel(c),
				i+1,
				c.LengthM/1000.0,
				c.AvgGradePct,
				c.MaxGradePct,
				c.GainM,
				c.StartDistanceM/1000.0,
				formatDuration(res.ETAAtDistance(c.StartDistanceM)),
			)
		}
	} else {
		b.WriteString("- No significant climbs detected.\n")
	}

	if len(res.Segments) > 0 {
		b.WriteString("\nPacing\n")
		slow := extremeSegment(res.Segments, false)
		fast := extremeSegment(res.Segments, true)
		fmt.Fprintf(
			&b,
			"- Slowest segment: km %.1f-%.1f at %.1f km/h (grade %.1f%%, headwind %.1f m/s).\n",
			slow.StartDistanceM/1000.0,
			slow.EndDistanceM/1000.0,
			mpsToKmh(slow.SpeedMS),
			slow.GradePct,
			slow.HeadwindMS,
		)
		fmt.Fprintf(
			&b,
			"- Fastest segment: km %.1f-%.1f at %.1f km/h (grade %.1f%%).\n",
			fast.StartDistanceM/1000.0,
			fast.EndDistanceM/1000.0,
			mpsToKmh(fast.SpeedMS),
			fast.GradePct,
		)
		if share := headwindShare(res); share >= 0.25 {
			fmt.Fprintf(&b, "- Headwind for roughly %.0f%% of the ride; ride patiently into it and use the tailwind stretches.\n", share*100.0)
		}
	}

	b.WriteString("\nNotes\n")
	b.WriteString("- ")
	b.WriteString(rideAssessment(res, a, climbs))
	b.WriteString("\n- ")
	b.WriteString(fuelingSuggestion(res))
	b.WriteByte('\n')

	return strings.TrimSpace(b.String())
}

func climbLabel(c Climb) string {
	switch c.Category {
	case "":
		return "Climb"
	case "HC":
		return "HC climb"
	default:
		return "Cat " + c.Category + " climb"
	}
}

// extremeSegment returns the fastest or slowest segment of the plan.
func extremeSegment(segs []Segment, fastest bool) Segment {
	best := segs[0]
	for _, s := range segs[1:] {
		if fastest == (s.SpeedMS > best.SpeedMS) && s.SpeedMS != best.SpeedMS {
			best = s
		}
	}
	return best
}

// headwindShare is the fraction of ride time spent against a headwind
// stronger than 2 m/s.
func headwindShare(res *Result) float64 {
	if res.TotalSec <= 0 {
		return 0
	}
	var against float64
	for _, s := range res.Segments {
		if s.HeadwindMS > 2.0 {
			against += s.DurationSec
		}
	}
	return against / res.TotalSec
}

func rideAssessment(res *Result, a *elevation.Analysis, climbs []Climb) string {
	if res.TotalSec <= 0 {
		return "No rideable plan was produced for this route."
	}
	gainPerKm := safeDiv(a.TotalGainM, res.TotalDistanceM/1000.0)
	switch {
	case len(climbs) >= 3 || gainPerKm >= 15:
		return "Hilly profile; ride the climbs at or below target power and recover on the descents."
	case gainPerKm >= 8:
		return "Rolling profile; hold steady power over the rollers rather than surging."
	default:
		return "Mostly flat profile; position and steady pacing matter more than raw power."
	}
}

func fuelingSuggestion(res *Result) string {
	switch {
	case res.TotalSec >= 3*3600:
		return "Plan 60-90 g of carbohydrate per hour and a bottle refill mid-route."
	case res.TotalSec >= 1.5*3600:
		return "Carry two bottles and start fueling within the first hour."
	default:
		return "A single bottle should cover a ride of this length."
	}
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	s := int(math.Round(seconds))
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}

func mpsToKmh(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return v * 3.6
}
