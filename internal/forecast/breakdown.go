package forecast

import "fmt"

// Severity bands for the headline status display.
const (
	SeverityOnTime         = "ON TIME"
	SeveritySlightlyLate   = "SLIGHTLY LATE"
	SeverityModeratelyLate = "MODERATELY LATE"
	SeverityVeryLate       = "VERY LATE"
)

// Severity classifies a rounded delay into a display band.
func Severity(delayMinutes int) string {
	switch {
	case delayMinutes <= 2:
		return SeverityOnTime
	case delayMinutes <= 5:
		return SeveritySlightlyLate
	case delayMinutes <= 10:
		return SeverityModeratelyLate
	default:
		return SeverityVeryLate
	}
}

// Breakdown is an additive decomposition of the estimate for charting.
// Values are clamped to zero; the random component can be negative when the
// random factor landed below 1, and a negative bar reads badly.
type Breakdown struct {
	Base    float64 `json:"base"`
	Weather float64 `json:"weather"`
	Time    float64 `json:"time"`
	Random  float64 `json:"random"`
}

// BreakdownOf decomposes an estimate into per-factor contributions.
func BreakdownOf(est Estimate) Breakdown {
	base := est.BaseDelay
	return Breakdown{
		Base:    clampZero(base),
		Weather: clampZero(base * (est.WeatherFactor - 1)),
		Time:    clampZero(base * (est.TimeFactor - 1)),
		Random:  clampZero(float64(est.DelayMinutes) - base*est.WeatherFactor*est.TimeFactor),
	}
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// DepartureOffset recommends how many minutes earlier than usual to leave.
// Zero means no adjustment needed.
func DepartureOffset(delayMinutes int) int {
	if delayMinutes <= 2 {
		return 0
	}
	return delayMinutes + 5
}

// Advice returns the journey tip for a delay band.
func Advice(delayMinutes int) string {
	switch {
	case delayMinutes <= 2:
		return "Great timing! Your bus should be on schedule."
	case delayMinutes <= 5:
		return "Minor delays possible. Consider leaving 5 minutes early."
	case delayMinutes <= 10:
		return "Moderate delays expected. Leave 10-15 minutes early."
	default:
		return "Significant delays likely. Consider alternate routes or leave much earlier."
	}
}

// Recommendation phrases the departure offset for display, or returns the
// empty string when no adjustment is needed.
func Recommendation(delayMinutes int) string {
	offset := DepartureOffset(delayMinutes)
	if offset == 0 {
		return ""
	}
	return fmt.Sprintf("Leave %d minutes earlier than usual to arrive on time.", offset)
}
