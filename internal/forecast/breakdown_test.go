package forecast

import (
	"math"
	"strings"
	"testing"
)

func TestSeverity(t *testing.T) {
	tests := []struct {
		delay int
		want  string
	}{
		{0, SeverityOnTime},
		{2, SeverityOnTime},
		{3, SeveritySlightlyLate},
		{5, SeveritySlightlyLate},
		{6, SeverityModeratelyLate},
		{10, SeverityModeratelyLate},
		{11, SeverityVeryLate},
		{45, SeverityVeryLate},
	}
	for _, tt := range tests {
		if got := Severity(tt.delay); got != tt.want {
			t.Errorf("Severity(%d) = %q, want %q", tt.delay, got, tt.want)
		}
	}
}

func TestBreakdownOf(t *testing.T) {
	est := Estimate{
		DelayMinutes:  10,
		WeatherFactor: 1.3,
		TimeFactor:    1.4,
		BaseDelay:     3.0,
	}
	b := BreakdownOf(est)

	if b.Base != 3.0 {
		t.Errorf("Base = %v, want 3.0", b.Base)
	}
	if math.Abs(b.Weather-0.9) > 1e-9 {
		t.Errorf("Weather = %v, want 0.9", b.Weather)
	}
	if math.Abs(b.Time-1.2) > 1e-9 {
		t.Errorf("Time = %v, want 1.2", b.Time)
	}
	// 10 - 3.0*1.3*1.4 = 10 - 5.46
	if math.Abs(b.Random-4.54) > 1e-9 {
		t.Errorf("Random = %v, want 4.54", b.Random)
	}
}

func TestBreakdownClampsNegativeRandom(t *testing.T) {
	// A random factor below 1 pulls the rounded delay under the
	// deterministic product; the display component clamps at zero.
	est := Estimate{
		DelayMinutes:  4,
		WeatherFactor: 1.0,
		TimeFactor:    1.0,
		BaseDelay:     6.0,
	}
	b := BreakdownOf(est)
	if b.Random != 0 {
		t.Errorf("Random = %v, want 0 (clamped)", b.Random)
	}
	if b.Weather != 0 || b.Time != 0 {
		t.Errorf("neutral factors should contribute 0, got weather=%v time=%v", b.Weather, b.Time)
	}
}

func TestDepartureOffset(t *testing.T) {
	tests := []struct {
		delay int
		want  int
	}{
		{0, 0},
		{2, 0},
		{3, 8},
		{7, 12},
		{20, 25},
	}
	for _, tt := range tests {
		if got := DepartureOffset(tt.delay); got != tt.want {
			t.Errorf("DepartureOffset(%d) = %d, want %d", tt.delay, got, tt.want)
		}
	}
}

func TestAdviceTiers(t *testing.T) {
	if got := Advice(1); !strings.Contains(got, "on schedule") {
		t.Errorf("Advice(1) = %q, want on-schedule tip", got)
	}
	if got := Advice(4); !strings.Contains(got, "5 minutes") {
		t.Errorf("Advice(4) = %q, want minor-delay tip", got)
	}
	if got := Advice(8); !strings.Contains(got, "10-15 minutes") {
		t.Errorf("Advice(8) = %q, want moderate-delay tip", got)
	}
	if got := Advice(15); !strings.Contains(got, "alternate routes") {
		t.Errorf("Advice(15) = %q, want significant-delay tip", got)
	}
}

func TestRecommendation(t *testing.T) {
	if got := Recommendation(2); got != "" {
		t.Errorf("Recommendation(2) = %q, want empty", got)
	}
	if got := Recommendation(7); !strings.Contains(got, "12 minutes earlier") {
		t.Errorf("Recommendation(7) = %q, want 12 minutes earlier", got)
	}
}
