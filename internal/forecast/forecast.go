package forecast

import (
	"math"
	"math/rand"
	"time"
)

const (
	// Minutes of delay accumulated per kilometre of route.
	perKmDelay = 0.3

	rushHourFactor    = 1.4
	regularTimeFactor = 1.0

	randomFactorMin = 0.7
	randomFactorMax = 1.8
)

// WeatherCondition pairs a display label with its delay multiplier.
type WeatherCondition struct {
	Label  string  `json:"label"`
	Factor float64 `json:"factor"`
}

// In a real deployment this would come from a weather API; the tool
// simulates conditions with a uniform draw over this table.
var weatherTable = []WeatherCondition{
	{Label: "Sunny", Factor: 1.0},
	{Label: "Cloudy", Factor: 1.1},
	{Label: "Light Rain", Factor: 1.3},
	{Label: "Heavy Rain", Factor: 1.6},
	{Label: "Snow", Factor: 1.8},
	{Label: "Ice/Freezing", Factor: 2.0},
}

const (
	rushHourPeriod    = "Rush Hour"
	regularTimePeriod = "Regular Time"
)

// Estimate is the output of one prediction: the rounded delay plus every
// intermediate factor, which the page needs for its breakdown display.
type Estimate struct {
	DelayMinutes  int     `json:"delay_minutes"`
	Weather       string  `json:"weather"`
	WeatherFactor float64 `json:"weather_factor"`
	TimePeriod    string  `json:"time_period"`
	TimeFactor    float64 `json:"time_factor"`
	BaseDelay     float64 `json:"base_delay"`
	RushHour      bool    `json:"rush_hour"`
}

// Conditions describes the current simulated environment, independent of
// any route selection.
type Conditions struct {
	Time          string  `json:"time"`
	RushHour      bool    `json:"rush_hour"`
	TimePeriod    string  `json:"time_period"`
	TimeFactor    float64 `json:"time_factor"`
	Weather       string  `json:"weather"`
	WeatherFactor float64 `json:"weather_factor"`
}

type EstimatorOption func(*Estimator)

// Estimator synthesizes delay estimates. Its two impure inputs, the random
// source and the clock, are injectable so tests can fix them.
type Estimator struct {
	rng *rand.Rand
	now func() time.Time
}

func RandOption(rng *rand.Rand) EstimatorOption {
	return func(e *Estimator) {
		e.rng = rng
	}
}

func ClockOption(now func() time.Time) EstimatorOption {
	return func(e *Estimator) {
		e.now = now
	}
}

func New(opts ...EstimatorOption) *Estimator {
	e := &Estimator{}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Predict estimates how late a bus on a route of the given length will run.
// Total for any routeLength >= 0; it never fails.
func (e *Estimator) Predict(routeLength float64) Estimate {
	weather := e.drawWeather()
	rush, period, timeFactor := classifyHour(e.now().Hour())
	randomFactor := e.drawRandomFactor()

	base, minutes := compose(routeLength, weather.Factor, timeFactor, randomFactor)

	return Estimate{
		DelayMinutes:  minutes,
		Weather:       weather.Label,
		WeatherFactor: weather.Factor,
		TimePeriod:    period,
		TimeFactor:    timeFactor,
		BaseDelay:     base,
		RushHour:      rush,
	}
}

// compose is the delay formula itself: base delay from route length, then
// the three multipliers. The base delay keeps full precision through the
// product; only the returned display value is rounded to one decimal.
func compose(routeLength, weatherFactor, timeFactor, randomFactor float64) (float64, int) {
	base := routeLength * perKmDelay
	total := base * weatherFactor * timeFactor * randomFactor
	return math.Round(base*10) / 10, roundMinutes(total)
}

// CurrentConditions samples the simulated weather and classifies the
// current wall-clock time.
func (e *Estimator) CurrentConditions() Conditions {
	now := e.now()
	rush, period, timeFactor := classifyHour(now.Hour())
	weather := e.drawWeather()
	return Conditions{
		Time:          now.Format("3:04 PM"),
		RushHour:      rush,
		TimePeriod:    period,
		TimeFactor:    timeFactor,
		Weather:       weather.Label,
		WeatherFactor: weather.Factor,
	}
}

func (e *Estimator) drawWeather() WeatherCondition {
	return weatherTable[e.rng.Intn(len(weatherTable))]
}

func (e *Estimator) drawRandomFactor() float64 {
	return randomFactorMin + e.rng.Float64()*(randomFactorMax-randomFactorMin)
}

// classifyHour reports whether the hour falls in a rush-hour window
// (07:00-09:59 or 16:00-18:59) and the matching period label and factor.
func classifyHour(hour int) (bool, string, float64) {
	if (hour >= 7 && hour <= 9) || (hour >= 16 && hour <= 18) {
		return true, rushHourPeriod, rushHourFactor
	}
	return false, regularTimePeriod, regularTimeFactor
}

// roundMinutes rounds half away from zero. The rounding convention is fixed
// here so estimates are reproducible across platforms.
func roundMinutes(minutes float64) int {
	return int(math.Round(minutes))
}

// WeatherTable returns the fixed condition table.
func WeatherTable() []WeatherCondition {
	out := make([]WeatherCondition, len(weatherTable))
	copy(out, weatherTable)
	return out
}
