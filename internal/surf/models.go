package surf

import (
	"time"

	"github.com/i474232898/surf-spot-ranking/internal/geo"
)

// BreakType classifies how a spot's waves break.
type BreakType string

const (
	BreakBeach BreakType = "beach"
	BreakReef  BreakType = "reef"
	BreakPoint BreakType = "point"
	BreakOther BreakType = "other"
)

// ParseBreakType maps free-form catalog values ("beach_break", "Reef") to a BreakType.
func ParseBreakType(s string) BreakType {
	switch normalizeLabel(s) {
	case "beach", "beach_break":
		return BreakBeach
	case "reef", "reef_break":
		return BreakReef
	case "point", "point_break":
		return BreakPoint
	default:
		return BreakOther
	}
}

// Level is the shared domain of surfer skill and spot difficulty.
type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
)

// Rank returns the ordinal of a level. Unknown levels rank as intermediate.
func (l Level) Rank() int {
	switch l {
	case Beginner:
		return 1
	case Advanced:
		return 3
	default:
		return 2
	}
}

// Location is a surf spot from the reference catalog.
type Location struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Region     string    `json:"region"`
	BreakType  BreakType `json:"breakType"`
	Difficulty Level     `json:"difficulty"`
}

// Coordinate returns the spot position.
func (l Location) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: l.Latitude, Lng: l.Longitude}
}

// Candidate is a location under evaluation together with its distance from the
// search origin.
type Candidate struct {
	Location   Location `json:"location"`
	DistanceKm float64  `json:"distanceKm"`
}

// PreferenceProfile is what a session has told us about itself.
// Wave heights are in feet, wind speed in mph.
type PreferenceProfile struct {
	SessionID     string          `json:"sessionId" validate:"required,max=128"`
	SkillLevel    Level           `json:"skillLevel" validate:"required,oneof=beginner intermediate advanced"`
	MinWaveHeight float64         `json:"minWaveHeight" validate:"gte=0"`
	MaxWaveHeight float64         `json:"maxWaveHeight" validate:"gtfield=MinWaveHeight"`
	MaxWindSpeed  float64         `json:"maxWindSpeed" validate:"gt=0"`
	MaxDistanceKm float64         `json:"maxDistanceKm" validate:"gt=0"`
	Home          *geo.Coordinate `json:"home,omitempty"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ConditionSample is a single time-stamped observation or forecast point.
// Wave height is in feet, wind speed in mph and direction in compass degrees.
type ConditionSample struct {
	Time          time.Time `json:"time"`
	WaveHeight    float64   `json:"waveHeight"`
	WavePeriod    float64   `json:"wavePeriod"`
	WindSpeed     float64   `json:"windSpeed"`
	WindDirection float64   `json:"windDirection"`
	Source        string    `json:"source"`
}

// Key identifies a sample for cache idempotency.
func (s ConditionSample) Key() SampleKey {
	return SampleKey{Source: s.Source, Time: s.Time.UTC().UnixMilli()}
}

// SampleKey is the (source, timestamp) part of a cache tuple.
type SampleKey struct {
	Source string
	Time   int64
}

// ForecastSeries holds the samples for one location, expected ordered by Time ascending.
// A non-nil empty series means providers were asked and had nothing.
type ForecastSeries []ConditionSample

// Head returns at most n leading samples.
func (f ForecastSeries) Head(n int) ForecastSeries {
	if len(f) <= n {
		return f
	}
	return f[:n]
}

// TimeWindow bounds the forecast horizon a provider is asked for.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Scores holds the four component scores, each in [0,1].
type Scores struct {
	WaveHeight float64 `json:"waveHeight"`
	Wind       float64 `json:"wind"`
	Skill      float64 `json:"skill"`
	Distance   float64 `json:"distance"`
}

// Conditions are the scoring inputs picked from a forecast series.
type Conditions struct {
	WaveHeight    float64   `json:"waveHeight"`
	WavePeriod    float64   `json:"wavePeriod"`
	WindSpeed     float64   `json:"windSpeed"`
	WindDirection float64   `json:"windDirection"`
	Time          time.Time `json:"time"`
	Source        string    `json:"source,omitempty"`
}

// ScoredCandidate is one ranked result. It is never persisted.
type ScoredCandidate struct {
	Location   Location       `json:"spot"`
	DistanceKm float64        `json:"distanceKm"`
	Conditions Conditions     `json:"conditions"`
	Scores     Scores         `json:"scores"`
	Score      float64        `json:"score"`
	Forecast   ForecastSeries `json:"forecastData"`
}

// SpotConditions is the current-conditions view of a single spot.
type SpotConditions struct {
	SpotID      int64      `json:"spotId"`
	SpotName    string     `json:"spotName"`
	Conditions  Conditions `json:"conditions"`
	LastUpdated time.Time  `json:"lastUpdated"`
}
