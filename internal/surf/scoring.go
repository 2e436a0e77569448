package surf

import (
	"math"
	"time"
)

// Composite weights. They sum to 1.
const (
	waveWeight     = 0.4
	windWeight     = 0.3
	skillWeight    = 0.2
	distanceWeight = 0.1
)

// Wave heights within this fraction past either end of the preferred range earn
// partial credit.
const waveTolerance = 0.3

// WaveHeightScore scores a wave height against the preferred [min,max] range.
// Inside the range it peaks at 1.0 on the midpoint. Within 30% past either
// boundary it falls from 0.5 to 0. Further away it is 0.
func WaveHeightScore(height, min, max float64) float64 {
	if height < min*(1-waveTolerance) || height > max*(1+waveTolerance) {
		return 0
	}

	if height >= min && height <= max {
		half := (max - min) / 2
		if half <= 0 {
			return 1
		}
		mid := (min + max) / 2
		return clamp01(1 - math.Abs(height-mid)/half)
	}

	if height < min {
		allowed := min * waveTolerance
		return clamp01(0.5 * (1 - (min-height)/allowed))
	}
	allowed := max * waveTolerance
	return clamp01(0.5 * (1 - (height-max)/allowed))
}

// WindDirectionScore rates a compass bearing the wind blows from. Offshore
// (45-135) is best, due west (270) is worst.
func WindDirectionScore(direction float64) float64 {
	d := math.Mod(math.Mod(direction, 360)+360, 360)

	switch {
	case d >= 45 && d <= 135:
		return 1.0
	case d >= 315 || d <= 45:
		return 0.8
	case d <= 180:
		return 0.7
	case d <= 225:
		return 0.4
	default:
		fromWest := math.Min(math.Abs(d-270), 45)
		return 0.1 + fromWest/45*0.3
	}
}

// WindScore combines wind speed and direction. Anything above maxSpeed scores 0.
func WindScore(speed, direction, maxSpeed float64) float64 {
	if speed > maxSpeed || maxSpeed <= 0 {
		return 0
	}
	speedScore := math.Max(0, 1-speed/maxSpeed)
	return clamp01(speedScore*0.6 + WindDirectionScore(direction)*0.4)
}

// SkillScore rates how well a spot's difficulty suits a surfer.
func SkillScore(spot, surfer Level) float64 {
	s, u := spot.Rank(), surfer.Rank()
	switch {
	case s == u:
		return 1
	case u == 1 && s == 3:
		return 0
	case u == 3 && s == 1:
		return 0.6
	default:
		return 0.7
	}
}

// DistanceScore decays linearly from 1 at the origin to 0 at maxDistance.
func DistanceScore(distance, maxDistance float64) float64 {
	if maxDistance <= 0 || distance > maxDistance {
		return 0
	}
	return clamp01(1 - distance/maxDistance)
}

// Composite is the weighted sum of the component scores.
func Composite(s Scores) float64 {
	return clamp01(s.WaveHeight*waveWeight +
		s.Wind*windWeight +
		s.Skill*skillWeight +
		s.Distance*distanceWeight)
}

// CurrentConditions picks the sample closest in time to at. Ties go to the
// earlier sample in series order. An empty series yields zero conditions.
func CurrentConditions(series ForecastSeries, at time.Time) Conditions {
	if len(series) == 0 {
		return Conditions{}
	}

	best := 0
	bestDiff := absDuration(series[0].Time.Sub(at))
	for i := 1; i < len(series); i++ {
		if diff := absDuration(series[i].Time.Sub(at)); diff < bestDiff {
			best, bestDiff = i, diff
		}
	}

	s := series[best]
	return Conditions{
		WaveHeight:    s.WaveHeight,
		WavePeriod:    s.WavePeriod,
		WindSpeed:     s.WindSpeed,
		WindDirection: s.WindDirection,
		Time:          s.Time,
		Source:        s.Source,
	}
}

// ScoreCandidate computes component and composite scores for a spot.
func ScoreCandidate(p PreferenceProfile, c Candidate, cond Conditions) (Scores, float64) {
	scores := Scores{
		WaveHeight: WaveHeightScore(cond.WaveHeight, p.MinWaveHeight, p.MaxWaveHeight),
		Wind:       WindScore(cond.WindSpeed, cond.WindDirection, p.MaxWindSpeed),
		Skill:      SkillScore(c.Location.Difficulty, p.SkillLevel),
		Distance:   DistanceScore(c.DistanceKm, p.MaxDistanceKm),
	}
	return scores, Composite(scores)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
