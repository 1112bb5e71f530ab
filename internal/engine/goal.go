package engine

import (
	"math"

	"github.com/saadjs/hydrate-cli/internal/model"
)

const (
	// MinimumGoalML keeps a zero or negative override from producing a goal
	// nobody can act on.
	MinimumGoalML = 1000

	workoutMLPerMinute = 12
)

var activityMultipliers = map[model.ActivityTier]float64{
	model.ActivityLow:    32,
	model.ActivityMedium: 35,
	model.ActivityHigh:   38,
}

type temperatureBand struct {
	minC  float64
	bonus int
}

// Evaluated top-down, first match wins.
var hotBands = []temperatureBand{
	{minC: 30, bonus: 500},
	{minC: 26, bonus: 300},
	{minC: 22, bonus: 150},
}

const (
	coldBelowC  = 5.0
	coldPenalty = -100

	humidHighPct   = 80.0
	humidHighBonus = 200
	humidPct       = 70.0
	humidBonus     = 100
)

// ActivityMultiplier returns ml per kg of body weight. Unknown tiers are read
// as medium.
func ActivityMultiplier(tier model.ActivityTier) float64 {
	if m, ok := activityMultipliers[tier]; ok {
		return m
	}
	return activityMultipliers[model.ActivityMedium]
}

// ComputeGoal is pure: the same inputs always produce the same breakdown.
func ComputeGoal(profile model.Profile, weather *model.Weather, workout *model.Workout) model.GoalBreakdown {
	var out model.GoalBreakdown
	if profile.GoalOverrideML != nil {
		out.BaseML = *profile.GoalOverrideML
	} else {
		weight := profile.WeightKg
		if weight < 0 {
			weight = 0
		}
		out.BaseML = int(math.Round(weight * ActivityMultiplier(profile.Activity)))
	}
	if profile.WeatherAdjust && weather != nil {
		out.WeatherML = WeatherAdjustment(*weather)
	}
	if profile.WorkoutAdjust && workout != nil {
		out.WorkoutML = WorkoutAdjustment(*workout)
	}
	out.TotalML = out.BaseML + out.WeatherML + out.WorkoutML
	if out.TotalML < MinimumGoalML {
		out.TotalML = MinimumGoalML
	}
	return out
}

func WeatherAdjustment(w model.Weather) int {
	adj := 0
	matched := false
	for _, band := range hotBands {
		if w.TemperatureC >= band.minC {
			adj = band.bonus
			matched = true
			break
		}
	}
	if !matched && w.TemperatureC < coldBelowC {
		adj = coldPenalty
	}
	switch {
	case w.HumidityPct >= humidHighPct:
		adj += humidHighBonus
	case w.HumidityPct >= humidPct:
		adj += humidBonus
	}
	return adj
}

func WorkoutAdjustment(w model.Workout) int {
	if w.ExerciseMinutes <= 0 {
		return 0
	}
	return w.ExerciseMinutes * workoutMLPerMinute
}
