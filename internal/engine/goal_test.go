package engine_test

import (
	"testing"

	"github.com/saadjs/hydrate-cli/internal/engine"
	"github.com/saadjs/hydrate-cli/internal/model"
)

func TestComputeGoalDeterministic(t *testing.T) {
	t.Parallel()
	p := model.Profile{WeightKg: 70, Activity: model.ActivityMedium, WeatherAdjust: true, WorkoutAdjust: true}
	w := &model.Weather{TemperatureC: 27, HumidityPct: 75}
	wo := &model.Workout{ExerciseMinutes: 45}

	first := engine.ComputeGoal(p, w, wo)
	for i := 0; i < 5; i++ {
		if got := engine.ComputeGoal(p, w, wo); got != first {
			t.Fatalf("expected identical breakdown, got %+v vs %+v", got, first)
		}
	}
	if first.BaseML != 2450 || first.WeatherML != 400 || first.WorkoutML != 540 {
		t.Fatalf("unexpected breakdown: %+v", first)
	}
	if first.TotalML != 3390 {
		t.Fatalf("expected total 3390, got %d", first.TotalML)
	}
}

func TestComputeGoalFloor(t *testing.T) {
	t.Parallel()
	zero := 0
	cases := []model.Profile{
		{WeightKg: 10, Activity: model.ActivityLow},
		{WeightKg: 0},
		{WeightKg: 80, GoalOverrideML: &zero},
		{WeightKg: 20, Activity: model.ActivityLow, WeatherAdjust: true},
	}
	cold := &model.Weather{TemperatureC: -3}
	for _, p := range cases {
		got := engine.ComputeGoal(p, cold, nil)
		if got.TotalML < engine.MinimumGoalML {
			t.Fatalf("goal below floor for %+v: %+v", p, got)
		}
	}
}

func TestComputeGoalOverrideKeepsAdjustments(t *testing.T) {
	t.Parallel()
	override := 3000
	p := model.Profile{WeightKg: 60, GoalOverrideML: &override, WorkoutAdjust: true}
	got := engine.ComputeGoal(p, nil, &model.Workout{ExerciseMinutes: 10})
	if got.BaseML != 3000 || got.WorkoutML != 120 || got.TotalML != 3120 {
		t.Fatalf("unexpected override breakdown: %+v", got)
	}
}

func TestComputeGoalIgnoresDisabledAdjustments(t *testing.T) {
	t.Parallel()
	p := model.Profile{WeightKg: 75, Activity: model.ActivityLow}
	got := engine.ComputeGoal(p, &model.Weather{TemperatureC: 35, HumidityPct: 90}, &model.Workout{ExerciseMinutes: 60})
	if got.WeatherML != 0 || got.WorkoutML != 0 || got.TotalML != 2400 {
		t.Fatalf("expected unadjusted 2400, got %+v", got)
	}
}

func TestWeatherAdjustmentBands(t *testing.T) {
	t.Parallel()
	cases := []struct {
		temp, humidity float64
		want           int
	}{
		{31, 85, 700},
		{30, 0, 500},
		{26, 70, 400},
		{22.5, 50, 150},
		{15, 50, 0},
		{4.9, 0, -100},
		{3, 82, 100},
	}
	for _, tc := range cases {
		got := engine.WeatherAdjustment(model.Weather{TemperatureC: tc.temp, HumidityPct: tc.humidity})
		if got != tc.want {
			t.Fatalf("weather %.1fC %.0f%%: expected %d, got %d", tc.temp, tc.humidity, tc.want, got)
		}
	}
}

func TestActivityMultiplierUnknownTier(t *testing.T) {
	t.Parallel()
	if got := engine.ActivityMultiplier("extreme"); got != 35 {
		t.Fatalf("expected medium multiplier for unknown tier, got %.0f", got)
	}
	if got := engine.WorkoutAdjustment(model.Workout{ExerciseMinutes: -5}); got != 0 {
		t.Fatalf("expected zero for negative minutes, got %d", got)
	}
}
