package service_test

import (
	"testing"

	"github.com/saadjs/hydrate-cli/internal/model"
	"github.com/saadjs/hydrate-cli/internal/service"
)

func TestLatestWeatherPicksNewestReadingOfDay(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	readings := []model.Weather{
		{TemperatureC: 18, HumidityPct: 40, ObservedAt: localAt(10, 8, 0)},
		{TemperatureC: 31, HumidityPct: 72, ObservedAt: localAt(10, 14, 0)},
		{TemperatureC: 12, HumidityPct: 90, ObservedAt: localAt(11, 8, 0)},
	}
	for _, w := range readings {
		if err := service.SetWeather(db, w); err != nil {
			t.Fatalf("set weather: %v", err)
		}
	}
	w, err := service.LatestWeather(db, "2026-03-10")
	if err != nil {
		t.Fatalf("latest weather: %v", err)
	}
	if w == nil || w.TemperatureC != 31 || w.HumidityPct != 72 {
		t.Fatalf("expected afternoon reading, got %+v", w)
	}
	w, err = service.LatestWeather(db, "2026-03-09")
	if err != nil {
		t.Fatalf("latest weather for empty day: %v", err)
	}
	if w != nil {
		t.Fatalf("expected no weather, got %+v", w)
	}
	if err := service.SetWeather(db, model.Weather{TemperatureC: 20, HumidityPct: 140}); err == nil {
		t.Fatalf("expected humidity over 100 to fail")
	}
}

func TestWorkoutForDaySumsSessions(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	for _, in := range []service.WorkoutInput{
		{ExerciseMinutes: 30, ActiveEnergyKcal: 250, PerformedAt: localAt(10, 7, 0)},
		{ExerciseMinutes: 15, PerformedAt: localAt(10, 18, 0), Notes: "walk"},
	} {
		if _, err := service.AddWorkout(db, in); err != nil {
			t.Fatalf("add workout: %v", err)
		}
	}
	w, err := service.WorkoutForDay(db, "2026-03-10")
	if err != nil {
		t.Fatalf("workout for day: %v", err)
	}
	if w == nil || w.ExerciseMinutes != 45 || w.ActiveEnergyKcal != 250 {
		t.Fatalf("expected 45 minutes and 250 kcal, got %+v", w)
	}
	if w, err := service.WorkoutForDay(db, "2026-03-11"); err != nil || w != nil {
		t.Fatalf("expected no workout, got %+v (%v)", w, err)
	}
	if _, err := service.AddWorkout(db, service.WorkoutInput{ExerciseMinutes: 0}); err == nil {
		t.Fatalf("expected zero minutes to fail")
	}
}
