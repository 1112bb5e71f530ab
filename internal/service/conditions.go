package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/hydrate-cli/internal/model"
)

type WorkoutInput struct {
	ExerciseMinutes  int
	ActiveEnergyKcal float64
	PerformedAt      time.Time
	Notes            string
}

func SetWeather(db *sql.DB, w model.Weather) error {
	if w.HumidityPct < 0 || w.HumidityPct > 100 {
		return fmt.Errorf("humidity must be between 0 and 100")
	}
	if w.TemperatureC < -90 || w.TemperatureC > 60 {
		return fmt.Errorf("temperature %.1fC is out of range", w.TemperatureC)
	}
	if w.ObservedAt.IsZero() {
		w.ObservedAt = time.Now()
	}
	_, err := db.Exec(`
INSERT INTO weather_readings(temperature_c, humidity_pct, observed_at)
VALUES(?, ?, ?)
`, w.TemperatureC, w.HumidityPct, formatTime(w.ObservedAt))
	if err != nil {
		return fmt.Errorf("insert weather reading: %w", err)
	}
	return nil
}

// LatestWeather returns the most recent reading observed on date, or nil.
func LatestWeather(db *sql.DB, date string) (*model.Weather, error) {
	start, end, err := dayBounds(date)
	if err != nil {
		return nil, err
	}
	var w model.Weather
	var observedRaw string
	err = db.QueryRow(`
SELECT temperature_c, humidity_pct, observed_at
FROM weather_readings
WHERE observed_at >= ? AND observed_at < ?
ORDER BY observed_at DESC, id DESC
LIMIT 1
`, start, end).Scan(&w.TemperatureC, &w.HumidityPct, &observedRaw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest weather for %s: %w", date, err)
	}
	observedAt, err := parseTime(observedRaw)
	if err != nil {
		return nil, err
	}
	w.ObservedAt = observedAt
	return &w, nil
}

func AddWorkout(db *sql.DB, in WorkoutInput) (int64, error) {
	if err := validatePositiveInt("exercise minutes", in.ExerciseMinutes); err != nil {
		return 0, err
	}
	if err := validateNonNegativeFloat("active energy", in.ActiveEnergyKcal); err != nil {
		return 0, err
	}
	if in.PerformedAt.IsZero() {
		in.PerformedAt = time.Now()
	}
	res, err := db.Exec(`
INSERT INTO workout_sessions(exercise_minutes, active_energy_kcal, performed_at, notes)
VALUES(?, ?, ?, ?)
`, in.ExerciseMinutes, in.ActiveEnergyKcal, formatTime(in.PerformedAt), strings.TrimSpace(in.Notes))
	if err != nil {
		return 0, fmt.Errorf("insert workout session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve inserted workout id: %w", err)
	}
	return id, nil
}

// WorkoutForDay sums every session on date. Nil means no workout data.
func WorkoutForDay(db *sql.DB, date string) (*model.Workout, error) {
	start, end, err := dayBounds(date)
	if err != nil {
		return nil, err
	}
	var sessions int
	var w model.Workout
	err = db.QueryRow(`
SELECT COUNT(1), COALESCE(SUM(exercise_minutes), 0), COALESCE(SUM(active_energy_kcal), 0)
FROM workout_sessions
WHERE performed_at >= ? AND performed_at < ?
`, start, end).Scan(&sessions, &w.ExerciseMinutes, &w.ActiveEnergyKcal)
	if err != nil {
		return nil, fmt.Errorf("workout summary for %s: %w", date, err)
	}
	if sessions == 0 {
		return nil, nil
	}
	return &w, nil
}
