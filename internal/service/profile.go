package service

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/saadjs/hydrate-cli/internal/model"
)

// ErrProfileNotFound is returned before `hydrate init` has stored a profile.
var ErrProfileNotFound = errors.New("profile not set; run `hydrate init`")

func DefaultProfile() model.Profile {
	return model.Profile{
		WeightKg:          70,
		Activity:          model.ActivityMedium,
		Units:             model.UnitsMetric,
		RemindersEnabled:  true,
		WakeMinute:        7 * 60,
		SleepMinute:       22 * 60,
		AdaptiveReminders: true,
	}
}

func ValidateProfile(p model.Profile) error {
	if p.WeightKg <= 0 {
		return fmt.Errorf("weight must be > 0")
	}
	switch p.Activity {
	case model.ActivityLow, model.ActivityMedium, model.ActivityHigh:
	default:
		return fmt.Errorf("invalid activity %q (expected low|medium|high)", p.Activity)
	}
	switch p.Units {
	case model.UnitsMetric, model.UnitsImperial:
	default:
		return fmt.Errorf("invalid units %q (expected metric|imperial)", p.Units)
	}
	if p.GoalOverrideML != nil && *p.GoalOverrideML <= 0 {
		return fmt.Errorf("goal override must be > 0")
	}
	if p.WakeMinute < 0 || p.WakeMinute >= 24*60 {
		return fmt.Errorf("wake time must be within the day")
	}
	if p.SleepMinute <= p.WakeMinute || p.SleepMinute > 24*60 {
		return fmt.Errorf("sleep time must be after wake time")
	}
	return nil
}

func SetProfile(db *sql.DB, p model.Profile) error {
	if err := ValidateProfile(p); err != nil {
		return err
	}
	var override any
	if p.GoalOverrideML != nil {
		override = *p.GoalOverrideML
	}
	_, err := db.Exec(`
INSERT INTO profile(id, weight_kg, activity, units, goal_override_ml, wake_minute, sleep_minute, reminders_enabled, weather_adjust, workout_adjust, adaptive_reminders, updated_at)
VALUES(1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  weight_kg=excluded.weight_kg,
  activity=excluded.activity,
  units=excluded.units,
  goal_override_ml=excluded.goal_override_ml,
  wake_minute=excluded.wake_minute,
  sleep_minute=excluded.sleep_minute,
  reminders_enabled=excluded.reminders_enabled,
  weather_adjust=excluded.weather_adjust,
  workout_adjust=excluded.workout_adjust,
  adaptive_reminders=excluded.adaptive_reminders,
  updated_at=excluded.updated_at
`, p.WeightKg, string(p.Activity), string(p.Units), override, p.WakeMinute, p.SleepMinute,
		boolToInt(p.RemindersEnabled), boolToInt(p.WeatherAdjust), boolToInt(p.WorkoutAdjust), boolToInt(p.AdaptiveReminders))
	if err != nil {
		return fmt.Errorf("set profile: %w", err)
	}
	return nil
}

func GetProfile(db *sql.DB) (model.Profile, error) {
	var p model.Profile
	var activity, units string
	var override sql.NullInt64
	var reminders, weather, workout, adaptive int
	err := db.QueryRow(`
SELECT weight_kg, activity, units, goal_override_ml, wake_minute, sleep_minute, reminders_enabled, weather_adjust, workout_adjust, adaptive_reminders
FROM profile
WHERE id = 1
`).Scan(&p.WeightKg, &activity, &units, &override, &p.WakeMinute, &p.SleepMinute, &reminders, &weather, &workout, &adaptive)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	p.Activity = model.ActivityTier(activity)
	p.Units = model.UnitSystem(units)
	if override.Valid {
		v := int(override.Int64)
		p.GoalOverrideML = &v
	}
	p.RemindersEnabled = reminders == 1
	p.WeatherAdjust = weather == 1
	p.WorkoutAdjust = workout == 1
	p.AdaptiveReminders = adaptive == 1
	return p, nil
}

// profileFile is the on-disk YAML shape. Times are "HH:MM" and weight is in
// the profile's own unit system so the file reads naturally.
type profileFile struct {
	Weight            float64 `yaml:"weight"`
	Units             string  `yaml:"units"`
	Activity          string  `yaml:"activity"`
	GoalOverrideML    *int    `yaml:"goal_override_ml,omitempty"`
	Wake              string  `yaml:"wake"`
	Sleep             string  `yaml:"sleep"`
	RemindersEnabled  bool    `yaml:"reminders_enabled"`
	AdaptiveReminders bool    `yaml:"adaptive_reminders"`
	WeatherAdjust     bool    `yaml:"weather_adjust"`
	WorkoutAdjust     bool    `yaml:"workout_adjust"`
}

func ExportProfileYAML(w io.Writer, p model.Profile) error {
	weight := p.WeightKg
	if p.Units == model.UnitsImperial {
		weight = roundTo(KgToLb(p.WeightKg), 1)
	}
	f := profileFile{
		Weight:            weight,
		Units:             string(p.Units),
		Activity:          string(p.Activity),
		GoalOverrideML:    p.GoalOverrideML,
		Wake:              FormatClock(p.WakeMinute),
		Sleep:             FormatClock(p.SleepMinute),
		RemindersEnabled:  p.RemindersEnabled,
		AdaptiveReminders: p.AdaptiveReminders,
		WeatherAdjust:     p.WeatherAdjust,
		WorkoutAdjust:     p.WorkoutAdjust,
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode profile yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush profile yaml: %w", err)
	}
	return nil
}

func ImportProfileYAML(r io.Reader) (model.Profile, error) {
	f := profileFile{
		Units:             string(model.UnitsMetric),
		Activity:          string(model.ActivityMedium),
		Wake:              "07:00",
		Sleep:             "22:00",
		RemindersEnabled:  true,
		AdaptiveReminders: true,
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return model.Profile{}, fmt.Errorf("decode profile yaml: %w", err)
	}
	wake, err := ParseClock(f.Wake)
	if err != nil {
		return model.Profile{}, err
	}
	sleep, err := ParseClock(f.Sleep)
	if err != nil {
		return model.Profile{}, err
	}
	p := model.Profile{
		WeightKg:          f.Weight,
		Activity:          model.ActivityTier(normalizeName(f.Activity)),
		Units:             model.UnitSystem(normalizeName(f.Units)),
		GoalOverrideML:    f.GoalOverrideML,
		WakeMinute:        wake,
		SleepMinute:       sleep,
		RemindersEnabled:  f.RemindersEnabled,
		AdaptiveReminders: f.AdaptiveReminders,
		WeatherAdjust:     f.WeatherAdjust,
		WorkoutAdjust:     f.WorkoutAdjust,
	}
	if p.Units == model.UnitsImperial {
		p.WeightKg = LbToKg(f.Weight)
	}
	if err := ValidateProfile(p); err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// ParseClock reads "HH:MM" as minutes since midnight. "24:00" is accepted
// as the end of the day.
func ParseClock(value string) (int, error) {
	value = strings.TrimSpace(value)
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	minute := h*60 + m
	if h < 0 || minute > 24*60 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	return minute, nil
}

func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
