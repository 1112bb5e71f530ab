package model

import "time"

type ActivityTier string

const (
	ActivityLow    ActivityTier = "low"
	ActivityMedium ActivityTier = "medium"
	ActivityHigh   ActivityTier = "high"
)

type UnitSystem string

const (
	UnitsMetric   UnitSystem = "metric"
	UnitsImperial UnitSystem = "imperial"
)

type EntrySource string

const (
	SourceManual EntrySource = "manual"
	SourceSynced EntrySource = "synced"
)

// Profile is owned by the caller. WeightKg is canonical; Units only affects
// how values are shown and parsed at the edges.
type Profile struct {
	WeightKg          float64      `json:"weight_kg" yaml:"weight_kg"`
	Activity          ActivityTier `json:"activity" yaml:"activity"`
	Units             UnitSystem   `json:"units" yaml:"units"`
	GoalOverrideML    *int         `json:"goal_override_ml,omitempty" yaml:"goal_override_ml,omitempty"`
	RemindersEnabled  bool         `json:"reminders_enabled" yaml:"reminders_enabled"`
	WakeMinute        int          `json:"wake_minute" yaml:"wake_minute"`
	SleepMinute       int          `json:"sleep_minute" yaml:"sleep_minute"`
	WeatherAdjust     bool         `json:"weather_adjust" yaml:"weather_adjust"`
	WorkoutAdjust     bool         `json:"workout_adjust" yaml:"workout_adjust"`
	AdaptiveReminders bool         `json:"adaptive_reminders" yaml:"adaptive_reminders"`
}

type IntakeEntry struct {
	ID       string      `json:"id" yaml:"id"`
	At       time.Time   `json:"at" yaml:"at"`
	VolumeML int         `json:"volume_ml" yaml:"volume_ml"`
	Source   EntrySource `json:"source" yaml:"source"`
	Note     string      `json:"note,omitempty" yaml:"note,omitempty"`
}

type Weather struct {
	TemperatureC float64   `json:"temperature_c" yaml:"temperature_c"`
	HumidityPct  float64   `json:"humidity_pct" yaml:"humidity_pct"`
	ObservedAt   time.Time `json:"observed_at" yaml:"observed_at"`
}

type Workout struct {
	ExerciseMinutes  int     `json:"exercise_minutes" yaml:"exercise_minutes"`
	ActiveEnergyKcal float64 `json:"active_energy_kcal" yaml:"active_energy_kcal"`
}

type GoalBreakdown struct {
	BaseML    int `json:"base_ml" yaml:"base_ml"`
	WeatherML int `json:"weather_ml" yaml:"weather_ml"`
	WorkoutML int `json:"workout_ml" yaml:"workout_ml"`
	TotalML   int `json:"total_ml" yaml:"total_ml"`
}

type Quest struct {
	ID           string `json:"id" yaml:"id"`
	Title        string `json:"title" yaml:"title"`
	TargetML     int    `json:"target_ml" yaml:"target_ml"`
	DeadlineHour *int   `json:"deadline_hour,omitempty" yaml:"deadline_hour,omitempty"`
	ProgressML   int    `json:"progress_ml" yaml:"progress_ml"`
	Completed    bool   `json:"completed" yaml:"completed"`
	Reward       int    `json:"reward" yaml:"reward"`
}

type QuestStatus string

const (
	QuestPending   QuestStatus = "pending"
	QuestCompleted QuestStatus = "completed"
	QuestExpired   QuestStatus = "expired"
)

type Streak struct {
	Count   int    `json:"count" yaml:"count"`
	Longest int    `json:"longest" yaml:"longest"`
	LastDay string `json:"last_day,omitempty" yaml:"last_day,omitempty"`
}

type Achievement struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Unlocked    bool       `json:"unlocked" yaml:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty" yaml:"unlocked_at,omitempty"`
}

type GamificationState struct {
	Quests       []Quest       `json:"quests" yaml:"quests"`
	QuestDay     string        `json:"quest_day,omitempty" yaml:"quest_day,omitempty"`
	Streak       Streak        `json:"streak" yaml:"streak"`
	Achievements []Achievement `json:"achievements" yaml:"achievements"`
	UpdatedAt    time.Time     `json:"updated_at" yaml:"updated_at"`
}

// Snapshot is the opaque unit a caller persists or receives from a remote
// device. UpdatedAt is the only field compared when deciding which side wins.
type Snapshot struct {
	UpdatedAt time.Time         `json:"updated_at" yaml:"updated_at"`
	Entries   []IntakeEntry     `json:"entries" yaml:"entries"`
	State     GamificationState `json:"state" yaml:"state"`
}

type ProgressBand string

const (
	BandEarly ProgressBand = "early"
	BandMid   ProgressBand = "mid"
	BandLate  ProgressBand = "late"
)

type ReminderMode string

const (
	ReminderAdaptive ReminderMode = "adaptive"
	ReminderFixed    ReminderMode = "fixed"
)

type Reminder struct {
	ID         string       `json:"id" yaml:"id"`
	FireAt     time.Time    `json:"fire_at" yaml:"fire_at"`
	Imminent   bool         `json:"imminent" yaml:"imminent"`
	Title      string       `json:"title" yaml:"title"`
	Body       string       `json:"body" yaml:"body"`
	Escalation bool         `json:"escalation" yaml:"escalation"`
	Band       ProgressBand `json:"band,omitempty" yaml:"band,omitempty"`
	Mode       ReminderMode `json:"mode" yaml:"mode"`
}
