package hydrate

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/hydrate-cli/internal/model"
	"github.com/saadjs/hydrate-cli/internal/service"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the hydration profile",
}

var (
	profWeight        string
	profActivity      string
	profUnits         string
	profGoalOverride  string
	profClearOverride bool
	profWake          string
	profSleep         string
	profReminders     bool
	profAdaptive      bool
	profWeatherAdjust bool
	profWorkoutAdjust bool
)

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields (unset flags keep their current value)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := currentProfile(sqldb)
			if err != nil {
				return err
			}
			if err := applyProfileFlags(cmd, &p); err != nil {
				return err
			}
			return saveProfile(cmd, sqldb, p)
		})
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := service.GetProfile(sqldb)
			if err != nil {
				return err
			}
			weight := fmt.Sprintf("%.1f kg", p.WeightKg)
			if p.Units == model.UnitsImperial {
				weight = fmt.Sprintf("%.1f lb", service.KgToLb(p.WeightKg))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Weight: %s\n", weight)
			fmt.Fprintf(out, "Activity: %s\n", p.Activity)
			fmt.Fprintf(out, "Units: %s\n", p.Units)
			if p.GoalOverrideML != nil {
				fmt.Fprintf(out, "Goal override: %s\n", service.FormatVolume(*p.GoalOverrideML, p.Units))
			} else {
				fmt.Fprintln(out, "Goal override: none")
			}
			fmt.Fprintf(out, "Awake: %s-%s\n", service.FormatClock(p.WakeMinute), service.FormatClock(p.SleepMinute))
			fmt.Fprintf(out, "Reminders: %s (%s)\n", onOff(p.RemindersEnabled), reminderMode(p))
			fmt.Fprintf(out, "Weather adjustment: %s\n", onOff(p.WeatherAdjust))
			fmt.Fprintf(out, "Workout adjustment: %s\n", onOff(p.WorkoutAdjust))
			return nil
		})
	},
}

var profileExportOut string

var profileExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the profile as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := service.GetProfile(sqldb)
			if err != nil {
				return err
			}
			if profileExportOut == "" {
				return service.ExportProfileYAML(cmd.OutOrStdout(), p)
			}
			f, err := os.Create(profileExportOut)
			if err != nil {
				return fmt.Errorf("create %s: %w", profileExportOut, err)
			}
			defer f.Close()
			if err := service.ExportProfileYAML(f, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported profile to %s\n", profileExportOut)
			return nil
		})
	},
}

var profileImportFile string

var profileImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the profile from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(profileImportFile) == "" {
			return fmt.Errorf("--file is required")
		}
		f, err := os.Open(profileImportFile)
		if err != nil {
			return fmt.Errorf("open %s: %w", profileImportFile, err)
		}
		defer f.Close()
		p, err := service.ImportProfileYAML(f)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			return saveProfile(cmd, sqldb, p)
		})
	},
}

func currentProfile(sqldb *sql.DB) (model.Profile, error) {
	p, err := service.GetProfile(sqldb)
	if errors.Is(err, service.ErrProfileNotFound) {
		return service.DefaultProfile(), nil
	}
	return p, err
}

// saveProfile stores p and reschedules reminders against the new profile.
func saveProfile(cmd *cobra.Command, sqldb *sql.DB, p model.Profile) error {
	if err := service.SetProfile(sqldb, p); err != nil {
		return err
	}
	eng, err := openEngine(cmd, sqldb)
	if err != nil {
		return err
	}
	eng.Reschedule(commandContext(cmd))
	if err := service.Commit(sqldb, eng); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved profile; daily goal is %s\n", eng.Messages().FormatML(eng.Goal().TotalML))
	return nil
}

func applyProfileFlags(cmd *cobra.Command, p *model.Profile) error {
	flags := cmd.Flags()
	if flags.Changed("units") {
		p.Units = model.UnitSystem(strings.ToLower(strings.TrimSpace(profUnits)))
	}
	if flags.Changed("weight") {
		kg, err := service.ParseWeight(profWeight, p.Units)
		if err != nil {
			return err
		}
		p.WeightKg = kg
	}
	if flags.Changed("activity") {
		p.Activity = model.ActivityTier(strings.ToLower(strings.TrimSpace(profActivity)))
	}
	if flags.Changed("goal-override") && profClearOverride {
		return fmt.Errorf("--goal-override and --clear-goal-override are mutually exclusive")
	}
	if flags.Changed("goal-override") {
		ml, err := service.ParseVolume(profGoalOverride, service.DefaultVolumeUnit(p.Units))
		if err != nil {
			return err
		}
		p.GoalOverrideML = &ml
	}
	if profClearOverride {
		p.GoalOverrideML = nil
	}
	if flags.Changed("wake") {
		m, err := service.ParseClock(profWake)
		if err != nil {
			return err
		}
		p.WakeMinute = m
	}
	if flags.Changed("sleep") {
		m, err := service.ParseClock(profSleep)
		if err != nil {
			return err
		}
		p.SleepMinute = m
	}
	if flags.Changed("reminders") {
		p.RemindersEnabled = profReminders
	}
	if flags.Changed("adaptive") {
		p.AdaptiveReminders = profAdaptive
	}
	if flags.Changed("weather-adjust") {
		p.WeatherAdjust = profWeatherAdjust
	}
	if flags.Changed("workout-adjust") {
		p.WorkoutAdjust = profWorkoutAdjust
	}
	return nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func reminderMode(p model.Profile) model.ReminderMode {
	if p.AdaptiveReminders {
		return model.ReminderAdaptive
	}
	return model.ReminderFixed
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileSetCmd, profileShowCmd, profileExportCmd, profileImportCmd)

	profileSetCmd.Flags().StringVar(&profWeight, "weight", "", "Body weight, e.g. 72, 72kg or 160lb")
	profileSetCmd.Flags().StringVar(&profActivity, "activity", "", "Activity tier: low, medium, or high")
	profileSetCmd.Flags().StringVar(&profUnits, "units", "", "Unit system: metric or imperial")
	profileSetCmd.Flags().StringVar(&profGoalOverride, "goal-override", "", "Fixed daily goal, e.g. 2500 or 2.5l")
	profileSetCmd.Flags().BoolVar(&profClearOverride, "clear-goal-override", false, "Go back to the computed goal")
	profileSetCmd.Flags().StringVar(&profWake, "wake", "", "Wake time HH:MM")
	profileSetCmd.Flags().StringVar(&profSleep, "sleep", "", "Sleep time HH:MM")
	profileSetCmd.Flags().BoolVar(&profReminders, "reminders", true, "Enable reminders")
	profileSetCmd.Flags().BoolVar(&profAdaptive, "adaptive", true, "Adaptive reminders (false: fixed interval)")
	profileSetCmd.Flags().BoolVar(&profWeatherAdjust, "weather-adjust", false, "Raise the goal in hot or humid weather")
	profileSetCmd.Flags().BoolVar(&profWorkoutAdjust, "workout-adjust", false, "Raise the goal after workouts")

	profileExportCmd.Flags().StringVar(&profileExportOut, "out", "", "Output file (default stdout)")
	profileImportCmd.Flags().StringVar(&profileImportFile, "file", "", "Profile YAML file")
}
