package hydrate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/hydrate-cli/internal/engine"
	"github.com/saadjs/hydrate-cli/internal/model"
	"github.com/saadjs/hydrate-cli/internal/service"
)

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Record today's weather for the goal adjustment",
}

var (
	weatherTemp     float64
	weatherHumidity float64
)

var weatherSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Record the current temperature and humidity",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, sqldb *sql.DB, eng *engine.Engine) error {
			if err := service.SetWeather(sqldb, model.Weather{
				TemperatureC: weatherTemp,
				HumidityPct:  weatherHumidity,
				ObservedAt:   time.Now(),
			}); err != nil {
				return err
			}
			goal, err := refreshConditions(ctx, sqldb, eng)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %.1fC / %.0f%% humidity\n", weatherTemp, weatherHumidity)
			printGoal(cmd, eng, goal)
			return nil
		})
	},
}

var workoutCmd = &cobra.Command{
	Use:   "workout",
	Short: "Record workouts for the goal adjustment",
}

var (
	workoutMinutes int
	workoutKcal    float64
	workoutDate    string
	workoutTime    string
	workoutNotes   string
)

var workoutAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a workout session",
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := parseDateTimeOrNow(workoutDate, workoutTime)
		if err != nil {
			return err
		}
		return withEngine(cmd, func(ctx context.Context, sqldb *sql.DB, eng *engine.Engine) error {
			id, err := service.AddWorkout(sqldb, service.WorkoutInput{
				ExerciseMinutes:  workoutMinutes,
				ActiveEnergyKcal: workoutKcal,
				PerformedAt:      at,
				Notes:            workoutNotes,
			})
			if err != nil {
				return err
			}
			goal, err := refreshConditions(ctx, sqldb, eng)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added workout %d (%d min)\n", id, workoutMinutes)
			printGoal(cmd, eng, goal)
			return nil
		})
	},
}

// refreshConditions reloads today's weather and workouts into the engine.
func refreshConditions(ctx context.Context, sqldb *sql.DB, eng *engine.Engine) (model.GoalBreakdown, error) {
	date := time.Now().Format("2006-01-02")
	weather, err := service.LatestWeather(sqldb, date)
	if err != nil {
		return model.GoalBreakdown{}, err
	}
	workout, err := service.WorkoutForDay(sqldb, date)
	if err != nil {
		return model.GoalBreakdown{}, err
	}
	return eng.SetConditions(ctx, weather, workout), nil
}

var goalJSON bool

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Show today's goal and how it was computed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(_ context.Context, _ *sql.DB, eng *engine.Engine) error {
			goal := eng.Goal()
			if goalJSON {
				return printJSON(cmd, goal)
			}
			printGoal(cmd, eng, goal)
			return nil
		})
	},
}

func printGoal(cmd *cobra.Command, eng *engine.Engine, goal model.GoalBreakdown) {
	m := eng.Messages()
	out := cmd.OutOrStdout()
	if eng.Profile().GoalOverrideML != nil {
		fmt.Fprintf(out, "Goal: %s (override)\n", m.FormatML(goal.TotalML))
		return
	}
	fmt.Fprintf(out, "Goal: %s\n", m.FormatML(goal.TotalML))
	fmt.Fprintf(out, "  base:    %s\n", m.FormatML(goal.BaseML))
	fmt.Fprintf(out, "  weather: +%s\n", m.FormatML(goal.WeatherML))
	fmt.Fprintf(out, "  workout: +%s\n", m.FormatML(goal.WorkoutML))
}

func init() {
	rootCmd.AddCommand(weatherCmd, workoutCmd, goalCmd)
	weatherCmd.AddCommand(weatherSetCmd)
	workoutCmd.AddCommand(workoutAddCmd)

	weatherSetCmd.Flags().Float64Var(&weatherTemp, "temp", 0, "Temperature in Celsius")
	weatherSetCmd.Flags().Float64Var(&weatherHumidity, "humidity", 0, "Relative humidity percent")
	_ = weatherSetCmd.MarkFlagRequired("temp")
	_ = weatherSetCmd.MarkFlagRequired("humidity")

	workoutAddCmd.Flags().IntVar(&workoutMinutes, "minutes", 0, "Exercise minutes")
	workoutAddCmd.Flags().Float64Var(&workoutKcal, "kcal", 0, "Active energy burned (kcal)")
	workoutAddCmd.Flags().StringVar(&workoutDate, "date", "", "Date YYYY-MM-DD (default today)")
	workoutAddCmd.Flags().StringVar(&workoutTime, "time", "", "Time HH:MM (default now)")
	workoutAddCmd.Flags().StringVar(&workoutNotes, "notes", "", "Optional notes")
	_ = workoutAddCmd.MarkFlagRequired("minutes")

	goalCmd.Flags().BoolVar(&goalJSON, "json", false, "Print the breakdown as JSON")
}
