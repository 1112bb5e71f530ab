package service

import (
	"database/sql"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/saadjs/hydrate-cli/internal/engine"
)

type DaySummary struct {
	Date    string `json:"date"`
	TotalML int    `json:"total_ml"`
	Entries int    `json:"entries"`
	GoalMet bool   `json:"goal_met"`
}

type ConsistencyStat struct {
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	CoeffVar float64 `json:"coeff_var"`
}

// TrendStat is the least-squares slope of daily totals.
type TrendStat struct {
	SlopeMLPerDay float64 `json:"slope_ml_per_day"`
	Direction     string  `json:"direction"`
}

type HistoryReport struct {
	FromDate        string          `json:"from_date"`
	ToDate          string          `json:"to_date"`
	GoalML          int             `json:"goal_ml"`
	TotalML         int             `json:"total_ml"`
	TotalDays       int             `json:"total_days"`
	DaysWithEntries int             `json:"days_with_entries"`
	AverageMLPerDay float64         `json:"avg_ml_per_day"`
	GoalMetDays     int             `json:"goal_met_days"`
	PercentGoalMet  float64         `json:"percent_goal_met"`
	LongestGoalRun  int             `json:"longest_goal_run"`
	Consistency     ConsistencyStat `json:"consistency"`
	Trend           TrendStat       `json:"trend"`
	// RollingAvgML is the mean of the last rollingWindowDays days; zero when
	// the range is shorter than that.
	RollingAvgML float64 `json:"rolling_avg_ml"`
	HighestDay      *DaySummary     `json:"highest_day,omitempty"`
	LowestDay       *DaySummary     `json:"lowest_day,omitempty"`
	Days            []DaySummary    `json:"days"`
}

// HistoryRange summarises every calendar day in [from, to], including days
// with nothing logged. Goal-met is judged against goalML for every day.
func HistoryRange(db *sql.DB, from, to time.Time, goalML int) (*HistoryReport, error) {
	from = beginningOfDay(from)
	to = beginningOfDay(to)
	if from.After(to) {
		return nil, fmt.Errorf("from date must be <= to date")
	}
	entries, err := entriesBetween(db, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	report := &HistoryReport{
		FromDate: from.Format(dateLayout),
		ToDate:   to.Format(dateLayout),
		GoalML:   goalML,
	}
	byDay := make(map[string]*DaySummary)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		report.Days = append(report.Days, DaySummary{Date: key})
	}
	for i := range report.Days {
		byDay[report.Days[i].Date] = &report.Days[i]
	}
	for _, e := range entries {
		day, ok := byDay[engine.DayKey(e.At, from.Location())]
		if !ok {
			continue
		}
		day.TotalML += e.VolumeML
		day.Entries++
	}

	run := 0
	totals := make([]float64, 0, len(report.Days))
	active := make([]DaySummary, 0, len(report.Days))
	for i := range report.Days {
		d := &report.Days[i]
		d.GoalMet = goalML > 0 && d.TotalML >= goalML
		report.TotalML += d.TotalML
		totals = append(totals, float64(d.TotalML))
		if d.Entries > 0 {
			report.DaysWithEntries++
			active = append(active, *d)
		}
		if d.GoalMet {
			report.GoalMetDays++
			run++
			if run > report.LongestGoalRun {
				report.LongestGoalRun = run
			}
		} else {
			run = 0
		}
	}
	report.TotalDays = len(report.Days)
	if report.DaysWithEntries > 0 {
		report.AverageMLPerDay = roundTo(float64(report.TotalML)/float64(report.DaysWithEntries), 1)
		report.HighestDay, report.LowestDay = extremeDays(active)
	}
	if report.TotalDays > 0 {
		report.PercentGoalMet = roundTo(float64(report.GoalMetDays)/float64(report.TotalDays)*100, 1)
	}
	report.Consistency = consistency(totals)
	report.Trend = trendFromValues(totals)
	if len(totals) >= rollingWindowDays {
		window := totals[len(totals)-rollingWindowDays:]
		sum := 0.0
		for _, v := range window {
			sum += v
		}
		report.RollingAvgML = roundTo(sum/float64(rollingWindowDays), 1)
	}
	return report, nil
}

const (
	rollingWindowDays = 7
	// Slopes smaller than this many ml/day read as flat.
	trendFlatML = 25.0
)

func trendFromValues(values []float64) TrendStat {
	slope := linearRegressionSlope(values)
	direction := "flat"
	if slope >= trendFlatML {
		direction = "up"
	} else if slope <= -trendFlatML {
		direction = "down"
	}
	return TrendStat{SlopeMLPerDay: roundTo(slope, 1), Direction: direction}
}

func linearRegressionSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i := range values {
		x := float64(i)
		y := values[i]
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := (float64(n) * sumX2) - (sumX * sumX)
	if denom == 0 {
		return 0
	}
	return ((float64(n) * sumXY) - (sumX * sumY)) / denom
}

func extremeDays(days []DaySummary) (*DaySummary, *DaySummary) {
	if len(days) == 0 {
		return nil, nil
	}
	copied := make([]DaySummary, len(days))
	copy(copied, days)
	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].TotalML < copied[j].TotalML
	})
	low := copied[0]
	high := copied[len(copied)-1]
	return &high, &low
}

func consistency(values []float64) ConsistencyStat {
	if len(values) == 0 {
		return ConsistencyStat{}
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	out := ConsistencyStat{Mean: roundTo(mean, 1), StdDev: roundTo(math.Sqrt(variance), 1)}
	if mean > 0 {
		out.CoeffVar = roundTo(math.Sqrt(variance)/mean, 3)
	}
	return out
}
