package service_test

import (
	"fmt"
	"testing"

	"github.com/saadjs/hydrate-cli/internal/model"
	"github.com/saadjs/hydrate-cli/internal/service"
)

func TestHistoryRangeFillsEmptyDays(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	seed := []model.IntakeEntry{
		{ID: "a", At: localAt(8, 9, 0), VolumeML: 1200},
		{ID: "b", At: localAt(8, 17, 0), VolumeML: 1000},
		{ID: "c", At: localAt(9, 10, 0), VolumeML: 2100},
		{ID: "d", At: localAt(11, 10, 0), VolumeML: 600},
		{ID: "outside", At: localAt(12, 10, 0), VolumeML: 5000},
	}
	for _, e := range seed {
		if err := service.CreateEntry(db, e); err != nil {
			t.Fatalf("create entry: %v", err)
		}
	}

	report, err := service.HistoryRange(db, localAt(8, 0, 0), localAt(11, 0, 0), 2000)
	if err != nil {
		t.Fatalf("history range: %v", err)
	}
	if report.TotalDays != 4 || len(report.Days) != 4 {
		t.Fatalf("expected 4 days, got %d", report.TotalDays)
	}
	if report.Days[2].Date != "2026-03-10" || report.Days[2].TotalML != 0 {
		t.Fatalf("expected empty 2026-03-10, got %+v", report.Days[2])
	}
	if report.TotalML != 4900 || report.DaysWithEntries != 3 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if report.GoalMetDays != 2 || report.LongestGoalRun != 2 || report.PercentGoalMet != 50 {
		t.Fatalf("unexpected goal stats: met=%d run=%d pct=%.1f", report.GoalMetDays, report.LongestGoalRun, report.PercentGoalMet)
	}
	if report.HighestDay == nil || report.HighestDay.Date != "2026-03-08" || report.LowestDay.Date != "2026-03-11" {
		t.Fatalf("unexpected extremes: %+v %+v", report.HighestDay, report.LowestDay)
	}
	if report.AverageMLPerDay != 1633.3 {
		t.Fatalf("expected average 1633.3, got %.1f", report.AverageMLPerDay)
	}
	if report.Consistency.Mean != 1225 {
		t.Fatalf("expected mean 1225, got %.1f", report.Consistency.Mean)
	}
	if report.Trend.SlopeMLPerDay != -690 || report.Trend.Direction != "down" {
		t.Fatalf("unexpected trend %+v", report.Trend)
	}
	if report.RollingAvgML != 0 {
		t.Fatalf("four days cannot fill a rolling week, got %.1f", report.RollingAvgML)
	}
}

func TestHistoryRangeRollingWeek(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	for day := 1; day <= 8; day++ {
		e := model.IntakeEntry{ID: fmt.Sprintf("d%d", day), At: localAt(day, 12, 0), VolumeML: 1000 + 100*day}
		if err := service.CreateEntry(db, e); err != nil {
			t.Fatalf("create entry: %v", err)
		}
	}
	report, err := service.HistoryRange(db, localAt(1, 0, 0), localAt(8, 0, 0), 1500)
	if err != nil {
		t.Fatalf("history range: %v", err)
	}
	// Days 2..8 average (1200+...+1800)/7.
	if report.RollingAvgML != 1500 {
		t.Fatalf("expected rolling average 1500, got %.1f", report.RollingAvgML)
	}
	if report.Trend.SlopeMLPerDay != 100 || report.Trend.Direction != "up" {
		t.Fatalf("unexpected trend %+v", report.Trend)
	}
	if report.LongestGoalRun != 4 {
		t.Fatalf("expected days 5..8 to meet the goal, got run %d", report.LongestGoalRun)
	}
}

func TestHistoryRangeRejectsInvertedRange(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	if _, err := service.HistoryRange(db, localAt(11, 0, 0), localAt(10, 0, 0), 2000); err == nil {
		t.Fatalf("expected inverted range to fail")
	}
}
