package service

import (
	"context"
	"time"

	"github.com/saadjs/hydrate-cli/internal/engine"
	"github.com/saadjs/hydrate-cli/internal/model"
)

type QuestView struct {
	model.Quest
	Status model.QuestStatus `json:"status"`
}

type TodayStatus struct {
	Date            string              `json:"date"`
	Goal            model.GoalBreakdown `json:"goal"`
	TotalML         int                 `json:"total_ml"`
	RemainingML     int                 `json:"remaining_ml"`
	PercentComplete float64             `json:"percent_complete"`
	EntryCount      int                 `json:"entry_count"`
	Band            model.ProgressBand  `json:"band"`
	Quests          []QuestView         `json:"quests"`
	Streak          model.Streak        `json:"streak"`
	NextReminder    *model.Reminder     `json:"next_reminder,omitempty"`
}

func TodaySummary(ctx context.Context, eng *engine.Engine, now time.Time) TodayStatus {
	goal := eng.Goal()
	state := eng.State()
	status := TodayStatus{
		Date:   now.Format(dateLayout),
		Goal:   goal,
		Streak: state.Streak,
	}
	day := engine.DayKey(now, now.Location())
	for _, e := range eng.Entries() {
		if engine.DayKey(e.At, now.Location()) == day {
			status.TotalML += e.VolumeML
			status.EntryCount++
		}
	}
	status.RemainingML = goal.TotalML - status.TotalML
	if status.RemainingML < 0 {
		status.RemainingML = 0
	}
	if goal.TotalML > 0 {
		status.PercentComplete = roundTo(float64(status.TotalML)/float64(goal.TotalML)*100, 1)
	}
	status.Band = engine.BandFor(status.TotalML, goal.TotalML)
	status.Quests = QuestViews(state, now)
	if plan := eng.Plan(ctx); len(plan) > 0 {
		status.NextReminder = &plan[0]
	}
	return status
}

func QuestViews(state model.GamificationState, now time.Time) []QuestView {
	out := make([]QuestView, 0, len(state.Quests))
	for _, q := range state.Quests {
		out = append(out, QuestView{Quest: q, Status: engine.QuestStatusAt(q, state.QuestDay, now)})
	}
	return out
}
