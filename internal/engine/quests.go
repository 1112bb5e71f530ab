package engine

import (
	"math"
	"time"

	"github.com/saadjs/hydrate-cli/internal/model"
)

type questTemplate struct {
	id       string
	title    string
	fraction float64
	deadline int
	reward   int
}

// deadline 0 means the quest runs until the end of the day.
var dailyQuestTemplate = []questTemplate{
	{id: "early", title: "Early sip", fraction: 0.20, deadline: 11, reward: 10},
	{id: "midday", title: "Halfway by afternoon", fraction: 0.50, deadline: 16, reward: 20},
	{id: "finish-line", title: "Finish line", fraction: 1.00, reward: 50},
}

// RefreshDailyQuests instantiates today's quest list from the template. It is
// a no-op when the list was already built for now's calendar day, even if the
// goal has changed since.
func RefreshDailyQuests(state *model.GamificationState, goalML int, now time.Time) bool {
	day := DayKey(now, now.Location())
	if state.QuestDay == day {
		return false
	}
	state.Quests = newQuests(goalML)
	state.QuestDay = day
	return true
}

func newQuests(goalML int) []model.Quest {
	quests := make([]model.Quest, 0, len(dailyQuestTemplate))
	for _, tpl := range dailyQuestTemplate {
		q := model.Quest{
			ID:       tpl.id,
			Title:    tpl.title,
			TargetML: int(math.Round(float64(goalML) * tpl.fraction)),
			Reward:   tpl.reward,
		}
		if tpl.deadline > 0 {
			hour := tpl.deadline
			q.DeadlineHour = &hour
		}
		quests = append(quests, q)
	}
	return quests
}

// applyQuestProgress moves every open quest whose deadline is still ahead of
// entryHour. Quests past their deadline are frozen. Progress is capped at the
// goal, or at the quest's own target when the goal has dropped below it since
// the quest was built.
func applyQuestProgress(quests []model.Quest, entryHour, todayTotal, goalML int) {
	for i := range quests {
		q := &quests[i]
		if q.Completed {
			continue
		}
		if q.DeadlineHour != nil && entryHour >= *q.DeadlineHour {
			continue
		}
		q.ProgressML = min(todayTotal, max(goalML, q.TargetML))
		if q.ProgressML >= q.TargetML {
			q.Completed = true
		}
	}
}

// ReplayQuests rebuilds today's quest progress from the entry list, used when
// an entry is edited or removed.
func ReplayQuests(state *model.GamificationState, goalML int, entries []model.IntakeEntry, now time.Time) {
	loc := now.Location()
	for i := range state.Quests {
		state.Quests[i].ProgressML = 0
		state.Quests[i].Completed = false
	}
	running := 0
	for _, e := range entriesOnDay(entries, state.QuestDay, loc) {
		running += e.VolumeML
		applyQuestProgress(state.Quests, e.At.In(loc).Hour(), running, goalML)
	}
}

func QuestStatusAt(q model.Quest, questDay string, now time.Time) model.QuestStatus {
	if q.Completed {
		return model.QuestCompleted
	}
	if questDay != "" && questDay < DayKey(now, now.Location()) {
		return model.QuestExpired
	}
	if q.DeadlineHour != nil && now.Hour() >= *q.DeadlineHour {
		return model.QuestExpired
	}
	return model.QuestPending
}
