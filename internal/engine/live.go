package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/saadjs/hydrate-cli/internal/model"
)

// Deliverer hands one reminder to whatever notification facility exists.
type Deliverer interface {
	Deliver(ctx context.Context, r model.Reminder) error
}

type LiveConfig struct {
	// Inputs is called on every evaluation; it must return current values.
	Inputs   func() PassInput
	Deliver  Deliverer
	Messages *MessagePicker
	Logf     func(format string, args ...any)
}

// LiveScheduler re-evaluates on a cancellable sleep. Its only memory is the
// escalation latch and the last fixed slot it fired; everything else comes
// from Inputs.
type LiveScheduler struct {
	inputs   func() PassInput
	deliver  Deliverer
	messages *MessagePicker
	logf     func(format string, args ...any)
	poke     chan struct{}

	mu              sync.Mutex
	escalated       bool
	escalatedAnchor time.Time
	lastFixedID     string
}

func NewLiveScheduler(cfg LiveConfig) *LiveScheduler {
	logf := cfg.Logf
	if logf == nil {
		logf = log.Printf
	}
	messages := cfg.Messages
	if messages == nil {
		messages = NewMessagePicker(nil, 0)
	}
	return &LiveScheduler{
		inputs:   cfg.Inputs,
		deliver:  cfg.Deliver,
		messages: messages,
		logf:     logf,
		poke:     make(chan struct{}, 1),
	}
}

// Poke interrupts the current sleep so the next evaluation sees fresh state.
func (l *LiveScheduler) Poke() {
	select {
	case l.poke <- struct{}{}:
	default:
	}
}

// ResetEscalation re-arms escalation; called when an intake arrives.
func (l *LiveScheduler) ResetEscalation() {
	l.mu.Lock()
	l.escalated = false
	l.mu.Unlock()
}

func (l *LiveScheduler) Escalated() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.escalated
}

// Run loops until ctx is cancelled.
func (l *LiveScheduler) Run(ctx context.Context) error {
	for {
		_, wait := l.Evaluate(ctx)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-l.poke:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// Evaluate fires at most one reminder and returns how long to sleep before
// the next evaluation.
func (l *LiveScheduler) Evaluate(ctx context.Context) (*model.Reminder, time.Duration) {
	if l.inputs == nil {
		return nil, maxInterval
	}
	in := l.inputs()
	interval := BaseInterval(in.Profile)
	if !in.Profile.RemindersEnabled {
		return nil, interval
	}
	if !in.Profile.AdaptiveReminders {
		return l.evaluateFixed(ctx, in, interval)
	}

	slots := adaptiveSlots(in)
	if len(slots) == 0 {
		return nil, interval
	}
	first := slots[0]
	if first.at.After(in.Now) {
		return nil, first.at.Sub(in.Now)
	}

	anchor := lastAnchor(in)
	escalate := false
	l.mu.Lock()
	if l.escalated && !anchor.Equal(l.escalatedAnchor) {
		l.escalated = false
	}
	if !l.escalated && QuietFor(in) > 2*interval {
		l.escalated = true
		l.escalatedAnchor = anchor
		escalate = true
	}
	l.mu.Unlock()

	today := TodayTotal(in.Entries, in.Now)
	band := BandFor(today, in.GoalML)
	title, body := l.messages.Pick(ctx, promptFor(in, today, band, 0, escalate))
	r := model.Reminder{
		ID:         slotID(in, first),
		FireAt:     in.Now,
		Imminent:   true,
		Title:      title,
		Body:       body,
		Escalation: escalate,
		Band:       band,
		Mode:       model.ReminderAdaptive,
	}
	l.send(ctx, r)
	return &r, interval
}

func (l *LiveScheduler) evaluateFixed(ctx context.Context, in PassInput, interval time.Duration) (*model.Reminder, time.Duration) {
	// Slots reached within the last minute still count as due.
	due := fixedFrom(in, l.messages, in.Now.Add(-time.Minute))
	if len(due) == 0 {
		return nil, interval
	}
	first := due[0]
	if first.FireAt.After(in.Now) {
		return nil, first.FireAt.Sub(in.Now)
	}
	l.mu.Lock()
	already := l.lastFixedID == first.ID
	l.lastFixedID = first.ID
	l.mu.Unlock()
	wait := interval
	if len(due) > 1 {
		wait = due[1].FireAt.Sub(in.Now)
	}
	if already {
		return nil, wait
	}
	l.send(ctx, first)
	return &first, wait
}

func (l *LiveScheduler) send(ctx context.Context, r model.Reminder) {
	if l.deliver == nil {
		return
	}
	if err := l.deliver.Deliver(ctx, r); err != nil {
		l.logf("deliver reminder %s: %v", r.ID, err)
	}
}
