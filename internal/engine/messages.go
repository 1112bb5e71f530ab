package engine

import (
	"context"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/saadjs/hydrate-cli/internal/model"
)

const defaultGenerateTimeout = 2 * time.Second

// Prompt is what an external text generator gets to work with.
type Prompt struct {
	Band        model.ProgressBand
	TodayML     int
	GoalML      int
	RemainingML int
	Escalation  bool
	Index       int
}

// TextSource is an optional capability. Available reports whether it can be
// asked at all; Generate may return an empty string to mean no answer.
type TextSource interface {
	Available() bool
	Generate(ctx context.Context, p Prompt) (string, error)
}

type cannedCopy struct {
	title  string
	bodies []string
}

// Every adaptive body takes exactly one argument: the remaining ml.
var bandCopy = map[model.ProgressBand]cannedCopy{
	model.BandEarly: {
		title: "Time to hydrate",
		bodies: []string{
			"A glass now gets the day going. %d ml to go.",
			"Your water bottle misses you. %d ml left today.",
			"Small sips add up. %d ml remaining.",
		},
	},
	model.BandMid: {
		title: "Keep it flowing",
		bodies: []string{
			"Nice pace. %d ml left for today.",
			"You're on your way. Another glass brings you closer to the last %d ml.",
			"Halfway habits win. %d ml to go.",
		},
	},
	model.BandLate: {
		title: "Almost there",
		bodies: []string{
			"The finish line is close: %d ml left.",
			"One or two more glasses. %d ml to go.",
			"Wrap up the day strong with the last %d ml.",
		},
	},
}

var escalationCopy = cannedCopy{
	title: "Checking in",
	bodies: []string{
		"It's been a while since your last drink. No pressure, a few sips help. %d ml left today.",
		"Quiet stretch noticed. Whenever you're ready, %d ml to go.",
	},
}

var fixedCopy = cannedCopy{
	title: "Hydration reminder",
	bodies: []string{
		"Time for a glass of water.",
		"Stretch, breathe, sip.",
		"A quick drink keeps you sharp.",
		"Refill your bottle.",
	},
}

// BandFor buckets today's progress. A non-positive goal counts as late.
func BandFor(todayML, goalML int) model.ProgressBand {
	if goalML <= 0 {
		return model.BandLate
	}
	frac := float64(todayML) / float64(goalML)
	switch {
	case frac < 0.25:
		return model.BandEarly
	case frac < 0.60:
		return model.BandMid
	default:
		return model.BandLate
	}
}

type MessagePicker struct {
	source  TextSource
	timeout time.Duration
	printer *message.Printer
}

func NewMessagePicker(source TextSource, timeout time.Duration) *MessagePicker {
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	return &MessagePicker{
		source:  source,
		timeout: timeout,
		printer: message.NewPrinter(language.English),
	}
}

// Pick returns the title and body for one reminder. Generated text is used
// verbatim when it arrives non-empty within the timeout; otherwise the
// canned rotation answers.
func (m *MessagePicker) Pick(ctx context.Context, p Prompt) (string, string) {
	if m == nil {
		m = NewMessagePicker(nil, 0)
	}
	return m.compose(p, m.generate(ctx, p))
}

// compose pairs the band title with generated text, or with the canned body
// for p.Index when generated is empty.
func (m *MessagePicker) compose(p Prompt, generated string) (string, string) {
	set := bandCopy[p.Band]
	if p.Escalation {
		set = escalationCopy
	}
	if set.title == "" {
		set = bandCopy[model.BandEarly]
	}
	if generated != "" {
		return set.title, generated
	}
	body := set.bodies[positiveMod(p.Index, len(set.bodies))]
	return set.title, m.printer.Sprintf(body, p.RemainingML)
}

func (m *MessagePicker) PickFixed(slot int) (string, string) {
	return fixedCopy.title, fixedCopy.bodies[positiveMod(slot, len(fixedCopy.bodies))]
}

// FormatML renders a volume with digit grouping.
func (m *MessagePicker) FormatML(ml int) string {
	if m == nil {
		m = NewMessagePicker(nil, 0)
	}
	return m.printer.Sprintf("%d ml", ml)
}

func (m *MessagePicker) generate(ctx context.Context, p Prompt) string {
	if m.source == nil || !m.source.Available() {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	type answer struct {
		text string
		err  error
	}
	done := make(chan answer, 1)
	go func() {
		text, err := m.source.Generate(ctx, p)
		done <- answer{text: text, err: err}
	}()
	select {
	case <-ctx.Done():
		return ""
	case a := <-done:
		if a.err != nil {
			return ""
		}
		return strings.TrimSpace(a.text)
	}
}

func positiveMod(i, n int) int {
	if n <= 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
