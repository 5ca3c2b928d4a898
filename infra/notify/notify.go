package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mpelletier/rosterd/core/events"
	"github.com/mpelletier/rosterd/internal/eventbus"
)

// Message is the JSON payload published after each run.
type Message struct {
	MessageID  string  `json:"message_id"`
	RunID      string  `json:"run_id"`
	Date       string  `json:"date"`
	Created    int     `json:"created"`
	Removed    int     `json:"removed"`
	Unresolved int     `json:"unresolved"`
	FillRate   float64 `json:"fill_rate"`
	DurationMS int64   `json:"duration_ms"`
	Gaps       []Gap   `json:"gaps,omitempty"`
	Timestamp  int64   `json:"timestamp"`
}

// Gap describes one slot left uncovered.
type Gap struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Session     string `json:"session"`
	Program     string `json:"program"`
	Missing     int    `json:"missing"`
}

// Notifier publishes run summaries to an external channel.
type Notifier interface {
	PublishRunSummary(msg Message) error
	Close()
}

// StartRunNotifier subscribes to the event bus and publishes one summary
// message per completed run. Gap events are buffered per run so the summary
// carries the full list of uncovered slots.
func StartRunNotifier(ctx context.Context, bus eventbus.EventBus, n Notifier) {
	if bus == nil || n == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		gaps := make(map[string][]Gap)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.GapEvent:
					gaps[e.RunID] = append(gaps[e.RunID], Gap{
						StudentID:   e.StudentID,
						StudentName: e.StudentName,
						Session:     e.Session.String(),
						Program:     e.Program.String(),
						Missing:     e.Missing,
					})
				case events.RunCompletedEvent:
					msg := Message{
						MessageID:  uuid.NewString(),
						RunID:      e.RunID,
						Date:       e.Date.Format("2006-01-02"),
						Created:    e.Created,
						Removed:    e.Removed,
						Unresolved: e.Unresolved,
						FillRate:   e.FillRate,
						DurationMS: e.Duration.Milliseconds(),
						Gaps:       gaps[e.RunID],
						Timestamp:  time.Now().UnixMilli(),
					}
					delete(gaps, e.RunID)
					// The notifier logs its own failures; a flaky broker
					// must not wedge the bus.
					_ = n.PublishRunSummary(msg)
				}
			}
		}
	}()
}
