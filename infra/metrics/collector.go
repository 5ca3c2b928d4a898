package metrics

import (
	"context"
	"time"

	"github.com/mpelletier/rosterd/core/events"
	coremetrics "github.com/mpelletier/rosterd/core/metrics"
	"github.com/mpelletier/rosterd/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// gap and strategy events. Assignments and run summaries are recorded by
// the engine directly; bridging them here would double count.
// The collector stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
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
					if r, ok := sink.(coremetrics.GapRecorder); ok {
						_ = r.RecordGaps([]coremetrics.GapRecord{{
							RunID:       e.RunID,
							StudentID:   e.StudentID,
							StudentName: e.StudentName,
							Session:     e.Session,
							Program:     e.Program,
							Missing:     e.Missing,
							Time:        time.Now(),
						}})
					}
				case events.StrategyEvent:
					if r, ok := sink.(coremetrics.StrategyRecorder); ok {
						_ = r.RecordStrategy(coremetrics.StrategyRecord{
							RunID:     e.RunID,
							Strategy:  e.Strategy,
							StudentID: e.StudentID,
							Session:   e.Session,
							Program:   e.Program,
							Resolved:  e.Resolved,
							Time:      time.Now(),
						})
					}
				}
			}
		}
	}()
}
