package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAssignments forwards the records to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordAssignments(recs []AssignmentRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordAssignments(recs); err != nil {
			return err
		}
	}
	return nil
}

// RecordRunSummary forwards run summaries to sinks that support them.
func (m *MultiSink) RecordRunSummary(sum RunSummary) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RunRecorder); ok {
			if err := rec.RecordRunSummary(sum); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordGaps forwards gap records to sinks that support them.
func (m *MultiSink) RecordGaps(gaps []GapRecord) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(GapRecorder); ok {
			if err := rec.RecordGaps(gaps); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordStrategy forwards strategy outcomes to sinks that support them.
func (m *MultiSink) RecordStrategy(rec StrategyRecord) error {
	for _, s := range m.Sinks {
		if sr, ok := s.(StrategyRecorder); ok {
			if err := sr.RecordStrategy(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRosterSize forwards roster headcounts to sinks that support them.
func (m *MultiSink) RecordRosterSize(staff, students int) error {
	for _, s := range m.Sinks {
		if rr, ok := s.(RosterSizeRecorder); ok {
			if err := rr.RecordRosterSize(staff, students); err != nil {
				return err
			}
		}
	}
	return nil
}
