package tracking

import "time"

// TimedExecution measures one detection and delegates to Tracker.
type TimedExecution struct {
	tracker   *Tracker
	startTime time.Time
}

// Start creates a new TimedExecution. A nil tracker makes Track a no-op.
func Start(tracker *Tracker) *TimedExecution {
	return &TimedExecution{
		tracker:   tracker,
		startTime: time.Now(),
	}
}

// Track records r with the elapsed duration.
func (te *TimedExecution) Track(r Record) error {
	if te.tracker == nil {
		return nil
	}
	r.ExecTimeUs = time.Since(te.startTime).Microseconds()
	return te.tracker.Track(r)
}
