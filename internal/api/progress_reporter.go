package api

import (
	"time"

	"statlab/domain/permutation"
)

// progressSteps is how many progress events a run emits at most
const progressSteps = 100

// NewProgressReporter returns a permutation.ProgressFunc that publishes to
// hub under runKey, roughly once per percent of the trials and on completion.
func NewProgressReporter(hub *ProgressHub, runKey string) permutation.ProgressFunc {
	return func(completed, total int) {
		step := total / progressSteps
		if step < 1 {
			step = 1
		}
		if completed%step != 0 && completed != total {
			return
		}

		event := ProgressEvent{
			RunKey:    runKey,
			EventType: EventProgress,
			Completed: completed,
			Total:     total,
			Progress:  float64(completed) / float64(total),
			Timestamp: time.Now(),
		}
		if completed == total {
			event.EventType = EventDone
		}
		hub.Broadcast(event)
	}
}
