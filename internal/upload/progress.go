package upload

import (
	"sync"
	"sync/atomic"
	"time"
)

// The progress shown during an upload is an estimate only. The transport gives
// no byte-level feedback, so a ticker nudges the bar forward until the request
// settles. It must never be read as transfer telemetry.
const (
	progressSoftCap   = 90 // no further nudges once reached
	progressCeiling   = 99 // the estimate never claims completion
	progressMaxNudge  = 30
	progressCompleted = 100
)

// nextProgress advances an estimate by r*progressMaxNudge, r in [0,1).
func nextProgress(current, r float64) float64 {
	if current >= progressSoftCap {
		return current
	}
	next := current + r*progressMaxNudge
	if next > progressCeiling {
		next = progressCeiling
	}
	return next
}

// activeEstimators counts live estimator goroutines. It is test
// instrumentation: nothing in production reads it.
var activeEstimators atomic.Int32

// startEstimator calls tick every interval until the returned stop func runs.
// stop blocks until the ticking goroutine has exited and is safe to call
// more than once.
func startEstimator(interval time.Duration, tick func()) (stop func()) {
	ticker := time.NewTicker(interval)
	quit := make(chan struct{})
	var wg sync.WaitGroup

	activeEstimators.Add(1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer activeEstimators.Add(-1)
		defer ticker.Stop()
		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
				tick()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(quit)
			wg.Wait()
		})
	}
}
