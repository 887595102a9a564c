package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MinInterval is the shortest allowed schedule interval.
const MinInterval = 15 * time.Minute

// RunTimeout bounds a single scheduled run.
const RunTimeout = 10 * time.Minute

// Poller runs the pipeline on a fixed interval.
type Poller struct {
	runner     *Runner
	interval   time.Duration
	runOnStart bool
	stopChan   chan struct{}
	wg         sync.WaitGroup
}

// NewPoller creates a background poller. Intervals below MinInterval are
// raised to it.
func NewPoller(runner *Runner, interval time.Duration, runOnStart bool) *Poller {
	if interval < MinInterval {
		interval = MinInterval
	}
	return &Poller{
		runner:     runner,
		interval:   interval,
		runOnStart: runOnStart,
		stopChan:   make(chan struct{}),
	}
}

// Interval returns the effective interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start begins the polling loop.
func (p *Poller) Start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		first := p.runOnStart
		for {
			if !first {
				select {
				case <-p.stopChan:
					return
				case <-time.After(p.interval):
				}
			}
			first = false

			slog.Info("poller: starting scheduled run", "interval", p.interval)
			ctx, cancel := context.WithTimeout(context.Background(), RunTimeout)
			res := p.runner.Run(ctx)
			cancel()
			if !res.Outcome.OK() {
				slog.Warn("poller: scheduled run failed", "run", res.RunID, "outcome", res.Outcome, "error", res.Err)
			}
		}
	}()
}

// Stop stops the poller gracefully, waiting for an in-flight run.
func (p *Poller) Stop() {
	close(p.stopChan)
	p.wg.Wait()
}
