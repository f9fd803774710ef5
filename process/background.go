package process

import (
	"context"
	"math"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Run calls p.Work until rendering completes or ctx is done. onProgress,
// when not nil, receives the progress after every step. Run returns the
// context error on cancellation; the cache keeps every chunk completed so
// far and a later Run resumes from there.
func Run(ctx context.Context, p *Processor, onProgress func(float64)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		more, progress := p.Work()
		if onProgress != nil {
			onProgress(progress)
		}
		if !more {
			return nil
		}
	}
}

// Job is a processor running on a worker goroutine.
//
// Whole Work calls run on the worker; progress is published through an
// atomic value and a channel, so the caller never shares mutable state
// with the worker. The graph must not be edited until Wait returns.
type Job struct {
	group    *errgroup.Group
	cancel   context.CancelFunc
	progress atomic.Uint64
	updates  chan float64
}

// Background starts rendering p on a worker goroutine.
func Background(ctx context.Context, p *Processor) *Job {
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	j := &Job{
		group:   g,
		cancel:  cancel,
		updates: make(chan float64, 1),
	}
	g.Go(func() error {
		defer close(j.updates)
		return Run(gctx, p, j.publish)
	})
	return j
}

// publish stores v and offers it on the updates channel, replacing a
// value the reader has not taken yet.
func (j *Job) publish(v float64) {
	j.progress.Store(math.Float64bits(v))
	select {
	case <-j.updates:
	default:
	}
	j.updates <- v
}

// Progress returns the last published progress.
func (j *Job) Progress() float64 {
	return math.Float64frombits(j.progress.Load())
}

// Updates delivers the latest progress values. Intermediate values may be
// dropped when the reader is slow; the channel is closed when the job
// ends.
func (j *Job) Updates() <-chan float64 { return j.updates }

// Cancel asks the worker to stop after the current step.
func (j *Job) Cancel() { j.cancel() }

// Wait blocks until the worker stops and returns its error.
func (j *Job) Wait() error {
	err := j.group.Wait()
	j.cancel()
	return err
}
