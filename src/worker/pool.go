package worker

import (
	"context"
	"log"
	"sync"

	"snapask/src/provider"
)

// ResultCallback is invoked on dispatch completion (from the worker
// goroutine). The event loop passes a closure that posts back into the loop.
type ResultCallback func(text string, err error)

// Pool runs provider dispatch off the event loop. Single worker with a
// 1-slot input queue: the controller's busy flag plus the queue give strict
// backpressure, so overlapping finalize presses are dropped, not queued up.
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup
}

type job struct {
	ctx    context.Context
	prompt string
	images [][]byte
	cb     ResultCallback
}

func New(p provider.Provider) *Pool {
	pool := &Pool{jobs: make(chan job, 1)}
	pool.wg.Add(1)
	go func() {
		defer pool.wg.Done()
		for j := range pool.jobs {
			log.Printf("Worker: dispatching %d image(s) to %s", len(j.images), p.Name())
			text, err := p.Answer(j.ctx, j.prompt, j.images)
			log.Printf("Worker: dispatch completed, text length=%d, err=%v", len(text), err)
			j.cb(text, err)
		}
	}()
	return pool
}

// Submit enqueues a dispatch job if the single queue slot is free.
// Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, prompt string, images [][]byte, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, prompt: prompt, images: images, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
