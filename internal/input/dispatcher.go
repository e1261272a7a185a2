package input

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/airmouse/internal/gesture"
)

// Dispatcher defaults.
const (
	DefaultQueueSize      = 16
	DefaultCommandTimeout = 5 * time.Second
)

// Dispatcher runs actions on an Executor from a single worker goroutine.
// Submit never blocks: when the queue is full the action is dropped.
type Dispatcher struct {
	mu       sync.RWMutex
	executor Executor
	timeout  time.Duration

	queue   chan gesture.Action
	stopCh  chan struct{}
	done    chan struct{}
	dropped atomic.Int64
	failed  atomic.Int64
}

// NewDispatcher creates a Dispatcher. Non-positive sizes and timeouts select
// the defaults.
func NewDispatcher(executor Executor, queueSize int, timeout time.Duration) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &Dispatcher{
		executor: executor,
		timeout:  timeout,
		queue:    make(chan gesture.Action, queueSize),
	}
}

// Start launches the worker. Calling Start on a running Dispatcher is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopCh != nil {
		return
	}
	d.stopCh = make(chan struct{})
	d.done = make(chan struct{})
	go d.run(d.stopCh, d.done)
}

// Stop halts the worker and waits for the action in flight to finish.
// Queued actions that have not started are discarded.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	stopCh, done := d.stopCh, d.done
	d.stopCh, d.done = nil, nil
	d.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-done
}

// Submit queues an action. It returns false when the action was dropped.
func (d *Dispatcher) Submit(a gesture.Action) bool {
	select {
	case d.queue <- a:
		return true
	default:
		d.dropped.Add(1)
		log.Printf("Input queue full, dropping %s", a)
		return false
	}
}

// Do performs an action synchronously, bypassing the queue.
func (d *Dispatcher) Do(ctx context.Context, a gesture.Action) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	executor := d.Executor()
	if !executor.IsReady(ctx) {
		return ErrNotReady
	}
	return Perform(ctx, executor, a)
}

// SetExecutor swaps the executor used for subsequent actions.
func (d *Dispatcher) SetExecutor(e Executor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.executor = e
}

// Executor returns the current executor.
func (d *Dispatcher) Executor() Executor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.executor
}

// Ready reports whether the current executor's target is reachable.
func (d *Dispatcher) Ready(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.Executor().IsReady(ctx)
}

// Dropped returns how many actions were dropped because the queue was full.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Failed returns how many actions failed or found the executor not ready.
func (d *Dispatcher) Failed() int64 {
	return d.failed.Load()
}

func (d *Dispatcher) run(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stopCh:
			return
		case a := <-d.queue:
			if err := d.Do(context.Background(), a); err != nil {
				d.failed.Add(1)
				log.Printf("Failed to perform %s: %v", a, err)
				continue
			}
			log.Printf("Performed %s", a)
		}
	}
}
