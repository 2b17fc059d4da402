package hook

import (
	"log"
	"sync"
)

// DefaultQueueSize is the number of pending events a Dispatcher buffers.
const DefaultQueueSize = 32

// Runner executes one hook for one event.
type Runner interface {
	Execute(h *Hook, ev *Event) (*Response, error)
}

// Registry lists the hooks subscribed to an event.
type Registry interface {
	Subscribers(event string) []*Hook
}

// Dispatcher delivers events to subscribed hooks on a single worker
// goroutine, so hooks observe events in the order they were notified.
type Dispatcher struct {
	registry Registry
	runner   Runner
	queue    chan *Event

	mu      sync.Mutex
	running bool
	dropped int
	done    chan struct{}
}

// NewDispatcher creates a Dispatcher. A non-positive queueSize uses
// DefaultQueueSize.
func NewDispatcher(registry Registry, runner Runner, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Dispatcher{
		registry: registry,
		runner:   runner,
		queue:    make(chan *Event, queueSize),
	}
}

// Start launches the worker. Calling Start on a running Dispatcher is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return
	}
	d.running = true
	d.done = make(chan struct{})
	go d.run(d.queue, d.done)
}

// Stop delivers the queued events and waits for the worker to exit.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	queue, done := d.queue, d.done
	d.queue = make(chan *Event, cap(queue))
	close(queue)
	d.mu.Unlock()

	<-done
}

// Notify queues ev for delivery. It never blocks: when the queue is full or
// the Dispatcher is stopped the event is dropped and false is returned.
func (d *Dispatcher) Notify(ev *Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return false
	}

	select {
	case d.queue <- ev:
		return true
	default:
		d.dropped++
		return false
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (d *Dispatcher) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

func (d *Dispatcher) run(queue <-chan *Event, done chan<- struct{}) {
	defer close(done)

	for ev := range queue {
		for _, h := range d.registry.Subscribers(ev.Event) {
			resp, err := d.runner.Execute(h, ev)
			if err != nil {
				log.Printf("Hook %s error: %v", h.Manifest.Name, err)
				continue
			}
			if !resp.Success {
				log.Printf("Hook %s reported failure: %s", h.Manifest.Name, resp.Error)
			}
		}
	}
}
