package hook

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRegistry []*Hook

func (r staticRegistry) Subscribers(event string) []*Hook {
	var out []*Hook
	for _, h := range r {
		if h.Handles(event) {
			out = append(out, h)
		}
	}
	return out
}

type call struct {
	hook  string
	total int
}

type recordingRunner struct {
	mu    sync.Mutex
	calls []call
	block chan struct{}
	fail  map[string]error
}

func (r *recordingRunner) Execute(h *Hook, ev *Event) (*Response, error) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{hook: h.Manifest.Name, total: ev.Total})
	if err := r.fail[h.Manifest.Name]; err != nil {
		return nil, err
	}
	return &Response{Success: true}, nil
}

func (r *recordingRunner) Calls() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

func listener(name string, events ...string) *Hook {
	return &Hook{Manifest: Manifest{Name: name, Executable: name, Events: events}}
}

func TestDispatcher_DeliversInOrder(t *testing.T) {
	registry := staticRegistry{
		listener("a", EventCountChanged),
		listener("b", EventCountChanged),
		listener("other", "something_else"),
	}
	runner := &recordingRunner{}

	d := NewDispatcher(registry, runner, 8)
	d.Start()

	for _, total := range []int{1, 2, 3} {
		require.True(t, d.Notify(&Event{Event: EventCountChanged, Total: total}))
	}
	d.Stop()

	assert.Equal(t, []call{
		{"a", 1}, {"b", 1},
		{"a", 2}, {"b", 2},
		{"a", 3}, {"b", 3},
	}, runner.Calls())
}

func TestDispatcher_HookErrorDoesNotStopDelivery(t *testing.T) {
	registry := staticRegistry{listener("bad", EventCountChanged), listener("good", EventCountChanged)}
	runner := &recordingRunner{fail: map[string]error{"bad": errors.New("exit 1")}}

	d := NewDispatcher(registry, runner, 4)
	d.Start()
	d.Notify(&Event{Event: EventCountChanged, Total: 4})
	d.Stop()

	assert.Equal(t, []call{{"bad", 4}, {"good", 4}}, runner.Calls())
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	registry := staticRegistry{listener("slow", EventCountChanged)}
	runner := &recordingRunner{block: make(chan struct{})}

	d := NewDispatcher(registry, runner, 1)
	d.Start()

	// The first event may already be held by the worker; keep notifying
	// until the one-slot queue overflows.
	accepted := 0
	for i := 0; i < 5; i++ {
		if d.Notify(&Event{Event: EventCountChanged, Total: i}) {
			accepted++
		}
	}

	assert.LessOrEqual(t, accepted, 2)
	assert.Equal(t, 5-accepted, d.Dropped())

	close(runner.block)
	d.Stop()

	assert.Len(t, runner.Calls(), accepted)
}

func TestDispatcher_NotifyWhenStopped(t *testing.T) {
	d := NewDispatcher(staticRegistry{}, &recordingRunner{}, 0)

	assert.False(t, d.Notify(&Event{Event: EventCountChanged}), "not started")

	d.Start()
	d.Start()
	d.Stop()
	d.Stop()

	assert.False(t, d.Notify(&Event{Event: EventCountChanged}), "stopped")
	assert.Equal(t, 0, d.Dropped())
}

func TestDispatcher_Restart(t *testing.T) {
	registry := staticRegistry{listener("a", EventCountChanged)}
	runner := &recordingRunner{}

	d := NewDispatcher(registry, runner, 2)
	d.Start()
	d.Notify(&Event{Event: EventCountChanged, Total: 1})
	d.Stop()

	d.Start()
	d.Notify(&Event{Event: EventCountChanged, Total: 2})
	d.Stop()

	assert.Equal(t, []call{{"a", 1}, {"a", 2}}, runner.Calls())
}
