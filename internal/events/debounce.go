package events

import (
	"sync"
	"time"
)

// Debouncer collapses calls made within the window into one run of fn,
// fired window after the last call.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	fn     func()
	timer  *time.Timer
}

func NewDebouncer(window time.Duration, fn func()) *Debouncer {
	if window <= 0 {
		window = 500 * time.Millisecond
	}
	return &Debouncer{window: window, fn: fn}
}

// Call cancels the pending run, if any, and schedules a new one.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fn)
}

// Stop cancels the pending run.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// SubscribeDebounced wires a debounced fn to topic. The returned func
// unsubscribes and cancels a pending run.
func SubscribeDebounced(b *Bus, topic Topic, window time.Duration, fn func()) (unsubscribe func()) {
	d := NewDebouncer(window, fn)
	unsub := b.Subscribe(topic, func(Event) { d.Call() })
	return func() {
		unsub()
		d.Stop()
	}
}
