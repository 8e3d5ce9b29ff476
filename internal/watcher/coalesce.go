package watcher

import "time"

// coalescer collapses repeated raw notifications for a path into one event.
// An event becomes ripe once no new notification for its path has arrived
// for a full debounce window; ripe events keep first-arrival order.
type coalescer struct {
	window  time.Duration
	pending map[string]*pendingEvent
	order   []string
}

type pendingEvent struct {
	ev   Event
	last time.Time
}

func newCoalescer(window time.Duration) *coalescer {
	return &coalescer{
		window:  window,
		pending: make(map[string]*pendingEvent),
	}
}

// add records a raw notification. Later notifications for the same path
// refresh the window and overwrite the kind, so the emitted event carries
// the latest state of the burst.
func (c *coalescer) add(ev Event, now time.Time) {
	if p, ok := c.pending[ev.Path]; ok {
		p.ev.Kind = ev.Kind
		if ev.OldPath != "" {
			p.ev.OldPath = ev.OldPath
		}
		p.last = now
		return
	}
	c.pending[ev.Path] = &pendingEvent{ev: ev, last: now}
	c.order = append(c.order, ev.Path)
}

// ripe removes and returns every pending event whose window has closed.
func (c *coalescer) ripe(now time.Time) []Event {
	var out []Event
	remaining := c.order[:0]

	for _, path := range c.order {
		p := c.pending[path]
		if now.Sub(p.last) >= c.window {
			out = append(out, p.ev)
			delete(c.pending, path)
		} else {
			remaining = append(remaining, path)
		}
	}
	c.order = remaining
	return out
}
