// Package autoplay decides what plays after a finished title and runs the
// cancelable countdown shown before the transition.
package autoplay

import (
	"sync"
	"time"
)

// DefaultCountdownSeconds is how long the next-episode prompt waits before firing.
const DefaultCountdownSeconds = 10

type countdownState int

const (
	stateArmed countdownState = iota
	stateFired
	stateCancelled
)

// CountdownOptions configures StartCountdown. OnFire is required.
type CountdownOptions struct {
	// Total seconds; DefaultCountdownSeconds when <= 0.
	Total int
	// Interval between ticks; one real second when zero. Tests shorten it.
	Interval time.Duration
	// OnTick observes each remaining value down to 0, before OnFire.
	OnTick func(remaining int)
	// OnFire runs exactly once: when the countdown reaches zero or on
	// PlayNow. Cancel suppresses it forever.
	OnFire func()
}

// Countdown is the timer behind the "Playing next in Ns" prompt. Every path
// that ends it (expiry, PlayNow, Cancel) releases the ticker; there is no
// dangling timer after the terminal state.
type Countdown struct {
	mu        sync.Mutex
	state     countdownState
	remaining int
	onTick    func(int)
	onFire    func()
	stop      chan struct{}
}

// StartCountdown arms a countdown and begins ticking immediately.
func StartCountdown(opts CountdownOptions) *Countdown {
	total := opts.Total
	if total <= 0 {
		total = DefaultCountdownSeconds
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Second
	}

	c := &Countdown{
		state:     stateArmed,
		remaining: total,
		onTick:    opts.OnTick,
		onFire:    opts.OnFire,
		stop:      make(chan struct{}),
	}
	go c.run(interval)
	return c
}

func (c *Countdown) run(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			if c.tick() {
				return
			}
		}
	}
}

// tick advances the countdown by one step and reports whether the countdown
// reached a terminal state.
func (c *Countdown) tick() bool {
	c.mu.Lock()
	if c.state != stateArmed {
		c.mu.Unlock()
		return true
	}
	c.remaining--
	rem := c.remaining
	onTick := c.onTick
	var fire func()
	if rem <= 0 {
		c.state = stateFired
		fire = c.onFire
	}
	c.mu.Unlock()

	if onTick != nil {
		onTick(rem)
	}
	if fire != nil {
		fire()
		return true
	}
	return false
}

// Cancel stops the countdown without firing. Safe to call in any state and
// more than once.
func (c *Countdown) Cancel() {
	c.mu.Lock()
	if c.state != stateArmed {
		c.mu.Unlock()
		return
	}
	c.state = stateCancelled
	c.mu.Unlock()
	close(c.stop)
}

// PlayNow skips the remaining ticks and fires immediately.
func (c *Countdown) PlayNow() {
	c.mu.Lock()
	if c.state != stateArmed {
		c.mu.Unlock()
		return
	}
	c.state = stateFired
	fire := c.onFire
	c.mu.Unlock()

	close(c.stop)
	if fire != nil {
		fire()
	}
}

// Remaining returns the seconds left on the prompt.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}
