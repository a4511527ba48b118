package session

import (
	"sync"
	"time"
)

// DefaultActivitySignals are the interaction kinds that keep an admin
// session alive.
var DefaultActivitySignals = []string{"pointerdown", "pointermove", "keypress", "scroll", "touchstart"}

// Watchdog calls onIdle once no qualifying activity has been seen for the
// configured window. A Watchdog holds at most one pending timer. onIdle
// receives the generation the timer was armed with; callers confirm it with
// Current before acting, since a Start may land between the timer firing and
// onIdle running.
type Watchdog struct {
	mu      sync.Mutex
	timeout time.Duration
	signals map[string]struct{}
	onIdle  func(gen uint64)

	timer   *time.Timer
	gen     uint64
	running bool
	closed  bool
}

func NewWatchdog(timeout time.Duration, signals []string, onIdle func(gen uint64)) *Watchdog {
	if len(signals) == 0 {
		signals = DefaultActivitySignals
	}
	set := make(map[string]struct{}, len(signals))
	for _, s := range signals {
		set[s] = struct{}{}
	}
	return &Watchdog{timeout: timeout, signals: set, onIdle: onIdle}
}

// Start arms the watchdog, replacing any pending timer.
func (w *Watchdog) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.running = true
	w.arm()
}

// Touch restarts the window if signal qualifies and the watchdog is armed.
// It reports whether the window was restarted.
func (w *Watchdog) Touch(signal string) bool {
	if _, ok := w.signals[signal]; !ok {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running || w.closed {
		return false
	}
	w.arm()
	return true
}

func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.disarm()
}

// Close stops the watchdog for good; later Start calls are ignored.
func (w *Watchdog) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.disarm()
	w.closed = true
}

// Current reports whether gen is still the latest arming: no Start, Touch or
// Stop has happened since the timer of gen was armed.
func (w *Watchdog) Current(gen uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return gen == w.gen
}

func (w *Watchdog) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// arm and disarm require w.mu.
func (w *Watchdog) arm() {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.gen++
	gen := w.gen
	w.timer = time.AfterFunc(w.timeout, func() { w.fire(gen) })
}

func (w *Watchdog) disarm() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.gen++
	w.running = false
}

func (w *Watchdog) fire(gen uint64) {
	w.mu.Lock()
	if !w.running || gen != w.gen {
		// superseded by a Touch, Stop or Start
		w.mu.Unlock()
		return
	}
	w.running = false
	w.timer = nil
	w.mu.Unlock()

	w.onIdle(gen)
}
