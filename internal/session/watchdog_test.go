package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchdogFiresOnce(t *testing.T) {
	var fired atomic.Int32
	w := NewWatchdog(20*time.Millisecond, nil, func(uint64) { fired.Add(1) })
	defer w.Close()

	w.Start()
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
	assert.False(t, w.Running())
}

func TestWatchdogStopCancels(t *testing.T) {
	var fired atomic.Int32
	w := NewWatchdog(20*time.Millisecond, nil, func(uint64) { fired.Add(1) })
	defer w.Close()

	w.Start()
	w.Stop()
	time.Sleep(60 * time.Millisecond)

	assert.Zero(t, fired.Load())
	assert.False(t, w.Touch("scroll"), "touch on a stopped watchdog must not rearm it")
}

func TestWatchdogRestartKeepsSingleTimer(t *testing.T) {
	var fired atomic.Int32
	w := NewWatchdog(20*time.Millisecond, nil, func(uint64) { fired.Add(1) })
	defer w.Close()

	for i := 0; i < 10; i++ {
		w.Start()
	}
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestWatchdogSignals(t *testing.T) {
	w := NewWatchdog(time.Hour, []string{"keypress"}, func(uint64) {})
	defer w.Close()

	w.Start()
	assert.True(t, w.Touch("keypress"))
	assert.False(t, w.Touch("pointermove"))

	defaults := NewWatchdog(time.Hour, nil, func(uint64) {})
	defer defaults.Close()
	defaults.Start()
	for _, s := range DefaultActivitySignals {
		assert.True(t, defaults.Touch(s), s)
	}
}

func TestWatchdogCloseIgnoresStart(t *testing.T) {
	var fired atomic.Int32
	w := NewWatchdog(10*time.Millisecond, nil, func(uint64) { fired.Add(1) })

	w.Close()
	w.Start()
	time.Sleep(40 * time.Millisecond)

	assert.Zero(t, fired.Load())
	assert.False(t, w.Running())
}

func TestWatchdogCurrent(t *testing.T) {
	gens := make(chan uint64, 1)
	w := NewWatchdog(10*time.Millisecond, nil, func(gen uint64) { gens <- gen })
	defer w.Close()

	w.Start()
	var gen uint64
	select {
	case gen = <-gens:
	case <-time.After(time.Second):
		t.Fatal("watchdog did not fire")
	}
	assert.True(t, w.Current(gen))

	w.Start()
	assert.False(t, w.Current(gen), "a restart must supersede the fired generation")
	w.Stop()
}
