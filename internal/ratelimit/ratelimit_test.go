package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAllowWithinCapacity(t *testing.T) {
	l := New(Config{Capacity: 3, Window: time.Minute})
	defer l.Close()

	for i := 0; i < 3; i++ {
		require.True(t, l.Allow("c1:/api/cart/save"), "request %d", i)
	}
	require.False(t, l.Allow("c1:/api/cart/save"))
}

func TestKeysAreIndependent(t *testing.T) {
	l := New(Config{Capacity: 1, Window: time.Minute})
	defer l.Close()

	require.True(t, l.Allow("c1:/api/cart/save"))
	require.False(t, l.Allow("c1:/api/cart/save"))
	require.True(t, l.Allow("c2:/api/cart/save"))
	require.True(t, l.Allow("c1:/api/orders/all"))
}

func TestWindowResetsLazily(t *testing.T) {
	l := New(Config{Capacity: 1, Window: 20 * time.Millisecond})
	defer l.Close()

	require.True(t, l.Allow("k"))
	require.False(t, l.Allow("k"))
	time.Sleep(30 * time.Millisecond)
	require.True(t, l.Allow("k"))
}

func TestSweepDropsExpired(t *testing.T) {
	l := New(Config{Capacity: 5, Window: time.Minute})
	defer l.Close()

	l.Allow("a")
	l.Allow("b")
	l.mu.Lock()
	require.Len(t, l.windows, 2)
	l.mu.Unlock()

	l.sweepExpired(time.Now().Add(2 * time.Minute))

	l.mu.Lock()
	require.Empty(t, l.windows)
	l.mu.Unlock()
}

func TestDefaultsApplied(t *testing.T) {
	l := New(Config{})
	defer l.Close()
	require.Equal(t, DefaultConfig().Capacity, l.cfg.Capacity)
	require.Equal(t, DefaultConfig().Window, l.cfg.Window)
}
