package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushFetchRoundTrip(t *testing.T) {
	a := New(2)
	ok := a.Push([8]byte{1, 2, 3}, true)
	require.True(t, ok)

	chunk, ok := a.Fetch(10 * time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, [8]byte{1, 2, 3}, chunk)
}

func TestPushNonBlockingDropsWhenFull(t *testing.T) {
	a := New(1)
	require.True(t, a.Push([8]byte{1}, false))
	ok := a.Push([8]byte{2}, false)
	assert.False(t, ok)
	assert.Equal(t, 1, a.Len())
}

func TestFetchTimesOutWhenEmpty(t *testing.T) {
	a := New(1)
	_, ok := a.Fetch(5 * time.Millisecond)
	assert.False(t, ok)
}

func TestFetchWithoutWaitIsNonBlocking(t *testing.T) {
	a := New(1)
	_, ok := a.Fetch(0)
	assert.False(t, ok)

	a.Push([8]byte{9}, true)
	chunk, ok := a.Fetch(0)
	require.True(t, ok)
	assert.Equal(t, uint8(9), chunk[0])
}

func TestPushBlockingWaitsForRoom(t *testing.T) {
	a := New(1)
	require.True(t, a.Push([8]byte{1}, true))

	done := make(chan struct{})
	go func() {
		a.Push([8]byte{2}, true)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("blocking push returned before room was available")
	case <-time.After(10 * time.Millisecond):
	}

	_, _ = a.Fetch(0)
	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("blocking push did not unblock after room freed")
	}
}
