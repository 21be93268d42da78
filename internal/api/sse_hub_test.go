package api

import (
	"testing"
	"time"

	"launchdash/domain/launch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestHubDeliversOnlyToOwningSession(t *testing.T) {
	hub := NewSSEHub()
	defer hub.Stop()

	mine, cancelMine, ok := hub.Subscribe("session-a")
	require.True(t, ok)
	defer cancelMine()
	other, cancelOther, ok := hub.Subscribe("session-b")
	require.True(t, ok)
	defer cancelOther()

	waitFor(t, func() bool { return hub.GetClientCount("session-a") == 1 && hub.GetClientCount("session-b") == 1 })

	views := launch.Views{Selection: launch.SelectionState{SelectedSite: "KSC LC-39A"}}
	hub.Publish("session-a", 7, views)

	select {
	case event := <-mine:
		assert.Equal(t, EventViews, event.EventType)
		assert.Equal(t, uint64(7), event.Generation)
		assert.Equal(t, "KSC LC-39A", event.Views.Selection.SelectedSite)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	select {
	case event := <-other:
		t.Fatalf("unexpected event for other session: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterClosesChannel(t *testing.T) {
	hub := NewSSEHub()
	defer hub.Stop()

	ch, cancel, ok := hub.Subscribe("session-a")
	require.True(t, ok)
	waitFor(t, func() bool { return hub.GetClientCount("session-a") == 1 })

	cancel()
	waitFor(t, func() bool { return hub.GetClientCount("session-a") == 0 })

	_, open := <-ch
	assert.False(t, open)
}

func TestHubReleaseClosesSessionStreams(t *testing.T) {
	hub := NewSSEHub()
	defer hub.Stop()

	first, cancelFirst, ok := hub.Subscribe("session-a")
	require.True(t, ok)
	second, cancelSecond, ok := hub.Subscribe("session-a")
	require.True(t, ok)
	kept, cancelKept, ok := hub.Subscribe("session-b")
	require.True(t, ok)
	defer cancelKept()
	waitFor(t, func() bool { return hub.GetClientCount("session-a") == 2 && hub.GetClientCount("session-b") == 1 })

	hub.Release("session-a")
	waitFor(t, func() bool { return hub.GetClientCount("session-a") == 0 })

	_, open := <-first
	assert.False(t, open)
	_, open = <-second
	assert.False(t, open)
	assert.Equal(t, 1, hub.GetClientCount("session-b"))

	// Cancelling an already released stream must not close it twice
	cancelFirst()
	cancelSecond()

	hub.Publish("session-b", 1, launch.Views{})
	select {
	case _, open := <-kept:
		assert.True(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestHubCancelAfterStopReturns(t *testing.T) {
	hub := NewSSEHub()
	_, cancel, ok := hub.Subscribe("session-a")
	require.True(t, ok)
	hub.Stop()

	// Fill the unregister queue so the next cancel can only finish through done
	for i := 0; i < cap(hub.unregister); i++ {
		hub.unregister <- SSEClient{SessionID: "filler"}
	}

	done := make(chan struct{})
	go func() {
		cancel()
		hub.Release("session-a")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cancel blocked after hub stopped")
	}
}
