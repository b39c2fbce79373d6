package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	c1, err := hub.Register(1, nil)
	require.NoError(t, err)
	c2, err := hub.Register(1, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, hub.totalConns)

	hub.UnregisterClient(c1)
	assert.Equal(t, 1, hub.totalConns)

	// Unregistering the same client twice must not double-decrement.
	hub.UnregisterClient(c1)
	assert.Equal(t, 1, hub.totalConns)

	hub.UnregisterClient(c2)
	assert.Equal(t, 0, hub.totalConns)
	assert.Empty(t, hub.conns)
}

func TestHub_PerUserConnectionLimit(t *testing.T) {
	hub := NewHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(42, nil)
		require.NoError(t, err)
	}

	_, err := hub.Register(42, nil)
	assert.ErrorContains(t, err, "user connection limit")

	// Other users are unaffected.
	_, err = hub.Register(43, nil)
	assert.NoError(t, err)
}

func TestHub_BroadcastReachesOnlyTargetUser(t *testing.T) {
	hub := NewHub()

	target, err := hub.Register(1, nil)
	require.NoError(t, err)
	other, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.Broadcast(1, `{"type":"new_comment"}`)

	select {
	case msg := <-target.Send:
		assert.JSONEq(t, `{"type":"new_comment"}`, string(msg))
	default:
		t.Fatal("target client received nothing")
	}

	select {
	case msg := <-other.Send:
		t.Fatalf("unexpected message for other user: %s", msg)
	default:
	}
}

func TestHub_BroadcastAll(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.BroadcastAll("hello")

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.Send:
			assert.Equal(t, "hello", string(msg))
		default:
			t.Fatal("client received nothing")
		}
	}
}

func TestClient_TrySendDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	client, err := hub.Register(1, nil)
	require.NoError(t, err)

	for i := 0; i < cap(client.Send); i++ {
		client.Send <- []byte("fill")
	}

	// Must not block even though the buffer is full.
	done := make(chan struct{})
	go func() {
		client.TrySend([]byte("overflow"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("TrySend blocked on a full buffer")
	}

	// Drain: the overflow message was dropped, not queued.
	for i := 0; i < cap(client.Send); i++ {
		assert.Equal(t, "fill", string(<-client.Send))
	}
	select {
	case msg := <-client.Send:
		t.Fatalf("unexpected queued message: %s", msg)
	default:
	}
}

func TestClient_TrySendDeliversAfterDrain(t *testing.T) {
	hub := NewHub()
	client, err := hub.Register(1, nil)
	require.NoError(t, err)

	for i := 0; i < cap(client.Send); i++ {
		client.Send <- []byte("fill")
	}
	client.TrySend([]byte("overflow"))

	<-client.Send
	client.TrySend([]byte("after drain"))

	for i := 0; i < cap(client.Send)-1; i++ {
		<-client.Send
	}
	assert.Equal(t, "after drain", string(<-client.Send))
}

func TestClient_TrySendSurvivesClosedChannel(t *testing.T) {
	hub := NewHub()
	client, err := hub.Register(1, nil)
	require.NoError(t, err)

	close(client.Send)
	assert.NotPanics(t, func() {
		client.TrySend([]byte("after close"))
	})
}

func TestHub_ShutdownClearsConnections(t *testing.T) {
	hub := NewHub()
	_, err := hub.Register(1, nil)
	require.NoError(t, err)
	_, err = hub.Register(2, nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Equal(t, 0, hub.totalConns)
	assert.Empty(t, hub.conns)
}
