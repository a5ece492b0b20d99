package brackets

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestHubBroadcastAndShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	room := TournamentRoom(4)
	assert.Equal(t, "tournament_4", room)

	watcher := NewClient(hub, nil, room)
	other := NewClient(hub, nil, TournamentRoom(5))
	assert.NotEqual(t, watcher.ID, other.ID)
	hub.Register <- watcher
	hub.Register <- other
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 }, time.Second, 5*time.Millisecond)

	hub.BroadcastToRoom(room, WebSocketMessage{Type: EventMatchRecorded, Payload: map[string]string{"match_id": "t4-R1M1"}, RoomID: room})

	select {
	case msg := <-watcher.Send:
		var got WebSocketMessage
		require.NoError(t, json.Unmarshal(msg, &got))
		assert.Equal(t, EventMatchRecorded, got.Type)
	case <-time.After(time.Second):
		t.Fatal("watcher did not receive the broadcast")
	}
	assert.Empty(t, other.Send)

	hub.Unregister <- other
	require.Eventually(t, func() bool { return hub.RoomSize(TournamentRoom(5)) == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	_, open := <-watcher.Send
	assert.False(t, open, "clients are closed when the hub stops")
	assert.Zero(t, hub.RoomSize(room))
}

func TestBroadcastToEmptyRoomIsNoop(t *testing.T) {
	hub := NewHub(nil)
	hub.BroadcastToRoom(TournamentRoom(1), WebSocketMessage{Type: EventRoundMaterialized})
	assert.Zero(t, hub.RoomSize(TournamentRoom(1)))
}
