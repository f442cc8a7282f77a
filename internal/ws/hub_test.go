package ws_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"fitsocial/internal/ws"
)

// hubFixture runs a tiny upgrade-and-register server so hub tests exercise
// real websocket handles.
type hubFixture struct {
	hub     *ws.Hub
	srv     *httptest.Server
	handles chan *ws.Conn
}

func newHubFixture(t *testing.T, userID int64, configure func(h *ws.Hub)) *hubFixture {
	t.Helper()
	f := &hubFixture{
		hub:     ws.NewHub(2 * time.Second),
		handles: make(chan *ws.Conn, 8),
	}
	if configure != nil {
		configure(f.hub)
	}
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := ws.NewConn(raw)
		f.hub.Register(userID, conn)
		f.handles <- conn
		// Hold the connection open; pushes come from the hub.
		for {
			var discard map[string]any
			if err := conn.ReadEvent(&discard); err != nil {
				return
			}
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *hubFixture) dial(t *testing.T) (*websocket.Conn, *ws.Conn) {
	t.Helper()
	url := strings.Replace(f.srv.URL, "http", "ws", 1)
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case handle := <-f.handles:
		return client, handle
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server-side handle")
		return nil, nil
	}
}

func readEvent(t *testing.T, client *websocket.Conn) map[string]any {
	t.Helper()
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var payload map[string]any
	if err := client.ReadJSON(&payload); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return payload
}

func TestHubPushReachesAllHandles(t *testing.T) {
	f := newHubFixture(t, 1, nil)
	clientA, _ := f.dial(t)
	clientB, _ := f.dial(t)

	assert.Equal(t, 2, f.hub.Connections(1))
	assert.True(t, f.hub.IsOnline(1))

	f.hub.Push(1, map[string]any{"type": "new_message", "id": 7})

	for _, client := range []*websocket.Conn{clientA, clientB} {
		ev := readEvent(t, client)
		assert.Equal(t, "new_message", ev["type"])
		assert.Equal(t, float64(7), ev["id"])
	}
}

func TestHubPushPreservesOrder(t *testing.T) {
	f := newHubFixture(t, 1, nil)
	client, _ := f.dial(t)

	f.hub.Push(1, map[string]any{"seq": 1})
	f.hub.Push(1, map[string]any{"seq": 2})

	assert.Equal(t, float64(1), readEvent(t, client)["seq"])
	assert.Equal(t, float64(2), readEvent(t, client)["seq"])
}

func TestHubPushWithNoHandlesIsDropped(t *testing.T) {
	hub := ws.NewHub(time.Second)

	// Never-connected user and a user whose channel emptied both drop
	// events without error.
	hub.Push(42, map[string]any{"type": "new_message"})

	f := newHubFixture(t, 1, nil)
	client, handle := f.dial(t)
	client.Close()
	f.hub.Unregister(handle)

	assert.Equal(t, 0, f.hub.Connections(1))
	assert.False(t, f.hub.IsOnline(1))
	f.hub.Push(1, map[string]any{"type": "new_message"})
}

func TestHubFailedHandleIsDroppedOthersStillDelivered(t *testing.T) {
	f := newHubFixture(t, 1, nil)
	clientDead, handleDead := f.dial(t)
	clientLive, _ := f.dial(t)

	// Kill one handle under the hub's feet; the push must still reach the
	// healthy one and unregister the broken one.
	handleDead.Close()
	clientDead.Close()

	f.hub.Push(1, map[string]any{"type": "new_message", "id": 1})

	ev := readEvent(t, clientLive)
	assert.Equal(t, "new_message", ev["type"])
	assert.Eventually(t, func() bool {
		return f.hub.Connections(1) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubRegisterIsIdempotent(t *testing.T) {
	f := newHubFixture(t, 1, nil)
	_, handle := f.dial(t)

	f.hub.Register(1, handle)
	f.hub.Register(1, handle)
	assert.Equal(t, 1, f.hub.Connections(1))
}

func TestHubUnregisterUnknownHandleIsNoOp(t *testing.T) {
	hub := ws.NewHub(time.Second)
	hub.Unregister(ws.NewConn(nil))
}

func TestHubPresenceCallbacks(t *testing.T) {
	var online, offline []int64
	f := newHubFixture(t, 1, func(h *ws.Hub) {
		h.OnOnline = func(userID int64) { online = append(online, userID) }
		h.OnOffline = func(userID int64) { offline = append(offline, userID) }
	})

	_, handleA := f.dial(t)
	_, handleB := f.dial(t)
	assert.Equal(t, []int64{1}, online) // only the first handle flips presence

	f.hub.Unregister(handleA)
	assert.Empty(t, offline)
	f.hub.Unregister(handleB)
	assert.Equal(t, []int64{1}, offline)
	assert.False(t, f.hub.LastSeen(1).IsZero())
}
