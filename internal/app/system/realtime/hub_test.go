package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func newHubServer(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(zap.NewNop())
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn)
	}))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("decode frame %s: %v", data, err)
	}
	return f
}

func TestHub_SendsConnectedThenEvents(t *testing.T) {
	hub, url := newHubServer(t)
	conn := dial(t, url)

	if f := readFrame(t, conn); f.Event != EventConnected {
		t.Fatalf("first frame = %q, want %q", f.Event, EventConnected)
	}
	if hub.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", hub.Count())
	}

	hub.Publish(context.Background(), EventNewQuote, map[string]string{"_id": "q1"})

	f := readFrame(t, conn)
	if f.Event != EventNewQuote {
		t.Errorf("event = %q, want %q", f.Event, EventNewQuote)
	}
	data, _ := f.Data.(map[string]any)
	if data["_id"] != "q1" {
		t.Errorf("data = %v", f.Data)
	}
}

func TestHub_BroadcastsToAllClients(t *testing.T) {
	hub, url := newHubServer(t)
	a := dial(t, url)
	b := dial(t, url)
	readFrame(t, a)
	readFrame(t, b)

	hub.Publish(context.Background(), EventDeleteBooking, "b1")

	for _, c := range []*websocket.Conn{a, b} {
		f := readFrame(t, c)
		if f.Event != EventDeleteBooking || f.Data != "b1" {
			t.Errorf("got %+v", f)
		}
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub, url := newHubServer(t)
	conn := dial(t, url)
	readFrame(t, conn)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.Count() != 0 {
		t.Errorf("Count() = %d after disconnect, want 0", hub.Count())
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	slow := &client{send: make(chan []byte, 1)}
	slow.send <- []byte("backlog")
	hub.register(slow)

	hub.Broadcast([]byte(`{"event":"newMessage"}`))

	if hub.Count() != 0 {
		t.Fatalf("slow client not dropped, Count() = %d", hub.Count())
	}
	// Queue is closed after the backlog drains.
	<-slow.send
	if _, ok := <-slow.send; ok {
		t.Error("expected send channel closed")
	}
}

func TestHub_CloseRefusesNewClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	hub.Close()
	if hub.register(&client{send: make(chan []byte, 1)}) {
		t.Error("register succeeded on closed hub")
	}
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	p.Publish(context.Background(), EventNewQuote, nil)
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Publish(context.Background(), EventNewQuote, 1)
	r.Publish(context.Background(), EventDeleteQuote, "id")

	names := r.Names()
	if len(names) != 2 || names[0] != EventNewQuote || names[1] != EventDeleteQuote {
		t.Errorf("Names() = %v", names)
	}
	if r.Events()[1].Data != "id" {
		t.Errorf("Events()[1].Data = %v", r.Events()[1].Data)
	}
}
