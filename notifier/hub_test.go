package notifier

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/roufai-ne/crou-management-system-sub011/models"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dialHub spins up a real websocket pair and registers the server side of it.
func dialHub(t *testing.T, hub *Hub, userId int) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		hub.Register(userId, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForConnected(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ConnectedUsers() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d connected users, got %d", want, hub.ConnectedUsers())
}

func TestHub_DeliverReachesRegisteredUser(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, 42)
	waitForConnected(t, hub, 1)

	hub.Deliver(&models.Notification{
		UserId: 42,
		Type:   models.NotificationTypeAllocation,
		Title:  "Nouvelle dotation",
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got models.Notification
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.UserId != 42 || got.Title != "Nouvelle dotation" {
		t.Fatalf("unexpected frame: %+v", got)
	}
}

func TestHub_DeliverIgnoresOtherUsers(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, 42)
	waitForConnected(t, hub, 1)

	hub.Deliver(&models.Notification{UserId: 7, Title: "pas pour toi"})

	_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("received a frame addressed to another user")
	}
}

func TestHub_EvictsOnDisconnect(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, 42)
	waitForConnected(t, hub, 1)

	_ = conn.Close()
	waitForConnected(t, hub, 0)

	// delivery to an empty registry must not panic
	hub.Deliver(&models.Notification{UserId: 42, Title: "apres deconnexion"})
}
