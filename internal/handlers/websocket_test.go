package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"playback_lights/internal/models"
	"playback_lights/internal/notify"
	"playback_lights/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// --- parseInterval unit tests ---

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil, nil)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 5 * time.Second},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws?interval=2m", 5 * time.Second},
		{"interval_ms_too_large", "/ws?interval_ms=120000", 5 * time.Second},
		{"interval_invalid_string", "/ws?interval=bogus", 5 * time.Second},
		{"interval_ms_invalid", "/ws?interval_ms=NaN", 5 * time.Second},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := h.parseInterval(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

// --- websocket integration tests ---

type envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialWS(t *testing.T, s *service.Service, hub Subscriber, query string) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, hub, nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = query

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func TestWebSocket_InitialStateThenNotifications(t *testing.T) {
	brightness := 75
	ms := &mockSync{snapshot: service.SyncSnapshot{
		State:  service.SyncState{LastBrightness: &brightness},
		Player: models.PlayerState{TrackURI: "spotify:track:1"},
	}}
	hub := notify.NewHub()
	defer hub.Close()

	conn := dialWS(t, &service.Service{Sync: ms}, hub, "interval=1m")

	env := readEnvelope(t, conn)
	if env.Type != msgTypeState || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var snap service.SyncSnapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if snap.State.LastBrightness == nil || *snap.State.LastBrightness != 75 || snap.Player.TrackURI != "spotify:track:1" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	hub.Notify("Failed to change lights, please check your settings.", true)

	env = readEnvelope(t, conn)
	if env.Type != notify.TypeNotification {
		t.Fatalf("expected notification, got %+v", env)
	}
	var n notify.Notification
	if err := json.Unmarshal(env.Data, &n); err != nil {
		t.Fatalf("unmarshal notification: %v", err)
	}
	if !n.IsError || n.Text != "Failed to change lights, please check your settings." {
		t.Fatalf("unexpected notification: %+v", n)
	}
}

func TestWebSocket_PeriodicState(t *testing.T) {
	s := &service.Service{Sync: &mockSync{}}
	conn := dialWS(t, s, nil, "interval_ms=20")

	for i := 0; i < 2; i++ {
		if env := readEnvelope(t, conn); env.Type != msgTypeState {
			t.Fatalf("expected type=state, got %+v", env)
		}
	}
}

func TestWebSocket_HubCloseEndsStream(t *testing.T) {
	hub := notify.NewHub()
	conn := dialWS(t, &service.Service{Sync: &mockSync{}}, hub, "interval=1m")

	readEnvelope(t, conn)
	hub.Close()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err == nil {
		t.Fatalf("expected close, got message: %s", string(raw))
	}
}

func TestWebSocket_InitialSnapshotError_Closes(t *testing.T) {
	s := &service.Service{Sync: &mockSync{snapshotErr: errors.New("boom")}}
	conn := dialWS(t, s, nil, "")

	// The server should close immediately after failing the initial snapshot
	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err == nil {
		t.Fatalf("expected read error (closed), got message: %s", string(raw))
	}
}
