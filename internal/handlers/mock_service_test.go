package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"playback_lights/internal/models"
	"playback_lights/internal/service"
	"playback_lights/internal/settings"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(ctx context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockSync struct {
	mu          sync.Mutex
	submitErr   error
	snapshot    service.SyncSnapshot
	snapshotErr error
	submitted   []models.PlayerEvent
	players     []*models.PlayerState
}

func (m *mockSync) Run(ctx context.Context) { <-ctx.Done() }

func (m *mockSync) Submit(ctx context.Context, ev models.PlayerEvent, player *models.PlayerState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted = append(m.submitted, ev)
	m.players = append(m.players, player)
	return m.submitErr
}

func (m *mockSync) Snapshot(ctx context.Context) (service.SyncSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot, m.snapshotErr
}

type mockSettings struct {
	current   []service.SettingValue
	err       error
	updateErr error
	lastKey   string
	lastValue json.RawMessage
}

func (m *mockSettings) Current(ctx context.Context) ([]service.SettingValue, error) {
	return m.current, m.err
}

func (m *mockSettings) Update(ctx context.Context, key string, value json.RawMessage) error {
	m.lastKey = key
	m.lastValue = value
	return m.updateErr
}

func (m *mockSettings) Schema() []settings.Section { return settings.Schema() }

type mockEventLog struct {
	resp     []models.SyncEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.SyncEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
