package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"playback_lights/internal/govee"
	"playback_lights/internal/models"
	"playback_lights/internal/settings"
)

// kvStore is an in-memory settings backend holding encoded envelopes.
type kvStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newKVStore(values map[string]any) *kvStore {
	s := &kvStore{values: map[string]string{}}
	for k, v := range values {
		raw, err := settings.Encode(v)
		if err != nil {
			panic(err)
		}
		s.values[k] = raw
	}
	return s
}

func (s *kvStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *kvStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *kvStore) SetDefault(_ context.Context, key, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = value
	return true, nil
}

func (s *kvStore) All(_ context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}

type broadcastCall struct {
	APIKey     string
	Devices    []models.Device
	Capability models.Capability
}

// fakeDispatcher records broadcasts and fails the devices listed in failIDs.
type fakeDispatcher struct {
	mu      sync.Mutex
	calls   []broadcastCall
	failIDs map[string]bool
}

func (d *fakeDispatcher) Broadcast(_ context.Context, apiKey string, devices []models.Device, capability models.Capability) govee.BroadcastResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, broadcastCall{APIKey: apiKey, Devices: devices, Capability: capability})

	res := govee.BroadcastResult{Attempted: len(devices)}
	for _, dev := range devices {
		if d.failIDs[dev.ID] {
			res.Failures = append(res.Failures, &govee.DispatchError{Device: dev, Err: errors.New("boom")})
		}
	}
	return res
}

func (d *fakeDispatcher) Calls() []broadcastCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]broadcastCall(nil), d.calls...)
}

type fakeExtractor struct {
	candidates []models.ColorCandidate
	err        error
	refs       []string
}

func (e *fakeExtractor) Extract(_ context.Context, ref string) ([]models.ColorCandidate, error) {
	e.refs = append(e.refs, ref)
	return e.candidates, e.err
}

type published struct {
	Type string
	Data any
}

type fakeNotifier struct {
	mu            sync.Mutex
	notifications []string
	published     []published
}

func (n *fakeNotifier) Notify(text string, isError bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, text)
}

func (n *fakeNotifier) Publish(msgType string, data any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.published = append(n.published, published{Type: msgType, Data: data})
}

func (n *fakeNotifier) Notifications() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.notifications...)
}

// memEventRepo keeps appended events in memory.
type memEventRepo struct {
	mu     sync.Mutex
	events []models.SyncEvent
}

func (r *memEventRepo) Append(_ context.Context, e models.SyncEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *memEventRepo) List(_ context.Context, _, _ time.Time, typ string) ([]models.SyncEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SyncEvent
	for _, e := range r.events {
		if typ == "" || e.Type == typ {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEventRepo) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
