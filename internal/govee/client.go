// Package govee sends capability commands to the Govee cloud control API.
package govee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"playback_lights/internal/logger"
	"playback_lights/internal/models"

	"github.com/google/uuid"
)

const (
	// DefaultEndpoint is the v1 router control URL.
	DefaultEndpoint = "https://openapi.api.govee.com/router/api/v1/device/control"
	DefaultTimeout  = 10 * time.Second

	apiKeyHeader = "Govee-API-Key"
	maxErrBody   = 512
)

// DispatchError reports a failed command for one device.
type DispatchError struct {
	Device models.Device
	Err    error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("device %s (%s): %v", e.Device.ID, e.Device.Model, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// BroadcastResult aggregates the outcomes of one fan-out.
type BroadcastResult struct {
	Attempted int
	Failures  []*DispatchError
}

// AllFailed reports whether every attempted device failed.
func (r BroadcastResult) AllFailed() bool {
	return r.Attempted > 0 && len(r.Failures) == r.Attempted
}

type controlRequest struct {
	RequestID string         `json:"requestId"`
	Payload   controlPayload `json:"payload"`
}

type controlPayload struct {
	SKU        string            `json:"sku"`
	Device     string            `json:"device"`
	Capability models.Capability `json:"capability"`
}

// Client posts control requests. The zero value is not usable; use NewClient.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        *logger.Logger
	newID      func() string
}

// NewClient builds a client for endpoint (DefaultEndpoint when empty).
// A nil log disables failure logging.
func NewClient(endpoint string, timeout time.Duration, log *logger.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
		newID:      uuid.NewString,
	}
}

// SendCommand issues one control request for one device.
// Any failure is returned as *DispatchError.
func (c *Client) SendCommand(ctx context.Context, apiKey string, device models.Device, capability models.Capability) error {
	body, err := json.Marshal(controlRequest{
		RequestID: c.newID(),
		Payload: controlPayload{
			SKU:        device.Model,
			Device:     device.ID,
			Capability: capability,
		},
	})
	if err != nil {
		return &DispatchError{Device: device, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return &DispatchError{Device: device, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &DispatchError{Device: device, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return &DispatchError{
			Device: device,
			Err:    fmt.Errorf("govee API error: %d %s", resp.StatusCode, strings.TrimSpace(string(msg))),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Broadcast sends capability to every device concurrently and waits for all
// of them. A failing device never cancels or delays the others.
func (c *Client) Broadcast(ctx context.Context, apiKey string, devices []models.Device, capability models.Capability) BroadcastResult {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		res = BroadcastResult{Attempted: len(devices)}
	)

	for _, d := range devices {
		wg.Add(1)
		go func(dev models.Device) {
			defer wg.Done()
			err := c.SendCommand(ctx, apiKey, dev, capability)
			if err == nil {
				return
			}
			de, ok := err.(*DispatchError)
			if !ok {
				de = &DispatchError{Device: dev, Err: err}
			}
			if c.log != nil {
				c.log.Warnw("govee_dispatch_failed",
					"device", dev.ID, "model", dev.Model,
					"instance", capability.Instance, "err", de.Err)
			}
			mu.Lock()
			res.Failures = append(res.Failures, de)
			mu.Unlock()
		}(d)
	}
	wg.Wait()

	if c.log != nil {
		c.log.Debugw("govee_broadcast_done",
			"instance", capability.Instance, "value", capability.Value,
			"attempted", res.Attempted, "failed", len(res.Failures))
	}
	return res
}
