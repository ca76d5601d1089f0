package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"playback_lights/internal/models"
	"playback_lights/internal/repository"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
	ErrUnknownEventType = errors.New("unknown event type")
)

var knownEventTypes = map[string]struct{}{
	models.SyncEventBrightness:     {},
	models.SyncEventColor:          {},
	models.SyncEventConfigError:    {},
	models.SyncEventDispatchFailed: {},
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}

	eventType := normalizeEventType(f.Type)
	if eventType != "" {
		if _, ok := knownEventTypes[eventType]; !ok {
			return time.Time{}, time.Time{}, "", fmt.Errorf("%w: %q", ErrUnknownEventType, f.Type)
		}
	}
	return from, to, eventType, nil
}

// List returns audit entries in chronological order.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.SyncEvent, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, from, to, typ)
}

// IsInvalidFilter reports whether err came from filter validation.
func IsInvalidFilter(err error) bool {
	return errors.Is(err, errInvalidTimeRange) || errors.Is(err, ErrUnknownEventType)
}
