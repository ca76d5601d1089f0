package service

import "playback_lights/internal/models"

// PlayerTracker holds the last player snapshot the host reported.
// Only the event loop goroutine touches it.
type PlayerTracker struct {
	state models.PlayerState
}

func NewPlayerTracker() *PlayerTracker {
	return &PlayerTracker{}
}

func (p *PlayerTracker) Current() models.PlayerState {
	return p.state
}

// Update replaces the snapshot. A nil snapshot keeps the previous one.
func (p *PlayerTracker) Update(s *models.PlayerState) {
	if s == nil {
		return
	}
	p.state = *s
}
