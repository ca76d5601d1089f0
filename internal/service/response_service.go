package service

import "time"

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "BRIGHTNESS", "COLOR", "CONFIG_ERROR", "DISPATCH_FAILED"
}

// SettingValue is one option as the settings API reports it.
type SettingValue struct {
	Key    string `json:"key"`
	Value  any    `json:"value"`
	Secret bool   `json:"secret,omitempty"`
}
