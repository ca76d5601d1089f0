package models

// Settings is the user configuration, re-read before every synchronization attempt.
type Settings struct {
	Enabled          bool     `json:"enabled"`
	APIKey           string   `json:"api_key"`
	Devices          []Device `json:"devices"`
	NormalBrightness int      `json:"normal_brightness"`
	PausedBrightness int      `json:"paused_brightness"`
	DarkenOnPause    bool     `json:"darken_on_pause"`

	// Set when the stored value is unusable; the matching brightness then
	// holds its fallback.
	NormalBrightnessErr error `json:"-"`
	PausedBrightnessErr error `json:"-"`
}
