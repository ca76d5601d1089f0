package govee

import "playback_lights/internal/models"

// Capability types and instances understood by the control endpoint.
const (
	TypeColorSetting = "devices.capabilities.color_setting"
	TypeRange        = "devices.capabilities.range"

	InstanceColorRGB   = "colorRgb"
	InstanceBrightness = "brightness"
)

// ColorCapability sets a packed 0..0xFFFFFF RGB value.
func ColorCapability(rgb int) models.Capability {
	return models.Capability{Type: TypeColorSetting, Instance: InstanceColorRGB, Value: rgb}
}

// BrightnessCapability sets brightness, typically 0..100.
func BrightnessCapability(brightness int) models.Capability {
	return models.Capability{Type: TypeRange, Instance: InstanceBrightness, Value: brightness}
}
