package models

// Device is one controllable light, addressed by vendor SKU and device address.
type Device struct {
	Model string `json:"model"` // vendor SKU, e.g. H6159
	ID    string `json:"id"`    // MAC-like address or serial
}

// Capability is a single vendor instruction for one attribute of a device.
type Capability struct {
	Type     string `json:"type"`
	Instance string `json:"instance"`
	Value    int    `json:"value"`
}

// ColorCandidate is one ranked color extracted from artwork.
type ColorCandidate struct {
	Name string `json:"name,omitempty"` // vibrant | prominent | ""
	R    uint8  `json:"r"`
	G    uint8  `json:"g"`
	B    uint8  `json:"b"`
}
