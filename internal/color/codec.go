// Package color converts between display colors and the packed 24-bit RGB
// integer the Govee control API expects.
package color

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"playback_lights/internal/models"
)

// MaxRGB is the largest packed value (0xFFFFFF).
const MaxRGB = 1<<24 - 1

// ErrInvalidHex is returned for anything other than 6 hex digits with an optional '#'.
var ErrInvalidHex = errors.New("invalid hex color")

// HexToInt parses "#rrggbb" or "rrggbb" as a big-endian 24-bit RGB value.
func HexToInt(hex string) (int, error) {
	digits := strings.TrimPrefix(hex, "#")
	if len(digits) != 6 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}
	return int(v), nil
}

// IntToRGB splits a packed value into its channels.
func IntToRGB(v int) (r, g, b uint8) {
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

// RGBToHex formats channels as lowercase "#rrggbb".
func RGBToHex(r, g, b uint8) string {
	// 1<<24 keeps the leading zeros; the first digit is dropped.
	packed := 1<<24 | int(r)<<16 | int(g)<<8 | int(b)
	return "#" + strconv.FormatInt(int64(packed), 16)[1:]
}

// FromCandidate encodes an extracted color.
func FromCandidate(c models.ColorCandidate) string {
	return RGBToHex(c.R, c.G, c.B)
}
