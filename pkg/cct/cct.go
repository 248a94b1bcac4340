// Package cct converts between the device-internal warm/cold channel
// representation of white light and correlated color temperature in Kelvin.
//
// LEDNET controllers drive their white output through two 8-bit channels
// (warm white and cold white). The blend of the two channels encodes the
// color temperature, the sum encodes the brightness. The supported
// temperature range is 2800K-6500K.
//
// The conversions are lossy: temperatures quantize onto 8-bit channels, so
// a round trip through ToWarmCold and ToKelvin lands near, not on, the
// original value.
package cct

import "math"

// Supported color temperature range in Kelvin.
const (
	MinKelvin = 2800
	MaxKelvin = 6500

	kelvinRange = MaxKelvin - MinKelvin
)

// ToKelvin converts the warm/cold channel pair to a color temperature.
// Both channels zero means the white output is off entirely and yields 0.
func ToKelvin(warm, cold byte) uint16 {
	if warm == 0 && cold == 0 {
		return 0
	}

	w := float64(warm)
	c := float64(cold)

	// Scale the warm fraction up to the full 8-bit domain: a pair like
	// (10, 30) encodes the same blend as (64, 191), just dimmer.
	sum := w + c
	leftover := 255 - sum
	w += leftover * (w / sum)

	k := (255-w)*(float64(kelvinRange)/255) + MinKelvin
	return uint16(k)
}

// ToWarmCold converts a color temperature to the warm/cold channel pair at
// full brightness. Temperatures outside [MinKelvin, MaxKelvin] are clamped.
func ToWarmCold(kelvin uint16) (warm, cold byte) {
	k := Clamp(kelvin)
	t := float64(k-MinKelvin) / float64(kelvinRange)

	warm = byte(math.Ceil(255 * (1 - t)))
	cold = byte(math.Ceil(255 * t))
	return warm, cold
}

// Brightness derives the brightness fraction encoded by a warm/cold pair.
//
// This is the literal readback arithmetic the protocol was reverse-engineered
// with. Its behavior when both channels are near max is unverified against
// hardware, so keep the formula as is.
func Brightness(warm, cold byte) float64 {
	return 1 - float64(255-(int(warm)+int(cold)))/255
}

// Scale dims a warm/cold pair by a brightness fraction. The fraction is
// clamped to [0, 1], never rejected.
func Scale(warm, cold byte, brightness float64) (byte, byte) {
	b := clampFraction(brightness)
	return byte(float64(warm) * b), byte(float64(cold) * b)
}

// Clamp restricts a color temperature to the supported range.
func Clamp(kelvin uint16) uint16 {
	if kelvin < MinKelvin {
		return MinKelvin
	}
	if kelvin > MaxKelvin {
		return MaxKelvin
	}
	return kelvin
}

func clampFraction(b float64) float64 {
	if b < 0 || math.IsNaN(b) {
		return 0
	}
	if b > 1 {
		return 1
	}
	return b
}
