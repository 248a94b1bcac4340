// Package device defines the capability contracts smart lighting devices can
// satisfy and the closed set of concrete device kinds.
//
// A capability is a named group of operations (base device, RGB color,
// correlated color temperature, monochrome brightness). Each concrete device
// type declares, at definition time, the ordered set of capabilities it
// supports; the command dispatch layer iterates that declaration. The base
// Device contract is universal and always last in dispatch order.
//
// Getters on all capabilities return the locally cached shadow state and
// never touch the network. Call Refresh first when freshness matters; this
// is a documented contract, not enforced by the types.
package device

import (
	"net/netip"

	"github.com/homectl/homectl-go/pkg/color"
)

// Kind identifies a concrete device type. The set of kinds is closed: adding
// a protocol means adding a Kind and registering its capability order with
// the command dispatch table.
type Kind int

// Known device kinds.
const (
	// KindLEDNET is an LEDNET (Magic Home style) WiFi LED controller.
	KindLEDNET Kind = iota
)

// String returns the kind as a short label.
func (k Kind) String() string {
	switch k {
	case KindLEDNET:
		return "lednet"
	default:
		return "unknown"
	}
}

// Device is the base contract every smart lighting device satisfies.
type Device interface {
	// Kind identifies the concrete device type for capability dispatch.
	Kind() Kind

	// Refresh updates the cached shadow state from the device. Every
	// mutating operation ends with a refresh, so the shadow state is
	// never observably stale after a successful setter.
	Refresh() error

	// SetOn turns the device on or off.
	SetOn(on bool) error

	// IsOn reports the cached power state.
	IsOn() bool

	// Address returns the device's IP address.
	Address() netip.Addr

	// Port returns the control port the device is reached on.
	Port() uint16

	// Name returns a human-readable identifier, unique enough to tell
	// devices of different models apart.
	Name() string
}

// RGB is a device that can display arbitrary colors.
type RGB interface {
	Device

	// RGBSet sets color and brightness. The brightness is the HSV value
	// channel and is clamped to [0, 1].
	RGBSet(c color.RGB, brightness float64) error

	// RGBSetExact sets the color to the exact channel values given.
	RGBSetExact(c color.RGB) error

	// RGBSetColor sets the color, keeping the previously set brightness.
	RGBSetColor(c color.RGB) error

	// RGBSetBrightness sets the brightness, keeping the current color.
	RGBSetBrightness(brightness float64) error

	// RGBColor returns the cached color at full brightness.
	RGBColor() color.RGB

	// RGBBrightness returns the cached brightness fraction.
	RGBBrightness() float64

	// RGBExact returns the cached color exactly as the device reports it.
	RGBExact() color.RGB
}

// CCT is a device with an adjustable white color temperature.
type CCT interface {
	Device

	// CCTSet sets color temperature and brightness.
	CCTSet(kelvin uint16, brightness float64) error

	// CCTSetTemperature sets the temperature, keeping the previously set
	// brightness.
	CCTSetTemperature(kelvin uint16) error

	// CCTSetBrightness sets the brightness, keeping the previously set
	// temperature.
	CCTSetBrightness(brightness float64) error

	// CCTTemperature returns the cached color temperature in Kelvin.
	CCTTemperature() uint16

	// CCTBrightness returns the cached brightness fraction.
	CCTBrightness() float64
}

// Mono is a device with a single adjustable brightness channel.
type Mono interface {
	Device

	// MonoSet sets the brightness, clamped to [0, 1].
	MonoSet(brightness float64) error

	// Mono returns the cached brightness fraction.
	Mono() float64
}
