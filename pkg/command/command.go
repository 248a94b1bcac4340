package command

import "github.com/homectl/homectl-go/pkg/color"

// Op identifies an operation in the closed command set.
type Op int

// The command set.
const (
	OpOn Op = iota
	OpOff
	OpGetAddress
	OpGetPort
	OpIsOn

	OpRGBSet
	OpRGBSetExact
	OpRGBSetColor
	OpRGBSetBrightness
	OpRGBGetColor
	OpRGBGetBrightness
	OpRGBGetExact

	OpCCTSet
	OpCCTSetTemperature
	OpCCTSetBrightness
	OpCCTGetTemperature
	OpCCTGetBrightness

	OpMonoSet
	OpMonoGet
)

var opNames = map[Op]string{
	OpOn:                 "on",
	OpOff:                "off",
	OpGetAddress:         "get-address",
	OpGetPort:            "get-port",
	OpIsOn:               "is-on",
	OpRGBSet:             "rgb-set",
	OpRGBSetExact:        "rgb-set-exact",
	OpRGBSetColor:        "rgb-set-color",
	OpRGBSetBrightness:   "rgb-set-brightness",
	OpRGBGetColor:        "rgb-get-color",
	OpRGBGetBrightness:   "rgb-get-brightness",
	OpRGBGetExact:        "rgb-get-exact",
	OpCCTSet:             "cct-set",
	OpCCTSetTemperature:  "cct-set-temperature",
	OpCCTSetBrightness:   "cct-set-brightness",
	OpCCTGetTemperature:  "cct-get-temperature",
	OpCCTGetBrightness:   "cct-get-brightness",
	OpMonoSet:            "mono-set",
	OpMonoGet:            "mono-get",
}

// String returns the operation's wire-friendly name.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "unknown"
}

// Command is an immutable, device-agnostic command value. Only the argument
// fields the operation uses are meaningful; use the constructors.
type Command struct {
	Op         Op
	Color      color.RGB
	Brightness float64
	Kelvin     uint16
}

// On turns the device on.
func On() Command { return Command{Op: OpOn} }

// Off turns the device off.
func Off() Command { return Command{Op: OpOff} }

// GetAddress reads the device's IP address.
func GetAddress() Command { return Command{Op: OpGetAddress} }

// GetPort reads the device's control port.
func GetPort() Command { return Command{Op: OpGetPort} }

// IsOn reads the cached power state.
func IsOn() Command { return Command{Op: OpIsOn} }

// RGBSet sets color and brightness.
func RGBSet(c color.RGB, brightness float64) Command {
	return Command{Op: OpRGBSet, Color: c, Brightness: brightness}
}

// RGBSetExact sets the color to exact channel values.
func RGBSetExact(c color.RGB) Command { return Command{Op: OpRGBSetExact, Color: c} }

// RGBSetColor sets the color, keeping the current brightness.
func RGBSetColor(c color.RGB) Command { return Command{Op: OpRGBSetColor, Color: c} }

// RGBSetBrightness sets the brightness, keeping the current color.
func RGBSetBrightness(brightness float64) Command {
	return Command{Op: OpRGBSetBrightness, Brightness: brightness}
}

// RGBGetColor reads the cached color at full brightness.
func RGBGetColor() Command { return Command{Op: OpRGBGetColor} }

// RGBGetBrightness reads the cached RGB brightness.
func RGBGetBrightness() Command { return Command{Op: OpRGBGetBrightness} }

// RGBGetExact reads the cached color exactly as reported.
func RGBGetExact() Command { return Command{Op: OpRGBGetExact} }

// CCTSet sets color temperature and brightness.
func CCTSet(kelvin uint16, brightness float64) Command {
	return Command{Op: OpCCTSet, Kelvin: kelvin, Brightness: brightness}
}

// CCTSetTemperature sets the temperature, keeping the current brightness.
func CCTSetTemperature(kelvin uint16) Command {
	return Command{Op: OpCCTSetTemperature, Kelvin: kelvin}
}

// CCTSetBrightness sets the white brightness, keeping the current temperature.
func CCTSetBrightness(brightness float64) Command {
	return Command{Op: OpCCTSetBrightness, Brightness: brightness}
}

// CCTGetTemperature reads the cached color temperature.
func CCTGetTemperature() Command { return Command{Op: OpCCTGetTemperature} }

// CCTGetBrightness reads the cached white brightness.
func CCTGetBrightness() Command { return Command{Op: OpCCTGetBrightness} }

// MonoSet sets the single-channel brightness.
func MonoSet(brightness float64) Command {
	return Command{Op: OpMonoSet, Brightness: brightness}
}

// MonoGet reads the cached single-channel brightness.
func MonoGet() Command { return Command{Op: OpMonoGet} }
