package command

import (
	"errors"

	"github.com/homectl/homectl-go/pkg/device"
)

// ErrNotSupported indicates no capability declared by the device's kind
// accepts the command. Handlers also use it internally as the "try the next
// capability" signal.
var ErrNotSupported = errors.New("command not supported")

// Capability names a dispatchable handler group.
type Capability int

// Capabilities, in no particular order. The per-kind declaration decides
// dispatch order.
const (
	CapabilityRGB Capability = iota
	CapabilityCCT
	CapabilityMono
	CapabilityBase
)

// String returns the capability name.
func (c Capability) String() string {
	switch c {
	case CapabilityRGB:
		return "rgb"
	case CapabilityCCT:
		return "cct"
	case CapabilityMono:
		return "mono"
	case CapabilityBase:
		return "base"
	default:
		return "unknown"
	}
}

// handlerFunc executes a command against a device or refuses it with
// ErrNotSupported.
type handlerFunc func(dev device.Device, cmd Command) (*Response, error)

// capabilityHandlers maps each capability to its handler.
var capabilityHandlers = map[Capability]handlerFunc{
	CapabilityRGB:  execRGB,
	CapabilityCCT:  execCCT,
	CapabilityMono: execMono,
	CapabilityBase: execBase,
}

// capabilityOrder declares, per device kind, which capabilities its
// commands dispatch through and in what order. The base capability is
// implicit and appended last at startup: device-specific capabilities get
// first refusal, universal base operations are the fallback.
var capabilityOrder = map[device.Kind][]Capability{
	device.KindLEDNET: {CapabilityRGB, CapabilityCCT},
}

func init() {
	for kind, caps := range capabilityOrder {
		capabilityOrder[kind] = append(caps, CapabilityBase)
	}
}

// Capabilities returns the dispatch order for a device kind, base last.
// Kinds without a declaration fall back to the base capability alone.
func Capabilities(kind device.Kind) []Capability {
	caps, ok := capabilityOrder[kind]
	if !ok {
		return []Capability{CapabilityBase}
	}
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// Exec routes a command to the device through its declared capabilities.
// The first capability that accepts the command terminates dispatch; a
// handler error other than ErrNotSupported aborts immediately and is
// surfaced as is. If every capability refuses, Exec returns ErrNotSupported.
func Exec(dev device.Device, cmd Command) (*Response, error) {
	for _, capability := range Capabilities(dev.Kind()) {
		resp, err := capabilityHandlers[capability](dev, cmd)
		if errors.Is(err, ErrNotSupported) {
			continue
		}
		return resp, err
	}
	return nil, ErrNotSupported
}

func execBase(dev device.Device, cmd Command) (*Response, error) {
	switch cmd.Op {
	case OpOn:
		return nil, dev.SetOn(true)
	case OpOff:
		return nil, dev.SetOn(false)
	case OpGetAddress:
		return &Response{Kind: ResponseAddress, Address: dev.Address()}, nil
	case OpGetPort:
		return &Response{Kind: ResponsePort, Port: dev.Port()}, nil
	case OpIsOn:
		return &Response{Kind: ResponseIsOn, On: dev.IsOn()}, nil
	default:
		return nil, ErrNotSupported
	}
}

func execRGB(dev device.Device, cmd Command) (*Response, error) {
	rgb, ok := dev.(device.RGB)
	if !ok {
		return nil, ErrNotSupported
	}

	switch cmd.Op {
	case OpRGBSet:
		return nil, rgb.RGBSet(cmd.Color, cmd.Brightness)
	case OpRGBSetExact:
		return nil, rgb.RGBSetExact(cmd.Color)
	case OpRGBSetColor:
		return nil, rgb.RGBSetColor(cmd.Color)
	case OpRGBSetBrightness:
		return nil, rgb.RGBSetBrightness(cmd.Brightness)
	case OpRGBGetColor:
		return &Response{Kind: ResponseColor, Color: rgb.RGBColor()}, nil
	case OpRGBGetBrightness:
		return &Response{Kind: ResponseBrightness, Brightness: rgb.RGBBrightness()}, nil
	case OpRGBGetExact:
		return &Response{Kind: ResponseColor, Color: rgb.RGBExact()}, nil
	default:
		return nil, ErrNotSupported
	}
}

func execCCT(dev device.Device, cmd Command) (*Response, error) {
	cctDev, ok := dev.(device.CCT)
	if !ok {
		return nil, ErrNotSupported
	}

	switch cmd.Op {
	case OpCCTSet:
		return nil, cctDev.CCTSet(cmd.Kelvin, cmd.Brightness)
	case OpCCTSetTemperature:
		return nil, cctDev.CCTSetTemperature(cmd.Kelvin)
	case OpCCTSetBrightness:
		return nil, cctDev.CCTSetBrightness(cmd.Brightness)
	case OpCCTGetTemperature:
		return &Response{Kind: ResponseTemperature, Kelvin: cctDev.CCTTemperature()}, nil
	case OpCCTGetBrightness:
		return &Response{Kind: ResponseBrightness, Brightness: cctDev.CCTBrightness()}, nil
	default:
		return nil, ErrNotSupported
	}
}

func execMono(dev device.Device, cmd Command) (*Response, error) {
	mono, ok := dev.(device.Mono)
	if !ok {
		return nil, ErrNotSupported
	}

	switch cmd.Op {
	case OpMonoSet:
		return nil, mono.MonoSet(cmd.Brightness)
	case OpMonoGet:
		return &Response{Kind: ResponseBrightness, Brightness: mono.Mono()}, nil
	default:
		return nil, ErrNotSupported
	}
}
