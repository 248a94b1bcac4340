package lednet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"time"

	"github.com/google/uuid"

	"github.com/homectl/homectl-go/pkg/cct"
	"github.com/homectl/homectl-go/pkg/color"
	"github.com/homectl/homectl-go/pkg/device"
	"github.com/homectl/homectl-go/pkg/protolog"
	"github.com/homectl/homectl-go/pkg/wire"
)

// Protocol constants.
const (
	// ControlPort is the TCP port devices accept command frames on.
	ControlPort = 5577

	// DiscoveryPort is the UDP port devices answer discovery probes on.
	DiscoveryPort = 48899

	// ProbeMessage is the fixed ASCII discovery payload.
	ProbeMessage = "HF-A11ASSISTHREAD"

	// DefaultTimeout bounds every network read.
	DefaultTimeout = 2 * time.Second
)

// supportedModels is the allowlist of model identifiers this implementation
// has been verified against.
var supportedModels = []string{
	"HF-LPB100-ZJ200",
}

// SupportedModel reports whether the given model identifier is on the
// allowlist of verified hardware.
func SupportedModel(id string) bool {
	for _, m := range supportedModels {
		if m == id {
			return true
		}
	}
	return false
}

// ErrUnexpectedReply indicates the device echoed something other than the
// expected acknowledgment.
var ErrUnexpectedReply = errors.New("unexpected reply from device")

// DialFunc opens the control connection. Overridable for tests.
type DialFunc func(addr string, timeout time.Duration) (net.Conn, error)

func defaultDial(addr string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("tcp", addr, timeout)
}

// Option configures a Device.
type Option func(*Device)

// WithTimeout sets the per-read network timeout.
func WithTimeout(d time.Duration) Option {
	return func(dev *Device) { dev.timeout = d }
}

// WithLogger attaches a protocol event logger.
func WithLogger(l protolog.Logger) Option {
	return func(dev *Device) {
		if l != nil {
			dev.logger = l
		}
	}
}

// WithDialer replaces the connection dialer.
func WithDialer(dial DialFunc) Option {
	return func(dev *Device) {
		if dial != nil {
			dev.dial = dial
		}
	}
}

// Device is one LEDNET controller and its shadow state.
type Device struct {
	addr    netip.AddrPort
	model   string
	timeout time.Duration
	logger  protolog.Logger
	dial    DialFunc

	isOn           bool
	rgb            color.RGB
	warm, cold     byte
	rgbBrightness  float64
	cctTemperature uint16
	cctBrightness  float64
}

// New creates a Device for the given control address. The shadow state
// starts empty; call Refresh before reading it.
func New(addr netip.AddrPort, model string, opts ...Option) *Device {
	d := &Device{
		addr:    addr,
		model:   model,
		timeout: DefaultTimeout,
		logger:  protolog.NoopLogger{},
		dial:    defaultDial,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Kind identifies the device for capability dispatch.
func (d *Device) Kind() device.Kind { return device.KindLEDNET }

// Address returns the device's IP address.
func (d *Device) Address() netip.Addr { return d.addr.Addr() }

// Port returns the control port.
func (d *Device) Port() uint16 { return d.addr.Port() }

// Model returns the device's model identifier.
func (d *Device) Model() string { return d.model }

// Name returns "LEDNET:" followed by the model identifier.
func (d *Device) Name() string { return "LEDNET:" + d.model }

// IsOn reports the cached power state.
func (d *Device) IsOn() bool { return d.isOn }

// String formats the device and its shadow state on one line.
func (d *Device) String() string {
	power := "OFF"
	if d.isOn {
		power = "ON"
	}
	return fmt.Sprintf("%s -- Address: %s Power: %s RGB: [%s @ %d%%] CCT: [%dK @ %d%%]",
		d.Name(), d.addr, power,
		d.RGBColor(), int(100*d.rgbBrightness),
		d.cctTemperature, int(100*d.cctBrightness))
}

// Refresh queries the device's state and updates the shadow state. Any I/O
// failure, timeout or checksum mismatch is returned as is.
func (d *Device) Refresh() error {
	reply, err := d.exchange("refresh", wire.StateQueryFrame(), wire.StateReplyLen)
	if err != nil {
		return err
	}

	state, err := wire.ParseState(reply)
	if err != nil {
		d.logger.Log(protolog.NewErrorEvent("", d.addr.String(), "refresh", err))
		return err
	}

	d.isOn = state.On
	d.rgb = color.RGB{R: state.R, G: state.G, B: state.B}
	d.warm, d.cold = state.Warm, state.Cold
	d.rgbBrightness = d.rgb.Brightness()
	d.cctTemperature = cct.ToKelvin(state.Warm, state.Cold)
	d.cctBrightness = cct.Brightness(state.Warm, state.Cold)
	return nil
}

// SetOn turns the device on or off, validating the echoed acknowledgment.
func (d *Device) SetOn(on bool) error {
	if err := d.writeCommand(wire.PowerFrame(on), wire.PowerReply(on)); err != nil {
		return err
	}
	return d.Refresh()
}

// RGBSet sets color and brightness. The brightness replaces the HSV value
// channel of the color and is clamped to [0, 1].
func (d *Device) RGBSet(c color.RGB, brightness float64) error {
	return d.RGBSetExact(c.AtValue(brightness))
}

// RGBSetExact sets the color to the exact channel values given.
func (d *Device) RGBSetExact(c color.RGB) error {
	frame := wire.ColorFrame(c.R, c.G, c.B, 0, 0, wire.MaskColors)
	if err := d.writeCommand(frame, nil); err != nil {
		return err
	}
	return d.Refresh()
}

// RGBSetColor sets the color, first dimming it to the previously set
// brightness.
func (d *Device) RGBSetColor(c color.RGB) error {
	if err := d.Refresh(); err != nil {
		return err
	}
	return d.RGBSet(c, d.rgbBrightness)
}

// RGBSetBrightness sets the brightness, keeping the current color.
func (d *Device) RGBSetBrightness(brightness float64) error {
	if err := d.Refresh(); err != nil {
		return err
	}
	return d.RGBSet(d.RGBColor(), brightness)
}

// RGBColor returns the cached color at full brightness.
func (d *Device) RGBColor() color.RGB { return d.rgb.Full() }

// RGBBrightness returns the cached RGB brightness fraction.
func (d *Device) RGBBrightness() float64 { return d.rgbBrightness }

// RGBExact returns the cached color exactly as the device reports it.
func (d *Device) RGBExact() color.RGB { return d.rgb }

// CCTSet sets white color temperature and brightness. The temperature is
// clamped to the supported range, the brightness to [0, 1].
func (d *Device) CCTSet(kelvin uint16, brightness float64) error {
	warm, cold := cct.ToWarmCold(kelvin)
	warm, cold = cct.Scale(warm, cold, brightness)
	frame := wire.ColorFrame(0, 0, 0, warm, cold, wire.MaskWhites)
	if err := d.writeCommand(frame, nil); err != nil {
		return err
	}
	return d.Refresh()
}

// CCTSetTemperature sets the color temperature, keeping the previously set
// brightness.
func (d *Device) CCTSetTemperature(kelvin uint16) error {
	if err := d.Refresh(); err != nil {
		return err
	}
	return d.CCTSet(kelvin, d.cctBrightness)
}

// CCTSetBrightness sets the white brightness, keeping the previously set
// color temperature.
func (d *Device) CCTSetBrightness(brightness float64) error {
	if err := d.Refresh(); err != nil {
		return err
	}
	return d.CCTSet(d.cctTemperature, brightness)
}

// CCTTemperature returns the cached color temperature in Kelvin.
func (d *Device) CCTTemperature() uint16 { return d.cctTemperature }

// CCTBrightness returns the cached white brightness fraction.
func (d *Device) CCTBrightness() float64 { return d.cctBrightness }

// SetWarmCold writes the warm and cold white channels directly, bypassing
// the Kelvin conversion.
func (d *Device) SetWarmCold(warm, cold byte) error {
	frame := wire.ColorFrame(0, 0, 0, warm, cold, wire.MaskWhites)
	if err := d.writeCommand(frame, nil); err != nil {
		return err
	}
	return d.Refresh()
}

// SetRGBCCT drives the color and white outputs simultaneously.
func (d *Device) SetRGBCCT(c color.RGB, kelvin uint16) error {
	warm, cold := cct.ToWarmCold(kelvin)
	frame := wire.ColorFrame(c.R, c.G, c.B, warm, cold, wire.MaskBoth)
	if err := d.writeCommand(frame, nil); err != nil {
		return err
	}
	return d.Refresh()
}

// writeCommand sends a command frame and validates the echoed reply. An
// empty expected reply means fire and forget: nothing is read back.
func (d *Device) writeCommand(frame, expected []byte) error {
	reply, err := d.exchange("write", frame, len(expected))
	if err != nil {
		return err
	}
	if len(expected) > 0 && !bytes.Equal(reply, expected) {
		err := fmt.Errorf("%w: got % x, want % x", ErrUnexpectedReply, reply, expected)
		d.logger.Log(protolog.NewErrorEvent("", d.addr.String(), "write", err))
		return err
	}
	return nil
}

// exchange opens a fresh connection, writes one frame and reads exactly
// replyLen bytes within the configured timeout.
func (d *Device) exchange(op string, frame []byte, replyLen int) ([]byte, error) {
	exchangeID := uuid.NewString()
	addr := d.addr.String()

	conn, err := d.dial(addr, d.timeout)
	if err != nil {
		err = fmt.Errorf("connect %s: %w", addr, err)
		d.logger.Log(protolog.NewErrorEvent(exchangeID, addr, op, err))
		return nil, err
	}
	defer conn.Close()

	d.logger.Log(protolog.NewFrameEvent(exchangeID, addr, protolog.DirectionOut, frame))
	if _, err := conn.Write(frame); err != nil {
		err = fmt.Errorf("write to %s: %w", addr, err)
		d.logger.Log(protolog.NewErrorEvent(exchangeID, addr, op, err))
		return nil, err
	}

	if replyLen == 0 {
		return nil, nil
	}

	if err := conn.SetReadDeadline(time.Now().Add(d.timeout)); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}

	reply := make([]byte, replyLen)
	if _, err := io.ReadFull(conn, reply); err != nil {
		err = fmt.Errorf("read from %s: %w", addr, err)
		d.logger.Log(protolog.NewErrorEvent(exchangeID, addr, op, err))
		return nil, err
	}

	d.logger.Log(protolog.NewFrameEvent(exchangeID, addr, protolog.DirectionIn, reply))
	return reply, nil
}

// Compile-time capability checks.
var (
	_ device.Device = (*Device)(nil)
	_ device.RGB    = (*Device)(nil)
	_ device.CCT    = (*Device)(nil)
)
