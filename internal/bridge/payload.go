package bridge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/homectl/homectl-go/pkg/color"
	"github.com/homectl/homectl-go/pkg/command"
	"github.com/homectl/homectl-go/pkg/device"
)

// ErrEmptyPayload indicates a set payload that names no field at all.
var ErrEmptyPayload = errors.New("payload sets nothing")

// setPayload is the JSON body accepted on <prefix>/set/<device-ip>.
// Absent fields leave the corresponding device state alone.
type setPayload struct {
	On         *bool   `json:"on,omitempty"`
	Color      *string `json:"color,omitempty"`
	Brightness *int    `json:"brightness,omitempty"` // percent, 0..100
	Kelvin     *uint16 `json:"kelvin,omitempty"`
}

// parseSetPayload decodes a payload and translates it into the commands to
// run, in order. Power first, then color, then white temperature.
func parseSetPayload(data []byte) ([]command.Command, error) {
	var p setPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	var cmds []command.Command

	if p.On != nil {
		if *p.On {
			cmds = append(cmds, command.On())
		} else {
			cmds = append(cmds, command.Off())
		}
	}

	if p.Color != nil {
		c, err := color.Parse(*p.Color)
		if err != nil {
			return nil, fmt.Errorf("parse color: %w", err)
		}
		if p.Brightness != nil {
			cmds = append(cmds, command.RGBSet(c, brightnessFraction(*p.Brightness)))
		} else {
			cmds = append(cmds, command.RGBSetColor(c))
		}
	}

	if p.Kelvin != nil {
		if p.Brightness != nil {
			cmds = append(cmds, command.CCTSet(*p.Kelvin, brightnessFraction(*p.Brightness)))
		} else {
			cmds = append(cmds, command.CCTSetTemperature(*p.Kelvin))
		}
	}

	// A bare brightness adjusts whatever mode the light is in; the RGB
	// capability gets first refusal via the dispatch order.
	if p.Brightness != nil && p.Color == nil && p.Kelvin == nil {
		cmds = append(cmds, command.RGBSetBrightness(brightnessFraction(*p.Brightness)))
	}

	if len(cmds) == 0 {
		return nil, ErrEmptyPayload
	}
	return cmds, nil
}

func brightnessFraction(percent int) float64 {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 1
	}
	return float64(percent) / 100
}

// statusPayload is the JSON body published on <prefix>/status/<device-ip>.
type statusPayload struct {
	Name       string `json:"name"`
	On         bool   `json:"on"`
	Color      string `json:"color,omitempty"`
	Brightness int    `json:"brightness"`
	Kelvin     uint16 `json:"kelvin,omitempty"`
}

// statusFor reads the device's cached state into a publishable payload.
// Capabilities the device lacks leave their fields empty.
func statusFor(dev device.Device) ([]byte, error) {
	status := statusPayload{
		Name: dev.Name(),
		On:   dev.IsOn(),
	}

	if resp, err := command.Exec(dev, command.RGBGetColor()); err == nil {
		status.Color = resp.Color.String()
	}
	if resp, err := command.Exec(dev, command.RGBGetBrightness()); err == nil {
		status.Brightness = int(100 * resp.Brightness)
	}
	if resp, err := command.Exec(dev, command.CCTGetTemperature()); err == nil {
		status.Kelvin = resp.Kelvin
	}

	return json.Marshal(status)
}
