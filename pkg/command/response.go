package command

import (
	"fmt"
	"net/netip"

	"github.com/homectl/homectl-go/pkg/color"
)

// ResponseKind identifies the value a Response carries.
type ResponseKind int

// Response kinds.
const (
	ResponseColor ResponseKind = iota
	ResponseBrightness
	ResponseTemperature
	ResponseIsOn
	ResponseAddress
	ResponsePort
)

// Response is the value a getter command produced. Commands that only
// mutate state produce none.
type Response struct {
	Kind ResponseKind

	Color      color.RGB
	Brightness float64
	Kelvin     uint16
	On         bool
	Address    netip.Addr
	Port       uint16
}

// String formats the carried value for display. Brightness fractions are
// shown as whole percentages.
func (r Response) String() string {
	switch r.Kind {
	case ResponseColor:
		return r.Color.String()
	case ResponseBrightness:
		return fmt.Sprintf("%d", int(100*r.Brightness))
	case ResponseTemperature:
		return fmt.Sprintf("%d", r.Kelvin)
	case ResponseIsOn:
		return fmt.Sprintf("%t", r.On)
	case ResponseAddress:
		return r.Address.String()
	case ResponsePort:
		return fmt.Sprintf("%d", r.Port)
	default:
		return "unknown"
	}
}
