// Package color provides the RGB color value used by the device layer and
// its HSV conversions.
//
// The RGB capability treats brightness as the value channel of the HSV
// representation: setting a color at a brightness means re-emitting the same
// hue and saturation with the value channel replaced.
package color

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB is an 8-bit-per-channel color as the device transmits it.
type RGB struct {
	R, G, B byte
}

// FromHSV builds an RGB color from hue (degrees), saturation and value
// (both fractions in [0, 1]).
func FromHSV(h, s, v float64) RGB {
	if s <= 0 {
		c := byte(math.Round(v * 255))
		return RGB{R: c, G: c, B: c}
	}

	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	hh := h / 60
	i := int(hh)
	f := hh - float64(i)

	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64
	switch i {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return RGB{
		R: byte(math.Round(r * 255)),
		G: byte(math.Round(g * 255)),
		B: byte(math.Round(b * 255)),
	}
}

// HSV returns the hue (degrees), saturation and value of the color.
func (c RGB) HSV() (h, s, v float64) {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	v = max
	if max > 0 {
		s = delta / max
	}

	switch {
	case delta == 0:
		h = 0
	case max == r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case max == g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

// Brightness returns the HSV value channel of the color.
func (c RGB) Brightness() float64 {
	_, _, v := c.HSV()
	return v
}

// AtValue returns the color with the same hue and saturation but the HSV
// value channel replaced. The value is clamped to [0, 1].
func (c RGB) AtValue(v float64) RGB {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	h, s, _ := c.HSV()
	return FromHSV(h, s, v)
}

// Full returns the color at full HSV value, keeping hue and saturation.
func (c RGB) Full() RGB {
	return c.AtValue(1)
}

// String formats the color as "#RRGGBB".
func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Parse reads a color from either "#RRGGBB" (hash optional) or a decimal
// "r,g,b" triple.
func Parse(s string) (RGB, error) {
	s = strings.TrimSpace(s)

	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return RGB{}, fmt.Errorf("invalid color %q: want three components", s)
		}
		var ch [3]byte
		for i, p := range parts {
			n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
			}
			ch[i] = byte(n)
		}
		return RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("invalid color %q: want #RRGGBB", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return RGB{R: byte(n >> 16), G: byte(n >> 8), B: byte(n)}, nil
}
