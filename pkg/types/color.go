package types

import "math"

// Color is an r, g, b triple with channels in [0, 255]. Like Vector it is
// a value type; arithmetic clamps back into channel range.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// RGB constructs a color, clamping each channel into [0, 255].
func RGB(r, g, b float64) Color {
	return Color{R: clampChannel(r), G: clampChannel(g), B: clampChannel(b)}
}

// White is full-intensity white, the default light color.
var White = Color{R: 255, G: 255, B: 255}

func clampChannel(c float64) float64 {
	if c < 0 || math.IsNaN(c) {
		return 0
	}
	if c > 255 {
		return 255
	}
	return c
}

// HSV constructs a color from hue in degrees (wrapped into [0, 360)) and
// saturation/value in [0, 1].
func HSV(h, s, v float64) Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}

	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return RGB((r+m)*255, (g+m)*255, (b+m)*255)
}

// ColorFromVector clamps a vector's components into channel range.
func ColorFromVector(v Vector) Color {
	return RGB(v.X, v.Y, v.Z)
}

// Vec returns the color's channels as a plain vector.
func (c Color) Vec() Vector {
	return Vector{X: c.R, Y: c.G, Z: c.B}
}

// Add returns the clamped componentwise sum.
func (c Color) Add(o Color) Color {
	return RGB(c.R+o.R, c.G+o.G, c.B+o.B)
}

// Scale multiplies every channel by s, clamping the result.
func (c Color) Scale(s float64) Color {
	return RGB(c.R*s, c.G*s, c.B*s)
}

// MulVec scales each channel by the matching vector component.
func (c Color) MulVec(v Vector) Color {
	return RGB(c.R*v.X, c.G*v.Y, c.B*v.Z)
}
