package types

import "math"

// Vector is an x, y, z triple. Vectors are value types: assignment copies.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec is shorthand for constructing a Vector.
func Vec(x, y, z float64) Vector {
	return Vector{X: x, Y: y, Z: z}
}

// Add returns the componentwise sum.
func (v Vector) Add(o Vector) Vector {
	return Vector{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns the componentwise difference.
func (v Vector) Sub(o Vector) Vector {
	return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Mul returns the componentwise product.
func (v Vector) Mul(o Vector) Vector {
	return Vector{v.X * o.X, v.Y * o.Y, v.Z * o.Z}
}

// Div returns the componentwise quotient.
func (v Vector) Div(o Vector) Vector {
	return Vector{v.X / o.X, v.Y / o.Y, v.Z / o.Z}
}

// Scale multiplies every component by s.
func (v Vector) Scale(s float64) Vector {
	return Vector{v.X * s, v.Y * s, v.Z * s}
}

// AddScalar adds s to every component.
func (v Vector) AddScalar(s float64) Vector {
	return Vector{v.X + s, v.Y + s, v.Z + s}
}

// Neg returns the componentwise negation.
func (v Vector) Neg() Vector {
	return Vector{-v.X, -v.Y, -v.Z}
}

// Dot returns the dot product.
func (v Vector) Dot(o Vector) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the cross product.
func (v Vector) Cross(o Vector) Vector {
	return Vector{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: -v.X*o.Z + v.Z*o.X,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Magnitude returns the vector's length.
func (v Vector) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns the vector divided by its own magnitude.
func (v Vector) Normalize() Vector {
	m := v.Magnitude()
	return Vector{v.X / m, v.Y / m, v.Z / m}
}

// Angle returns the angle in radians between v and o.
func (v Vector) Angle(o Vector) float64 {
	return math.Acos(v.Dot(o) / (v.Magnitude() * o.Magnitude()))
}

// Lerp linearly interpolates toward o by t.
func (v Vector) Lerp(o Vector, t float64) Vector {
	return Vector{
		X: Lerp(v.X, o.X, t),
		Y: Lerp(v.Y, o.Y, t),
		Z: Lerp(v.Z, o.Z, t),
	}
}

// Lerp linearly interpolates between two values.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
