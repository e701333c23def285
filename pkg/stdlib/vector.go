package stdlib

import (
	"github.com/lemonberrylabs/scenescript/pkg/types"
)

// registerVector registers the vector builtins.
func (r *Registry) registerVector() {
	r.Register("vec", vectorVec)
	r.Register("normalize", vectorNormalize)
	r.Register("magnitude", vectorMagnitude)
	r.Register("angle", vectorAngle)
	r.Register("dot", vectorDot)
	r.Register("cross", vectorCross)
}

func vectorVec(args []types.Value) (types.Value, error) {
	if err := requireArgs("vec", args, 3, 3); err != nil {
		return types.Unit, err
	}
	x, err := argNumber("vec", args, 0)
	if err != nil {
		return types.Unit, err
	}
	y, err := argNumber("vec", args, 1)
	if err != nil {
		return types.Unit, err
	}
	z, err := argNumber("vec", args, 2)
	if err != nil {
		return types.Unit, err
	}
	return types.NewVector(types.Vector{X: x, Y: y, Z: z}), nil
}

func vectorNormalize(args []types.Value) (types.Value, error) {
	if err := requireArgs("normalize", args, 1, 1); err != nil {
		return types.Unit, err
	}
	v, err := argVector("normalize", args, 0)
	if err != nil {
		return types.Unit, err
	}
	return types.NewVector(v.Normalize()), nil
}

func vectorMagnitude(args []types.Value) (types.Value, error) {
	if err := requireArgs("magnitude", args, 1, 1); err != nil {
		return types.Unit, err
	}
	v, err := argVector("magnitude", args, 0)
	if err != nil {
		return types.Unit, err
	}
	return types.NewNumber(v.Magnitude()), nil
}

// vectorAngle returns the angle in radians between two vectors.
func vectorAngle(args []types.Value) (types.Value, error) {
	if err := requireArgs("angle", args, 2, 2); err != nil {
		return types.Unit, err
	}
	a, err := argVector("angle", args, 0)
	if err != nil {
		return types.Unit, err
	}
	b, err := argVector("angle", args, 1)
	if err != nil {
		return types.Unit, err
	}
	return types.NewNumber(a.Angle(b)), nil
}

func vectorDot(args []types.Value) (types.Value, error) {
	if err := requireArgs("dot", args, 2, 2); err != nil {
		return types.Unit, err
	}
	a, err := argVector("dot", args, 0)
	if err != nil {
		return types.Unit, err
	}
	b, err := argVector("dot", args, 1)
	if err != nil {
		return types.Unit, err
	}
	return types.NewNumber(a.Dot(b)), nil
}

func vectorCross(args []types.Value) (types.Value, error) {
	if err := requireArgs("cross", args, 2, 2); err != nil {
		return types.Unit, err
	}
	a, err := argVector("cross", args, 0)
	if err != nil {
		return types.Unit, err
	}
	b, err := argVector("cross", args, 1)
	if err != nil {
		return types.Unit, err
	}
	return types.NewVector(a.Cross(b)), nil
}
