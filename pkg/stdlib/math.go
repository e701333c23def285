package stdlib

import (
	"math"

	"github.com/lemonberrylabs/scenescript/pkg/types"
)

// registerMath registers the numeric builtins.
func (r *Registry) registerMath() {
	r.Register("sin", floatFunc("sin", math.Sin))
	r.Register("cos", floatFunc("cos", math.Cos))
	r.Register("tan", floatFunc("tan", math.Tan))
	r.Register("asin", floatFunc("asin", math.Asin))
	r.Register("acos", floatFunc("acos", math.Acos))
	r.Register("atan", floatFunc("atan", math.Atan))
	r.Register("abs", floatFunc("abs", math.Abs))
	r.Register("floor", floatFunc("floor", math.Floor))
	r.Register("ceil", floatFunc("ceil", math.Ceil))
	r.Register("sqrt", floatFunc("sqrt", math.Sqrt))
	r.Register("rad", floatFunc("rad", func(deg float64) float64 { return deg * math.Pi / 180 }))
	r.Register("deg", floatFunc("deg", func(rad float64) float64 { return rad * 180 / math.Pi }))
	r.Register("pow", mathPow)
	r.Register("min", mathMin)
	r.Register("max", mathMax)
	r.Register("clamp", mathClamp)
	r.Register("lerp", mathLerp)
	r.Register("random", r.random)
}

// floatFunc adapts a float64 function to a single-Number builtin.
func floatFunc(name string, f func(float64) float64) BuiltinFunc {
	return func(args []types.Value) (types.Value, error) {
		if err := requireArgs(name, args, 1, 1); err != nil {
			return types.Unit, err
		}
		n, err := argNumber(name, args, 0)
		if err != nil {
			return types.Unit, err
		}
		return types.NewNumber(f(n)), nil
	}
}

func mathPow(args []types.Value) (types.Value, error) {
	if err := requireArgs("pow", args, 2, 2); err != nil {
		return types.Unit, err
	}
	base, err := argNumber("pow", args, 0)
	if err != nil {
		return types.Unit, err
	}
	exp, err := argNumber("pow", args, 1)
	if err != nil {
		return types.Unit, err
	}
	return types.NewNumber(math.Pow(base, exp)), nil
}

func mathMin(args []types.Value) (types.Value, error) {
	if err := requireArgs("min", args, 2, 2); err != nil {
		return types.Unit, err
	}
	a, err := argNumber("min", args, 0)
	if err != nil {
		return types.Unit, err
	}
	b, err := argNumber("min", args, 1)
	if err != nil {
		return types.Unit, err
	}
	return types.NewNumber(math.Min(a, b)), nil
}

func mathMax(args []types.Value) (types.Value, error) {
	if err := requireArgs("max", args, 2, 2); err != nil {
		return types.Unit, err
	}
	a, err := argNumber("max", args, 0)
	if err != nil {
		return types.Unit, err
	}
	b, err := argNumber("max", args, 1)
	if err != nil {
		return types.Unit, err
	}
	return types.NewNumber(math.Max(a, b)), nil
}

func mathClamp(args []types.Value) (types.Value, error) {
	if err := requireArgs("clamp", args, 3, 3); err != nil {
		return types.Unit, err
	}
	x, err := argNumber("clamp", args, 0)
	if err != nil {
		return types.Unit, err
	}
	lo, err := argNumber("clamp", args, 1)
	if err != nil {
		return types.Unit, err
	}
	hi, err := argNumber("clamp", args, 2)
	if err != nil {
		return types.Unit, err
	}
	return types.NewNumber(math.Min(math.Max(x, lo), hi)), nil
}

// mathLerp interpolates between two Numbers or two Vectors.
func mathLerp(args []types.Value) (types.Value, error) {
	if err := requireArgs("lerp", args, 3, 3); err != nil {
		return types.Unit, err
	}
	k, err := argNumber("lerp", args, 2)
	if err != nil {
		return types.Unit, err
	}
	switch {
	case args[0].Type() == types.TypeNumber && args[1].Type() == types.TypeNumber:
		return types.NewNumber(types.Lerp(args[0].AsNumber(), args[1].AsNumber(), k)), nil
	case args[0].Type() == types.TypeVector && args[1].Type() == types.TypeVector:
		return types.NewVector(args[0].AsVector().Lerp(args[1].AsVector(), k)), nil
	}
	return types.Unit, types.NewTypeMismatchError(
		"lerp endpoints must both be numbers or both be vectors")
}

// random returns a uniform Number in [lo, hi].
func (r *Registry) random(args []types.Value) (types.Value, error) {
	if err := requireArgs("random", args, 2, 2); err != nil {
		return types.Unit, err
	}
	lo, err := argNumber("random", args, 0)
	if err != nil {
		return types.Unit, err
	}
	hi, err := argNumber("random", args, 1)
	if err != nil {
		return types.Unit, err
	}
	return types.NewNumber(lo + r.rng.Float64()*(hi-lo)), nil
}
