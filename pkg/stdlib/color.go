package stdlib

import (
	"github.com/lemonberrylabs/scenescript/pkg/types"
)

// registerColor registers the color constructors. rgb is an alias
// for color; both clamp channels to [0, 255].
func (r *Registry) registerColor() {
	r.Register("color", colorRGB("color"))
	r.Register("rgb", colorRGB("rgb"))
	r.Register("hsv", colorHSV)
}

func colorRGB(name string) BuiltinFunc {
	return func(args []types.Value) (types.Value, error) {
		if err := requireArgs(name, args, 3, 3); err != nil {
			return types.Unit, err
		}
		red, err := argNumber(name, args, 0)
		if err != nil {
			return types.Unit, err
		}
		green, err := argNumber(name, args, 1)
		if err != nil {
			return types.Unit, err
		}
		blue, err := argNumber(name, args, 2)
		if err != nil {
			return types.Unit, err
		}
		return types.NewColor(types.RGB(red, green, blue)), nil
	}
}

func colorHSV(args []types.Value) (types.Value, error) {
	if err := requireArgs("hsv", args, 3, 3); err != nil {
		return types.Unit, err
	}
	h, err := argNumber("hsv", args, 0)
	if err != nil {
		return types.Unit, err
	}
	s, err := argNumber("hsv", args, 1)
	if err != nil {
		return types.Unit, err
	}
	v, err := argNumber("hsv", args, 2)
	if err != nil {
		return types.Unit, err
	}
	return types.NewColor(types.HSV(h, s, v)), nil
}
