package stdlib

import (
	"github.com/lemonberrylabs/scenescript/pkg/types"
)

// registerNoise registers the perlin noise builtin.
func (r *Registry) registerNoise() {
	r.Register("perlin", r.perlinNoise)
}

// perlinNoise samples the registry's noise field in two or three
// dimensions. The field is seeded once at registry construction so a
// script samples a stable surface across calls.
func (r *Registry) perlinNoise(args []types.Value) (types.Value, error) {
	if err := requireArgs("perlin", args, 2, 3); err != nil {
		return types.Unit, err
	}
	x, err := argNumber("perlin", args, 0)
	if err != nil {
		return types.Unit, err
	}
	y, err := argNumber("perlin", args, 1)
	if err != nil {
		return types.Unit, err
	}
	if len(args) == 2 {
		return types.NewNumber(r.noise.Noise2D(x, y)), nil
	}
	z, err := argNumber("perlin", args, 2)
	if err != nil {
		return types.Unit, err
	}
	return types.NewNumber(r.noise.Noise3D(x, y, z)), nil
}
