// Package stdlib implements the scenescript builtin function library.
package stdlib

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/aquilax/go-perlin"

	"github.com/lemonberrylabs/scenescript/pkg/types"
)

// BuiltinFunc is a builtin function signature. Builtins validate their
// own arity and argument types; they never coerce.
type BuiltinFunc func(args []types.Value) (types.Value, error)

// Config carries the host devices impure builtins use. Zero-value
// fields fall back to stdout, an entropy-seeded generator, and the
// default noise table.
type Config struct {
	Output    io.Writer
	Rand      *rand.Rand
	NoiseSeed int64
}

// DefaultNoiseSeed is the perlin permutation seed used when Config
// leaves NoiseSeed zero. A fixed default keeps perlin() output stable
// across runs, so scripts that avoid random() stay deterministic.
const DefaultNoiseSeed = 1

// Perlin smoothing and harmonic settings.
const (
	perlinAlpha      = 2
	perlinBeta       = 2
	perlinIterations = 3
)

// Registry holds every builtin function by name.
type Registry struct {
	funcs map[string]BuiltinFunc
	out   io.Writer
	rng   *rand.Rand
	noise *perlin.Perlin
}

// New creates a registry with every builtin family registered.
func New(cfg Config) *Registry {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	seed := cfg.NoiseSeed
	if seed == 0 {
		seed = DefaultNoiseSeed
	}

	r := &Registry{
		funcs: make(map[string]BuiltinFunc),
		out:   out,
		rng:   rng,
		noise: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinIterations, seed),
	}
	r.registerMath()
	r.registerVector()
	r.registerColor()
	r.registerArray()
	r.registerTexture()
	r.registerNoise()
	r.registerIO()
	return r
}

// Register adds a function to the registry.
func (r *Registry) Register(name string, fn BuiltinFunc) {
	r.funcs[name] = fn
}

// Lookup returns the builtin registered under name.
func (r *Registry) Lookup(name string) (BuiltinFunc, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Call invokes a named builtin.
func (r *Registry) Call(name string, args []types.Value) (types.Value, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return types.Unit, types.NewUnknownFunctionError(name)
	}
	return fn(args)
}

// Names returns every registered name in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// requireArgs checks that the number of args is in range.
func requireArgs(name string, args []types.Value, min, max int) error {
	if len(args) < min || len(args) > max {
		if min == max {
			return types.NewArityError(
				fmt.Sprintf("%s expects %d argument(s), got %d", name, min, len(args)))
		}
		return types.NewArityError(
			fmt.Sprintf("%s expects %d-%d arguments, got %d", name, min, max, len(args)))
	}
	return nil
}

// argNumber extracts a Number argument by position (0-based).
func argNumber(name string, args []types.Value, i int) (float64, error) {
	if args[i].Type() != types.TypeNumber {
		return 0, types.NewTypeMismatchError(
			fmt.Sprintf("%s argument %d must be a number, got %s", name, i+1, args[i].Type()))
	}
	return args[i].AsNumber(), nil
}

// argVector extracts a Vector argument by position.
func argVector(name string, args []types.Value, i int) (types.Vector, error) {
	if args[i].Type() != types.TypeVector {
		return types.Vector{}, types.NewTypeMismatchError(
			fmt.Sprintf("%s argument %d must be a vector, got %s", name, i+1, args[i].Type()))
	}
	return args[i].AsVector(), nil
}

// argColor extracts a Color argument by position.
func argColor(name string, args []types.Value, i int) (types.Color, error) {
	if args[i].Type() != types.TypeColor {
		return types.Color{}, types.NewTypeMismatchError(
			fmt.Sprintf("%s argument %d must be a color, got %s", name, i+1, args[i].Type()))
	}
	return args[i].AsColor(), nil
}

// argString extracts a String argument by position.
func argString(name string, args []types.Value, i int) (string, error) {
	if args[i].Type() != types.TypeString {
		return "", types.NewTypeMismatchError(
			fmt.Sprintf("%s argument %d must be a string, got %s", name, i+1, args[i].Type()))
	}
	return args[i].AsString(), nil
}

// argArray extracts an Array argument by position.
func argArray(name string, args []types.Value, i int) (*types.Array, error) {
	if args[i].Type() != types.TypeArray {
		return nil, types.NewTypeMismatchError(
			fmt.Sprintf("%s argument %d must be an array, got %s", name, i+1, args[i].Type()))
	}
	return args[i].AsArray(), nil
}

// argDict extracts a Dictionary argument by position.
func argDict(name string, args []types.Value, i int) (*types.Dict, error) {
	if args[i].Type() != types.TypeDict {
		return nil, types.NewTypeMismatchError(
			fmt.Sprintf("%s argument %d must be a dictionary, got %s", name, i+1, args[i].Type()))
	}
	return args[i].AsDict(), nil
}
