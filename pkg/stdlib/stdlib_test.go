package stdlib

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/lemonberrylabs/scenescript/pkg/types"
)

func num(n float64) types.Value    { return types.NewNumber(n) }
func str(s string) types.Value     { return types.NewString(s) }
func vec(x, y, z float64) types.Value {
	return types.NewVector(types.Vec(x, y, z))
}

func call(t *testing.T, r *Registry, name string, args ...types.Value) types.Value {
	t.Helper()
	v, err := r.Call(name, args)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return v
}

func TestMathBuiltins(t *testing.T) {
	r := New(Config{})

	tests := []struct {
		name string
		args []types.Value
		want float64
	}{
		{"sin", []types.Value{num(0)}, 0},
		{"cos", []types.Value{num(0)}, 1},
		{"abs", []types.Value{num(-3)}, 3},
		{"floor", []types.Value{num(2.9)}, 2},
		{"ceil", []types.Value{num(2.1)}, 3},
		{"sqrt", []types.Value{num(16)}, 4},
		{"rad", []types.Value{num(180)}, math.Pi},
		{"deg", []types.Value{num(math.Pi)}, 180},
		{"pow", []types.Value{num(2), num(10)}, 1024},
		{"min", []types.Value{num(3), num(7)}, 3},
		{"max", []types.Value{num(3), num(7)}, 7},
		{"clamp", []types.Value{num(12), num(0), num(10)}, 10},
		{"lerp", []types.Value{num(0), num(10), num(0.5)}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := call(t, r, tt.name, tt.args...)
			if got := v.AsNumber(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestLerpVectors(t *testing.T) {
	r := New(Config{})
	v := call(t, r, "lerp", vec(0, 0, 0), vec(10, 20, 30), num(0.5))
	if v.AsVector() != types.Vec(5, 10, 15) {
		t.Errorf("got %v", v.AsVector())
	}
}

func TestRandomRangeAndSeed(t *testing.T) {
	r := New(Config{Rand: rand.New(rand.NewSource(42))})
	for i := 0; i < 100; i++ {
		v := call(t, r, "random", num(2), num(5))
		if n := v.AsNumber(); n < 2 || n > 5 {
			t.Fatalf("random out of range: %v", n)
		}
	}

	// Identical seeds produce identical sequences.
	a := New(Config{Rand: rand.New(rand.NewSource(7))})
	b := New(Config{Rand: rand.New(rand.NewSource(7))})
	for i := 0; i < 10; i++ {
		x := call(t, a, "random", num(0), num(1)).AsNumber()
		y := call(t, b, "random", num(0), num(1)).AsNumber()
		if x != y {
			t.Fatalf("seeded streams diverged at %d: %v vs %v", i, x, y)
		}
	}
}

func TestVectorBuiltins(t *testing.T) {
	r := New(Config{})

	if v := call(t, r, "vec", num(1), num(2), num(3)); v.AsVector() != types.Vec(1, 2, 3) {
		t.Errorf("vec: got %v", v.AsVector())
	}
	if v := call(t, r, "magnitude", vec(3, 4, 0)); v.AsNumber() != 5 {
		t.Errorf("magnitude: got %v", v.AsNumber())
	}
	if v := call(t, r, "normalize", vec(10, 0, 0)); v.AsVector() != types.Vec(1, 0, 0) {
		t.Errorf("normalize: got %v", v.AsVector())
	}
	if v := call(t, r, "dot", vec(1, 2, 3), vec(4, 5, 6)); v.AsNumber() != 32 {
		t.Errorf("dot: got %v", v.AsNumber())
	}
	if v := call(t, r, "cross", vec(1, 0, 0), vec(0, 1, 0)); v.AsVector() != types.Vec(0, 0, 1) {
		t.Errorf("cross: got %v", v.AsVector())
	}
	if v := call(t, r, "angle", vec(1, 0, 0), vec(0, 1, 0)); math.Abs(v.AsNumber()-math.Pi/2) > 1e-12 {
		t.Errorf("angle: got %v", v.AsNumber())
	}
}

func TestColorBuiltins(t *testing.T) {
	r := New(Config{})

	tests := []struct {
		name string
		args []types.Value
		want types.Color
	}{
		{"rgb", []types.Value{num(10), num(20), num(30)}, types.Color{R: 10, G: 20, B: 30}},
		{"color", []types.Value{num(300), num(-5), num(128)}, types.Color{R: 255, G: 0, B: 128}},
		{"hsv", []types.Value{num(0), num(1), num(1)}, types.Color{R: 255, G: 0, B: 0}},
		{"hsv", []types.Value{num(120), num(1), num(1)}, types.Color{R: 0, G: 255, B: 0}},
		{"hsv", []types.Value{num(240), num(1), num(1)}, types.Color{R: 0, G: 0, B: 255}},
		{"hsv", []types.Value{num(480), num(1), num(1)}, types.Color{R: 0, G: 255, B: 0}}, // hue wraps
		{"hsv", []types.Value{num(60), num(0), num(1)}, types.Color{R: 255, G: 255, B: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := call(t, r, tt.name, tt.args...)
			if got := v.AsColor(); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArrayBuiltins(t *testing.T) {
	r := New(Config{})

	arr := types.NewArrayValue()
	arr.Push(num(1))
	arr.Push(num(2))
	av := types.NewArray(arr)

	ret := call(t, r, "push", av, num(3))
	if ret.AsArray() != arr {
		t.Error("push must return the same array")
	}
	if arr.Len() != 3 {
		t.Fatalf("len after push: %d", arr.Len())
	}

	call(t, r, "set", av, num(0), num(99))
	if arr.Elems[0].AsNumber() != 99 {
		t.Errorf("set did not mutate in place: %v", arr.Elems[0])
	}

	if _, err := r.Call("set", []types.Value{av, num(10), num(0)}); !types.IsCode(err, types.CodeIndexError) {
		t.Errorf("set out of range: expected IndexError, got %v", err)
	}
}

func TestLenOverloads(t *testing.T) {
	r := New(Config{})

	arr := types.NewArrayValue()
	arr.Push(num(1))

	d := types.NewDict()
	d.Set("a", num(1))
	d.Set("b", num(2))

	tests := []struct {
		name string
		arg  types.Value
		want float64
	}{
		{"array", types.NewArray(arr), 1},
		{"dict", types.NewDictValue(d), 2},
		{"string", str("héllo"), 5}, // runes, not bytes
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := call(t, r, "len", tt.arg); v.AsNumber() != tt.want {
				t.Errorf("got %v, want %v", v.AsNumber(), tt.want)
			}
		})
	}

	if _, err := r.Call("len", []types.Value{num(5)}); !types.IsCode(err, types.CodeTypeMismatchError) {
		t.Errorf("len of number: expected TypeMismatchError, got %v", err)
	}
}

func TestDictBuiltins(t *testing.T) {
	r := New(Config{})

	d := types.NewDict()
	d.Set("b", num(1))
	d.Set("a", num(2))
	dv := types.NewDictValue(d)

	keys := call(t, r, "keys", dv).AsArray()
	if keys.Len() != 2 || keys.Elems[0].AsString() != "b" || keys.Elems[1].AsString() != "a" {
		t.Errorf("keys must preserve insertion order, got %v", keys.Elems)
	}

	if !call(t, r, "has", dv, str("a")).AsBool() {
		t.Error("has existing key")
	}
	if call(t, r, "has", dv, str("z")).AsBool() {
		t.Error("has missing key")
	}
}

func TestTextureBuiltins(t *testing.T) {
	r := New(Config{})
	red := types.NewColor(types.Color{R: 255})
	blue := types.NewColor(types.Color{B: 255})

	d := call(t, r, "solid", red).AsDict()
	if typ, _ := d.Get("type"); typ.AsString() != "solid" {
		t.Errorf("solid type: %v", typ)
	}
	if c, ok := d.Get("color"); !ok || c.AsColor() != (types.Color{R: 255}) {
		t.Errorf("solid color: %v", c)
	}

	d = call(t, r, "checkerboard", red, blue).AsDict()
	if typ, _ := d.Get("type"); typ.AsString() != "checkerboard" {
		t.Errorf("checkerboard type: %v", typ)
	}
	if p, _ := d.Get("primary"); p.AsColor() != (types.Color{R: 255}) {
		t.Errorf("checkerboard primary: %v", p)
	}

	d = call(t, r, "image", str("assets/wood.png")).AsDict()
	if p, _ := d.Get("image"); p.AsString() != "assets/wood.png" {
		t.Errorf("image path: %v", p)
	}
}

func TestPerlinDeterministic(t *testing.T) {
	a := New(Config{})
	b := New(Config{})

	for _, xy := range [][2]float64{{0.1, 0.2}, {0.5, 0.5}, {3.7, 9.1}} {
		x := call(t, a, "perlin", num(xy[0]), num(xy[1])).AsNumber()
		y := call(t, b, "perlin", num(xy[0]), num(xy[1])).AsNumber()
		if x != y {
			t.Fatalf("perlin(%v, %v) not stable: %v vs %v", xy[0], xy[1], x, y)
		}
	}

	// A different seed permutes the noise field.
	c := New(Config{NoiseSeed: 99})
	same := true
	for _, xy := range [][2]float64{{0.1, 0.2}, {0.5, 0.5}, {3.7, 9.1}} {
		if call(t, a, "perlin", num(xy[0]), num(xy[1])).AsNumber() != call(t, c, "perlin", num(xy[0]), num(xy[1])).AsNumber() {
			same = false
		}
	}
	if same {
		t.Error("seed change did not alter perlin output")
	}
}

func TestPerlin3D(t *testing.T) {
	r := New(Config{})
	if _, err := r.Call("perlin", []types.Value{num(0.1), num(0.2), num(0.3)}); err != nil {
		t.Fatalf("3d perlin: %v", err)
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	r := New(Config{Output: &buf})
	call(t, r, "print", str("hello"))
	if buf.String() != "hello\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestArityAndTypeErrors(t *testing.T) {
	r := New(Config{})

	tests := []struct {
		name string
		fn   string
		args []types.Value
		code string
	}{
		{"sin no args", "sin", nil, types.CodeArityError},
		{"sin two args", "sin", []types.Value{num(1), num(2)}, types.CodeArityError},
		{"sin string", "sin", []types.Value{str("x")}, types.CodeTypeMismatchError},
		{"pow one arg", "pow", []types.Value{num(2)}, types.CodeArityError},
		{"dot number", "dot", []types.Value{num(1), num(2)}, types.CodeTypeMismatchError},
		{"hsv two args", "hsv", []types.Value{num(1), num(2)}, types.CodeArityError},
		{"push non-array", "push", []types.Value{num(1), num(2)}, types.CodeTypeMismatchError},
		{"keys non-dict", "keys", []types.Value{num(1)}, types.CodeTypeMismatchError},
		{"solid non-color", "solid", []types.Value{num(1)}, types.CodeTypeMismatchError},
		{"perlin one arg", "perlin", []types.Value{num(1)}, types.CodeArityError},
		{"unknown", "frobnicate", nil, types.CodeUnknownFunctionError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Call(tt.fn, tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if !types.IsCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestNamesSorted(t *testing.T) {
	r := New(Config{})
	names := r.Names()
	if len(names) == 0 {
		t.Fatal("no builtins registered")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %q before %q", names[i-1], names[i])
		}
	}
	for _, want := range []string{"sin", "vec", "rgb", "hsv", "push", "len", "perlin", "print", "solid"} {
		if _, ok := r.Lookup(want); !ok {
			t.Errorf("missing builtin %q", want)
		}
	}
}
