// Package types defines the runtime value types used throughout the
// scenescript interpreter: number, string, bool, vector, color, array,
// dict, function, and unit.
package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueType represents the type of a scenescript value.
type ValueType int

const (
	TypeUnit     ValueType = iota // absence of a value
	TypeNumber                    // float64
	TypeString                    // string
	TypeBool                      // bool
	TypeVector                    // x, y, z triple
	TypeColor                     // r, g, b channels in [0, 255]
	TypeArray                     // shared, mutable sequence
	TypeDict                      // ordered string -> Value mapping, shared
	TypeFunction                  // builtin or user-defined function
)

// String returns the scenescript type name used in error messages.
func (t ValueType) String() string {
	switch t {
	case TypeUnit:
		return "unit"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeVector:
		return "vector"
	case TypeColor:
		return "color"
	case TypeArray:
		return "array"
	case TypeDict:
		return "dict"
	case TypeFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Function is the payload of a function value. The concrete implementation
// (user-defined functions with captured environments) lives in the runtime
// package; keeping an interface here avoids an import cycle.
type Function interface {
	FuncName() string
}

// Value represents a scenescript runtime value. It uses a tagged union
// approach: scalars are stored inline and copied on assignment, while
// arrays and dicts are stored behind pointers and shared by reference.
type Value struct {
	typ     ValueType
	numVal  float64
	strVal  string
	boolVal bool
	vecVal  Vector
	colVal  Color
	arrVal  *Array
	dictVal *Dict
	fnVal   Function
}

// Array is the backing store of an array value. Assigning an array value
// to a second variable aliases this struct: push/set through either handle
// is visible through both.
type Array struct {
	Elems []Value
}

// NewArrayValue creates an empty backing array.
func NewArrayValue() *Array {
	return &Array{Elems: make([]Value, 0)}
}

// Push appends an element in place.
func (a *Array) Push(v Value) {
	a.Elems = append(a.Elems, v)
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return len(a.Elems)
}

// Dict maintains insertion order for keys, so object fields and dict
// literals iterate in source order. Like Array it is shared by reference.
type Dict struct {
	keys   []string
	values map[string]Value
}

// NewDict creates a new empty dict.
func NewDict() *Dict {
	return &Dict{
		keys:   make([]string, 0),
		values: make(map[string]Value),
	}
}

// Get retrieves a value by key. Returns the value and whether it exists.
func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Set adds or updates a key-value pair, preserving insertion order.
func (d *Dict) Set(key string, val Value) {
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = val
}

// Delete removes a key from the dict.
func (d *Dict) Delete(key string) {
	if _, exists := d.values[key]; !exists {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	result := make([]string, len(d.keys))
	copy(result, d.keys)
	return result
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	return len(d.keys)
}

// Unit is the singleton unit value.
var Unit = Value{typ: TypeUnit}

// NewNumber creates a number value.
func NewNumber(v float64) Value {
	return Value{typ: TypeNumber, numVal: v}
}

// NewString creates a string value.
func NewString(v string) Value {
	return Value{typ: TypeString, strVal: v}
}

// NewBool creates a boolean value.
func NewBool(v bool) Value {
	return Value{typ: TypeBool, boolVal: v}
}

// NewVector creates a vector value.
func NewVector(v Vector) Value {
	return Value{typ: TypeVector, vecVal: v}
}

// NewColor creates a color value.
func NewColor(c Color) Value {
	return Value{typ: TypeColor, colVal: c}
}

// NewArray creates an array value backed by the given store.
func NewArray(a *Array) Value {
	return Value{typ: TypeArray, arrVal: a}
}

// NewArrayOf creates an array value from a slice of elements.
func NewArrayOf(elems ...Value) Value {
	return Value{typ: TypeArray, arrVal: &Array{Elems: elems}}
}

// NewDictValue creates a dict value backed by the given store.
func NewDictValue(d *Dict) Value {
	return Value{typ: TypeDict, dictVal: d}
}

// NewFunction creates a function value.
func NewFunction(fn Function) Value {
	return Value{typ: TypeFunction, fnVal: fn}
}

// Type returns the value's type.
func (v Value) Type() ValueType {
	return v.typ
}

// IsUnit returns true if the value is unit.
func (v Value) IsUnit() bool {
	return v.typ == TypeUnit
}

// AsNumber returns the number value. Panics if not a number.
func (v Value) AsNumber() float64 {
	if v.typ != TypeNumber {
		panic(fmt.Sprintf("AsNumber called on %s value", v.typ))
	}
	return v.numVal
}

// AsString returns the string value. Panics if not a string.
func (v Value) AsString() string {
	if v.typ != TypeString {
		panic(fmt.Sprintf("AsString called on %s value", v.typ))
	}
	return v.strVal
}

// AsBool returns the boolean value. Panics if not a bool.
func (v Value) AsBool() bool {
	if v.typ != TypeBool {
		panic(fmt.Sprintf("AsBool called on %s value", v.typ))
	}
	return v.boolVal
}

// AsVector returns the vector value. Panics if not a vector.
func (v Value) AsVector() Vector {
	if v.typ != TypeVector {
		panic(fmt.Sprintf("AsVector called on %s value", v.typ))
	}
	return v.vecVal
}

// AsColor returns the color value. Panics if not a color.
func (v Value) AsColor() Color {
	if v.typ != TypeColor {
		panic(fmt.Sprintf("AsColor called on %s value", v.typ))
	}
	return v.colVal
}

// AsArray returns the shared array store. Panics if not an array.
func (v Value) AsArray() *Array {
	if v.typ != TypeArray {
		panic(fmt.Sprintf("AsArray called on %s value", v.typ))
	}
	return v.arrVal
}

// AsDict returns the shared dict store. Panics if not a dict.
func (v Value) AsDict() *Dict {
	if v.typ != TypeDict {
		panic(fmt.Sprintf("AsDict called on %s value", v.typ))
	}
	return v.dictVal
}

// AsFunction returns the function payload. Panics if not a function.
func (v Value) AsFunction() Function {
	if v.typ != TypeFunction {
		panic(fmt.Sprintf("AsFunction called on %s value", v.typ))
	}
	return v.fnVal
}

// Truthy returns the truthiness of a value. A number is truthy when it is
// nonzero and not NaN; a bool is its own truth; unit is always falsy;
// every other type is truthy regardless of contents.
func (v Value) Truthy() bool {
	switch v.typ {
	case TypeUnit:
		return false
	case TypeBool:
		return v.boolVal
	case TypeNumber:
		return v.numVal != 0 && !math.IsNaN(v.numVal)
	default:
		return true
	}
}

// Equal tests structural equality between two values. Arrays and dicts
// compare element by element; functions compare by identity.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeUnit:
		return true
	case TypeNumber:
		return v.numVal == other.numVal
	case TypeString:
		return v.strVal == other.strVal
	case TypeBool:
		return v.boolVal == other.boolVal
	case TypeVector:
		return v.vecVal == other.vecVal
	case TypeColor:
		return v.colVal == other.colVal
	case TypeArray:
		if len(v.arrVal.Elems) != len(other.arrVal.Elems) {
			return false
		}
		for i := range v.arrVal.Elems {
			if !v.arrVal.Elems[i].Equal(other.arrVal.Elems[i]) {
				return false
			}
		}
		return true
	case TypeDict:
		if v.dictVal.Len() != other.dictVal.Len() {
			return false
		}
		for _, k := range v.dictVal.keys {
			ov, ok := other.dictVal.Get(k)
			if !ok {
				return false
			}
			mv, _ := v.dictVal.Get(k)
			if !mv.Equal(ov) {
				return false
			}
		}
		return true
	case TypeFunction:
		return v.fnVal == other.fnVal
	}
	return false
}

// FormatNumber renders a float the way scenescript prints numbers:
// no trailing zeros, no exponent for ordinary magnitudes.
func FormatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Sprintf("%g", f)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// String returns a human-readable representation of the value, used by
// print and the REPL.
func (v Value) String() string {
	switch v.typ {
	case TypeUnit:
		return "()"
	case TypeNumber:
		return FormatNumber(v.numVal)
	case TypeString:
		return v.strVal
	case TypeBool:
		if v.boolVal {
			return "true"
		}
		return "false"
	case TypeVector:
		return fmt.Sprintf("<%s, %s, %s>",
			FormatNumber(v.vecVal.X), FormatNumber(v.vecVal.Y), FormatNumber(v.vecVal.Z))
	case TypeColor:
		return fmt.Sprintf("rgb(%s, %s, %s)",
			FormatNumber(v.colVal.R), FormatNumber(v.colVal.G), FormatNumber(v.colVal.B))
	case TypeArray:
		parts := make([]string, len(v.arrVal.Elems))
		for i, item := range v.arrVal.Elems {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case TypeDict:
		parts := make([]string, 0, v.dictVal.Len())
		for _, k := range v.dictVal.keys {
			val, _ := v.dictVal.Get(k)
			parts = append(parts, fmt.Sprintf("%s: %s", k, val.String()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case TypeFunction:
		return fmt.Sprintf("fn %s", v.fnVal.FuncName())
	}
	return "<unknown>"
}

// MarshalJSON converts a Value to JSON. Vectors and colors serialize as
// keyed objects so the two remain distinguishable in scene dumps.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case TypeUnit:
		return []byte("null"), nil
	case TypeNumber:
		return json.Marshal(v.numVal)
	case TypeString:
		return json.Marshal(v.strVal)
	case TypeBool:
		if v.boolVal {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case TypeVector:
		return json.Marshal(v.vecVal)
	case TypeColor:
		return json.Marshal(v.colVal)
	case TypeArray:
		items := make([]json.RawMessage, len(v.arrVal.Elems))
		for i, item := range v.arrVal.Elems {
			b, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			items[i] = b
		}
		return json.Marshal(items)
	case TypeDict:
		// Use ordered iteration
		buf := []byte{'{'}
		for i, k := range v.dictVal.keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			keyBytes, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf = append(buf, keyBytes...)
			buf = append(buf, ':')
			val, _ := v.dictVal.Get(k)
			valBytes, err := val.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf = append(buf, valBytes...)
		}
		buf = append(buf, '}')
		return buf, nil
	case TypeFunction:
		return json.Marshal(fmt.Sprintf("fn %s", v.fnVal.FuncName()))
	}
	return nil, fmt.Errorf("cannot marshal unknown type %d", v.typ)
}
