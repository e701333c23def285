package stdlib

import (
	"fmt"

	"github.com/lemonberrylabs/scenescript/pkg/types"
)

// registerArray registers the collection builtins.
func (r *Registry) registerArray() {
	r.Register("push", arrayPush)
	r.Register("set", arraySet)
	r.Register("len", collectionLen)
	r.Register("keys", dictKeys)
	r.Register("has", dictHas)
}

// arrayPush appends in place and returns the array, so pushes chain
// and the result can be ignored as a statement.
func arrayPush(args []types.Value) (types.Value, error) {
	if err := requireArgs("push", args, 2, 2); err != nil {
		return types.Unit, err
	}
	arr, err := argArray("push", args, 0)
	if err != nil {
		return types.Unit, err
	}
	arr.Push(args[1])
	return args[0], nil
}

func arraySet(args []types.Value) (types.Value, error) {
	if err := requireArgs("set", args, 3, 3); err != nil {
		return types.Unit, err
	}
	arr, err := argArray("set", args, 0)
	if err != nil {
		return types.Unit, err
	}
	idx, err := argNumber("set", args, 1)
	if err != nil {
		return types.Unit, err
	}
	i := int(idx)
	if i < 0 || i >= arr.Len() {
		return types.Unit, types.NewIndexError(
			fmt.Sprintf("index %d out of range (length %d)", i, arr.Len()))
	}
	arr.Elems[i] = args[2]
	return args[0], nil
}

func collectionLen(args []types.Value) (types.Value, error) {
	if err := requireArgs("len", args, 1, 1); err != nil {
		return types.Unit, err
	}
	switch args[0].Type() {
	case types.TypeArray:
		return types.NewNumber(float64(args[0].AsArray().Len())), nil
	case types.TypeDict:
		return types.NewNumber(float64(args[0].AsDict().Len())), nil
	case types.TypeString:
		return types.NewNumber(float64(len([]rune(args[0].AsString())))), nil
	}
	return types.Unit, types.NewTypeMismatchError(
		fmt.Sprintf("len argument 1 must be an array, dict or string, got %s", args[0].Type()))
}

func dictKeys(args []types.Value) (types.Value, error) {
	if err := requireArgs("keys", args, 1, 1); err != nil {
		return types.Unit, err
	}
	d, err := argDict("keys", args, 0)
	if err != nil {
		return types.Unit, err
	}
	out := types.NewArrayValue()
	for _, k := range d.Keys() {
		out.Push(types.NewString(k))
	}
	return types.NewArray(out), nil
}

func dictHas(args []types.Value) (types.Value, error) {
	if err := requireArgs("has", args, 2, 2); err != nil {
		return types.Unit, err
	}
	d, err := argDict("has", args, 0)
	if err != nil {
		return types.Unit, err
	}
	key, err := argString("has", args, 1)
	if err != nil {
		return types.Unit, err
	}
	_, ok := d.Get(key)
	return types.NewBool(ok), nil
}
