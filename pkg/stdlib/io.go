package stdlib

import (
	"fmt"

	"github.com/lemonberrylabs/scenescript/pkg/types"
)

// registerIO registers the output builtins.
func (r *Registry) registerIO() {
	r.Register("print", r.print)
}

// print writes the rendered form of any value followed by a newline
// to the registry's output writer.
func (r *Registry) print(args []types.Value) (types.Value, error) {
	if err := requireArgs("print", args, 1, 1); err != nil {
		return types.Unit, err
	}
	fmt.Fprintln(r.out, args[0].String())
	return types.Unit, nil
}
