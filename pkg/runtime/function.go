package runtime

import (
	"github.com/lemonberrylabs/scenescript/pkg/sdl"
)

// UserFunction is a function declared with `fn` in script source. It
// captures the environment it was declared in, so free variables inside
// the body resolve against the declaration site rather than the call
// site.
type UserFunction struct {
	Name   string
	Params []string
	Body   []sdl.Stmt
	Env    *Environment
}

// FuncName implements types.Function.
func (f *UserFunction) FuncName() string { return f.Name }
