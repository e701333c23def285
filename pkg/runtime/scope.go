package runtime

import (
	"github.com/lemonberrylabs/scenescript/pkg/types"
)

// Environment manages variable storage with parent scope chaining.
// Lookups start at the current environment and walk up the parent chain.
// Declarations always create a binding in the current environment, which
// is how `let` shadows an outer variable of the same name.
type Environment struct {
	parent *Environment
	vars   map[string]types.Value
}

// NewEnvironment creates a new root environment.
func NewEnvironment() *Environment {
	return &Environment{
		vars: make(map[string]types.Value),
	}
}

// NewChild creates a child environment that inherits from this one.
func (e *Environment) NewChild() *Environment {
	return &Environment{
		parent: e,
		vars:   make(map[string]types.Value),
	}
}

// Get retrieves a variable value, searching up the environment chain.
func (e *Environment) Get(name string) (types.Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, nil
		}
	}
	return types.Unit, types.NewUndefinedVariableError(name)
}

// Declare creates or replaces a binding in this environment only,
// without consulting parents.
func (e *Environment) Declare(name string, value types.Value) {
	e.vars[name] = value
}

// Set assigns to the nearest environment in the chain that already
// holds the variable. If no environment holds it, the binding is
// created in this environment.
func (e *Environment) Set(name string, value types.Value) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = value
			return
		}
	}
	e.vars[name] = value
}

// Exists reports whether a variable is bound in this environment or
// any parent.
func (e *Environment) Exists(name string) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			return true
		}
	}
	return false
}
