// Package scene collects the object declarations produced by evaluating
// a script and binds them into a renderable scene graph.
package scene

import (
	"github.com/lemonberrylabs/scenescript/pkg/types"
)

// Declaration is a single object declaration captured during evaluation:
// the canonical kind plus the evaluated field dictionary, with the source
// position of the declaration for error reporting.
type Declaration struct {
	Kind   string
	Fields *types.Dict
	Line   int
	Col    int
}

// kindAliases maps every accepted kind spelling to its canonical form.
var kindAliases = map[string]string{
	"scene":    "scene",
	"settings": "scene",

	"camera": "camera",
	"skybox": "skybox",

	"sphere": "sphere",
	"plane":  "plane",
	"aabb":   "aabb",
	"box":    "aabb",
	"mesh":   "mesh",
	"model":  "mesh",

	"sun":       "sun",
	"sun_light": "sun",
	"sunlight":  "sun",

	"point_light": "point_light",
	"pointlight":  "point_light",
	"point":       "point_light",

	"area_light": "area_light",
	"arealight":  "area_light",
	"area":       "area_light",
}

// singletonKinds may be declared at most once per scene.
var singletonKinds = map[string]bool{
	"camera": true,
	"scene":  true,
	"skybox": true,
}

// CanonicalKind resolves a kind spelling to its canonical name. The
// second result is false when the spelling is not a known object kind.
func CanonicalKind(kind string) (string, bool) {
	canon, ok := kindAliases[kind]
	return canon, ok
}

// Accumulator collects declarations in source order during one
// evaluation. Once evaluation completes it is handed to Bind and must
// not be mutated further.
type Accumulator struct {
	// Objects holds the non-singleton declarations in declaration order.
	Objects []Declaration

	singletons map[string]Declaration
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		singletons: make(map[string]Declaration),
	}
}

// Declare records one object declaration. Singleton kinds (camera,
// scene, skybox) fill their slot exactly once; a second declaration
// fails. Every other kind appends in order.
func (a *Accumulator) Declare(kind string, fields *types.Dict, line, col int) error {
	canon, ok := CanonicalKind(kind)
	if !ok {
		return types.NewUnknownObjectError(kind).At(line, col)
	}

	decl := Declaration{Kind: canon, Fields: fields, Line: line, Col: col}

	if singletonKinds[canon] {
		if _, dup := a.singletons[canon]; dup {
			return types.NewDuplicateSingletonError(canon).At(line, col)
		}
		a.singletons[canon] = decl
		return nil
	}

	a.Objects = append(a.Objects, decl)
	return nil
}

// Singleton returns the declaration recorded for a singleton kind.
func (a *Accumulator) Singleton(kind string) (Declaration, bool) {
	d, ok := a.singletons[kind]
	return d, ok
}

// Len returns the total number of declarations recorded, singletons
// included.
func (a *Accumulator) Len() int {
	return len(a.Objects) + len(a.singletons)
}
