package stdlib

import (
	"github.com/lemonberrylabs/scenescript/pkg/types"
)

// registerTexture registers the texture constructors. Each returns a
// tagged dictionary that the scene binder decodes into a material
// texture: {type: "solid", color}, {type: "checkerboard", primary,
// secondary} or {type: "image", image}.
func (r *Registry) registerTexture() {
	r.Register("solid", textureSolid)
	r.Register("checkerboard", textureCheckerboard)
	r.Register("image", textureImage)
}

func textureSolid(args []types.Value) (types.Value, error) {
	if err := requireArgs("solid", args, 1, 1); err != nil {
		return types.Unit, err
	}
	c, err := argColor("solid", args, 0)
	if err != nil {
		return types.Unit, err
	}
	d := types.NewDict()
	d.Set("type", types.NewString("solid"))
	d.Set("color", types.NewColor(c))
	return types.NewDictValue(d), nil
}

func textureCheckerboard(args []types.Value) (types.Value, error) {
	if err := requireArgs("checkerboard", args, 2, 2); err != nil {
		return types.Unit, err
	}
	primary, err := argColor("checkerboard", args, 0)
	if err != nil {
		return types.Unit, err
	}
	secondary, err := argColor("checkerboard", args, 1)
	if err != nil {
		return types.Unit, err
	}
	d := types.NewDict()
	d.Set("type", types.NewString("checkerboard"))
	d.Set("primary", types.NewColor(primary))
	d.Set("secondary", types.NewColor(secondary))
	return types.NewDictValue(d), nil
}

func textureImage(args []types.Value) (types.Value, error) {
	if err := requireArgs("image", args, 1, 1); err != nil {
		return types.Unit, err
	}
	path, err := argString("image", args, 0)
	if err != nil {
		return types.Unit, err
	}
	d := types.NewDict()
	d.Set("type", types.NewString("image"))
	d.Set("image", types.NewString(path))
	return types.NewDictValue(d), nil
}
