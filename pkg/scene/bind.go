package scene

import (
	"fmt"

	"github.com/lemonberrylabs/scenescript/pkg/types"
)

// Bind validates every declaration in the accumulator, applies the
// renderer defaults for absent optional fields, and produces the scene
// description. Binding stops at the first invalid declaration.
func Bind(acc *Accumulator) (*Description, error) {
	g := &Description{
		Camera:   DefaultCamera(),
		Settings: DefaultSettings(),
		Skybox:   DefaultSkybox(),
	}

	if d, ok := acc.Singleton("camera"); ok {
		if err := bindCamera(&g.Camera, d); err != nil {
			return nil, err
		}
	}
	if d, ok := acc.Singleton("scene"); ok {
		if err := bindSettings(&g.Settings, d); err != nil {
			return nil, err
		}
	}
	if d, ok := acc.Singleton("skybox"); ok {
		if err := bindSkybox(&g.Skybox, d); err != nil {
			return nil, err
		}
	}

	for _, d := range acc.Objects {
		switch d.Kind {
		case "sphere":
			s, err := bindSphere(d)
			if err != nil {
				return nil, err
			}
			g.Objects = append(g.Objects, Object{Kind: d.Kind, Sphere: s})
		case "plane":
			p, err := bindPlane(d)
			if err != nil {
				return nil, err
			}
			g.Objects = append(g.Objects, Object{Kind: d.Kind, Plane: p})
		case "aabb":
			b, err := bindAabb(d)
			if err != nil {
				return nil, err
			}
			g.Objects = append(g.Objects, Object{Kind: d.Kind, Aabb: b})
		case "mesh":
			m, err := bindMesh(d)
			if err != nil {
				return nil, err
			}
			g.Objects = append(g.Objects, Object{Kind: d.Kind, Mesh: m})
		case "sun":
			l, err := bindSun(d)
			if err != nil {
				return nil, err
			}
			g.Lights = append(g.Lights, Light{Kind: d.Kind, Sun: l})
		case "point_light":
			l, err := bindPointLight(d)
			if err != nil {
				return nil, err
			}
			g.Lights = append(g.Lights, Light{Kind: d.Kind, Point: l})
		case "area_light":
			l, err := bindAreaLight(d)
			if err != nil {
				return nil, err
			}
			g.Lights = append(g.Lights, Light{Kind: d.Kind, Area: l})
		}
	}

	return g, nil
}

// fields wraps a declaration's dictionary with typed, position-carrying
// accessors. Required fields fail with MissingFieldError, wrongly typed
// values with TypeMismatchError naming the object kind and field.
type fields struct {
	kind string
	d    *types.Dict
	line int
	col  int
}

func declFields(d Declaration) fields {
	return fields{kind: d.Kind, d: d.Fields, line: d.Line, col: d.Col}
}

func (f fields) has(name string) bool {
	_, ok := f.d.Get(name)
	return ok
}

func (f fields) typeErr(name, want string, got types.Value) error {
	return types.NewTypeMismatchError(fmt.Sprintf(
		"%s field '%s' must be a %s, got %s", f.kind, name, want, got.Type())).At(f.line, f.col)
}

func (f fields) missing(name string) error {
	return types.NewMissingFieldError(f.kind, name).At(f.line, f.col)
}

func (f fields) requireVector(name string) (types.Vector, error) {
	v, ok := f.d.Get(name)
	if !ok {
		return types.Vector{}, f.missing(name)
	}
	if v.Type() != types.TypeVector {
		return types.Vector{}, f.typeErr(name, "vector", v)
	}
	return v.AsVector(), nil
}

func (f fields) requireNumber(name string) (float64, error) {
	v, ok := f.d.Get(name)
	if !ok {
		return 0, f.missing(name)
	}
	if v.Type() != types.TypeNumber {
		return 0, f.typeErr(name, "number", v)
	}
	return v.AsNumber(), nil
}

func (f fields) requireString(name string) (string, error) {
	v, ok := f.d.Get(name)
	if !ok {
		return "", f.missing(name)
	}
	if v.Type() != types.TypeString {
		return "", f.typeErr(name, "string", v)
	}
	return v.AsString(), nil
}

func (f fields) requireColor(name string) (types.Color, error) {
	v, ok := f.d.Get(name)
	if !ok {
		return types.Color{}, f.missing(name)
	}
	if v.Type() != types.TypeColor {
		return types.Color{}, f.typeErr(name, "color", v)
	}
	return v.AsColor(), nil
}

func (f fields) optVector(name string, def types.Vector) (types.Vector, error) {
	v, ok := f.d.Get(name)
	if !ok {
		return def, nil
	}
	if v.Type() != types.TypeVector {
		return def, f.typeErr(name, "vector", v)
	}
	return v.AsVector(), nil
}

func (f fields) optNumber(name string, def float64) (float64, error) {
	v, ok := f.d.Get(name)
	if !ok {
		return def, nil
	}
	if v.Type() != types.TypeNumber {
		return def, f.typeErr(name, "number", v)
	}
	return v.AsNumber(), nil
}

func (f fields) optInt(name string, def int) (int, error) {
	n, err := f.optNumber(name, float64(def))
	if err != nil {
		return def, err
	}
	return int(n), nil
}

func (f fields) optColor(name string, def types.Color) (types.Color, error) {
	v, ok := f.d.Get(name)
	if !ok {
		return def, nil
	}
	if v.Type() != types.TypeColor {
		return def, f.typeErr(name, "color", v)
	}
	return v.AsColor(), nil
}

func (f fields) optBool(name string, def bool) (bool, error) {
	v, ok := f.d.Get(name)
	if !ok {
		return def, nil
	}
	if v.Type() != types.TypeBool {
		return def, f.typeErr(name, "boolean", v)
	}
	return v.AsBool(), nil
}

func (f fields) optString(name, def string) (string, error) {
	v, ok := f.d.Get(name)
	if !ok {
		return def, nil
	}
	if v.Type() != types.TypeString {
		return def, f.typeErr(name, "string", v)
	}
	return v.AsString(), nil
}

func bindCamera(c *Camera, d Declaration) error {
	f := declFields(d)
	var err error
	if c.VW, err = f.optInt("vw", c.VW); err != nil {
		return err
	}
	if c.VH, err = f.optInt("vh", c.VH); err != nil {
		return err
	}
	if c.Origin, err = f.optVector("origin", c.Origin); err != nil {
		return err
	}
	if c.Yaw, err = f.optNumber("yaw", c.Yaw); err != nil {
		return err
	}
	if c.Pitch, err = f.optNumber("pitch", c.Pitch); err != nil {
		return err
	}
	if c.FOV, err = f.optNumber("fov", c.FOV); err != nil {
		return err
	}
	return nil
}

func bindSettings(s *Settings, d Declaration) error {
	f := declFields(d)
	var err error
	if s.MaxRayDepth, err = f.optInt("max_ray_depth", s.MaxRayDepth); err != nil {
		return err
	}
	if s.Ambient, err = f.optColor("ambient", s.Ambient); err != nil {
		return err
	}
	return nil
}

func bindSkybox(s *Skybox, d Declaration) error {
	f := declFields(d)
	t, err := f.requireString("type")
	if err != nil {
		return err
	}
	switch t {
	case SkyboxNormal:
		s.Type = SkyboxNormal
	case SkyboxSolid:
		c, err := f.requireColor("color")
		if err != nil {
			return err
		}
		s.Type = SkyboxSolid
		s.Color = c
	case SkyboxCubemap:
		img, err := f.requireString("image")
		if err != nil {
			return err
		}
		s.Type = SkyboxCubemap
		s.Image = img
	default:
		return types.NewTypeMismatchError(fmt.Sprintf(
			"skybox type must be normal, solid, or cubemap, got '%s'", t)).At(d.Line, d.Col)
	}
	return nil
}

// bindMaterial reads the optional `material` sub-dictionary. A missing
// material yields the matte solid-white default with IOR 1.3; a present
// dictionary that omits ior gets 1.5. The renderer has used this pair
// of defaults from the start, so scripts depend on it.
func bindMaterial(f fields) (Material, error) {
	m := DefaultMaterial()
	v, ok := f.d.Get("material")
	if !ok {
		return m, nil
	}
	if v.Type() != types.TypeDict {
		return m, f.typeErr("material", "dictionary", v)
	}
	m.IOR = 1.5

	mf := fields{kind: f.kind + " material", d: v.AsDict(), line: f.line, col: f.col}
	var err error
	if m.Reflectiveness, err = mf.optNumber("reflectiveness", m.Reflectiveness); err != nil {
		return m, err
	}
	if m.Transparency, err = mf.optNumber("transparency", m.Transparency); err != nil {
		return m, err
	}
	if m.IOR, err = mf.optNumber("ior", m.IOR); err != nil {
		return m, err
	}
	if m.Emissivity, err = mf.optNumber("emissivity", m.Emissivity); err != nil {
		return m, err
	}
	if tv, ok := mf.d.Get("texture"); ok {
		if m.Texture, err = bindTexture(mf, tv); err != nil {
			return m, err
		}
	}
	return m, nil
}

// bindTexture decodes the tagged dictionaries produced by the solid,
// checkerboard, and image builtins.
func bindTexture(f fields, v types.Value) (Texture, error) {
	if v.Type() != types.TypeDict {
		return Texture{}, f.typeErr("texture", "texture (solid, checkerboard, or image)", v)
	}
	tf := fields{kind: "texture", d: v.AsDict(), line: f.line, col: f.col}
	t, err := tf.requireString("type")
	if err != nil {
		return Texture{}, err
	}
	switch t {
	case TextureSolid:
		c, err := tf.requireColor("color")
		if err != nil {
			return Texture{}, err
		}
		return Texture{Type: TextureSolid, Primary: c}, nil
	case TextureCheckerboard:
		primary, err := tf.requireColor("primary")
		if err != nil {
			return Texture{}, err
		}
		secondary, err := tf.requireColor("secondary")
		if err != nil {
			return Texture{}, err
		}
		return Texture{Type: TextureCheckerboard, Primary: primary, Secondary: secondary}, nil
	case TextureImage:
		img, err := tf.requireString("image")
		if err != nil {
			return Texture{}, err
		}
		return Texture{Type: TextureImage, Image: img}, nil
	default:
		return Texture{}, types.NewTypeMismatchError(fmt.Sprintf(
			"texture type must be solid, checkerboard, or image, got '%s'", t)).At(f.line, f.col)
	}
}

func bindSphere(d Declaration) (*Sphere, error) {
	f := declFields(d)
	pos, err := f.requireVector("position")
	if err != nil {
		return nil, err
	}
	radius, err := f.requireNumber("radius")
	if err != nil {
		return nil, err
	}
	mat, err := bindMaterial(f)
	if err != nil {
		return nil, err
	}
	return &Sphere{Position: pos, Radius: radius, Material: mat}, nil
}

func bindPlane(d Declaration) (*Plane, error) {
	f := declFields(d)
	origin, err := f.requireVector("origin")
	if err != nil {
		return nil, err
	}
	normal, err := f.optVector("normal", types.Vec(0, 1, 0))
	if err != nil {
		return nil, err
	}
	uvWrap, err := f.optNumber("uv_wrap", 1)
	if err != nil {
		return nil, err
	}
	mat, err := bindMaterial(f)
	if err != nil {
		return nil, err
	}
	return &Plane{Origin: origin, Normal: normal.Normalize(), UVWrap: uvWrap, Material: mat}, nil
}

func bindAabb(d Declaration) (*Aabb, error) {
	f := declFields(d)
	pos, err := f.requireVector("position")
	if err != nil {
		return nil, err
	}
	size, err := f.requireVector("size")
	if err != nil {
		return nil, err
	}
	mat, err := bindMaterial(f)
	if err != nil {
		return nil, err
	}
	return &Aabb{Position: pos, Size: size, Material: mat}, nil
}

func bindMesh(d Declaration) (*Mesh, error) {
	f := declFields(d)
	m := &Mesh{Scale: 1}

	var err error
	if m.Position, err = f.optVector("position", types.Vector{}); err != nil {
		return nil, err
	}
	if m.Scale, err = f.optNumber("scale", m.Scale); err != nil {
		return nil, err
	}
	if f.has("rotate_xyz") {
		v, err := f.requireVector("rotate_xyz")
		if err != nil {
			return nil, err
		}
		m.RotateXYZ = &v
	}
	if f.has("rotate_zyx") {
		if m.RotateXYZ != nil {
			return nil, types.NewTypeMismatchError(
				"mesh accepts one of rotate_xyz or rotate_zyx, not both").At(d.Line, d.Col)
		}
		v, err := f.requireVector("rotate_zyx")
		if err != nil {
			return nil, err
		}
		m.RotateZYX = &v
	}
	if m.Material, err = bindMaterial(f); err != nil {
		return nil, err
	}

	// Geometry comes from a model file or an inline vertex list.
	switch {
	case f.has("mesh"):
		if m.File, err = f.requireString("mesh"); err != nil {
			return nil, err
		}
	case f.has("obj"):
		if m.File, err = f.requireString("obj"); err != nil {
			return nil, err
		}
	default:
		v, ok := f.d.Get("verts")
		if !ok {
			return nil, f.missing("verts")
		}
		if v.Type() != types.TypeArray {
			return nil, f.typeErr("verts", "array of vectors", v)
		}
		for i, el := range v.AsArray().Elems {
			if el.Type() != types.TypeVector {
				return nil, types.NewTypeMismatchError(fmt.Sprintf(
					"mesh field 'verts' element %d must be a vector, got %s",
					i, el.Type())).At(d.Line, d.Col)
			}
			m.Verts = append(m.Verts, el.AsVector())
		}
		if tv, ok := f.d.Get("tris"); ok {
			if tv.Type() != types.TypeArray {
				return nil, f.typeErr("tris", "array of numbers", tv)
			}
			for i, el := range tv.AsArray().Elems {
				if el.Type() != types.TypeNumber {
					return nil, types.NewTypeMismatchError(fmt.Sprintf(
						"mesh field 'tris' element %d must be a number, got %s",
						i, el.Type())).At(d.Line, d.Col)
				}
				idx := int(el.AsNumber())
				if idx < 0 || idx >= len(m.Verts) {
					return nil, types.NewIndexError(fmt.Sprintf(
						"mesh 'tris' index %d out of range (%d verts)",
						idx, len(m.Verts))).At(d.Line, d.Col)
				}
				m.Tris = append(m.Tris, idx)
			}
		}
	}

	return m, nil
}

func bindSun(d Declaration) (*Sun, error) {
	f := declFields(d)
	vec, err := f.requireVector("vector")
	if err != nil {
		return nil, err
	}
	s := &Sun{Vector: vec.Normalize()}
	if s.Color, err = f.optColor("color", types.White); err != nil {
		return nil, err
	}
	if s.Intensity, err = f.optNumber("intensity", 1); err != nil {
		return nil, err
	}
	if s.SpecularPower, err = f.optInt("specular_power", 32); err != nil {
		return nil, err
	}
	if s.SpecularStrength, err = f.optNumber("specular_strength", 0.5); err != nil {
		return nil, err
	}
	if s.Shadows, err = f.optBool("shadows", true); err != nil {
		return nil, err
	}
	if s.ShadowCoefficient, err = f.optNumber("shadow_coefficient", 0.5); err != nil {
		return nil, err
	}
	return s, nil
}

func bindPointLight(d Declaration) (*PointLight, error) {
	f := declFields(d)
	pos, err := f.requireVector("position")
	if err != nil {
		return nil, err
	}
	l := &PointLight{Position: pos}
	if l.Color, err = f.optColor("color", types.White); err != nil {
		return nil, err
	}
	if l.Intensity, err = f.optNumber("intensity", 6); err != nil {
		return nil, err
	}
	if l.SpecularPower, err = f.optInt("specular_power", 32); err != nil {
		return nil, err
	}
	if l.SpecularStrength, err = f.optNumber("specular_strength", 0.7); err != nil {
		return nil, err
	}
	if l.MaxDistance, err = f.optNumber("max_distance", 50); err != nil {
		return nil, err
	}
	return l, nil
}

func bindAreaLight(d Declaration) (*AreaLight, error) {
	f := declFields(d)
	surface, err := f.requireString("surface")
	if err != nil {
		return nil, err
	}

	l := &AreaLight{}
	switch surface {
	case SurfaceSphere:
		pos, err := f.requireVector("position")
		if err != nil {
			return nil, err
		}
		radius, err := f.requireNumber("radius")
		if err != nil {
			return nil, err
		}
		l.Surface = AreaSurface{Type: SurfaceSphere, Position: pos, Radius: radius}
	case SurfaceRectangle:
		var corners [4]types.Vector
		for i, name := range []string{"c00", "c01", "c10", "c11"} {
			if corners[i], err = f.requireVector(name); err != nil {
				return nil, err
			}
		}
		l.Surface = AreaSurface{Type: SurfaceRectangle, Corners: &corners}
	default:
		return nil, types.NewTypeMismatchError(fmt.Sprintf(
			"area_light surface must be sphere or rectangle, got '%s'", surface)).At(d.Line, d.Col)
	}

	if l.Color, err = f.optColor("color", types.White); err != nil {
		return nil, err
	}
	if l.Intensity, err = f.optNumber("intensity", 6); err != nil {
		return nil, err
	}
	if l.SpecularPower, err = f.optInt("specular_power", 32); err != nil {
		return nil, err
	}
	if l.SpecularStrength, err = f.optNumber("specular_strength", 0.7); err != nil {
		return nil, err
	}
	if l.Iterations, err = f.optInt("iterations", 4); err != nil {
		return nil, err
	}
	if l.MaxDistance, err = f.optNumber("max_distance", 50); err != nil {
		return nil, err
	}
	return l, nil
}
