package scene

import (
	"github.com/lemonberrylabs/scenescript/pkg/types"
)

// Skybox type names.
const (
	SkyboxNormal  = "normal"
	SkyboxSolid   = "solid"
	SkyboxCubemap = "cubemap"
)

// Texture type names.
const (
	TextureSolid        = "solid"
	TextureCheckerboard = "checkerboard"
	TextureImage        = "image"
)

// Area light surface type names.
const (
	SurfaceSphere    = "sphere"
	SurfaceRectangle = "rectangle"
)

// Camera describes the viewpoint a frame is rendered from.
type Camera struct {
	VW     int          `json:"vw"`
	VH     int          `json:"vh"`
	Origin types.Vector `json:"origin"`
	Yaw    float64      `json:"yaw"`
	Pitch  float64      `json:"pitch"`
	FOV    float64      `json:"fov"`
}

// DefaultCamera returns the camera used when a scene declares none.
func DefaultCamera() Camera {
	return Camera{VW: 300, VH: 200, FOV: 60}
}

// Settings holds scene-wide rendering options (the `scene` declaration).
type Settings struct {
	MaxRayDepth int         `json:"max_ray_depth"`
	Ambient     types.Color `json:"ambient"`
}

// DefaultSettings returns the options used when a scene declares none.
func DefaultSettings() Settings {
	return Settings{MaxRayDepth: 4, Ambient: types.RGB(40, 40, 40)}
}

// Skybox describes the backdrop rays fall through to.
type Skybox struct {
	Type  string      `json:"type"`
	Color types.Color `json:"color"`
	Image string      `json:"image,omitempty"`
}

// DefaultSkybox returns the normal-shaded skybox.
func DefaultSkybox() Skybox {
	return Skybox{Type: SkyboxNormal}
}

// Texture is the surface pattern of a material.
type Texture struct {
	Type      string      `json:"type"`
	Primary   types.Color `json:"primary"`
	Secondary types.Color `json:"secondary"`
	Image     string      `json:"image,omitempty"`
}

// Material describes how a surface interacts with light.
type Material struct {
	Texture        Texture `json:"texture"`
	Reflectiveness float64 `json:"reflectiveness"`
	Transparency   float64 `json:"transparency"`
	IOR            float64 `json:"ior"`
	Emissivity     float64 `json:"emissivity"`
}

// DefaultMaterial returns a matte solid-white material.
func DefaultMaterial() Material {
	return Material{
		Texture: Texture{Type: TextureSolid, Primary: types.White},
		IOR:     1.3,
	}
}

// Sphere is a ball defined by center and radius.
type Sphere struct {
	Position types.Vector `json:"position"`
	Radius   float64      `json:"radius"`
	Material Material     `json:"material"`
}

// Plane is an infinite surface through an origin point.
type Plane struct {
	Origin   types.Vector `json:"origin"`
	Normal   types.Vector `json:"normal"`
	UVWrap   float64      `json:"uv_wrap"`
	Material Material     `json:"material"`
}

// Aabb is an axis-aligned box defined by position and size.
type Aabb struct {
	Position types.Vector `json:"position"`
	Size     types.Vector `json:"size"`
	Material Material     `json:"material"`
}

// Mesh is triangle geometry, either loaded from a model file or built
// from an inline vertex list (three consecutive vertices per triangle,
// or indexed through Tris when present).
type Mesh struct {
	File      string         `json:"file,omitempty"`
	Verts     []types.Vector `json:"verts,omitempty"`
	Tris      []int          `json:"tris,omitempty"`
	Position  types.Vector   `json:"position"`
	Scale     float64        `json:"scale"`
	RotateXYZ *types.Vector  `json:"rotate_xyz,omitempty"`
	RotateZYX *types.Vector  `json:"rotate_zyx,omitempty"`
	Material  Material       `json:"material"`
}

// PointLight radiates from a single point with distance falloff.
type PointLight struct {
	Position         types.Vector `json:"position"`
	Color            types.Color  `json:"color"`
	Intensity        float64      `json:"intensity"`
	SpecularPower    int          `json:"specular_power"`
	SpecularStrength float64      `json:"specular_strength"`
	MaxDistance      float64      `json:"max_distance"`
}

// Sun is a directional light infinitely far away.
type Sun struct {
	Vector            types.Vector `json:"vector"`
	Color             types.Color  `json:"color"`
	Intensity         float64      `json:"intensity"`
	SpecularPower     int          `json:"specular_power"`
	SpecularStrength  float64      `json:"specular_strength"`
	Shadows           bool         `json:"shadows"`
	ShadowCoefficient float64      `json:"shadow_coefficient"`
}

// AreaSurface is the emitting shape of an area light.
type AreaSurface struct {
	Type     string           `json:"type"`
	Position types.Vector     `json:"position"`
	Radius   float64          `json:"radius,omitempty"`
	Corners  *[4]types.Vector `json:"corners,omitempty"`
}

// AreaLight emits from a surface, sampled over several iterations for
// soft shadows.
type AreaLight struct {
	Surface          AreaSurface `json:"surface"`
	Color            types.Color `json:"color"`
	Intensity        float64     `json:"intensity"`
	SpecularPower    int         `json:"specular_power"`
	SpecularStrength float64     `json:"specular_strength"`
	Iterations       int         `json:"iterations"`
	MaxDistance      float64     `json:"max_distance"`
}

// Object is one piece of scene geometry. Exactly one of the pointer
// fields is set, matching Kind.
type Object struct {
	Kind   string  `json:"kind"`
	Sphere *Sphere `json:"sphere,omitempty"`
	Plane  *Plane  `json:"plane,omitempty"`
	Aabb   *Aabb   `json:"aabb,omitempty"`
	Mesh   *Mesh   `json:"mesh,omitempty"`
}

// Light is one light source. Exactly one of the pointer fields is set,
// matching Kind.
type Light struct {
	Kind  string      `json:"kind"`
	Point *PointLight `json:"point,omitempty"`
	Sun   *Sun        `json:"sun,omitempty"`
	Area  *AreaLight  `json:"area,omitempty"`
}

// Description is the fully bound scene handed to a renderer. After
// Bind returns it must be treated as read-only: renderers may read it
// from several worker goroutines at once.
type Description struct {
	Camera   Camera   `json:"camera"`
	Settings Settings `json:"settings"`
	Skybox   Skybox   `json:"skybox"`
	Objects  []Object `json:"objects"`
	Lights   []Light  `json:"lights"`
}
