package scene

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/lemonberrylabs/scenescript/pkg/types"
)

// IssueLevel represents severity of a validation issue.
type IssueLevel string

const (
	// IssueError indicates the scene will not render correctly.
	IssueError IssueLevel = "error"
	// IssueWarning indicates something that is probably a mistake.
	IssueWarning IssueLevel = "warning"
)

// Issue is a non-fatal finding about a bound scene. Binding already
// rejects invalid declarations; Validate flags things that bind cleanly
// but will render black screens, NaN geometry, or wasted work.
type Issue struct {
	Level   IssueLevel `json:"level"`
	Code    string     `json:"code,omitempty"`
	Message string     `json:"message"`
	Path    string     `json:"path,omitempty"`
}

// Validate inspects a bound scene description and returns advisory
// issues. Errors flag output a renderer cannot use; warnings flag
// output that renders but probably not as intended.
func Validate(g *Description) []Issue {
	var out []Issue

	if g.Camera.VW <= 0 || g.Camera.VH <= 0 {
		out = append(out, Issue{Level: IssueError, Message: "camera viewport is empty", Path: "camera"})
	}
	if g.Camera.FOV <= 0 || g.Camera.FOV >= 180 {
		out = append(out, Issue{Level: IssueWarning, Message: "camera fov outside (0, 180) degrees", Path: "camera"})
	}
	if g.Settings.MaxRayDepth <= 0 {
		out = append(out, Issue{Level: IssueWarning, Message: "max_ray_depth disables all bounces", Path: "scene"})
	}

	if g.Skybox.Type == SkyboxCubemap {
		out = append(out, validatePath(g.Skybox.Image, "skybox", imageExts)...)
	}

	if len(g.Objects) == 0 {
		out = append(out, Issue{Level: IssueWarning, Message: "scene has no objects"})
	}
	if len(g.Lights) == 0 {
		out = append(out, Issue{Level: IssueWarning, Message: "scene has no lights; geometry will render unlit"})
	}

	for i, o := range g.Objects {
		path := fmt.Sprintf("%s[%d]", o.Kind, i)
		switch {
		case o.Sphere != nil:
			if o.Sphere.Radius <= 0 {
				out = append(out, Issue{Level: IssueWarning, Message: "sphere radius is not positive", Path: path})
			}
			out = append(out, validateMaterial(o.Sphere.Material, path)...)
		case o.Plane != nil:
			if vecNaN(o.Plane.Normal) {
				out = append(out, Issue{Level: IssueError, Message: "plane normal has zero length", Path: path})
			}
			out = append(out, validateMaterial(o.Plane.Material, path)...)
		case o.Aabb != nil:
			s := o.Aabb.Size
			if s.X <= 0 || s.Y <= 0 || s.Z <= 0 {
				out = append(out, Issue{Level: IssueWarning, Message: "aabb size has a non-positive component", Path: path})
			}
			out = append(out, validateMaterial(o.Aabb.Material, path)...)
		case o.Mesh != nil:
			out = append(out, validateMesh(o.Mesh, path)...)
		}
	}

	for i, l := range g.Lights {
		path := fmt.Sprintf("%s[%d]", l.Kind, i)
		switch {
		case l.Sun != nil:
			if vecNaN(l.Sun.Vector) {
				out = append(out, Issue{Level: IssueError, Message: "sun vector has zero length", Path: path})
			}
		case l.Point != nil:
			if l.Point.MaxDistance <= 0 {
				out = append(out, Issue{Level: IssueWarning, Message: "point light max_distance is not positive", Path: path})
			}
		case l.Area != nil:
			if l.Area.Iterations <= 0 {
				out = append(out, Issue{Level: IssueWarning, Message: "area light iterations is not positive", Path: path})
			}
			if l.Area.Surface.Type == SurfaceSphere && l.Area.Surface.Radius <= 0 {
				out = append(out, Issue{Level: IssueWarning, Message: "area light sphere surface radius is not positive", Path: path})
			}
		}
	}

	return out
}

func validateMesh(m *Mesh, path string) []Issue {
	var out []Issue
	if m.File != "" {
		out = append(out, validatePath(m.File, path, modelExts)...)
	} else {
		if len(m.Tris) == 0 && len(m.Verts)%3 != 0 {
			out = append(out, Issue{
				Level:   IssueWarning,
				Message: "vert count is not a multiple of 3; trailing verts are dropped",
				Path:    path,
			})
		}
		if len(m.Tris)%3 != 0 {
			out = append(out, Issue{
				Level:   IssueWarning,
				Message: "tris count is not a multiple of 3; trailing indices are dropped",
				Path:    path,
			})
		}
	}
	if m.Scale == 0 {
		out = append(out, Issue{Level: IssueWarning, Message: "mesh scale 0 collapses all geometry", Path: path})
	}
	out = append(out, validateMaterial(m.Material, path)...)
	return out
}

func validateMaterial(m Material, path string) []Issue {
	var out []Issue
	if m.Reflectiveness < 0 || m.Reflectiveness > 1 {
		out = append(out, Issue{Level: IssueWarning, Message: "material reflectiveness outside [0, 1]", Path: path})
	}
	if m.Transparency < 0 || m.Transparency > 1 {
		out = append(out, Issue{Level: IssueWarning, Message: "material transparency outside [0, 1]", Path: path})
	}
	if m.IOR < 1 {
		out = append(out, Issue{Level: IssueWarning, Message: "material ior below 1 is not physical", Path: path})
	}
	if m.Texture.Type == TextureImage {
		out = append(out, validatePath(m.Texture.Image, path, imageExts)...)
	}
	return out
}

var (
	imageExts = []string{".png", ".jpg", ".jpeg", ".bmp", ".tga"}
	modelExts = []string{".obj"}
)

// validatePath flags suspicious resource references. Files are resolved
// lazily by the renderer, so a missing file is not detectable here; the
// checks cover what the path string alone reveals.
func validatePath(p, at string, allowed []string) []Issue {
	var out []Issue
	if strings.Contains(p, "..") {
		out = append(out, Issue{Level: IssueWarning, Message: "resource path contains '..'", Path: at + ": " + p})
	}
	ext := strings.ToLower(filepath.Ext(p))
	ok := false
	for _, e := range allowed {
		if ext == e {
			ok = true
			break
		}
	}
	if !ok {
		out = append(out, Issue{
			Level:   IssueWarning,
			Code:    "unknown_extension",
			Message: fmt.Sprintf("unexpected resource extension %q", ext),
			Path:    at + ": " + p,
		})
	}
	return out
}

func vecNaN(v types.Vector) bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}
