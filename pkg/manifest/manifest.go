// Package manifest reads the YAML scene manifest that drives batch
// compiles: a list of scenes, each naming its source file and frame
// settings.
package manifest

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MaxSourceSize is the maximum manifest size in bytes (1 MiB).
const MaxSourceSize = 1024 * 1024

// DefaultFPS is the frame rate assumed when a scene omits fps.
const DefaultFPS = 30

// Error represents an error encountered while reading a manifest.
type Error struct {
	Message  string
	Location string // e.g., "scene 'orbit'"
}

func (e *Error) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("manifest error at %s: %s", e.Location, e.Message)
	}
	return fmt.Sprintf("manifest error: %s", e.Message)
}

// Scene is one entry of the manifest. Frame i of an animated scene
// evaluates at t = Start + i/FPS.
type Scene struct {
	Name   string  // required, [a-z][a-z0-9_-]*
	Source string  // required, path relative to the manifest directory
	Frames int     // default 1
	FPS    float64 // default 30
	Start  float64 // t offset of frame 0
}

// Manifest is a parsed scene manifest.
type Manifest struct {
	Scenes []Scene
}

var sceneNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data)
}

// Parse parses manifest YAML.
func Parse(source []byte) (*Manifest, error) {
	if len(source) > MaxSourceSize {
		return nil, &Error{Message: fmt.Sprintf(
			"manifest size %d exceeds maximum %d bytes", len(source), MaxSourceSize)}
	}

	var raw yaml.Node
	if err := yaml.Unmarshal(source, &raw); err != nil {
		return nil, &Error{Message: fmt.Sprintf("invalid YAML: %v", err)}
	}
	if raw.Kind != yaml.DocumentNode || len(raw.Content) == 0 {
		return nil, &Error{Message: "empty manifest"}
	}

	root := raw.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &Error{Message: "manifest must be a mapping"}
	}

	m := &Manifest{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		val := root.Content[i+1]

		switch key.Value {
		case "scenes":
			scenes, err := parseScenes(val)
			if err != nil {
				return nil, err
			}
			m.Scenes = scenes
		default:
			return nil, &Error{
				Message:  fmt.Sprintf("unknown key '%s'", key.Value),
				Location: fmt.Sprintf("line %d", key.Line),
			}
		}
	}

	if len(m.Scenes) == 0 {
		return nil, &Error{Message: "manifest must list at least one scene"}
	}
	return m, nil
}

func parseScenes(node *yaml.Node) ([]Scene, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, &Error{
			Message:  "scenes must be a sequence",
			Location: fmt.Sprintf("line %d", node.Line),
		}
	}

	seen := make(map[string]bool)
	var scenes []Scene
	for _, item := range node.Content {
		s, err := parseScene(item)
		if err != nil {
			return nil, err
		}
		if seen[s.Name] {
			return nil, &Error{
				Message:  fmt.Sprintf("duplicate scene name '%s'", s.Name),
				Location: fmt.Sprintf("line %d", item.Line),
			}
		}
		seen[s.Name] = true
		scenes = append(scenes, s)
	}
	return scenes, nil
}

func parseScene(node *yaml.Node) (Scene, error) {
	s := Scene{Frames: 1, FPS: DefaultFPS}

	if node.Kind != yaml.MappingNode {
		return s, &Error{
			Message:  "each scene must be a mapping",
			Location: fmt.Sprintf("line %d", node.Line),
		}
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		val := node.Content[i+1]
		loc := fmt.Sprintf("line %d", val.Line)

		switch key.Value {
		case "name":
			s.Name = val.Value
		case "source":
			s.Source = val.Value
		case "frames":
			n, err := strconv.Atoi(val.Value)
			if err != nil || n < 1 {
				return s, &Error{
					Message:  fmt.Sprintf("frames must be a positive integer, got '%s'", val.Value),
					Location: loc,
				}
			}
			s.Frames = n
		case "fps":
			f, err := strconv.ParseFloat(val.Value, 64)
			if err != nil || f <= 0 {
				return s, &Error{
					Message:  fmt.Sprintf("fps must be a positive number, got '%s'", val.Value),
					Location: loc,
				}
			}
			s.FPS = f
		case "start":
			f, err := strconv.ParseFloat(val.Value, 64)
			if err != nil {
				return s, &Error{
					Message:  fmt.Sprintf("start must be a number, got '%s'", val.Value),
					Location: loc,
				}
			}
			s.Start = f
		default:
			return s, &Error{
				Message:  fmt.Sprintf("unknown key '%s' in scene", key.Value),
				Location: fmt.Sprintf("line %d", key.Line),
			}
		}
	}

	loc := fmt.Sprintf("line %d", node.Line)
	if s.Name == "" {
		return s, &Error{Message: "scene must have 'name'", Location: loc}
	}
	if !sceneNamePattern.MatchString(s.Name) {
		return s, &Error{
			Message:  fmt.Sprintf("scene name '%s' must match %s", s.Name, sceneNamePattern),
			Location: loc,
		}
	}
	if s.Source == "" {
		return s, &Error{
			Message:  "scene must have 'source'",
			Location: fmt.Sprintf("scene '%s'", s.Name),
		}
	}
	return s, nil
}
