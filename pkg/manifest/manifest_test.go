package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	m, err := Parse([]byte(`
scenes:
  - name: checker
    source: checker.scene
  - name: orbit
    source: orbit.scene
    frames: 120
    fps: 24
    start: 1.5
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(m.Scenes) != 2 {
		t.Fatalf("got %d scenes, want 2", len(m.Scenes))
	}

	first := m.Scenes[0]
	if first.Name != "checker" || first.Source != "checker.scene" {
		t.Errorf("first scene: %+v", first)
	}
	if first.Frames != 1 || first.FPS != 30 || first.Start != 0 {
		t.Errorf("defaults not applied: %+v", first)
	}

	second := m.Scenes[1]
	if second.Frames != 120 || second.FPS != 24 || second.Start != 1.5 {
		t.Errorf("second scene: %+v", second)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{"empty", "", "empty manifest"},
		{"not a mapping", "- a\n- b\n", "must be a mapping"},
		{"unknown top key", "renderers: []\n", "unknown key 'renderers'"},
		{"no scenes", "scenes: []\n", "at least one scene"},
		{"scenes not sequence", "scenes: 4\n", "must be a sequence"},
		{"scene not mapping", "scenes:\n  - just-a-string\n", "must be a mapping"},
		{"missing name", "scenes:\n  - source: a.scene\n", "must have 'name'"},
		{"missing source", "scenes:\n  - name: a\n", "must have 'source'"},
		{"bad name uppercase", "scenes:\n  - name: Checker\n    source: a.scene\n", "must match"},
		{"bad name leading digit", "scenes:\n  - name: 9lives\n    source: a.scene\n", "must match"},
		{"unknown scene key", "scenes:\n  - name: a\n    source: a.scene\n    speed: 2\n", "unknown key 'speed'"},
		{"zero frames", "scenes:\n  - name: a\n    source: a.scene\n    frames: 0\n", "positive integer"},
		{"frames not a number", "scenes:\n  - name: a\n    source: a.scene\n    frames: many\n", "positive integer"},
		{"negative fps", "scenes:\n  - name: a\n    source: a.scene\n    fps: -1\n", "positive number"},
		{"bad start", "scenes:\n  - name: a\n    source: a.scene\n    start: soon\n", "must be a number"},
		{"duplicate name", "scenes:\n  - name: a\n    source: a.scene\n  - name: a\n    source: b.scene\n", "duplicate scene name"},
		{"invalid yaml", "scenes: [\n", "invalid YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.source))
			if err == nil {
				t.Fatal("expected error")
			}
			if _, ok := err.(*Error); !ok {
				t.Fatalf("expected *manifest.Error, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParseErrorLocation(t *testing.T) {
	_, err := Parse([]byte("scenes:\n  - name: a\n    source: a.scene\n    frames: 0\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	me := err.(*Error)
	if !strings.Contains(me.Location, "line 4") {
		t.Errorf("location %q should point at line 4", me.Location)
	}
}

func TestParseRejectsOversizedInput(t *testing.T) {
	big := make([]byte, MaxSourceSize+1)
	for i := range big {
		big[i] = ' '
	}
	_, err := Parse(big)
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("oversized manifest not rejected: %v", err)
	}
}

func TestValidSceneNames(t *testing.T) {
	for _, name := range []string{"a", "checker", "scene_2", "multi-word-name", "x9"} {
		src := "scenes:\n  - name: " + name + "\n    source: a.scene\n"
		if _, err := Parse([]byte(src)); err != nil {
			t.Errorf("name %q rejected: %v", name, err)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenes.yaml")
	content := "scenes:\n  - name: demo\n    source: demo.scene\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(m.Scenes) != 1 || m.Scenes[0].Name != "demo" {
		t.Errorf("loaded manifest: %+v", m)
	}

	if _, err := Load(filepath.Join(dir, "nope.yaml")); err == nil {
		t.Error("missing file must fail")
	}
}
