package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/lemonberrylabs/scenescript/pkg/scene"
	"github.com/lemonberrylabs/scenescript/pkg/types"
)

func testDescription() *scene.Description {
	return &scene.Description{
		Camera:   scene.DefaultCamera(),
		Settings: scene.DefaultSettings(),
		Skybox:   scene.DefaultSkybox(),
		Objects: []scene.Object{
			{Kind: "sphere", Sphere: &scene.Sphere{Position: types.Vec(0, 1, 0), Radius: 1}},
			{Kind: "plane", Plane: &scene.Plane{Normal: types.Vec(0, 1, 0)}},
		},
		Lights: []scene.Light{
			{Kind: "sun", Sun: &scene.Sun{Vector: types.Vec(0, -1, 0)}},
		},
	}
}

func TestPutFillsDefaults(t *testing.T) {
	s := New()
	cs := s.Put(&CompiledScene{Name: "demo", Description: testDescription()})

	if cs.ID == "" {
		t.Error("Put must assign an ID")
	}
	if cs.CompiledAt.IsZero() {
		t.Error("Put must stamp CompiledAt")
	}
	if cs.State != StateReady {
		t.Errorf("state: got %s, want %s", cs.State, StateReady)
	}
	if cs.Stats.Objects != 2 || cs.Stats.Lights != 1 {
		t.Errorf("stats: %+v", cs.Stats)
	}
}

func TestPutReplacesByName(t *testing.T) {
	s := New()
	first := s.Put(&CompiledScene{Name: "demo", Description: testDescription()})
	second := s.Put(&CompiledScene{Name: "demo", Description: testDescription()})

	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	got, err := s.Get("demo")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != second.ID || got.ID == first.ID {
		t.Error("second Put must replace the first")
	}
}

func TestGetMissing(t *testing.T) {
	s := New()
	if _, err := s.Get("ghost"); err == nil {
		t.Error("expected error for missing scene")
	}
}

func TestListInsertionOrder(t *testing.T) {
	s := New()
	for _, name := range []string{"charlie", "alpha", "bravo"} {
		s.Put(&CompiledScene{Name: name})
	}
	// Recompiling must not move a scene.
	s.Put(&CompiledScene{Name: "alpha"})

	list := s.List()
	want := []string{"charlie", "alpha", "bravo"}
	if len(list) != len(want) {
		t.Fatalf("got %d scenes, want %d", len(list), len(want))
	}
	for i, name := range want {
		if list[i].Name != name {
			t.Errorf("position %d: got %s, want %s", i, list[i].Name, name)
		}
	}
}

func TestFailKeepsLastGoodDescription(t *testing.T) {
	s := New()
	s.Put(&CompiledScene{Name: "demo", Source: "good", Description: testDescription()})

	cs := s.Fail("demo", "broken", errors.New("ParseError: boom"))
	if cs.State != StateFailed {
		t.Errorf("state: %s", cs.State)
	}
	if cs.Error != "ParseError: boom" {
		t.Errorf("error: %q", cs.Error)
	}
	if cs.Source != "broken" {
		t.Errorf("source: %q", cs.Source)
	}
	if cs.Description == nil {
		t.Error("failing a recompile must keep the last good description")
	}
}

func TestFailUnknownSceneCreatesEntry(t *testing.T) {
	s := New()
	cs := s.Fail("fresh", "src", errors.New("boom"))
	if cs.ID == "" {
		t.Error("Fail must assign an ID to a new entry")
	}
	if cs.Description != nil {
		t.Error("a never-compiled scene has no description")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestDelete(t *testing.T) {
	s := New()
	s.Put(&CompiledScene{Name: "a"})
	s.Put(&CompiledScene{Name: "b"})

	if err := s.Delete("a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	list := s.List()
	if len(list) != 1 || list[0].Name != "b" {
		t.Errorf("list after delete: %+v", list)
	}
	if err := s.Delete("a"); err == nil {
		t.Error("second delete must fail")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	names := []string{"a", "b", "c", "d"}

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := names[i%len(names)]
			s.Put(&CompiledScene{Name: name, Description: testDescription()})
			s.Get(name)
			s.List()
			s.Len()
		}(i)
	}
	wg.Wait()

	if s.Len() != len(names) {
		t.Errorf("Len = %d, want %d", s.Len(), len(names))
	}
}
