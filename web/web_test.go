package web

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/lemonberrylabs/scenescript/pkg/runtime"
	"github.com/lemonberrylabs/scenescript/pkg/store"
)

func setupTestApp(t *testing.T) (*fiber.App, *store.Store) {
	t.Helper()
	s := store.New()
	h := New(s)
	app := fiber.New()
	h.Register(app)
	return app, s
}

// putScene compiles source and stores it under name.
func putScene(t *testing.T, s *store.Store, name, source string) *store.CompiledScene {
	t.Helper()
	res, err := runtime.Compile(source, runtime.Options{})
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s.Put(&store.CompiledScene{
		Name:        name,
		Source:      source,
		Description: res.Description,
		Issues:      res.Issues,
	})
}

func getHTML(t *testing.T, app *fiber.App, target string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestSceneListEmpty(t *testing.T) {
	app, _ := setupTestApp(t)

	code, html := getHTML(t, app, "/ui")
	if code != 200 {
		t.Fatalf("expected 200, got %d: %s", code, html)
	}
	if !strings.Contains(html, "Scenes") {
		t.Error("expected Scenes heading")
	}
	if !strings.Contains(html, "No scenes compiled yet") {
		t.Error("expected empty state message")
	}
}

func TestSceneListWithData(t *testing.T) {
	app, s := setupTestApp(t)

	putScene(t, s, "checker", `
sphere { position: <0, 1, 0>, radius: 1 }
sun { vector: <0, 0 - 1, 0> }
`)
	s.Fail("broken", "let x =", &parseFailure{})

	code, html := getHTML(t, app, "/ui")
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(html, "checker") || !strings.Contains(html, "broken") {
		t.Error("expected both scene names")
	}
	if !strings.Contains(html, "1 ready, 1 failed") {
		t.Errorf("expected state summary, got: %s", html)
	}
	if !strings.Contains(html, "state-ready") || !strings.Contains(html, "state-failed") {
		t.Error("expected state badge classes")
	}
}

func TestSceneDetail(t *testing.T) {
	app, s := setupTestApp(t)

	source := `sphere { position: <0, 1, 0>, radius: 1 }
sun { vector: <0, 0 - 1, 0> }`
	putScene(t, s, "demo", source)

	code, html := getHTML(t, app, "/ui/scenes/demo")
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(html, "demo") {
		t.Error("expected scene name")
	}
	if !strings.Contains(html, "sphere") {
		t.Error("expected description JSON")
	}
	if !strings.Contains(html, "2 lines") {
		t.Error("expected source line count")
	}
}

func TestSceneDetailShowsIssues(t *testing.T) {
	app, s := setupTestApp(t)

	// No lights: validation warns.
	putScene(t, s, "dark", "sphere { position: <0, 1, 0>, radius: 1 }")

	_, html := getHTML(t, app, "/ui/scenes/dark")
	if !strings.Contains(html, "Issues") {
		t.Error("expected issues section")
	}
	if !strings.Contains(html, "no lights") {
		t.Errorf("expected no-lights warning, got: %s", html)
	}
}

func TestSceneDetailShowsError(t *testing.T) {
	app, s := setupTestApp(t)
	s.Fail("bad", "let x =", &parseFailure{})

	_, html := getHTML(t, app, "/ui/scenes/bad")
	if !strings.Contains(html, "error-box") {
		t.Error("expected error box")
	}
	if !strings.Contains(html, "unexpected end of input") {
		t.Errorf("expected error message, got: %s", html)
	}
}

func TestSceneNotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	code, html := getHTML(t, app, "/ui/scenes/nonexistent")
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(html, "not found") {
		t.Error("expected not found message")
	}
}

func TestRootRedirect(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 302 {
		t.Fatalf("expected 302 redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/ui" {
		t.Fatalf("expected redirect to /ui, got %s", loc)
	}
}

// parseFailure stands in for a compile error when seeding failed scenes.
type parseFailure struct{}

func (parseFailure) Error() string { return "ParseError: unexpected end of input" }
