package api

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lemonberrylabs/scenescript/pkg/store"
)

const testScene = `
camera { vw: 100, vh: 100 }
sphere { position: <0, 1, 0>, radius: 1 }
sun { vector: <0, 0 - 1, 0> }
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(store.New())
}

func doJSON(t *testing.T, srv *Server, method, target, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)

	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var parsed map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			t.Fatalf("%s %s: invalid JSON response %q: %v", method, target, raw, err)
		}
	}
	return resp.StatusCode, parsed
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	code, body := doJSON(t, srv, "GET", "/healthz", "")
	if code != 200 {
		t.Fatalf("status %d", code)
	}
	if body["status"] != "ok" {
		t.Errorf("body: %v", body)
	}
}

func TestCompileSceneRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	code, body := doJSON(t, srv, "POST", "/v1/scenes/demo:compile", testScene)
	if code != 200 {
		t.Fatalf("compile status %d: %v", code, body)
	}
	if body["name"] != "demo" || body["state"] != "READY" {
		t.Errorf("compile response: %v", body)
	}
	desc, ok := body["description"].(map[string]any)
	if !ok {
		t.Fatalf("no description in response: %v", body)
	}
	if objects, _ := desc["objects"].([]any); len(objects) != 1 {
		t.Errorf("objects: %v", desc["objects"])
	}

	code, body = doJSON(t, srv, "GET", "/v1/scenes/demo", "")
	if code != 200 {
		t.Fatalf("get status %d", code)
	}
	if body["name"] != "demo" {
		t.Errorf("get response: %v", body)
	}

	code, body = doJSON(t, srv, "GET", "/v1/scenes", "")
	if code != 200 {
		t.Fatalf("list status %d", code)
	}
	scenes, _ := body["scenes"].([]any)
	if len(scenes) != 1 {
		t.Errorf("list: %v", body)
	}
}

func TestCompileScriptErrorIs400(t *testing.T) {
	srv := newTestServer(t)

	code, body := doJSON(t, srv, "POST", "/v1/scenes/bad:compile", "let x = nope")
	if code != 400 {
		t.Fatalf("status %d, want 400", code)
	}
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error object: %v", body)
	}
	if errObj["code"] != "UndefinedVariableError" {
		t.Errorf("error code: %v", errObj["code"])
	}
	if errObj["line"] == nil {
		t.Errorf("error must carry a source line: %v", errObj)
	}

	// The failed compile is recorded in the store.
	code, body = doJSON(t, srv, "GET", "/v1/scenes/bad", "")
	if code != 200 {
		t.Fatalf("get status %d", code)
	}
	if body["state"] != "FAILED" {
		t.Errorf("state: %v", body["state"])
	}
}

func TestRecompileFailureKeepsLastGood(t *testing.T) {
	srv := newTestServer(t)

	if code, _ := doJSON(t, srv, "POST", "/v1/scenes/demo:compile", testScene); code != 200 {
		t.Fatalf("first compile failed: %d", code)
	}
	if code, _ := doJSON(t, srv, "POST", "/v1/scenes/demo:compile", "let x ="); code != 400 {
		t.Fatal("broken recompile must 400")
	}

	_, body := doJSON(t, srv, "GET", "/v1/scenes/demo", "")
	if body["state"] != "FAILED" {
		t.Errorf("state: %v", body["state"])
	}
	if body["description"] == nil {
		t.Error("last good description must survive a failed recompile")
	}
}

func TestCompileValidation(t *testing.T) {
	srv := newTestServer(t)

	if code, _ := doJSON(t, srv, "POST", "/v1/scenes/demo:compile", "   "); code != 400 {
		t.Errorf("empty body: status %d, want 400", code)
	}
	if code, _ := doJSON(t, srv, "POST", "/v1/scenes/Bad-Name:compile", testScene); code != 400 {
		t.Errorf("invalid name: status %d, want 400", code)
	}
}

func TestStatelessCompile(t *testing.T) {
	srv := newTestServer(t)

	code, body := doJSON(t, srv, "POST", "/v1/compile", testScene)
	if code != 200 {
		t.Fatalf("status %d: %v", code, body)
	}
	if body["description"] == nil {
		t.Errorf("no description: %v", body)
	}
	// Stateless compiles do not touch the store.
	if code, _ := doJSON(t, srv, "GET", "/v1/scenes", ""); code != 200 {
		t.Fatal("list failed")
	}
	if srv.store.Len() != 0 {
		t.Errorf("store has %d scenes after stateless compile", srv.store.Len())
	}
}

func TestFrames(t *testing.T) {
	srv := newTestServer(t)

	animated := `sphere { position: <t, 0, 0>, radius: 1 }
sun { vector: <0, 0 - 1, 0> }`
	code, body := doJSON(t, srv, "POST", "/v1/scenes/anim:compile?frames=5&fps=10", animated)
	if code != 200 {
		t.Fatalf("compile status %d: %v", code, body)
	}
	if fc, _ := body["frameCount"].(float64); fc != 5 {
		t.Errorf("frameCount: %v", body["frameCount"])
	}

	code, frame := doJSON(t, srv, "GET", "/v1/scenes/anim/frames/3", "")
	if code != 200 {
		t.Fatalf("frame status %d", code)
	}
	objects, _ := frame["objects"].([]any)
	if len(objects) != 1 {
		t.Fatalf("frame objects: %v", frame)
	}
	sphere := objects[0].(map[string]any)["sphere"].(map[string]any)
	pos := sphere["position"].(map[string]any)
	if x := pos["x"].(float64); x != 0.3 {
		t.Errorf("frame 3 x = %v, want 0.3", x)
	}

	if code, _ := doJSON(t, srv, "GET", "/v1/scenes/anim/frames/99", ""); code != 404 {
		t.Errorf("out-of-range frame: status %d, want 404", code)
	}
	if code, _ := doJSON(t, srv, "GET", "/v1/scenes/anim/frames/three", ""); code != 400 {
		t.Errorf("non-integer frame: status %d, want 400", code)
	}
}

func TestDeleteScene(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, "POST", "/v1/scenes/demo:compile", testScene)

	if code, _ := doJSON(t, srv, "DELETE", "/v1/scenes/demo", ""); code != 200 {
		t.Fatalf("delete status %d", code)
	}
	if code, _ := doJSON(t, srv, "GET", "/v1/scenes/demo", ""); code != 404 {
		t.Errorf("get after delete: status %d, want 404", code)
	}
	if code, _ := doJSON(t, srv, "DELETE", "/v1/scenes/demo", ""); code != 404 {
		t.Errorf("second delete: status %d, want 404", code)
	}
}

func TestGetMissingScene(t *testing.T) {
	srv := newTestServer(t)
	if code, _ := doJSON(t, srv, "GET", "/v1/scenes/ghost", ""); code != 404 {
		t.Errorf("status %d, want 404", code)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("good.scene", testScene)
	write("other.sdl", testScene)
	write("UPPER.scene", testScene) // lowercased on load
	write("broken.scene", "let x =")
	write("notes.txt", "ignored")

	srv := newTestServer(t)
	if err := srv.LoadDir(dir); err != nil {
		t.Fatalf("load dir: %v", err)
	}

	for _, name := range []string{"good", "other", "upper"} {
		if _, err := srv.store.Get(name); err != nil {
			t.Errorf("scene %q not loaded: %v", name, err)
		}
	}
	// The broken scene is recorded as failed, not dropped.
	cs, err := srv.store.Get("broken")
	if err != nil {
		t.Fatalf("broken scene missing: %v", err)
	}
	if cs.State != store.StateFailed {
		t.Errorf("broken state: %s", cs.State)
	}
	if _, err := srv.store.Get("notes"); err == nil {
		t.Error("non-scene file must be ignored")
	}
}

func TestLoadDirMissing(t *testing.T) {
	srv := newTestServer(t)
	if err := srv.LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("missing directory must fail")
	}
}
