// Package api implements the HTTP API for compiling and serving bound
// scene descriptions.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lemonberrylabs/scenescript/pkg/runtime"
	"github.com/lemonberrylabs/scenescript/pkg/store"
	"github.com/lemonberrylabs/scenescript/pkg/types"
)

// Server is the scene compile service.
type Server struct {
	app   *fiber.App
	store *store.Store
}

// New creates a new API server around a scene store.
func New(s *store.Store) *Server {
	srv := &Server{store: s}

	app := fiber.New(fiber.Config{
		AppName:               "scenescript",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          errorHandler,
	})

	app.Get("/healthz", srv.healthz)

	app.Get("/v1/scenes", srv.listScenes)
	app.Get("/v1/scenes/:name", srv.getScene)
	app.Get("/v1/scenes/:name/frames/:i", srv.getFrame)
	app.Post("/v1/scenes/:name\\:compile", srv.compileScene)
	app.Post("/v1/compile", srv.compile)
	app.Delete("/v1/scenes/:name", srv.deleteScene)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing and for
// mounting the dashboard).
func (s *Server) App() *fiber.App {
	return s.app
}

// errorHandler maps script errors to 400 responses carrying the error
// taxonomy code and source position; everything else is a 500 unless
// fiber already attached a status.
func errorHandler(c *fiber.Ctx, err error) error {
	var se *types.ScriptError
	if errors.As(err, &se) {
		body := fiber.Map{
			"code":    se.Code,
			"message": se.Message,
		}
		if se.Line > 0 {
			body["line"] = se.Line
			body["col"] = se.Col
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": body})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fiber.Map{"message": fe.Message},
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{"message": err.Error()},
	})
}

// --- Handlers ---

func (s *Server) healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) listScenes(c *fiber.Ctx) error {
	scenes := s.store.List()

	items := make([]fiber.Map, len(scenes))
	for i, cs := range scenes {
		items[i] = fiber.Map{
			"name":       cs.Name,
			"id":         cs.ID,
			"state":      cs.State,
			"objects":    cs.Stats.Objects,
			"lights":     cs.Stats.Lights,
			"frames":     len(cs.Frames),
			"issues":     len(cs.Issues),
			"compiledAt": cs.CompiledAt.Format(time.RFC3339),
		}
	}

	return c.JSON(fiber.Map{"scenes": items})
}

func (s *Server) getScene(c *fiber.Ctx) error {
	cs, err := s.store.Get(c.Params("name"))
	if err != nil {
		return notFound(c, err)
	}
	return c.JSON(sceneToJSON(cs))
}

func (s *Server) getFrame(c *fiber.Ctx) error {
	cs, err := s.store.Get(c.Params("name"))
	if err != nil {
		return notFound(c, err)
	}

	i, err := strconv.Atoi(c.Params("i"))
	if err != nil {
		return badRequest(c, fmt.Sprintf("frame index must be an integer, got '%s'", c.Params("i")))
	}
	if i < 0 || i >= len(cs.Frames) {
		return notFound(c, fmt.Errorf("scene '%s' has no frame %d (frames: %d)", cs.Name, i, len(cs.Frames)))
	}

	return c.JSON(cs.Frames[i])
}

func (s *Server) compileScene(c *fiber.Ctx) error {
	name := c.Params("name")
	if !validSceneName.MatchString(name) {
		return badRequest(c, fmt.Sprintf("invalid scene name '%s'", name))
	}

	src := string(c.Body())
	if strings.TrimSpace(src) == "" {
		return badRequest(c, "request body must contain scene source")
	}

	frames := c.QueryInt("frames", 1)
	fps := queryFloat(c, "fps", 30)
	start := queryFloat(c, "time", 0)

	cs, err := s.compileAndStore(name, src, frames, fps, start)
	if err != nil {
		// The error handler renders script errors as 400s.
		return err
	}
	return c.JSON(sceneToJSON(cs))
}

func (s *Server) compile(c *fiber.Ctx) error {
	src := string(c.Body())
	if strings.TrimSpace(src) == "" {
		return badRequest(c, "request body must contain scene source")
	}

	res, err := runtime.Compile(src, runtime.Options{Time: queryFloat(c, "time", 0)})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"description": res.Description,
		"issues":      res.Issues,
	})
}

func (s *Server) deleteScene(c *fiber.Ctx) error {
	name := c.Params("name")
	if err := s.store.Delete(name); err != nil {
		return notFound(c, err)
	}
	return c.JSON(fiber.Map{"deleted": name})
}

// compileAndStore runs the pipeline and records the result. Failures
// are recorded in the store (keeping the last good description) and
// returned to the caller.
func (s *Server) compileAndStore(name, src string, frames int, fps, start float64) (*store.CompiledScene, error) {
	began := time.Now()

	if frames <= 1 {
		res, err := runtime.Compile(src, runtime.Options{Time: start})
		if err != nil {
			s.store.Fail(name, src, err)
			return nil, err
		}
		return s.store.Put(&store.CompiledScene{
			Name:        name,
			Source:      src,
			State:       store.StateReady,
			Description: res.Description,
			Issues:      res.Issues,
			Stats:       store.Stats{Duration: time.Since(began)},
		}), nil
	}

	results, err := runtime.CompileFrames(src, frames, fps, start, runtime.Options{})
	if err != nil {
		s.store.Fail(name, src, err)
		return nil, err
	}

	cs := &store.CompiledScene{
		Name:        name,
		Source:      src,
		State:       store.StateReady,
		Description: results[0].Description,
		Issues:      results[0].Issues,
		Stats:       store.Stats{Duration: time.Since(began)},
	}
	for _, r := range results {
		cs.Frames = append(cs.Frames, r.Description)
	}
	return s.store.Put(cs), nil
}

// --- Directory Loading ---

var validSceneName = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// sceneFileExts are the source file extensions the directory loader
// picks up.
var sceneFileExts = map[string]bool{
	".scene": true,
	".sdl":   true,
}

// LoadDir compiles every scene file in a directory. The file base name
// becomes the scene name.
func (s *Server) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading scenes directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if !sceneFileExts[ext] {
			continue
		}

		base := strings.TrimSuffix(name, ext)
		sceneName := strings.ToLower(base)
		if sceneName != base {
			log.Printf("Warning: lowercased scene name %q (from file %q)", sceneName, name)
		}
		if !validSceneName.MatchString(sceneName) || len(sceneName) > 128 {
			log.Printf("Warning: skipping file %q - invalid scene name %q", name, sceneName)
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Printf("Warning: could not read %q: %v", name, err)
			continue
		}

		if _, err := s.compileAndStore(sceneName, string(data), 1, 0, 0); err != nil {
			log.Printf("Warning: could not compile %q: %v", name, err)
			continue
		}
		loaded++
		log.Printf("Loaded scene %q from %s", sceneName, name)
	}

	log.Printf("Loaded %d scene(s) from %s", loaded, dir)
	return nil
}

// Watch polls the directory for new or changed scene files and
// recompiles them, until the context is cancelled. A failed recompile
// is logged and the previous good scene stays served.
func (s *Server) Watch(ctx context.Context, dir string, interval time.Duration) {
	modTimes := make(map[string]time.Time)

	// Seed mod times so the initial LoadDir pass is not repeated.
	if entries, err := os.ReadDir(dir); err == nil {
		for _, entry := range entries {
			if info, err := entry.Info(); err == nil {
				modTimes[entry.Name()] = info.ModTime()
			}
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scanOnce(dir, modTimes)
		}
	}
}

func (s *Server) scanOnce(dir string, modTimes map[string]time.Time) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("Warning: reading scenes directory: %v", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !sceneFileExts[filepath.Ext(entry.Name())] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		name := entry.Name()
		if prev, ok := modTimes[name]; ok && !info.ModTime().After(prev) {
			continue
		}
		modTimes[name] = info.ModTime()

		sceneName := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
		if !validSceneName.MatchString(sceneName) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Printf("Warning: could not read %q: %v", name, err)
			continue
		}

		if _, err := s.compileAndStore(sceneName, string(data), 1, 0, 0); err != nil {
			log.Printf("Warning: recompile of %q failed, keeping previous scene: %v", sceneName, err)
			continue
		}
		log.Printf("Recompiled scene %q from %s", sceneName, name)
	}
}

// --- Helpers ---

func notFound(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": fiber.Map{"message": err.Error()},
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": fiber.Map{"message": msg},
	})
}

func queryFloat(c *fiber.Ctx, key string, def float64) float64 {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return f
}

func sceneToJSON(cs *store.CompiledScene) fiber.Map {
	result := fiber.Map{
		"name":       cs.Name,
		"id":         cs.ID,
		"state":      cs.State,
		"compiledAt": cs.CompiledAt.Format(time.RFC3339),
		"stats":      cs.Stats,
	}
	if cs.Description != nil {
		result["description"] = cs.Description
	}
	if len(cs.Issues) > 0 {
		result["issues"] = cs.Issues
	}
	if len(cs.Frames) > 0 {
		result["frameCount"] = len(cs.Frames)
	}
	if cs.Error != "" {
		result["error"] = cs.Error
	}
	return result
}
