// Package web provides the embedded web dashboard for the scene
// compile service.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lemonberrylabs/scenescript/pkg/scene"
	"github.com/lemonberrylabs/scenescript/pkg/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the dashboard pages.
type Handler struct {
	store   *store.Store
	funcMap template.FuncMap
}

// pageData wraps all page-specific data with common fields.
type pageData struct {
	NavActive string
	Data      interface{}
}

// New creates a new dashboard handler.
func New(s *store.Store) *Handler {
	return &Handler{
		store: s,
		funcMap: template.FuncMap{
			"timeAgo":    timeAgo,
			"formatTime": formatTime,
			"duration":   formatDuration,
			"stateClass": stateClass,
			"truncate":   truncate,
			"countLines": countLines,
			"issueCount": issueCount,
		},
	}
}

func (h *Handler) render(c *fiber.Ctx, page string, navActive string, data interface{}) error {
	// Parse templates fresh each time for the page-specific template.
	// This avoids the Go template issue where define blocks conflict
	// across pages.
	tmpl := template.Must(
		template.New("").Funcs(h.funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+page),
	)

	pd := pageData{
		NavActive: navActive,
		Data:      data,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, pd); err != nil {
		return c.Status(500).SendString(fmt.Sprintf("template error: %v", err))
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}

// Register adds dashboard routes to the Fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/ui", h.sceneList)
	app.Get("/ui/scenes/:name", h.sceneDetail)

	// Redirect root to UI
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/ui")
	})
}

// --- Page Data Types ---

type sceneListContent struct {
	Scenes      []*store.CompiledScene
	ReadyCount  int
	FailedCount int
}

type sceneDetailContent struct {
	Scene           *store.CompiledScene
	DescriptionJSON string
	FrameCount      int
}

type notFoundContent struct {
	Message string
}

// --- Page Handlers ---

func (h *Handler) sceneList(c *fiber.Ctx) error {
	scenes := h.store.List()

	var ready, failed int
	for _, cs := range scenes {
		switch cs.State {
		case store.StateReady:
			ready++
		case store.StateFailed:
			failed++
		}
	}

	return h.render(c, "scene_list.html", "scenes", sceneListContent{
		Scenes:      scenes,
		ReadyCount:  ready,
		FailedCount: failed,
	})
}

func (h *Handler) sceneDetail(c *fiber.Ctx) error {
	name := c.Params("name")

	cs, err := h.store.Get(name)
	if err != nil {
		return h.render(c, "not_found.html", "", notFoundContent{
			Message: fmt.Sprintf("Scene '%s' not found", name),
		})
	}

	var descJSON string
	if cs.Description != nil {
		b, err := json.MarshalIndent(cs.Description, "", "  ")
		if err == nil {
			descJSON = string(b)
		}
	}

	return h.render(c, "scene_detail.html", "scenes", sceneDetailContent{
		Scene:           cs,
		DescriptionJSON: descJSON,
		FrameCount:      len(cs.Frames),
	})
}

// --- Template Helpers ---

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", m)
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", h)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", m, s)
}

func stateClass(state store.State) string {
	switch state {
	case store.StateReady:
		return "state-ready"
	case store.StateFailed:
		return "state-failed"
	default:
		return ""
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// issueCount tallies issues at one level for the badge columns.
func issueCount(issues []scene.Issue, level scene.IssueLevel) int {
	n := 0
	for _, iss := range issues {
		if iss.Level == level {
			n++
		}
	}
	return n
}
