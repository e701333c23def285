// Package main is the entry point for the scenescript compiler and
// scene service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/scenescript/pkg/api"
	"github.com/lemonberrylabs/scenescript/pkg/manifest"
	"github.com/lemonberrylabs/scenescript/pkg/runtime"
	"github.com/lemonberrylabs/scenescript/pkg/scene"
	"github.com/lemonberrylabs/scenescript/pkg/store"
	"github.com/lemonberrylabs/scenescript/web"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "scenescript",
	Short: "Scene description language compiler and scene service",
}

func init() {
	rootCmd.Version = version + " (commit=" + commit + ", built=" + date + ")"
	rootCmd.SetVersionTemplate("scenescript version {{.Version}}\n")

	rootCmd.AddCommand(renderCmd, checkCmd, watchCmd, serveCmd, replCmd)

	renderCmd.Flags().StringP("output", "o", "", "Output path; default stdout, frame mode writes <output>.NNN.json")
	renderCmd.Flags().Int("frames", 1, "Number of frames to compile")
	renderCmd.Flags().Float64("fps", 30, "Frame rate for the t binding (t = time + frame/fps)")
	renderCmd.Flags().Float64("time", 0, "Value bound to t for a single-frame compile")
	renderCmd.Flags().String("manifest", "", "Compile every scene listed in a YAML manifest")

	watchCmd.Flags().Duration("interval", 2*time.Second, "Poll interval for file changes")

	serveCmd.Flags().Int("port", 0, "HTTP server port (default 8787, env PORT)")
	serveCmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env HOST)")
	serveCmd.Flags().String("scenes-dir", "", "Directory of scene files to preload and watch (env SCENES_DIR)")
	serveCmd.Flags().Duration("interval", 2*time.Second, "Poll interval for --scenes-dir changes")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Compile a scene source to a bound description JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	manifestPath, _ := cmd.Flags().GetString("manifest")
	output, _ := cmd.Flags().GetString("output")

	if manifestPath != "" {
		return renderManifest(manifestPath, output)
	}
	if len(args) == 0 {
		return fmt.Errorf("render needs a scene file or --manifest")
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading scene: %w", err)
	}

	frames, _ := cmd.Flags().GetInt("frames")
	fps, _ := cmd.Flags().GetFloat64("fps")
	start, _ := cmd.Flags().GetFloat64("time")

	if frames > 1 {
		results, err := runtime.CompileFrames(string(src), frames, fps, start, runtime.Options{})
		if err != nil {
			return err
		}
		if output == "" {
			output = trimExt(args[0])
		}
		for i, res := range results {
			path := fmt.Sprintf("%s.%03d.json", output, i)
			if err := writeJSON(path, res.Description); err != nil {
				return err
			}
		}
		log.Printf("Wrote %d frame(s) to %s.NNN.json", len(results), output)
		return nil
	}

	res, err := runtime.Compile(string(src), runtime.Options{Time: start})
	if err != nil {
		return err
	}
	reportIssues(res.Issues)
	if output == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Description)
	}
	return writeJSON(output, res.Description)
}

// renderManifest compiles every scene a manifest lists, writing one
// JSON file per scene (per frame when animated) next to the output
// path or the manifest itself.
func renderManifest(path, output string) error {
	m, err := manifest.Load(path)
	if err != nil {
		return err
	}

	dir := output
	if dir == "" {
		dir = filepath.Dir(path)
	}
	baseDir := filepath.Dir(path)

	for _, sc := range m.Scenes {
		src, err := os.ReadFile(filepath.Join(baseDir, sc.Source))
		if err != nil {
			return fmt.Errorf("scene '%s': %w", sc.Name, err)
		}

		if sc.Frames > 1 {
			results, err := runtime.CompileFrames(string(src), sc.Frames, sc.FPS, sc.Start, runtime.Options{})
			if err != nil {
				return fmt.Errorf("scene '%s': %w", sc.Name, err)
			}
			for i, res := range results {
				out := filepath.Join(dir, fmt.Sprintf("%s.%03d.json", sc.Name, i))
				if err := writeJSON(out, res.Description); err != nil {
					return err
				}
			}
			log.Printf("Compiled scene %q (%d frames)", sc.Name, sc.Frames)
			continue
		}

		res, err := runtime.Compile(string(src), runtime.Options{Time: sc.Start})
		if err != nil {
			return fmt.Errorf("scene '%s': %w", sc.Name, err)
		}
		reportIssues(res.Issues)
		if err := writeJSON(filepath.Join(dir, sc.Name+".json"), res.Description); err != nil {
			return err
		}
		log.Printf("Compiled scene %q", sc.Name)
	}
	return nil
}

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Compile a scene and report validation issues without writing output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading scene: %w", err)
		}
		res, err := runtime.Compile(string(src), runtime.Options{})
		if err != nil {
			return err
		}
		reportIssues(res.Issues)
		fmt.Printf("%s: %d object(s), %d light(s), %d issue(s)\n",
			args[0], len(res.Description.Objects), len(res.Description.Lights), len(res.Issues))
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Compile every scene in a directory and recompile on change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")

		s := store.New()
		server := api.New(s)
		if err := server.LoadDir(args[0]); err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh
			cancel()
		}()

		log.Printf("Watching %s (interval %s)", args[0], interval)
		server.Watch(ctx, args[0], interval)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scene compile service with API and dashboard",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	port := envOrDefault("PORT", "8787")
	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		port = fmt.Sprintf("%d", v)
	}

	host := envOrDefault("HOST", "0.0.0.0")
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		host = v
	}

	scenesDir := os.Getenv("SCENES_DIR")
	if v, _ := cmd.Flags().GetString("scenes-dir"); v != "" {
		scenesDir = v
	}
	interval, _ := cmd.Flags().GetDuration("interval")

	addr := fmt.Sprintf("%s:%s", host, port)

	s := store.New()
	server := api.New(s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if scenesDir != "" {
		log.Printf("Loading scenes from %s", scenesDir)
		if err := server.LoadDir(scenesDir); err != nil {
			log.Printf("Warning: failed to load scenes directory: %v", err)
		}
		go server.Watch(ctx, scenesDir, interval)
	}

	// Register the dashboard (non-fatal if template parsing fails).
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Warning: dashboard disabled due to template error: %v", r)
			}
		}()
		ui := web.New(s)
		ui.Register(server.App())
	}()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		cancel()
		if err := server.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("scenescript service listening on %s", addr)
	if scenesDir == "" {
		log.Printf("API-only mode (no --scenes-dir specified)")
	}
	return server.Listen(addr)
}

// reportIssues logs validation findings to stderr so JSON output on
// stdout stays clean.
func reportIssues(issues []scene.Issue) {
	for _, iss := range issues {
		if iss.Path != "" {
			log.Printf("%s: %s (%s)", iss.Level, iss.Message, iss.Path)
			continue
		}
		log.Printf("%s: %s", iss.Level, iss.Message)
	}
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func trimExt(path string) string {
	return path[:len(path)-len(filepath.Ext(path))]
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
