package runtime

import (
	"fmt"

	"github.com/lemonberrylabs/scenescript/pkg/scene"
	"github.com/lemonberrylabs/scenescript/pkg/sdl"
	"github.com/lemonberrylabs/scenescript/pkg/types"
)

// Result bundles everything one compile produces: the bound scene
// description and the advisory validation issues.
type Result struct {
	Description *scene.Description
	Issues      []scene.Issue
}

// Compile runs the full pipeline on a single source: tokenize, parse,
// evaluate, bind, validate.
func Compile(src string, opts Options) (*Result, error) {
	prog, err := sdl.Parse(src)
	if err != nil {
		return nil, err
	}
	return CompileProgram(prog, opts)
}

// CompileProgram evaluates an already parsed program with a fresh
// evaluator. Programs are immutable after parsing, so frame sequences
// parse once and reuse the same Program.
func CompileProgram(prog sdl.Program, opts Options) (*Result, error) {
	ev := New(opts)
	if err := ev.Run(prog); err != nil {
		return nil, err
	}
	desc, err := scene.Bind(ev.Accumulator())
	if err != nil {
		return nil, err
	}
	return &Result{Description: desc, Issues: scene.Validate(desc)}, nil
}

// CompileFrames compiles n frames of an animated scene. Frame i
// evaluates with t = start + i/fps; every frame gets a fresh
// environment and accumulator.
func CompileFrames(src string, n int, fps, start float64, opts Options) ([]*Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("frame count must be positive, got %d", n)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %s", types.FormatNumber(fps))
	}

	prog, err := sdl.Parse(src)
	if err != nil {
		return nil, err
	}

	frames := make([]*Result, 0, n)
	for i := 0; i < n; i++ {
		frameOpts := opts
		frameOpts.Time = start + float64(i)/fps
		res, err := CompileProgram(prog, frameOpts)
		if err != nil {
			return nil, fmt.Errorf("frame %d (t=%s): %w",
				i, types.FormatNumber(frameOpts.Time), err)
		}
		frames = append(frames, res)
	}
	return frames, nil
}
