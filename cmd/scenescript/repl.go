package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/scenescript/pkg/runtime"
	"github.com/lemonberrylabs/scenescript/pkg/scene"
	"github.com/lemonberrylabs/scenescript/pkg/sdl"
)

const historyFile = ".scenescript_history"

const replHelp = `Commands:
  :scene   print the scene built so far as bound JSON
  :reset   discard all bindings and declarations
  :help    this text
  :quit    exit the session
Anything else is evaluated: expressions print their value,
statements and object declarations run silently.
`

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive scenescript session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runREPL()
	},
}

func runREPL() error {
	fmt.Printf("scenescript %s — :help for commands, :quit to exit\n", version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ev := runtime.New(runtime.Options{})

	for {
		code, ok := readInput(ln)
		if !ok {
			fmt.Println()
			break
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, ":") {
			if quit := replCommand(&ev, trimmed); quit {
				break
			}
			ln.AppendHistory(trimmed)
			continue
		}

		evalLine(ev, code)
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return nil
}

// readInput collects one unit of input, continuing across lines while
// brackets stay open. Returns false on EOF or Ctrl+C at an empty
// prompt.
func readInput(ln *liner.State) (string, bool) {
	var buf strings.Builder
	prompt := ">> "
	for {
		line, err := ln.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted && buf.Len() > 0 {
				return "", true // abandon the pending input, keep the session
			}
			return "", false
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
		if openBrackets(buf.String()) <= 0 {
			return buf.String(), true
		}
		prompt = " . "
	}
}

// openBrackets counts unclosed braces, parens and square brackets,
// ignoring string literals and comments. Angle brackets are left out:
// they double as comparison operators.
func openBrackets(src string) int {
	depth := 0
	inString := false
	for i := 0; i < len(src); i++ {
		ch := src[i]
		if inString {
			if ch == '\\' {
				i++
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			depth--
		}
	}
	return depth
}

// evalLine runs one input. An input that parses as a lone expression
// prints its value; everything else executes as statements.
func evalLine(ev *runtime.Evaluator, code string) {
	if expr, err := sdl.ParseExpression(code); err == nil {
		v, err := ev.EvalExpression(expr)
		if err != nil {
			fmt.Println(err)
			return
		}
		if !v.IsUnit() {
			fmt.Println(v.String())
		}
		return
	}

	prog, err := sdl.Parse(code)
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := ev.Run(prog); err != nil {
		fmt.Println(err)
	}
}

func replCommand(ev **runtime.Evaluator, cmd string) (quit bool) {
	switch strings.Fields(cmd)[0] {
	case ":quit", ":exit", ":q":
		return true
	case ":reset":
		*ev = runtime.New(runtime.Options{})
		fmt.Println("session reset.")
	case ":scene":
		desc, err := scene.Bind((*ev).Accumulator())
		if err != nil {
			fmt.Println(err)
			return false
		}
		b, err := json.MarshalIndent(desc, "", "  ")
		if err != nil {
			fmt.Println(err)
			return false
		}
		fmt.Println(string(b))
	case ":help":
		fmt.Print(replHelp)
	default:
		fmt.Printf("unknown command %s (:help for commands)\n", cmd)
	}
	return false
}
