package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/chzyer/readline"
)

// LineReader is the subset of *readline.Instance the REPL needs.
type LineReader interface {
	Readline() (string, error)
}

const replHelp = `Commands:
  :models        list available models
  :model <name>  switch to another model
  :reload        fetch the model list again
  :help          show this help
  :quit          exit
Any other line, ":) like this" included, is analyzed with the selected model.`

// REPL drives the interactive session: one line in, one analysis out.
type REPL struct {
	console *Console
	reader  LineReader
	out     io.Writer

	models   []string
	selected string
}

func NewREPL(console *Console, reader LineReader, out io.Writer) *REPL {
	return &REPL{console: console, reader: reader, out: out}
}

// Selected returns the model analyses are sent to, or "" when none is usable.
func (r *REPL) Selected() string {
	return r.selected
}

// Reload refreshes the catalog and reapplies the selection rule.
func (r *REPL) Reload(ctx context.Context) {
	r.models = r.console.ListModels(ctx)
	r.selected, _ = r.console.SelectModel(r.models)
	if r.selected != "" {
		fmt.Fprintf(r.out, "Using model %s\n", r.selected)
	}
}

// Run reads lines until EOF, :quit or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	r.Reload(ctx)
	fmt.Fprintln(r.out, "Type :help for commands.")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := r.reader.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		if quit := r.handle(ctx, line); quit {
			return nil
		}
	}
}

// commands lists the words the REPL reserves. Anything else, including text
// that opens with an emoticon like ":)", is analyzed.
var commands = map[string]bool{
	":quit": true, ":exit": true, ":q": true,
	":help": true, ":reload": true,
	":models": true, ":model": true,
}

func (r *REPL) handle(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	if !commands[cmd] {
		r.console.Submit(ctx, line, r.selected)
		return false
	}
	arg = strings.TrimSpace(arg)

	switch cmd {
	case ":quit", ":exit", ":q":
		return true
	case ":help":
		fmt.Fprintln(r.out, replHelp)
	case ":reload":
		r.Reload(ctx)
	case ":models":
		if len(r.models) == 0 {
			r.console.warnf("No models available.")
			break
		}
		for _, m := range r.models {
			marker := " "
			if m == r.selected {
				marker = "*"
			}
			fmt.Fprintf(r.out, "%s %s\n", marker, m)
		}
	case ":model":
		switch {
		case arg == "":
			r.console.warnf("Usage: :model <name>")
		case !slices.Contains(r.models, arg):
			r.console.warnf("Unknown model %q. Use :models to list the catalog.", arg)
		default:
			r.selected = arg
			fmt.Fprintf(r.out, "Using model %s\n", r.selected)
		}
	}
	return false
}
