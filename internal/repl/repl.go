// Package repl implements the interactive research shell.
package repl

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/findyourn/reddit-listener/internal/research"
)

// REPL represents the interactive shell
type REPL struct {
	service *research.Service
	opts    research.Options
	rl      *readline.Instance
	ctx     context.Context

	// lastQuery lets `context` and `ideas` default to the most recent
	// discovery without retyping the query.
	lastQuery string
	lastIdeas []string

	commands map[string]CommandHandler
}

// CommandHandler handles a specific command
type CommandHandler func(args []string) error

// Config holds REPL configuration
type Config struct {
	Service *research.Service
	Options research.Options
}

// New creates a new REPL instance
func New(cfg *Config) (*REPL, error) {
	if cfg.Service == nil {
		return nil, fmt.Errorf("research service is required")
	}

	r := &REPL{
		service:  cfg.Service,
		opts:     cfg.Options,
		commands: make(map[string]CommandHandler),
	}
	r.registerCommands()

	return r, nil
}

// Run starts the REPL loop
func (r *REPL) Run(ctx context.Context) error {
	r.ctx = ctx

	cyan := color.New(color.FgCyan).SprintFunc()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("reddit> "),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	r.rl = rl
	r.printWelcome()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			} else if err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := r.processInput(line); err != nil {
			if err == io.EOF {
				return nil
			}
			red := color.New(color.FgRed).SprintFunc()
			fmt.Printf("%s %v\n", red("Error:"), err)
		}
	}
}

// processInput processes a single line of input
func (r *REPL) processInput(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	command := parts[0]
	args := parts[1:]

	if handler, ok := r.commands[command]; ok {
		return handler(args)
	}

	// Bare text is treated as a discovery query.
	return r.cmdDiscover(parts)
}

func (r *REPL) registerCommands() {
	r.commands["discover"] = r.cmdDiscover
	r.commands["context"] = r.cmdContext
	r.commands["research"] = r.cmdResearch
	r.commands["ideas"] = r.cmdIdeas
	r.commands["help"] = r.cmdHelp
	r.commands["?"] = r.cmdHelp
	r.commands["exit"] = r.cmdExit
	r.commands["quit"] = r.cmdExit
}

func (r *REPL) printWelcome() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s\n", cyan("Reddit Listener"))
	fmt.Println("Topic research from Reddit discussions")
	fmt.Println()
	fmt.Println("Type 'help' for available commands, 'exit' to quit")
	fmt.Println()
}
