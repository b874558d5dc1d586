// Package commands provides the built-in command set served by rcond.
package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Func runs a command with its whitespace-separated arguments.
type Func func(args []string) string

type command struct {
	usage string
	run   Func
}

// Registry maps command names to implementations. It satisfies
// rcon.Handler and is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]command)}
}

// Register adds or replaces a command. Names are case-insensitive.
func (r *Registry) Register(name, usage string, run Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[strings.ToLower(name)] = command{usage: usage, run: run}
}

// Handle parses line and dispatches it.
func (r *Registry) Handle(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}

	r.mu.RLock()
	cmd, ok := r.commands[strings.ToLower(fields[0])]
	r.mu.RUnlock()

	if !ok {
		return fmt.Sprintf("Unknown command: %s. Type 'help' for a list of commands.", fields[0])
	}
	return cmd.run(fields[1:])
}

// Help lists every command with its usage, sorted by name.
func (r *Registry) Help() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %-8s %s\n", name, r.commands[name].usage)
	}
	return b.String()
}

// NewBuiltin returns a registry with the standard rcond commands.
// stats reports the live connection count.
func NewBuiltin(version string, started time.Time, stats func() int) *Registry {
	r := NewRegistry()

	r.Register("help", "list commands", func([]string) string {
		return r.Help()
	})
	r.Register("ping", "check the server is responsive", func([]string) string {
		return "pong"
	})
	r.Register("echo", "echo <text> - repeat text back", func(args []string) string {
		return strings.Join(args, " ")
	})
	r.Register("time", "current server time (RFC 3339)", func([]string) string {
		return time.Now().Format(time.RFC3339)
	})
	r.Register("uptime", "time since the server started", func([]string) string {
		return time.Since(started).Truncate(time.Second).String()
	})
	r.Register("version", "server version", func([]string) string {
		return version
	})
	r.Register("conns", "number of open rcon connections", func([]string) string {
		return fmt.Sprintf("%d connection(s)", stats())
	})

	return r
}
