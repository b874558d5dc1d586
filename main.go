package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"rcon-go/internal/console"
	"rcon-go/rcon"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := console.ParseArgs(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Printf("Try '%s -h' for help.\n", console.AppName)
		return 1
	}

	switch {
	case opts.ShowHelp:
		console.PrintHelp(os.Stdout)
		return 0
	case opts.ShowVersion:
		fmt.Printf("%s %s\n", console.AppName, console.Version)
		return 0
	}

	interactive := opts.TerminalMode && term.IsTerminal(int(os.Stdin.Fd()))
	if !interactive {
		// readline handles Ctrl-C itself in interactive mode
		setupSignalHandler()
	}

	client, err := rcon.Dial(opts.Host, opts.Port, opts.Password, opts.Timeout)
	if err != nil {
		if errors.Is(err, rcon.ErrAuthentication) {
			fmt.Fprintf(os.Stderr, "Authentication failed: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Connection failed: %v\n", err)
		}
		return 1
	}
	defer client.Close()

	con := console.New(client, opts, os.Stdout, os.Stderr)
	switch {
	case interactive:
		return con.RunInteractive(historyFile())
	case opts.TerminalMode:
		return con.RunTerminal(os.Stdin)
	default:
		return con.RunCommands(opts.Commands)
	}
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rcon_history")
}

func setupSignalHandler() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nDisconnecting...")
		os.Exit(0)
	}()
}
