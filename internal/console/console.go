package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"rcon-go/rcon"
)

// Commander sends one command and returns the server's reply.
type Commander interface {
	Command(payload string) (string, error)
}

// Console drives a Commander from command line arguments or an input stream.
type Console struct {
	client Commander
	opts   *Options
	out    io.Writer
	errOut io.Writer

	sleep func(time.Duration)
}

// New returns a Console writing replies to out and errors to errOut.
func New(client Commander, opts *Options, out, errOut io.Writer) *Console {
	return &Console{
		client: client,
		opts:   opts,
		out:    out,
		errOut: errOut,
		sleep:  time.Sleep,
	}
}

// RunCommands executes commands in order, waiting opts.Wait between them.
func (c *Console) RunCommands(commands []string) int {
	for i, cmd := range commands {
		if err := c.execute(cmd); err != nil {
			fmt.Fprintf(c.errOut, "Command failed: %v\n", err)
			return 1
		}

		// Wait between commands if configured
		if i < len(commands)-1 && c.opts.Wait > 0 {
			c.sleep(c.opts.Wait)
		}
	}

	return 0
}

// RunTerminal reads one command per line from in without prompting, for
// piped input.
func (c *Console) RunTerminal(in io.Reader) int {
	scanner := bufio.NewScanner(in)
	return c.loop(func() (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return scanner.Text(), nil
	})
}

// RunInteractive runs terminal mode with line editing and history.
func (c *Console) RunInteractive(historyFile string) int {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       historyFile,
		HistorySearchFold: true,
		InterruptPrompt:   "^C",
	})
	if err != nil {
		fmt.Fprintf(c.errOut, "Input error: %v\n", err)
		return 1
	}
	defer rl.Close()

	c.out = rl.Stdout()
	c.errOut = rl.Stderr()

	fmt.Fprintln(c.out, "Logged in.")
	fmt.Fprintln(c.out, "Type 'Q' or press Ctrl-D / Ctrl-C to disconnect.")

	return c.loop(func() (string, error) {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			return "", io.EOF
		}
		return line, err
	})
}

func (c *Console) loop(next func() (string, error)) int {
	for {
		line, err := next()
		if errors.Is(err, io.EOF) {
			return 0
		}
		if err != nil {
			fmt.Fprintf(c.errOut, "Input error: %v\n", err)
			return 1
		}

		command := strings.TrimSpace(line)
		if len(command) == 0 {
			continue
		}

		if strings.EqualFold(command, "q") {
			return 0
		}

		if err := c.execute(command); err != nil {
			fmt.Fprintf(c.errOut, "Error: %v\n", err)
			if errors.Is(err, rcon.ErrConnection) {
				return 1
			}
		}

		// Exit on "stop" command to avoid server-side bug
		if strings.EqualFold(command, "stop") {
			return 0
		}
	}
}

func (c *Console) execute(command string) error {
	response, err := c.client.Command(command)
	if err != nil {
		return err
	}

	if !c.opts.SilentMode && len(response) > 0 {
		c.printResponse(response)
	}
	return nil
}

// printResponse prints the command response with optional color handling
func (c *Console) printResponse(text string) {
	if c.opts.RawOutput {
		fmt.Fprint(c.out, text)
		return
	}

	// Strip Minecraft color codes if colors disabled
	if c.opts.DisableColors {
		text = stripColorCodes(text)
	} else {
		text = convertColorCodes(text)
	}

	fmt.Fprint(c.out, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(c.out)
	}
}
