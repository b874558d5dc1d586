package console

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"rcon-go/rcon"
)

// Options holds the client configuration
type Options struct {
	Host     string
	Port     int
	Password string
	Timeout  time.Duration

	TerminalMode  bool
	SilentMode    bool
	DisableColors bool
	RawOutput     bool
	Wait          time.Duration

	ShowHelp    bool
	ShowVersion bool

	Commands []string
}

// ParseArgs parses command line flags on top of the RCON_HOST, RCON_PORT
// and RCON_PASS environment variables. Flags override the environment.
func ParseArgs(args []string, getenv func(string) string) (*Options, error) {
	opts := &Options{
		Host:     getEnvOrDefault(getenv, "RCON_HOST", DefaultHost),
		Password: getenv("RCON_PASS"),
	}
	port := getEnvOrDefault(getenv, "RCON_PORT", strconv.Itoa(rcon.DefaultPort))
	var wait uint

	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVarP(&opts.Host, "host", "H", opts.Host, "server address")
	fs.StringVarP(&port, "port", "P", port, "port")
	fs.StringVarP(&opts.Password, "password", "p", opts.Password, "rcon password")
	fs.DurationVarP(&opts.Timeout, "timeout", "T", DefaultTimeout, "connect and login timeout")
	fs.BoolVarP(&opts.TerminalMode, "terminal", "t", false, "terminal mode")
	fs.BoolVarP(&opts.SilentMode, "silent", "s", false, "silent mode")
	fs.BoolVarP(&opts.DisableColors, "no-color", "c", false, "disable colors")
	fs.BoolVarP(&opts.RawOutput, "raw", "r", false, "output raw packets")
	fs.UintVarP(&wait, "wait", "w", 0, "seconds to wait between commands")
	fs.BoolVarP(&opts.ShowVersion, "version", "v", false, "version information")
	fs.BoolVarP(&opts.ShowHelp, "help", "h", false, "print usage")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.ShowHelp || opts.ShowVersion {
		return opts, nil
	}

	p, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q", port)
	}
	opts.Port = p

	if fs.Changed("wait") && (wait == 0 || wait > MaxWaitTime) {
		return nil, fmt.Errorf("wait value out of range (1-%d)", MaxWaitTime)
	}
	opts.Wait = time.Duration(wait) * time.Second

	if opts.Password == "" {
		return nil, errors.New("you must provide password (-p password)")
	}

	opts.Commands = fs.Args()

	// Enable terminal mode if no commands given
	if len(opts.Commands) == 0 {
		opts.TerminalMode = true
	}

	return opts, nil
}

func getEnvOrDefault(getenv func(string) string, key, defaultValue string) string {
	if val := getenv(key); val != "" {
		return val
	}
	return defaultValue
}
