package console

import (
	"fmt"
	"io"
)

// PrintHelp writes the usage text to w.
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `Usage: %s [OPTIONS] [COMMANDS]

Send rcon commands to a server.

Options:
  -H, --host		Server address (default: localhost)
  -P, --port		Port (default: 25575)
  -p, --password	Rcon password
  -T, --timeout		Connect and login timeout (default: 10s)
  -t, --terminal	Terminal mode
  -s, --silent		Silent mode
  -c, --no-color	Disable colors
  -r, --raw		Output raw packets
  -w, --wait		Wait for specified duration (seconds) between each command (1-600s)
  -h, --help		Print usage
  -v, --version		Version information

Server address, port and password can be set with following environment variables:
  RCON_HOST
  RCON_PORT
  RCON_PASS

- %s will start in terminal mode if no commands are given
- Command-line options will override environment variables
- Rcon commands with spaces must be enclosed in quotes

Example:
	%s -H my.game.server -p password -w 5 "say Server is restarting!" save-all stop

`, AppName, AppName, AppName)
}
