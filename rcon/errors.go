package rcon

import "errors"

var (
	// ErrArgument is returned for invalid input rejected before any I/O.
	ErrArgument = errors.New("rcon: invalid argument")

	// ErrConnection wraps socket dial, read and write failures.
	ErrConnection = errors.New("rcon: connection error")

	// ErrAuthentication is returned when the server rejects the password.
	ErrAuthentication = errors.New("rcon: authentication rejected")

	// ErrProtocol is returned for malformed or unexpected frames.
	ErrProtocol = errors.New("rcon: protocol error")

	// ErrServerClosed is returned by Serve after Close.
	ErrServerClosed = errors.New("rcon: server closed")
)
