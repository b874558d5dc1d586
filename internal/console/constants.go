package console

import "time"

const (
	Version        = "0.2.0"
	AppName        = "rcon"
	DefaultHost    = "localhost"
	DefaultTimeout = 10 * time.Second
	MaxWaitTime    = 600
)
