package rcon

import (
	"bufio"
	"crypto/subtle"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"

	"github.com/google/uuid"

	"rcon-go/internal/logger"
)

// serverConn runs the authentication state machine for one accepted
// connection. It is owned by a single goroutine.
type serverConn struct {
	srv    *Server
	conn   net.Conn
	reader *bufio.Reader
	log    *slog.Logger

	authenticated bool
}

func newServerConn(srv *Server, conn net.Conn) *serverConn {
	return &serverConn{
		srv:    srv,
		conn:   conn,
		reader: bufio.NewReader(conn),
		log: logger.With(
			"conn_id", uuid.NewString(),
			"remote_addr", conn.RemoteAddr().String(),
		),
	}
}

func (c *serverConn) serve() {
	defer c.srv.untrack(c)
	defer c.conn.Close()
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("Command handler panicked", "panic", r)
		}
	}()

	c.log.Debug("Connection accepted")

	for {
		packet, err := ReadPacket(c.reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.log.Debug("Connection closed by peer")
			} else if c.srv.isClosed() {
				c.log.Debug("Connection closed by server shutdown")
			} else {
				c.log.Warn("Dropping connection", "error", err)
			}
			return
		}

		if !c.handle(packet) {
			return
		}
	}
}

// handle processes one packet and reports whether the connection stays open.
func (c *serverConn) handle(packet *Packet) bool {
	if packet.Type == TypeAuth {
		return c.authenticate(packet)
	}

	if !c.authenticated {
		c.log.Warn("Rejected packet before authentication", "type", packet.Type)
		c.reply(authFailedID, TypeResponseValue, authRequiredBody)
		return false
	}

	if packet.Type != TypeExecCommand {
		c.log.Debug("Ignoring packet", "type", packet.Type, "request_id", packet.ID)
		return true
	}

	c.log.Debug("Executing command", "request_id", packet.ID, "command", packet.Body)
	return c.reply(packet.ID, TypeResponseValue, c.srv.handler.Handle(packet.Body))
}

func (c *serverConn) authenticate(packet *Packet) bool {
	given := strings.TrimSpace(packet.Body)
	if subtle.ConstantTimeCompare([]byte(given), []byte(c.srv.password)) != 1 {
		c.log.Warn("Authentication failed")
		c.reply(authFailedID, TypeAuthResponse, authFailedBody)
		return false
	}

	if !c.authenticated {
		c.authenticated = true
		c.log.Info("Client authenticated")
	}
	return c.reply(packet.ID, TypeAuthResponse, authSuccessBody)
}

func (c *serverConn) reply(id, packetType int32, body string) bool {
	err := WritePacket(c.conn, Packet{ID: id, Type: packetType, Body: body})
	if err != nil {
		c.log.Warn("Failed to send reply", "request_id", id, "error", err)
		return false
	}
	return true
}
