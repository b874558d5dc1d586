package rcon

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Client manages one authenticated RCON connection. It is safe for
// concurrent use; exchanges on the socket run one at a time.
type Client struct {
	mu sync.Mutex

	conn   net.Conn
	reader *bufio.Reader

	requestID     int32
	authenticated bool
}

// Dial connects to host:port and authenticates with password. A zero
// timeout means no timeout. On failure the connection is closed.
func Dial(host string, port int, password string, timeout time.Duration) (*Client, error) {
	c := &Client{}
	if err := c.Connect(host, port, password, timeout); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Connect opens a fresh connection, replacing any previous one, and
// authenticates it. The timeout covers both the dial and the auth exchange.
func (c *Client) Connect(host string, port int, password string, timeout time.Duration) error {
	if strings.TrimSpace(host) == "" {
		return fmt.Errorf("%w: host can't be empty", ErrArgument)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("%w: port %d is out of range", ErrArgument, port)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// We can't reuse a socket, so we need a new one
	c.closeLocked()

	address := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return fmt.Errorf("%w: failed to connect to %s: %w", ErrConnection, address, err)
	}

	// Disable Nagle's algorithm for better performance
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetNoDelay(true)
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.requestID = newRequestID()

	if timeout > 0 {
		conn.SetDeadline(time.Now().Add(timeout))
		defer conn.SetDeadline(time.Time{})
	}

	response, err := c.exchange(TypeAuth, password)
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	if response.ID == authFailedID {
		return fmt.Errorf("%w: password rejected by server", ErrAuthentication)
	}

	c.authenticated = true
	return nil
}

// Command sends payload as a command and returns the body of the single
// response packet. Replies the server splits across packets come back
// truncated to the first one.
func (c *Client) Command(payload string) (string, error) {
	if strings.TrimSpace(payload) == "" {
		return "", fmt.Errorf("%w: payload can't be empty", ErrArgument)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || !c.authenticated {
		return "", fmt.Errorf("%w: not connected", ErrConnection)
	}

	response, err := c.exchange(TypeExecCommand, payload)
	if err != nil {
		return "", err
	}

	if response.ID != c.requestID {
		return "", fmt.Errorf("%w: invalid response ID %d (expected %d)", ErrProtocol, response.ID, c.requestID)
	}

	return response.Body, nil
}

// Close closes the connection. It is safe to call more than once and
// after a failed Connect.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

// RequestID returns the request id used on the current connection.
func (c *Client) RequestID() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requestID
}

// exchange sends one packet and reads one reply. c.mu must be held.
// A failure partway through a frame leaves the stream unusable, so the
// connection is closed and later calls fail with ErrConnection.
func (c *Client) exchange(packetType int32, body string) (*Packet, error) {
	buf, err := Encode(Packet{
		ID:   c.requestID,
		Type: packetType,
		Body: body,
	})
	if err != nil {
		return nil, err
	}

	if _, err := c.conn.Write(buf); err != nil {
		c.closeLocked()
		return nil, fmt.Errorf("%w: failed to write packet: %w", ErrConnection, err)
	}

	response, err := ReadPacket(c.reader)
	if err != nil {
		c.closeLocked()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: connection closed by server", ErrConnection)
		}
		return nil, err
	}
	return response, nil
}

func (c *Client) closeLocked() error {
	c.authenticated = false
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	return err
}

// newRequestID never returns the auth failure sentinel.
func newRequestID() int32 {
	for {
		if id := int32(rand.Uint32()); id != authFailedID {
			return id
		}
	}
}
