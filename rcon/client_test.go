package rcon

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"
)

func TestDialValidatesArguments(t *testing.T) {
	tests := []struct {
		name string
		host string
		port int
	}{
		{"empty host", "", 25575},
		{"blank host", "   ", 25575},
		{"port zero", "localhost", 0},
		{"port too large", "localhost", 65536},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Dial(tt.host, tt.port, "secret", time.Second)
			if !errors.Is(err, ErrArgument) {
				t.Fatalf("Dial() error = %v, want ErrArgument", err)
			}
		})
	}
}

func TestDialConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	if _, err := Dial("127.0.0.1", port, "secret", time.Second); !errors.Is(err, ErrConnection) {
		t.Fatalf("Dial() error = %v, want ErrConnection", err)
	}
}

func TestClientCommand(t *testing.T) {
	_, host, port := startServer(t, "secret", HandlerFunc(echoHandler))

	c, err := Dial(host, port, "secret", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if id := c.RequestID(); id == -1 {
		t.Fatalf("RequestID() = %d, the auth failure sentinel", id)
	}

	for _, cmd := range []string{"x", "status", "say hello world"} {
		resp, err := c.Command(cmd)
		if err != nil {
			t.Fatal(err)
		}
		if resp != "echo:"+cmd {
			t.Fatalf("Command(%q) = %q", cmd, resp)
		}
	}
}

func TestClientCommandValidatesPayload(t *testing.T) {
	_, host, port := startServer(t, "secret", HandlerFunc(echoHandler))

	c, err := Dial(host, port, "secret", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	for _, payload := range []string{"", " \t"} {
		if _, err := c.Command(payload); !errors.Is(err, ErrArgument) {
			t.Fatalf("Command(%q) error = %v, want ErrArgument", payload, err)
		}
	}
}

func TestClientAuthFailure(t *testing.T) {
	_, host, port := startServer(t, "secret", HandlerFunc(echoHandler))

	c := &Client{}
	err := c.Connect(host, port, "wrong", time.Second)
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("Connect() error = %v, want ErrAuthentication", err)
	}

	if _, err := c.Command("status"); !errors.Is(err, ErrConnection) {
		t.Fatalf("Command() after failed auth = %v, want ErrConnection", err)
	}

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() = %v", err)
	}
}

func TestClientCloseWithoutConnect(t *testing.T) {
	var c Client
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Command("status"); !errors.Is(err, ErrConnection) {
		t.Fatalf("Command() on unconnected client = %v, want ErrConnection", err)
	}
}

func TestClientReconnect(t *testing.T) {
	srv, host, port := startServer(t, "secret", HandlerFunc(echoHandler))

	c, err := Dial(host, port, "secret", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Connect(host, port, "secret", time.Second); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return srv.ActiveConnections() == 1 })

	if resp, err := c.Command("again"); err != nil || resp != "echo:again" {
		t.Fatalf("Command() = %q, %v", resp, err)
	}
}

func TestClientSerializesConcurrentCommands(t *testing.T) {
	var (
		mu       sync.Mutex
		inFlight int
		seen     = make(map[string]bool)
	)
	handler := HandlerFunc(func(cmd string) string {
		mu.Lock()
		inFlight++
		overlap := inFlight > 1
		seen[cmd] = true
		mu.Unlock()

		time.Sleep(time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()

		if overlap {
			return "overlap"
		}
		return "echo:" + cmd
	})
	_, host, port := startServer(t, "secret", handler)

	c, err := Dial(host, port, "secret", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cmd := fmt.Sprintf("cmd-%d", i)
			resp, err := c.Command(cmd)
			if err != nil {
				t.Errorf("Command(%q) error = %v", cmd, err)
				return
			}
			if resp != "echo:"+cmd {
				t.Errorf("Command(%q) = %q", cmd, resp)
			}
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != n {
		t.Fatalf("server saw %d distinct commands, want %d", len(seen), n)
	}
}

// fakeServer answers every packet with the given id.
func fakeServer(t *testing.T, replyID func(req *Packet) int32) (string, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			req, err := ReadPacket(conn)
			if err != nil {
				return
			}
			if err := WritePacket(conn, Packet{ID: replyID(req), Type: TypeResponseValue, Body: "ok"}); err != nil {
				return
			}
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func TestClientRejectsMismatchedResponseID(t *testing.T) {
	host, port := fakeServer(t, func(req *Packet) int32 {
		if req.Type == TypeAuth {
			return req.ID
		}
		return req.ID + 1
	})

	c, err := Dial(host, port, "secret", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, err := c.Command("status"); !errors.Is(err, ErrProtocol) {
		t.Fatalf("Command() error = %v, want ErrProtocol", err)
	}
}

func TestClientAuthTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	// Accept and never answer.
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(2 * time.Second)
	}()

	addr := ln.Addr().(*net.TCPAddr)
	_, err = Dial(addr.IP.String(), addr.Port, "secret", 100*time.Millisecond)
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("Dial() error = %v, want ErrConnection", err)
	}
}

func TestClientClosesAfterMalformedReply(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		auth, err := ReadPacket(conn)
		if err != nil {
			return
		}
		WritePacket(conn, Packet{ID: auth.ID, Type: TypeAuthResponse})

		cmd, err := ReadPacket(conn)
		if err != nil {
			return
		}
		// An out-of-range size field followed by a well-formed frame that
		// must not be taken as the reply to a later command.
		conn.Write([]byte{0x01, 0x00, 0x10, 0x00})
		WritePacket(conn, Packet{ID: cmd.ID, Type: TypeResponseValue, Body: "stale"})

		ReadPacket(conn)
	}()

	addr := ln.Addr().(*net.TCPAddr)
	c, err := Dial(addr.IP.String(), addr.Port, "secret", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, err := c.Command("first"); !errors.Is(err, ErrProtocol) {
		t.Fatalf("first Command() error = %v, want ErrProtocol", err)
	}

	resp, err := c.Command("second")
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("second Command() = %q, %v, want ErrConnection", resp, err)
	}
}

func TestClientKeepsSessionAfterMismatchedID(t *testing.T) {
	var calls int32
	host, port := fakeServer(t, func(req *Packet) int32 {
		if req.Type == TypeAuth {
			return req.ID
		}
		calls++
		if calls == 1 {
			return req.ID + 1
		}
		return req.ID
	})

	c, err := Dial(host, port, "secret", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, err := c.Command("status"); !errors.Is(err, ErrProtocol) {
		t.Fatalf("Command() error = %v, want ErrProtocol", err)
	}
	if resp, err := c.Command("status"); err != nil || resp != "ok" {
		t.Fatalf("Command() after mismatched id = %q, %v", resp, err)
	}
}
