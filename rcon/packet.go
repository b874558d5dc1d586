package rcon

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// RCON packet types. ExecCommand and AuthResponse share a wire value;
// direction and connection state tell them apart.
const (
	TypeResponseValue int32 = 0
	TypeExecCommand   int32 = 2
	TypeAuthResponse  int32 = 2
	TypeAuth          int32 = 3
)

// Packet represents an RCON protocol packet
type Packet struct {
	Size int32
	ID   int32
	Type int32
	Body string
}

// Encode serializes p into a single frame. p.Size is ignored and
// recomputed from the body.
func Encode(p Packet) ([]byte, error) {
	if i := strings.IndexByte(p.Body, 0); i >= 0 {
		return nil, fmt.Errorf("%w: body contains NUL byte at offset %d", ErrProtocol, i)
	}

	// Size = ID (4) + Type (4) + Body (n) + null terminator (1) + padding (1)
	size := headerSize + len(p.Body)
	if size > MaxPacketSize {
		return nil, fmt.Errorf("%w: packet too large (%d bytes). Maximum: %d", ErrProtocol, size, MaxPacketSize)
	}

	buf := make([]byte, 4+size)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(size))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.ID))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.Type))
	copy(buf[12:], p.Body)
	// Null terminators already zero in buffer

	return buf, nil
}

// WritePacket encodes p and sends it with a single Write.
func WritePacket(w io.Writer, p Packet) error {
	buf, err := Encode(p)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("%w: failed to write packet: %w", ErrConnection, err)
	}
	return nil
}

// ReadPacket reads exactly one frame from r, terminator bytes included.
// It returns io.EOF unwrapped when r ends cleanly before a new frame.
func ReadPacket(r io.Reader) (*Packet, error) {
	var head [12]byte
	if _, err := io.ReadFull(r, head[:4]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, readError("packet size", err)
	}

	size := int32(binary.LittleEndian.Uint32(head[0:4]))
	if size < headerSize || size > MaxPacketSize {
		return nil, fmt.Errorf("%w: invalid packet size: %d (must be %d-%d)", ErrProtocol, size, headerSize, MaxPacketSize)
	}

	if _, err := io.ReadFull(r, head[4:12]); err != nil {
		return nil, readError("packet header", err)
	}

	// Body plus the two terminators
	rest := make([]byte, size-8)
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, readError("packet payload", err)
	}

	bodyLen := len(rest) - 2
	if rest[bodyLen] != 0 || rest[bodyLen+1] != 0 {
		return nil, fmt.Errorf("%w: missing packet terminator", ErrProtocol)
	}

	return &Packet{
		Size: size,
		ID:   int32(binary.LittleEndian.Uint32(head[4:8])),
		Type: int32(binary.LittleEndian.Uint32(head[8:12])),
		Body: string(rest[:bodyLen]),
	}, nil
}

// readError classifies a failed read inside a frame: running out of bytes
// is a framing problem, anything else comes from the transport.
func readError(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated %s: %w", ErrProtocol, what, io.ErrUnexpectedEOF)
	}
	return fmt.Errorf("%w: failed to read %s: %w", ErrConnection, what, err)
}
