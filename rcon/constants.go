package rcon

const (
	DefaultPort = 25575

	// MaxPacketSize bounds the size field of a frame (everything after it).
	MaxPacketSize = 1 << 20

	// headerSize is id + type + the two terminator bytes.
	headerSize = 10

	// authFailedID is the request id a server answers with when the
	// password is rejected.
	authFailedID int32 = -1

	authSuccessBody  = "Authentication Successful"
	authFailedBody   = "Authentication Failed"
	authRequiredBody = "Authentication Required"
)
