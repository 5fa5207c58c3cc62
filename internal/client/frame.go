package client

// FrameKind represents the kind of event read from the connection
type FrameKind int

const (
	FrameText FrameKind = iota
	FrameBinary
	FramePing
	FrameClose
	FrameError
	FrameClosed
)

// String returns the string representation of FrameKind
func (k FrameKind) String() string {
	switch k {
	case FrameText:
		return "TEXT"
	case FrameBinary:
		return "BINARY"
	case FramePing:
		return "PING"
	case FrameClose:
		return "CLOSE"
	case FrameError:
		return "ERROR"
	case FrameClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Frame is one tagged event from the connection. Data holds the payload for
// text, binary and ping frames and the status body for close frames. Err is
// set only for error frames.
type Frame struct {
	Kind FrameKind
	Data []byte
	Err  error
}
