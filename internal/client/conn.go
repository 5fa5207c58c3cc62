// Package client implements the interactive hubline client: a websocket
// connection with manual control-frame handling and the pump that bridges it
// to the local terminal.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// ErrUnexpectedContinuation is returned as an error frame when a
// continuation frame arrives outside a fragmented message.
var ErrUnexpectedContinuation = errors.New("unexpected continuation frame")

// Conn wraps one client-side websocket connection using gobwas/ws. Nothing is
// answered automatically: ping and close frames come back from Receive like
// any other frame so the caller decides how and whether to respond.
type Conn struct {
	conn net.Conn
	r    io.Reader

	// fragmented message being reassembled across Receive calls
	fragOp  ws.OpCode
	fragBuf []byte
	inFrag  bool
}

// Dial opens a websocket connection to rawURL, sending authorization as the
// Authorization header during the handshake. rawURL may use the http or https
// scheme; it is rewritten to the matching websocket scheme before dialing.
func Dial(ctx context.Context, rawURL, authorization string) (*Conn, error) {
	header := http.Header{}
	if authorization != "" {
		header.Set("Authorization", authorization)
	}

	dialer := ws.Dialer{Header: ws.HandshakeHeaderHTTP(header)}
	conn, br, _, err := dialer.Dial(ctx, wsURL(rawURL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", rawURL, err)
	}

	c := &Conn{conn: conn, r: conn}
	if br != nil {
		// The handshake may have read past the response headers.
		c.r = br
	}
	return c, nil
}

// wsURL rewrites an http(s) URL to the matching websocket scheme
func wsURL(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return "ws" + strings.TrimPrefix(u, "http")
	}
	return u
}

// Receive reads the next event from the connection. Fragmented text and
// binary messages are reassembled; control frames interleaved with fragments
// are returned as they arrive. Read failures are reported as frames too:
// FrameClosed when the connection is gone, FrameError otherwise.
func (c *Conn) Receive() Frame {
	for {
		f, err := ws.ReadFrame(c.r)
		if err != nil {
			if isClosedErr(err) {
				return Frame{Kind: FrameClosed}
			}
			return Frame{Kind: FrameError, Err: err}
		}
		if f.Header.Masked {
			f = ws.UnmaskFrame(f)
		}

		switch f.Header.OpCode {
		case ws.OpText, ws.OpBinary:
			if f.Header.Fin {
				return dataFrame(f.Header.OpCode, f.Payload)
			}
			c.fragOp = f.Header.OpCode
			c.fragBuf = append([]byte(nil), f.Payload...)
			c.inFrag = true
		case ws.OpContinuation:
			if !c.inFrag {
				return Frame{Kind: FrameError, Err: ErrUnexpectedContinuation}
			}
			c.fragBuf = append(c.fragBuf, f.Payload...)
			if f.Header.Fin {
				c.inFrag = false
				data := c.fragBuf
				c.fragBuf = nil
				return dataFrame(c.fragOp, data)
			}
		case ws.OpPing:
			return Frame{Kind: FramePing, Data: f.Payload}
		case ws.OpPong:
			// Unsolicited pongs carry nothing actionable.
		case ws.OpClose:
			return Frame{Kind: FrameClose, Data: f.Payload}
		default:
			return Frame{Kind: FrameError, Err: fmt.Errorf("unexpected opcode %#x", byte(f.Header.OpCode))}
		}
	}
}

func dataFrame(op ws.OpCode, payload []byte) Frame {
	if op == ws.OpBinary {
		return Frame{Kind: FrameBinary, Data: payload}
	}
	return Frame{Kind: FrameText, Data: payload}
}

func isClosedErr(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed)
}

// WriteText sends one text frame
func (c *Conn) WriteText(data []byte) error {
	return wsutil.WriteClientText(c.conn, data)
}

// WritePong answers a ping, echoing its payload
func (c *Conn) WritePong(payload []byte) error {
	return wsutil.WriteClientMessage(c.conn, ws.OpPong, payload)
}

// Close performs the clean shutdown: a normal-closure close frame followed by
// closing the underlying connection.
func (c *Conn) Close() error {
	body := ws.NewCloseFrameBody(ws.StatusNormalClosure, "")
	if err := wsutil.WriteClientMessage(c.conn, ws.OpClose, body); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}

// Drop closes the underlying connection without a closing handshake
func (c *Conn) Drop() error {
	return c.conn.Close()
}

// RemoteAddr returns the server address
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
