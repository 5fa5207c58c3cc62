package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/amietti/hubline/pkg/wire"
)

// sendQueueSize bounds the outbound queue. A slow connection pushes back on
// producers instead of growing an unbounded backlog.
const sendQueueSize = 64

// stopCause records which event ended a pump run
type stopCause int

const (
	stopInput stopCause = iota // local input stream ended
	stopPeerClose              // close frame received from the server
	stopError                  // transport error while reading or writing
	stopClosed                 // connection was already gone
	stopCancel                 // context cancelled, typically an interrupt
)

// outFrame is one queued outbound frame
type outFrame struct {
	pong bool
	data []byte
}

// Pump bridges one connection and one terminal: lines read from the input
// stream become SEND_MESSAGE commands, inbound frames become printed lines.
// The pump owns the connection for its whole run and releases it exactly
// once, whichever side ends the session first.
type Pump struct {
	conn   *Conn
	target string
	in     io.Reader
	out    io.Writer

	sendq chan outFrame
	done  chan struct{}
	once  sync.Once

	cause stopCause
	err   error

	readerWG sync.WaitGroup
	writerWG sync.WaitGroup
}

// NewPump creates a pump over an established connection. target is the
// hub_id:channel_id pair embedded verbatim in every outbound command.
func NewPump(conn *Conn, target string, in io.Reader, out io.Writer) *Pump {
	return &Pump{
		conn:   conn,
		target: target,
		in:     in,
		out:    out,
		sendq:  make(chan outFrame, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// Run drives the pump until the connection ends, the input stream ends, or
// ctx is cancelled. The subscribe command is queued before any other producer
// starts, so it is always the first frame on the wire. On a close frame from
// the server the connection is closed with a closing handshake; every other
// ending drops it immediately, abandoning queued and in-flight sends. The
// returned error is the transport error that ended the run, if any.
func (p *Pump) Run(ctx context.Context) error {
	p.sendq <- outFrame{data: []byte(wire.Subscribe(p.target))}

	p.writerWG.Add(1)
	go p.writeLoop()
	p.readerWG.Add(1)
	go p.readLoop()
	go p.inputLoop()

	select {
	case <-ctx.Done():
		p.stop(stopCancel, nil)
	case <-p.done:
	}

	// The closing handshake must not interleave with queued frames, so the
	// peer-close path waits for the writer before replying. Every other
	// ending releases the connection first: closing it is also what
	// unblocks a writer wedged in a backpressured send.
	if p.cause == stopPeerClose {
		p.writerWG.Wait()
		p.conn.Close()
	} else {
		p.conn.Drop()
		p.writerWG.Wait()
	}
	p.readerWG.Wait()

	if p.cause == stopError {
		return p.err
	}
	return nil
}

// stop raises the shutdown signal. Only the first caller wins; the return
// value reports whether this call was it.
func (p *Pump) stop(cause stopCause, err error) bool {
	won := false
	p.once.Do(func() {
		p.cause = cause
		p.err = err
		close(p.done)
		won = true
	})
	return won
}

// inputLoop feeds local input lines into the outbound queue. It runs outside
// the waitgroups: a read blocked on an interactive terminal cannot be
// unblocked, and the pump must not wait for one once the connection is gone.
func (p *Pump) inputLoop() {
	scanner := bufio.NewScanner(p.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		select {
		case p.sendq <- outFrame{data: []byte(wire.SendMessage(p.target, line))}:
		case <-p.done:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("Error reading input: %v", err)
	}
	p.stop(stopInput, nil)
}

// readLoop dispatches inbound frames until a terminal one arrives
func (p *Pump) readLoop() {
	defer p.readerWG.Done()
	for {
		f := p.conn.Receive()
		select {
		case <-p.done:
			return
		default:
		}

		switch f.Kind {
		case FrameText:
			fmt.Fprintln(p.out, strings.TrimSpace(string(f.Data)))
		case FrameBinary:
			fmt.Fprintf(p.out, "Binary: %s\n", f.Data)
		case FramePing:
			select {
			case p.sendq <- outFrame{pong: true, data: f.Data}:
			case <-p.done:
				return
			}
		case FrameClose:
			p.stop(stopPeerClose, nil)
			return
		case FrameError:
			if p.stop(stopError, f.Err) {
				fmt.Fprintf(p.out, "Error during receive: %v\n", f.Err)
			}
			return
		case FrameClosed:
			p.stop(stopClosed, nil)
			return
		}
	}
}

// writeLoop is the only goroutine that writes to the connection while the
// pump runs
func (p *Pump) writeLoop() {
	defer p.writerWG.Done()
	for {
		select {
		case f := <-p.sendq:
			select {
			case <-p.done:
				return
			default:
			}
			var err error
			if f.pong {
				err = p.conn.WritePong(f.data)
			} else {
				err = p.conn.WriteText(f.data)
			}
			if err != nil {
				if p.stop(stopError, err) {
					log.Printf("Failed to send message: %v", err)
				}
				return
			}
		case <-p.done:
			return
		}
	}
}
