package server

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait is the deadline for a single outbound write.
	writeWait = 10 * time.Second

	// maxMessageSize caps inbound command frames.
	maxMessageSize = 4096
)

// session represents one authenticated websocket connection
type session struct {
	conn     *websocket.Conn
	outgoing chan []byte
}

func newSession(conn *websocket.Conn) *session {
	return &session{
		conn:     conn,
		outgoing: make(chan []byte, 10),
	}
}

// deliver queues data for the write pump. The frame is dropped, and false
// returned, when the buffer is full.
func (sess *session) deliver(data []byte) bool {
	select {
	case sess.outgoing <- data:
		return true
	default:
		log.Printf("Session buffer full, dropping frame")
		return false
	}
}

// writePump writes queued frames, and periodic pings when pingInterval is
// positive, until the outgoing channel closes or a write fails.
func (sess *session) writePump(pingInterval time.Duration) {
	var pingC <-chan time.Time
	if pingInterval > 0 {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		pingC = ticker.C
	}

	for {
		select {
		case data, ok := <-sess.outgoing:
			if !ok {
				return
			}
			sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("Failed to send to session: %v", err)
				return
			}
		case <-pingC:
			if err := sess.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Printf("Failed to ping session: %v", err)
				return
			}
		}
	}
}
