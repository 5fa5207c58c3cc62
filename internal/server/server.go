// Package server implements the reference hub/channel pub/sub server. It
// speaks the same wire protocol the client does: one SUBSCRIBE command per
// connection, SEND_MESSAGE fan-out as ChatMessage envelopes, JSON string
// replies.
package server

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/amietti/hubline/pkg/wire"
)

// Version is reported by the info endpoint.
const Version = "0.1.0"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for simplicity
	},
}

// Config carries the server settings
type Config struct {
	Addr         string
	Store        *Store        // optional message log
	PingInterval time.Duration // 0 disables server pings
}

// Server represents the hubline server
type Server struct {
	addr         string
	store        *Store
	pingInterval time.Duration

	hub      *Hub
	listener net.Listener
	server   *http.Server
	sessions map[*session]bool
	mu       sync.RWMutex
	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a new Server instance
func New(cfg Config) *Server {
	return &Server{
		addr:         cfg.Addr,
		store:        cfg.Store,
		pingInterval: cfg.PingInterval,
		hub:          NewHub(),
		sessions:     make(map[*session]bool),
		quit:         make(chan struct{}),
	}
}

// Start listens on the configured address and serves until Stop is called
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.GET("/v2/info", s.handleInfo)
	router.GET("/v2/websocket", requireAuth, s.handleWebsocket)

	httpServer := &http.Server{
		Handler: router,
	}

	s.mu.Lock()
	s.listener = listener
	s.server = httpServer
	s.mu.Unlock()

	log.Printf("Server started on %s", listener.Addr().String())

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for either error or quit signal
	select {
	case err := <-errChan:
		return fmt.Errorf("failed to serve: %w", err)
	case <-s.quit:
		return nil
	}
}

// Stop closes the listener and every live session, then waits for their
// goroutines to finish
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
	})

	s.mu.Lock()
	if s.server != nil {
		s.server.Close()
	}
	for sess := range s.sessions {
		sess.conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Addr returns the server's listening address
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// ClientCount returns the number of connected sessions
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

type serverInfo struct {
	Version string `json:"version"`
}

// handleInfo reports the server build information
func (s *Server) handleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, serverInfo{Version: Version})
}

// requireAuth enforces the ID:Token authorization header scheme
func requireAuth(c *gin.Context) {
	id, token, ok := strings.Cut(c.GetHeader("Authorization"), ":")
	if !ok || id == "" || token == "" {
		c.String(http.StatusForbidden, "Invalid authentication details.")
		c.Abort()
		return
	}
	c.Next()
}

// handleWebsocket upgrades the request and starts the session
func (s *Server) handleWebsocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	sess := newSession(conn)
	s.mu.Lock()
	select {
	case <-s.quit:
		// Stop has already swept its sessions; a session registered now
		// would never be closed.
		s.mu.Unlock()
		conn.Close()
		return
	default:
	}
	s.sessions[sess] = true
	s.wg.Add(1)
	s.mu.Unlock()

	go s.runSession(sess)
}

// runSession reads commands from a session until its connection ends
func (s *Server) runSession(sess *session) {
	defer s.wg.Done()
	defer func() {
		// Dropping the hub subscriptions first makes closing outgoing safe:
		// Publish delivers under the hub lock, so after Drop returns nothing
		// can enqueue to this session anymore.
		s.hub.Drop(sess)
		s.mu.Lock()
		delete(s.sessions, sess)
		s.mu.Unlock()
		close(sess.outgoing)
		sess.conn.Close()
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sess.writePump(s.pingInterval)
	}()

	sess.conn.SetReadLimit(maxMessageSize)
	if s.pingInterval > 0 {
		pongWait := 2 * s.pingInterval
		sess.conn.SetReadDeadline(time.Now().Add(pongWait))
		sess.conn.SetPongHandler(func(string) error {
			return sess.conn.SetReadDeadline(time.Now().Add(pongWait))
		})
	}

	for {
		messageType, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Session read error: %v", err)
			}
			return
		}

		if messageType == websocket.TextMessage {
			s.handleCommand(sess, string(data))
		}
	}
}

// handleCommand parses one command frame and replies to it
func (s *Server) handleCommand(sess *session, line string) {
	cmd, err := wire.ParseCommand(line)
	if err != nil {
		sess.deliver(wire.ReplyInvalidCommand)
		return
	}
	hubID, channelID, ok := wire.SplitTarget(cmd.Target)
	if !ok {
		sess.deliver(wire.ReplyInvalidCommand)
		return
	}

	switch cmd.Kind {
	case wire.CommandSubscribe:
		s.hub.Subscribe(hubID, channelID, sess)
		log.Printf("Session subscribed to %s:%s", hubID, channelID)
		sess.deliver(wire.ReplySuccess)
	case wire.CommandSendMessage:
		msg := wire.ChatMessage{
			HubID:     hubID,
			ChannelID: channelID,
			MessageID: uuid.NewString(),
			Message:   cmd.Text,
		}
		if s.store != nil {
			if err := s.store.Save(msg); err != nil {
				log.Printf("Failed to store message: %v", err)
				sess.deliver(wire.ReplyCommandFailed)
				return
			}
		}
		data, err := msg.Encode()
		if err != nil {
			sess.deliver(wire.ReplyCommandFailed)
			return
		}
		s.hub.Publish(hubID, channelID, data)
		sess.deliver(wire.ReplySuccess)
	}
}
