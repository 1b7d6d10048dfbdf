package simulator

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vitalsentry/vitalsentry/internal/domain/model"
	"github.com/vitalsentry/vitalsentry/pkg/logger"
)

const (
	// wsWriteTimeout is the deadline for a single write to a client.
	wsWriteTimeout = 10 * time.Second

	// wsSendBufSize is the per-client outgoing message buffer depth.
	wsSendBufSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSOutput broadcasts readings to every connected WebSocket client.
type WSOutput struct {
	server   *http.Server
	listener net.Listener

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool

	logger logger.Logger
}

// wsClient represents one connected WebSocket client.
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

var _ Output = (*WSOutput)(nil)

// NewWSOutput starts a WebSocket server on addr; clients connect to
// the root path.
func NewWSOutput(addr string) (*WSOutput, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	o := &WSOutput{
		listener: ln,
		clients:  make(map[*wsClient]struct{}),
		logger:   logger.Get().Named("ws-output"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", o.handleConnect)
	o.server = &http.Server{Handler: mux}

	go func() {
		_ = o.server.Serve(ln)
	}()

	return o, nil
}

// Addr returns the bound listener address.
func (o *WSOutput) Addr() net.Addr { return o.listener.Addr() }

func (o *WSOutput) handleConnect(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, wsSendBufSize),
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		_ = conn.Close()
		return
	}
	o.clients[c] = struct{}{}
	o.mu.Unlock()

	o.logger.Info(r.Context(), "client connected",
		logger.String("client_id", c.id),
		logger.String("remote", conn.RemoteAddr().String()),
	)

	go c.writePump()

	// Drain control frames and detect disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	o.unregister(c)
}

func (o *WSOutput) unregister(c *wsClient) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.clients[c]; ok {
		delete(o.clients, c)
		close(c.send)
	}
}

// Emit implements Output.Emit.
func (o *WSOutput) Emit(patientID int, tsMS int64, signal model.SignalType, value string) error {
	line := []byte(FormatLine(patientID, tsMS, signal, value))

	o.mu.Lock()
	targets := make([]*wsClient, 0, len(o.clients))
	for c := range o.clients {
		targets = append(targets, c)
	}
	o.mu.Unlock()

	for _, c := range targets {
		select {
		case c.send <- line:
		default:
			// Client's outgoing buffer is full, disconnect it.
			o.unregister(c)
		}
	}
	return nil
}

// Close implements Output.Close.
func (o *WSOutput) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	for c := range o.clients {
		close(c.send)
		delete(o.clients, c)
	}
	o.mu.Unlock()

	return o.server.Close()
}

// writePump drains the client's send channel and forwards lines to the
// connection. Runs in its own goroutine per client.
func (c *wsClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}

	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
