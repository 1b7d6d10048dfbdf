package simulator

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/vitalsentry/vitalsentry/internal/domain/model"
	"github.com/vitalsentry/vitalsentry/pkg/logger"
)

// TCPOutput serves readings as a newline-delimited stream to every
// connected client. A client that falls behind or disconnects is
// dropped without affecting the others.
type TCPOutput struct {
	listener net.Listener

	mu      sync.Mutex
	clients map[net.Conn]string
	closed  bool

	logger logger.Logger
}

var _ Output = (*TCPOutput)(nil)

// NewTCPOutput starts listening on addr and accepting clients.
func NewTCPOutput(addr string) (*TCPOutput, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	o := &TCPOutput{
		listener: ln,
		clients:  make(map[net.Conn]string),
		logger:   logger.Get().Named("tcp-output"),
	}
	go o.acceptLoop()

	return o, nil
}

// Addr returns the bound listener address.
func (o *TCPOutput) Addr() net.Addr { return o.listener.Addr() }

func (o *TCPOutput) acceptLoop() {
	for {
		conn, err := o.listener.Accept()
		if err != nil {
			return // listener closed
		}

		o.mu.Lock()
		if o.closed {
			o.mu.Unlock()
			_ = conn.Close()
			return
		}
		id := uuid.NewString()
		o.clients[conn] = id
		o.mu.Unlock()

		o.logger.Info(context.Background(), "client connected",
			logger.String("client_id", id),
			logger.String("remote", conn.RemoteAddr().String()),
		)
	}
}

// Emit implements Output.Emit.
func (o *TCPOutput) Emit(patientID int, tsMS int64, signal model.SignalType, value string) error {
	line := FormatLine(patientID, tsMS, signal, value) + "\n"

	o.mu.Lock()
	defer o.mu.Unlock()

	for conn, id := range o.clients {
		if _, err := conn.Write([]byte(line)); err != nil {
			delete(o.clients, conn)
			_ = conn.Close()
			o.logger.Info(context.Background(), "client dropped", logger.String("client_id", id))
		}
	}
	return nil
}

// Close implements Output.Close.
func (o *TCPOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true

	for conn := range o.clients {
		_ = conn.Close()
	}
	o.clients = make(map[net.Conn]string)

	return o.listener.Close()
}
