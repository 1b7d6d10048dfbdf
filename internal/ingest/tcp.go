package ingest

import (
	"bufio"
	"context"
	"net"
	"time"

	"github.com/vitalsentry/vitalsentry/pkg/logger"
	"github.com/vitalsentry/vitalsentry/pkg/metrics"
)

// TCPReader consumes a newline-delimited TCP feed of vital-sign lines.
// Like WSReader it redials with exponential backoff until the context
// is cancelled.
type TCPReader struct {
	addr           string
	handler        Handler
	reconnectDelay time.Duration

	logger logger.Logger
}

// NewTCPReader creates a reader for the given host:port address.
func NewTCPReader(addr string, handler Handler, opts ...ReaderOption) *TCPReader {
	r := &TCPReader{
		addr:           addr,
		handler:        handler,
		reconnectDelay: defaultReconnectDelay,
		logger:         logger.Get().Named("tcp-reader"),
	}

	for _, opt := range opts {
		opt.applyTCP(r)
	}

	return r
}

// Run consumes the feed until ctx is cancelled.
func (r *TCPReader) Run(ctx context.Context) {
	delay := r.reconnectDelay
	dialer := &net.Dialer{}

	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := dialer.DialContext(ctx, "tcp", r.addr)
		if err != nil {
			r.logger.Warn(ctx, "tcp dial failed",
				logger.String("addr", r.addr),
				logger.Error(err),
			)
			if !sleepCtx(ctx, delay) {
				return
			}
			delay = nextDelay(delay)
			continue
		}

		r.logger.Info(ctx, "tcp feed connected", logger.String("addr", r.addr))
		delay = r.reconnectDelay

		r.consume(ctx, conn)
		_ = conn.Close()

		if ctx.Err() != nil {
			return
		}
		r.logger.Warn(ctx, "tcp feed disconnected, reconnecting",
			logger.String("addr", r.addr),
		)
		if !sleepCtx(ctx, delay) {
			return
		}
	}
}

// consume reads lines off one connection until it fails.
func (r *TCPReader) consume(ctx context.Context, conn net.Conn) {
	// Unblock the scanner when the context is cancelled.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		rec, err := ParseLine(line)
		if err != nil {
			// Malformed lines are dropped, the feed keeps going.
			metrics.RecordMalformedLine()
			continue
		}

		if err := r.handler.Ingest(ctx, rec); err != nil {
			r.logger.Error(ctx, "ingest failed",
				logger.Int("patient_id", rec.PatientID),
				logger.Error(err),
			)
		}
	}
}
