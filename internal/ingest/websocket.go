package ingest

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vitalsentry/vitalsentry/pkg/logger"
)

// Default reader configuration constants.
const (
	defaultReconnectDelay = 2 * time.Second
	maxReconnectDelay     = 30 * time.Second
)

// WSReader consumes a WebSocket feed of vital-sign lines.
//
// The reader owns the connection lifecycle: it dials, reads until the
// connection drops, and redials with exponential backoff until the
// context is cancelled.
type WSReader struct {
	url            string
	handler        Handler
	reconnectDelay time.Duration

	logger logger.Logger
}

// NewWSReader creates a reader for the given ws:// or wss:// URL.
func NewWSReader(url string, handler Handler, opts ...ReaderOption) *WSReader {
	r := &WSReader{
		url:            url,
		handler:        handler,
		reconnectDelay: defaultReconnectDelay,
		logger:         logger.Get().Named("ws-reader"),
	}

	for _, opt := range opts {
		opt.applyWS(r)
	}

	return r
}

// Run consumes the feed until ctx is cancelled.
func (r *WSReader) Run(ctx context.Context) {
	delay := r.reconnectDelay

	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, r.url, nil)
		if err != nil {
			r.logger.Warn(ctx, "websocket dial failed",
				logger.String("url", r.url),
				logger.Error(err),
			)
			if !sleepCtx(ctx, delay) {
				return
			}
			delay = nextDelay(delay)
			continue
		}

		r.logger.Info(ctx, "websocket feed connected", logger.String("url", r.url))
		delay = r.reconnectDelay

		r.consume(ctx, conn)
		_ = conn.Close()

		if ctx.Err() != nil {
			return
		}
		r.logger.Warn(ctx, "websocket feed disconnected, reconnecting",
			logger.String("url", r.url),
		)
		if !sleepCtx(ctx, delay) {
			return
		}
	}
}

// consume reads messages off one connection until it fails.
func (r *WSReader) consume(ctx context.Context, conn *websocket.Conn) {
	// Unblock ReadMessage when the context is cancelled.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		for _, rec := range ParseBatch(string(payload)) {
			if err := r.handler.Ingest(ctx, rec); err != nil {
				r.logger.Error(ctx, "ingest failed",
					logger.Int("patient_id", rec.PatientID),
					logger.Error(err),
				)
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func nextDelay(d time.Duration) time.Duration {
	d *= 2
	if d > maxReconnectDelay {
		return maxReconnectDelay
	}
	return d
}
