package birdeye

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gabapcia/tokenwatch/internal/pkg/x/chflow"
	"github.com/gabapcia/tokenwatch/internal/tracker"

	"github.com/gorilla/websocket"
)

// inbound carries one read result from the pump to Receive.
type inbound struct {
	message []byte
	err     error
}

// stream wraps one live websocket connection behind the tracker.FeedStream
// port. A read pump goroutine feeds inbound frames into a channel so Receive
// can honor context cancellation; a keepalive goroutine sends ping frames and
// pongs extend the read deadline so silent connection losses are detected.
type stream struct {
	conn *websocket.Conn
	cfg  config

	recvCh chan inbound

	// writeMu serializes frame writes: Send and the keepalive loop share the
	// connection's single writer.
	writeMu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
}

// Ensure compile-time compliance with the tracker's stream port.
var _ tracker.FeedStream = (*stream)(nil)

func newStream(conn *websocket.Conn, cfg config) *stream {
	s := &stream{
		conn:   conn,
		cfg:    cfg,
		recvCh: make(chan inbound),
		done:   make(chan struct{}),
	}

	_ = conn.SetReadDeadline(time.Now().Add(cfg.pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(cfg.pongTimeout))
	})

	go s.readLoop()
	go s.keepalive()

	return s
}

// readLoop pumps frames off the connection until it fails or the stream is
// closed. The terminal read error is delivered as the last frame.
func (s *stream) readLoop() {
	defer close(s.recvCh)

	for {
		_, message, err := s.conn.ReadMessage()

		var frame inbound
		if err != nil {
			frame = inbound{err: err}
		} else {
			frame = inbound{message: message}
		}

		select {
		case s.recvCh <- frame:
			if err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// keepalive pings the peer at the configured interval until the stream is
// closed. Write failures are left for the read pump to observe.
func (s *stream) keepalive() {
	ticker := time.NewTicker(s.cfg.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.writeTimeout))
			_ = s.conn.WriteMessage(websocket.PingMessage, nil)
			s.writeMu.Unlock()
		}
	}
}

// Receive blocks for the next text frame, the context's cancellation, or the
// end of the connection, whichever comes first.
func (s *stream) Receive(ctx context.Context) ([]byte, error) {
	frame, ok := chflow.Receive(ctx, s.recvCh)
	if !ok {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, tracker.ErrConnectionClosed
	}

	if frame.err != nil {
		return nil, fmt.Errorf("%w: %v", tracker.ErrConnectionClosed, frame.err)
	}

	return frame.message, nil
}

// Send writes one text frame within the configured write timeout.
func (s *stream) Send(ctx context.Context, message []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.writeTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		return fmt.Errorf("%w: %v", tracker.ErrConnectionClosed, err)
	}

	return nil
}

// Close sends a best-effort close frame and tears the connection down,
// releasing the pump and keepalive goroutines. Safe to call multiple times
// and after failures.
func (s *stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)

		s.writeMu.Lock()
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.writeTimeout))
		_ = s.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		s.writeMu.Unlock()

		err = s.conn.Close()
	})

	return err
}
