package birdeye

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gabapcia/tokenwatch/internal/tracker"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedServer is a minimal websocket peer: it records the handshake request,
// echoes a scripted message on demand, and captures inbound frames.
type feedServer struct {
	upgrader websocket.Upgrader

	mu       sync.Mutex
	request  *http.Request
	conn     *websocket.Conn
	inbound  chan []byte
	accepted chan struct{}
}

func newFeedServer(t *testing.T) (*feedServer, *httptest.Server) {
	t.Helper()

	fs := &feedServer{
		upgrader: websocket.Upgrader{Subprotocols: []string{subprotocol}},
		inbound:  make(chan []byte, 16),
		accepted: make(chan struct{}),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := fs.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		fs.mu.Lock()
		fs.request = r
		fs.conn = conn
		fs.mu.Unlock()
		close(fs.accepted)

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			fs.inbound <- msg
		}
	}))
	t.Cleanup(srv.Close)

	return fs, srv
}

func (fs *feedServer) handshakeRequest() *http.Request {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.request
}

func (fs *feedServer) push(t *testing.T, msg []byte) {
	t.Helper()

	select {
	case <-fs.accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the websocket handshake")
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	require.NoError(t, fs.conn.WriteMessage(websocket.TextMessage, msg))
}

func (fs *feedServer) disconnect() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_ = fs.conn.Close()
}

// wsURL rewrites an httptest server URL into its websocket form.
func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestClient_Dial(t *testing.T) {
	t.Run("should connect to the chain endpoint with the api key credential", func(t *testing.T) {
		fs, srv := newFeedServer(t)

		c := New("solana", "secret-key", WithBaseURL(wsURL(srv)))
		stream, err := c.Dial(t.Context())
		require.NoError(t, err)
		defer stream.Close()

		req := fs.handshakeRequest()
		require.NotNil(t, req)
		assert.Equal(t, "/solana", req.URL.Path)
		assert.Equal(t, "secret-key", req.URL.Query().Get("x-api-key"))
		assert.Contains(t, req.Header.Get("Sec-Websocket-Protocol"), "echo-protocol")
	})

	t.Run("should fail when the endpoint refuses the handshake", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := New("solana", "bad-key", WithBaseURL(wsURL(srv)))
		_, err := c.Dial(t.Context())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})
}

func TestStream(t *testing.T) {
	t.Run("should receive frames pushed by the peer", func(t *testing.T) {
		fs, srv := newFeedServer(t)

		c := New("solana", "key", WithBaseURL(wsURL(srv)))
		stream, err := c.Dial(t.Context())
		require.NoError(t, err)
		defer stream.Close()

		fs.push(t, []byte(`{"type":"TXS_DATA"}`))

		msg, err := stream.Receive(t.Context())
		require.NoError(t, err)
		assert.Equal(t, `{"type":"TXS_DATA"}`, string(msg))
	})

	t.Run("should deliver sent frames to the peer", func(t *testing.T) {
		fs, srv := newFeedServer(t)

		c := New("solana", "key", WithBaseURL(wsURL(srv)))
		stream, err := c.Dial(t.Context())
		require.NoError(t, err)
		defer stream.Close()

		err = stream.Send(t.Context(), []byte(`{"type":"SUBSCRIBE_TOKEN_NEW_LISTING"}`))
		require.NoError(t, err)

		select {
		case msg := <-fs.inbound:
			assert.Equal(t, `{"type":"SUBSCRIBE_TOKEN_NEW_LISTING"}`, string(msg))
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for the frame to arrive")
		}
	})

	t.Run("should report a connection loss on receive", func(t *testing.T) {
		fs, srv := newFeedServer(t)

		c := New("solana", "key", WithBaseURL(wsURL(srv)))
		stream, err := c.Dial(t.Context())
		require.NoError(t, err)
		defer stream.Close()

		fs.push(t, []byte("warmup"))
		_, err = stream.Receive(t.Context())
		require.NoError(t, err)

		fs.disconnect()

		_, err = stream.Receive(t.Context())
		require.Error(t, err)
		assert.ErrorIs(t, err, tracker.ErrConnectionClosed)
	})

	t.Run("should unblock a pending receive on context cancellation", func(t *testing.T) {
		_, srv := newFeedServer(t)

		c := New("solana", "key", WithBaseURL(wsURL(srv)))
		stream, err := c.Dial(t.Context())
		require.NoError(t, err)
		defer stream.Close()

		ctx, cancel := context.WithCancel(t.Context())

		done := make(chan error, 1)
		go func() {
			_, err := stream.Receive(ctx)
			done <- err
		}()

		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Fatal("receive did not unblock after cancellation")
		}
	})

	t.Run("should tolerate multiple closes", func(t *testing.T) {
		_, srv := newFeedServer(t)

		c := New("solana", "key", WithBaseURL(wsURL(srv)))
		stream, err := c.Dial(t.Context())
		require.NoError(t, err)

		require.NoError(t, stream.Close())
		assert.NoError(t, stream.Close())
	})
}
