package relay

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, handler Handler) *Server {
	t.Helper()

	server := NewServer("127.0.0.1:0", handler, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.Serve(ctx); err != nil {
			t.Errorf("serve failed: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool {
		return server.Addr() != "127.0.0.1:0"
	}, time.Second, 5*time.Millisecond)

	return server
}

func TestServerAcknowledgesEnvelope(t *testing.T) {
	var mu sync.Mutex
	var got []Envelope
	server := startServer(t, func(ctx context.Context, env Envelope) {
		mu.Lock()
		got = append(got, env)
		mu.Unlock()
	})

	conn, err := net.Dial("tcp", server.Addr())
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.NoError(t, json.NewEncoder(conn).Encode(Envelope{
		Telegram: "@bob",
		Message:  "your list is gone",
	}))

	var reply Reply
	require.NoError(t, json.NewDecoder(conn).Decode(&reply))
	assert.Equal(t, StatusAccepted, reply.Status)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "@bob", got[0].Telegram)
	assert.Equal(t, "your list is gone", got[0].Message)
}

func TestServerHandlesMultipleEnvelopesPerConnection(t *testing.T) {
	server := startServer(t, func(ctx context.Context, env Envelope) {})

	conn, err := net.Dial("tcp", server.Addr())
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	enc := json.NewEncoder(conn)
	dec := json.NewDecoder(conn)

	for i := 0; i < 3; i++ {
		require.NoError(t, enc.Encode(Envelope{Telegram: "@bob", Message: "hello"}))

		var reply Reply
		require.NoError(t, dec.Decode(&reply))
		assert.Equal(t, StatusAccepted, reply.Status)
	}
}

func TestServerHandlesConcurrentConnections(t *testing.T) {
	server := startServer(t, func(ctx context.Context, env Envelope) {})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conn, err := net.Dial("tcp", server.Addr())
			if !assert.NoError(t, err) {
				return
			}
			defer func() { _ = conn.Close() }()

			if !assert.NoError(t, json.NewEncoder(conn).Encode(Envelope{Telegram: "@x", Message: "m"})) {
				return
			}

			var reply Reply
			if assert.NoError(t, json.NewDecoder(conn).Decode(&reply)) {
				assert.Equal(t, StatusAccepted, reply.Status)
			}
		}()
	}
	wg.Wait()
}

func TestServerShutdownClosesConnections(t *testing.T) {
	server := NewServer("127.0.0.1:0", nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx)
	}()

	require.Eventually(t, func() bool {
		return server.Addr() != "127.0.0.1:0"
	}, time.Second, 5*time.Millisecond)

	conn, err := net.Dial("tcp", server.Addr())
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
