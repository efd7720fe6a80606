package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/portfoliohub/internal/pkg/events"
)

func startHub(t *testing.T, sendBuffer int) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(sendBuffer, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		c.Set("userID", c.Query("user"))
		c.Set("role", "STUDENT")
	}, NewHandler(hub, zerolog.Nop()).HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, user string) *gorilla.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?user=" + user
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *gorilla.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func TestHub_BroadcastsToEveryClient(t *testing.T) {
	hub, srv := startHub(t, 16)

	a := dial(t, srv, "alice")
	b := dial(t, srv, "faculty")
	require.Eventually(t, func() bool { return hub.ClientsCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(events.Event{Kind: events.KindApproved, StudentID: "alice", Status: "Approved"})

	for _, conn := range []*gorilla.Conn{a, b} {
		env := readEnvelope(t, conn)
		assert.Equal(t, EnvelopeEvent, env.Event)
		assert.Equal(t, events.KindApproved, env.Payload.Kind)
		assert.Equal(t, "alice", env.Payload.StudentID)
	}
}

func TestHub_PreservesOrder(t *testing.T) {
	hub, srv := startHub(t, 16)
	conn := dial(t, srv, "alice")
	require.Eventually(t, func() bool { return hub.ClientsCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	kinds := []events.Kind{events.KindSubmitted, events.KindApproved, events.KindAdminApproved}
	for _, k := range kinds {
		hub.Publish(events.Event{Kind: k, StudentID: "alice"})
	}

	for _, k := range kinds {
		assert.Equal(t, k, readEnvelope(t, conn).Payload.Kind)
	}
}

func TestHub_UnregistersClosedClients(t *testing.T) {
	hub, srv := startHub(t, 16)
	conn := dial(t, srv, "alice")
	require.Eventually(t, func() bool { return hub.ClientsCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientsCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	// Run is never started, so nothing drains the queue
	hub := NewHub(2, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			hub.Publish(events.Event{Kind: events.KindSubmitted})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
}

func TestHub_StopsOnContextCancel(t *testing.T) {
	hub := NewHub(4, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	select {
	case <-hub.done:
	default:
		t.Fatal("done channel not closed")
	}
}
