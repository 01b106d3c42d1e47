package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"blog-api/internal/realtime"
)

func TestChangeFeed_DeliversTopicEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)
	hub := realtime.NewHub(log)

	r := gin.New()
	r.GET("/ws", ChangeFeed(hub, log))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?topic=/posts"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers("/posts") == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast("/authors", []byte(`{"type":"created","resource":"/authors"}`))
	hub.Broadcast("/posts", []byte(`{"type":"updated","resource":"/posts"}`))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"updated","resource":"/posts"}`, string(msg))

	conn.Close()
	require.Eventually(t, func() bool { return hub.Subscribers("/posts") == 0 }, time.Second, 10*time.Millisecond)
}
