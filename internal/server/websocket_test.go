package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestServer(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/analyze"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readWSResponse(t *testing.T, conn *websocket.Conn) WebSocketAnalyzeResponse {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var resp WebSocketAnalyzeResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp
}

func TestWebSocketAnalyze(t *testing.T) {
	fake := &fakeAnalyzer{resp: successResponse("中国移动")}
	conn := dialTestServer(t, newTestServer(t, fake))

	var imgBuf bytes.Buffer
	require.NoError(t, png.Encode(&imgBuf, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	req := WebSocketAnalyzeRequest{Image: imgBuf.Bytes(), Filename: "shot.png"}
	payload, err := json.Marshal(req)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, payload))

	first := readWSResponse(t, conn)
	assert.Equal(t, "processing", first.Status)
	assert.NotEmpty(t, first.RequestID)

	// Progress update, then completion.
	second := readWSResponse(t, conn)
	assert.Equal(t, "processing", second.Status)

	final := readWSResponse(t, conn)
	assert.Equal(t, "completed", final.Status)
	assert.InDelta(t, 1.0, final.Progress, 0.001)
	assert.NotNil(t, final.Result)
	assert.Equal(t, first.RequestID, final.RequestID)
}

func TestWebSocketAnalyzeInvalidPayload(t *testing.T) {
	conn := dialTestServer(t, newTestServer(t, &fakeAnalyzer{}))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	resp := readWSResponse(t, conn)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "invalid_request", resp.ErrorType)
}

func TestWebSocketAnalyzeMissingImage(t *testing.T) {
	conn := dialTestServer(t, newTestServer(t, &fakeAnalyzer{}))

	payload, err := json.Marshal(WebSocketAnalyzeRequest{})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, payload))

	// The processing notification arrives before the validation error.
	first := readWSResponse(t, conn)
	assert.Equal(t, "processing", first.Status)

	resp := readWSResponse(t, conn)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "invalid_request", resp.ErrorType)
}
