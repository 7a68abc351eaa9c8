package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/screentel/screentel/internal/pipeline"
	"github.com/screentel/screentel/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origins are not restricted; the server is meant for internal
		// diagnostic tooling behind a trusted network edge.
		return true
	},
}

// WebSocketAnalyzeRequest is a screenshot analysis request sent over a
// WebSocket connection. Image holds the raw encoded bytes.
type WebSocketAnalyzeRequest struct {
	Image    []byte `json:"image"`
	Filename string `json:"filename,omitempty"`
	Debug    bool   `json:"debug,omitempty"`
}

// WebSocketAnalyzeResponse is a progress or result message sent back to
// the client.
type WebSocketAnalyzeResponse struct {
	Type      string      `json:"type"`
	Status    string      `json:"status"` // "processing", "completed", "error"
	Progress  float64     `json:"progress,omitempty"`
	Result    interface{} `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorType string      `json:"error_type,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// webSocketWriter is the subset of *websocket.Conn used for sending.
type webSocketWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// analyzeWebSocketHandler handles WebSocket connections for streaming
// analysis with progress updates.
func (s *Server) analyzeWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)
	s.handleWebSocketConnection(conn)
}

func (s *Server) handleWebSocketConnection(conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Keep the connection alive while the client is idle.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(conn, data)
		}
	}
}

func (s *Server) handleWebSocketMessage(conn *websocket.Conn, data []byte) {
	var req WebSocketAnalyzeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
		return
	}

	requestID := uuid.NewString()

	s.sendWebSocketResponse(conn, WebSocketAnalyzeResponse{
		Type:      "analyze_response",
		Status:    "processing",
		Progress:  0.0,
		RequestID: requestID,
	})

	if len(req.Image) == 0 {
		s.sendWebSocketError(conn, "invalid_request", "No image data provided")
		return
	}

	img, _, err := utils.DecodeImage(bytes.NewReader(req.Image))
	if err != nil {
		s.sendWebSocketError(conn, "processing_error", fmt.Sprintf("Failed to decode image: %v", err))
		return
	}

	s.sendWebSocketResponse(conn, WebSocketAnalyzeResponse{
		Type:      "analyze_response",
		Status:    "processing",
		Progress:  0.5,
		RequestID: requestID,
	})

	start := time.Now()
	resp := s.pipeline.Analyze(context.Background(), img, pipeline.Options{Debug: req.Debug})
	duration := time.Since(start)

	status := "success"
	if !resp.Success {
		status = "error"
	}
	analysisRequestsTotal.WithLabelValues("websocket", status).Inc()
	analysisDuration.WithLabelValues("websocket").Observe(duration.Seconds())

	if !resp.Success {
		s.sendWebSocketError(conn, "processing_error", resp.Error)
		return
	}

	if s.history != nil {
		if _, err := s.history.Save(context.Background(), req.Filename, resp); err != nil {
			slog.Warn("failed to save analysis record", "filename", req.Filename, "error", err)
		}
	}

	s.sendWebSocketResponse(conn, WebSocketAnalyzeResponse{
		Type:      "analyze_response",
		Status:    "completed",
		Progress:  1.0,
		Result:    resp,
		RequestID: requestID,
	})
}

func (s *Server) sendWebSocketResponse(conn webSocketWriter, response WebSocketAnalyzeResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

func (s *Server) sendWebSocketError(conn webSocketWriter, errorType, message string) {
	s.sendWebSocketResponse(conn, WebSocketAnalyzeResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorType: errorType,
	})
}
