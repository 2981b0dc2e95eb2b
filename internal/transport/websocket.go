package transport

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lexiqai/translate-client/internal/audio"
	"github.com/lexiqai/translate-client/internal/observability"
)

type appendAudioMessage struct {
	Type  string `json:"type"`
	Audio string `json:"audio"`
}

// WebSocketConfig parameterizes the WebSocket transport variant. It speaks
// the same event protocol as the WebRTC client but carries microphone audio
// in-band as base64 append messages instead of a media track.
type WebSocketConfig struct {
	URL        string
	Credential string
	Model      string
	Capture    audio.Capture
	SampleRate int
	VAD        *audio.VAD
	// FlushMs batches encoded audio before each append message.
	FlushMs int
}

// WSConn is the live handle for one WebSocket session.
type WSConn struct {
	logger zerolog.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	capture audio.Capture
	closed  bool
}

// DialWebSocket connects, starts the read loop and the audio pump. The
// channel counts as open (and connected) as soon as the dial succeeds.
func DialWebSocket(ctx context.Context, cfg WebSocketConfig, cb Callbacks) (*WSConn, error) {
	logger := observability.GetLogger().With().Str("component", "websocket").Logger()
	if cfg.FlushMs <= 0 {
		cfg.FlushMs = 100
	}

	if err := cfg.Capture.Start(ctx); err != nil {
		return nil, err
	}

	endpoint := cfg.URL
	if cfg.Model != "" {
		endpoint += "?model=" + url.QueryEscape(cfg.Model)
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+cfg.Credential)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, header)
	if err != nil {
		_ = cfg.Capture.Stop()
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed: %s: %w", resp.Status, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	ws := &WSConn{logger: logger, conn: conn, capture: cfg.Capture}

	go ws.readLoop(conn, cb)
	go ws.pumpAudio(cfg, cb)

	cb.open(ws)
	cb.connected()
	return ws, nil
}

func (w *WSConn) readLoop(conn *websocket.Conn, cb Callbacks) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !w.isClosed() {
				w.logger.Debug().Err(err).Msg("WebSocket read ended")
				cb.closed("connection closed")
			}
			return
		}
		cb.message(data)
	}
}

// pumpAudio batches μ-law audio through a ring buffer and ships it as
// base64 append messages at the configured flush cadence.
func (w *WSConn) pumpAudio(cfg WebSocketConfig, cb Callbacks) {
	ring := audio.NewRingBuffer(cfg.SampleRate) // one second of μ-law audio
	flush := time.NewTicker(time.Duration(cfg.FlushMs) * time.Millisecond)
	defer flush.Stop()

	frames := cfg.Capture.Frames()
	chunk := make([]byte, cfg.SampleRate)
	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if cfg.VAD != nil {
				started, stopped := cfg.VAD.ProcessFrame(frame)
				if started {
					cb.speechEdge(true)
				}
				if stopped {
					cb.speechEdge(false)
				}
			}
			ring.Write(audio.EncodeMulaw(frame))
		case <-flush.C:
			n := ring.Read(chunk)
			if n == 0 {
				continue
			}
			encoded := base64.StdEncoding.EncodeToString(chunk[:n])
			if err := w.Send(appendAudioMessage{Type: "input_audio_buffer.append", Audio: encoded}); err != nil {
				if !w.isClosed() {
					w.logger.Warn().Err(err).Msg("Failed to send audio chunk")
				}
				return
			}
		}
	}
}

// Send marshals v and writes it as one text message. Serialized; gorilla
// permits only one concurrent writer.
func (w *WSConn) Send(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.conn == nil {
		return fmt.Errorf("event channel is not open")
	}
	return w.conn.WriteJSON(v)
}

// Close tears the connection down. Idempotent.
func (w *WSConn) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	conn := w.conn
	capture := w.capture
	w.conn = nil
	w.capture = nil
	w.mu.Unlock()

	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
	if capture != nil {
		_ = capture.Stop()
	}
	return nil
}

func (w *WSConn) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}
