package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/rs/zerolog"

	"github.com/lexiqai/translate-client/internal/audio"
	"github.com/lexiqai/translate-client/internal/credential"
	"github.com/lexiqai/translate-client/internal/observability"
)

// WebRTCConfig parameterizes one peer connection attempt.
type WebRTCConfig struct {
	SignalingURL string
	Credential   string // ephemeral, minted for this session
	Model        string
	Capture      audio.Capture
	SampleRate   int
	FrameMs      int
	VAD          *audio.VAD // optional local speech detection
	HTTPClient   *http.Client
}

// Connection is the live handle for one WebRTC session: peer connection,
// event data channel and the local capture feeding the PCMU track. Exactly
// one may be live at a time; the session controller enforces that.
type Connection struct {
	logger zerolog.Logger

	mu      sync.Mutex
	pc      *webrtc.PeerConnection
	dc      *webrtc.DataChannel
	capture audio.Capture
	closed  bool
}

// DialWebRTC runs the full start sequence: microphone capture, peer
// connection, local track, data channel (created before the offer so its
// negotiation rides in it), offer/answer signaling. Any failure tears down
// everything created so far.
func DialWebRTC(ctx context.Context, cfg WebRTCConfig, cb Callbacks) (*Connection, error) {
	logger := observability.GetLogger().With().Str("component", "webrtc").Logger()
	if cfg.FrameMs <= 0 {
		cfg.FrameMs = 20
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	conn := &Connection{logger: logger, capture: cfg.Capture}

	if err := cfg.Capture.Start(ctx); err != nil {
		return nil, err
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create peer connection: %w", err)
	}
	conn.mu.Lock()
	conn.pc = pc
	conn.mu.Unlock()

	// Remote audio is drained into the playback sink; without a reader the
	// track stalls.
	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		logger.Debug().Str("codec", track.Codec().MimeType).Msg("Remote track attached")
		go drainRemoteTrack(track)
	})

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		logger.Debug().Str("state", state.String()).Msg("Connection state changed")
		switch state {
		case webrtc.PeerConnectionStateConnected:
			cb.connected()
		case webrtc.PeerConnectionStateDisconnected,
			webrtc.PeerConnectionStateFailed,
			webrtc.PeerConnectionStateClosed:
			if !conn.isClosed() {
				cb.closed("connection closed")
			}
		}
	})

	track, err := webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{
		MimeType:  webrtc.MimeTypePCMU,
		ClockRate: 8000,
		Channels:  1,
	}, "audio", "microphone")
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create audio track: %w", err)
	}
	if _, err := pc.AddTrack(track); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to attach audio track: %w", err)
	}

	// The data channel must exist before the offer is generated; its
	// negotiation is embedded there.
	dc, err := pc.CreateDataChannel("oai-events", nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create event channel: %w", err)
	}
	conn.mu.Lock()
	conn.dc = dc
	conn.mu.Unlock()

	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		cb.message(msg.Data)
	})
	dc.OnOpen(func() {
		logger.Debug().Msg("Event channel open")
		cb.open(conn)
	})

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}
	gathered := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(offer); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set local description: %w", err)
	}
	select {
	case <-gathered:
	case <-ctx.Done():
		conn.Close()
		return nil, ctx.Err()
	}

	answer, err := exchangeSDP(ctx, cfg, pc.LocalDescription().SDP)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answer,
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set remote description: %w", err)
	}

	go pumpTrack(conn, track, cfg, cb)

	return conn, nil
}

// exchangeSDP posts the local offer to the signaling endpoint, bearer-
// authorized with the ephemeral credential, and returns the answer SDP.
func exchangeSDP(ctx context.Context, cfg WebRTCConfig, offerSDP string) (string, error) {
	endpoint := cfg.SignalingURL
	if cfg.Model != "" {
		endpoint += "?model=" + url.QueryEscape(cfg.Model)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(offerSDP))
	if err != nil {
		return "", fmt.Errorf("failed to build signaling request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.Credential)
	req.Header.Set("Content-Type", "application/sdp")

	start := time.Now()
	resp, err := cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("signaling request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read signaling response: %w", err)
	}
	observability.ObserveSignalingLatency(time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("signaling failed: %s", credential.ExtractErrorMessage(body))
	}
	return string(body), nil
}

// pumpTrack moves captured PCM frames onto the PCMU track, feeding the
// optional VAD along the way.
func pumpTrack(conn *Connection, track *webrtc.TrackLocalStaticSample, cfg WebRTCConfig, cb Callbacks) {
	frameDur := time.Duration(cfg.FrameMs) * time.Millisecond
	for frame := range cfg.Capture.Frames() {
		if cfg.VAD != nil {
			started, stopped := cfg.VAD.ProcessFrame(frame)
			if started {
				cb.speechEdge(true)
			}
			if stopped {
				cb.speechEdge(false)
			}
		}
		sample := media.Sample{Data: audio.EncodeMulaw(frame), Duration: frameDur}
		if err := track.WriteSample(sample); err != nil {
			if !conn.isClosed() {
				conn.logger.Warn().Err(err).Msg("Failed to write media sample")
			}
			return
		}
	}
}

// Send marshals v and pushes it over the data channel.
func (c *Connection) Send(v any) error {
	c.mu.Lock()
	dc := c.dc
	closed := c.closed
	c.mu.Unlock()

	if closed || dc == nil {
		return fmt.Errorf("event channel is not open")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode channel message: %w", err)
	}
	return dc.SendText(string(data))
}

// Close releases every resource of the session: event channel, peer
// connection and capture. Errors from already-closed handles are swallowed.
// Idempotent and safe from any lifecycle point.
func (c *Connection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	dc := c.dc
	pc := c.pc
	capture := c.capture
	c.dc = nil
	c.pc = nil
	c.capture = nil
	c.mu.Unlock()

	if dc != nil {
		_ = dc.Close()
	}
	if pc != nil {
		_ = pc.Close()
	}
	if capture != nil {
		_ = capture.Stop()
	}
	return nil
}

func (c *Connection) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func drainRemoteTrack(track *webrtc.TrackRemote) {
	buf := make([]byte, 1500)
	for {
		if _, _, err := track.Read(buf); err != nil {
			return
		}
	}
}
