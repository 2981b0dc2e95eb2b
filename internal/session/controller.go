package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/translate-client/internal/audio"
	"github.com/lexiqai/translate-client/internal/config"
	"github.com/lexiqai/translate-client/internal/observability"
	"github.com/lexiqai/translate-client/internal/panel"
	"github.com/lexiqai/translate-client/internal/transport"
)

var (
	// ErrSessionActive is returned when Start is called while a session is
	// pending or live. Only one session may exist at a time.
	ErrSessionActive = errors.New("a session is already active")
	// ErrMissingCredential is returned when Start is called without an API key.
	ErrMissingCredential = errors.New("no API key provided")
)

// Minter mints a short-lived session credential from the long-lived key.
type Minter interface {
	Mint(ctx context.Context, apiKey, model string) (string, error)
}

type dialFunc func(ctx context.Context, secret string, vad *audio.VAD, cb transport.Callbacks) (transport.Channel, error)

// Controller owns all mutable session state: the two segment stores (via
// their presenters), the session configuration and the single live
// connection. Start, Stop and Reconfigure are its only mutators. An epoch
// counter guards every asynchronous resumption point so completions from a
// superseded session are ignored.
type Controller struct {
	op           *config.Config
	minter       Minter
	transcripts  *panel.Presenter
	translations *panel.Presenter
	status       StatusSink
	router       *Router
	logger       zerolog.Logger
	dial         dialFunc

	cfgMu sync.Mutex
	cfg   Config

	mu        sync.Mutex
	epoch     int
	pending   bool
	conn      transport.Channel
	startedAt time.Time
}

// NewController assembles the session controller. Session defaults come from
// the operational config; later edits arrive through Reconfigure.
func NewController(op *config.Config, minter Minter, transcripts, translations *panel.Presenter, status StatusSink) *Controller {
	cfg := DefaultConfig()
	if op.TranslationModel != "" {
		cfg.TranslationModel = op.TranslationModel
	}
	if op.TranscriptionModel != "" {
		cfg.TranscriptionModel = op.TranscriptionModel
	}
	if op.TargetLanguage != "" {
		cfg.Instructions = "You are a translator. Translate everything the user says into " +
			op.TargetLanguage + ". Output only the translation."
	}
	cfg.AutoCommitMs = op.AutoCommitMs

	c := &Controller{
		op:           op,
		minter:       minter,
		transcripts:  transcripts,
		translations: translations,
		status:       status,
		logger:       observability.GetLogger().With().Str("component", "controller").Logger(),
		cfg:          cfg,
	}
	c.router = NewRouter(transcripts, translations, status, c.commitInterval)
	c.dial = c.dialTransport
	return c
}

// Active reports whether a session is pending or live. The UI disables the
// start control while this is true.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending || c.conn != nil
}

// Config returns a snapshot of the current session configuration.
func (c *Controller) Config() Config {
	c.cfgMu.Lock()
	defer c.cfgMu.Unlock()
	return c.cfg
}

// Start runs the full session-start sequence: credential mint, transport
// dial, channel wiring. The apiKey is used once and never retained.
func (c *Controller) Start(ctx context.Context, apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		c.status.SetStatus("Error: enter an API key first")
		return ErrMissingCredential
	}

	c.mu.Lock()
	if c.pending || c.conn != nil {
		c.mu.Unlock()
		return ErrSessionActive
	}
	c.pending = true
	c.epoch++
	epoch := c.epoch
	c.mu.Unlock()

	logger, _ := observability.SessionLogger()
	logger.Debug().Int("epoch", epoch).Msg("Starting session")

	// A new session starts from empty panels.
	c.transcripts.Reset()
	c.translations.Reset()
	c.status.SetStatus("connecting…")

	snapshot := c.Config()
	secret, err := c.minter.Mint(ctx, apiKey, snapshot.TranslationModel)
	if err != nil {
		return c.abortStart(epoch, err)
	}
	if !c.isCurrent(epoch) {
		return nil // superseded while minting; stale completion
	}

	var vad *audio.VAD
	if snapshot.TurnDetection.Type == TurnDetectionNone {
		// No server-side turn detection: local VAD supplies the speech
		// edges that drive the auto-commit timer.
		vad = audio.NewVAD(audio.VADConfig{
			EnergyThreshold: c.op.VADEnergyThreshold,
			SilenceFrames:   c.op.VADSilenceFrames,
		})
	}

	conn, err := c.dial(ctx, secret, vad, transport.Callbacks{
		OnOpen:       func(ch transport.Channel) { c.channelOpened(epoch, ch) },
		OnMessage:    func(data []byte) { c.channelMessage(epoch, data) },
		OnConnected:  func() { c.transportConnected(epoch) },
		OnClose:      func(reason string) { c.transportClosed(epoch, reason) },
		OnSpeechEdge: func(started bool) { c.localSpeechEdge(epoch, started) },
	})
	if err != nil {
		return c.abortStart(epoch, err)
	}

	c.mu.Lock()
	if epoch != c.epoch {
		// Stopped while dialing: the completion is stale, discard it.
		c.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	c.conn = conn
	c.pending = false
	c.startedAt = time.Now()
	c.mu.Unlock()

	c.router.SetSender(conn)
	observability.RecordSessionStart()
	logger.Info().Str("model", snapshot.TranslationModel).Msg("Session started")
	return nil
}

// Stop tears down the active session. Safe to call at any lifecycle point,
// including repeatedly.
func (c *Controller) Stop() {
	c.teardown("stopped")
}

// Reconfigure folds form values into the session configuration and, when a
// session is live, pushes the new snapshot to the peer immediately.
func (c *Controller) Reconfigure(values map[string]string) {
	c.cfgMu.Lock()
	c.cfg.ApplyForm(values)
	snapshot := c.cfg
	c.cfgMu.Unlock()

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		if err := conn.Send(snapshot.UpdateMessage()); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to push session update")
		}
	}
}

func (c *Controller) commitInterval() time.Duration {
	c.cfgMu.Lock()
	defer c.cfgMu.Unlock()
	return time.Duration(c.cfg.AutoCommitMs) * time.Millisecond
}

func (c *Controller) isCurrent(epoch int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return epoch == c.epoch
}

func (c *Controller) abortStart(epoch int, err error) error {
	c.mu.Lock()
	stale := epoch != c.epoch
	if !stale {
		c.pending = false
	}
	c.mu.Unlock()
	if stale {
		return nil
	}

	observability.RecordSessionStartFailure()
	if errors.Is(err, audio.ErrCaptureDenied) {
		c.status.SetStatus("Error: microphone permission denied")
	} else {
		c.status.SetStatus("Error: " + err.Error())
	}
	c.logger.Warn().Err(err).Msg("Session start aborted")
	return err
}

// channelOpened pushes the configuration snapshot over the channel that just
// opened. The channel arrives with the callback because transports may open
// it before the dial returns, ahead of the controller registering it.
func (c *Controller) channelOpened(epoch int, ch transport.Channel) {
	if !c.isCurrent(epoch) {
		return
	}

	snapshot := c.Config()
	if err := ch.Send(snapshot.UpdateMessage()); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to send initial session update")
	}
	c.status.SetStatus(StatusReady)
}

func (c *Controller) channelMessage(epoch int, data []byte) {
	if !c.isCurrent(epoch) {
		return
	}
	c.router.HandleMessage(data)
}

func (c *Controller) transportConnected(epoch int) {
	if !c.isCurrent(epoch) {
		return
	}
	c.status.SetStatus(StatusConnected)
	// Both panels go live on connect, even while still holding placeholders.
	c.transcripts.Show()
	c.translations.Show()
}

func (c *Controller) transportClosed(epoch int, reason string) {
	if !c.isCurrent(epoch) {
		return
	}
	c.teardown(reason)
}

func (c *Controller) localSpeechEdge(epoch int, started bool) {
	if !c.isCurrent(epoch) {
		return
	}
	if started {
		c.router.ArmAutoCommit()
		c.status.SetStatus(StatusSpeechDetected)
		c.transcripts.Show()
	} else {
		c.router.CancelAutoCommit()
		c.status.SetStatus(StatusProcessing)
	}
}

func (c *Controller) teardown(status string) {
	c.mu.Lock()
	c.epoch++
	conn := c.conn
	startedAt := c.startedAt
	wasLive := conn != nil
	wasPending := c.pending
	c.conn = nil
	c.pending = false
	c.mu.Unlock()

	c.router.CancelAutoCommit()
	c.router.SetSender(nil)

	if conn != nil {
		_ = conn.Close()
	}
	if wasLive {
		observability.RecordSessionEnd(startedAt)
	}
	if wasLive || wasPending {
		c.status.SetStatus(status)
		c.logger.Info().Str("reason", status).Msg("Session ended")
	}
}

// dialTransport is the production dialer, choosing the transport variant
// from the operational config.
func (c *Controller) dialTransport(ctx context.Context, secret string, vad *audio.VAD, cb transport.Callbacks) (transport.Channel, error) {
	capture := audio.NewFFmpegCapture(audio.CaptureConfig{
		FFmpegPath:  c.op.FFmpegPath,
		InputFormat: c.op.InputFormat,
		InputDevice: c.op.InputDevice,
		SampleRate:  c.op.SampleRate,
	})
	snapshot := c.Config()

	if c.op.Transport == "websocket" {
		return transport.DialWebSocket(ctx, transport.WebSocketConfig{
			URL:        c.op.WebSocketURL,
			Credential: secret,
			Model:      snapshot.TranslationModel,
			Capture:    capture,
			SampleRate: c.op.SampleRate,
			VAD:        vad,
		}, cb)
	}
	return transport.DialWebRTC(ctx, transport.WebRTCConfig{
		SignalingURL: c.op.SignalingURL,
		Credential:   secret,
		Model:        snapshot.TranslationModel,
		Capture:      capture,
		SampleRate:   c.op.SampleRate,
		VAD:          vad,
	}, cb)
}
