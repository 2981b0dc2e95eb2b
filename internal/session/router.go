package session

import (
	"sync"
	"time"

	"github.com/lexiqai/translate-client/internal/observability"
	"github.com/lexiqai/translate-client/internal/panel"
	"github.com/lexiqai/translate-client/internal/segment"
	"github.com/rs/zerolog"
)

// Sender pushes one outbound message onto the event channel.
type Sender interface {
	Send(v any) error
}

// StatusSink receives the session's one-line status text. Pure I/O boundary,
// implemented by the UI layer.
type StatusSink interface {
	SetStatus(text string)
}

// Status messages driven by inbound events.
const (
	StatusReady            = "ready"
	StatusConnected        = "connected"
	StatusConnectionClosed = "connection closed"
	StatusSpeechDetected   = "speech detected"
	StatusProcessing       = "processing"
	StatusListening        = "listening"
)

type timerStopper interface {
	Stop() bool
}

type timerFactory func(d time.Duration, f func()) timerStopper

func startTimer(d time.Duration, f func()) timerStopper {
	return time.AfterFunc(d, f)
}

// Router consumes inbound protocol events one at a time, updates the two
// segment stores through their presenters, drives status text and manages
// the auto-commit timer.
type Router struct {
	transcripts  *panel.Presenter
	translations *panel.Presenter
	status       StatusSink
	logger       zerolog.Logger

	// commitInterval is read on every (re)arm so live config edits take
	// effect without restarting the session. Zero disables auto-commit.
	commitInterval func() time.Duration

	mu       sync.Mutex
	sender   Sender
	timer    timerStopper
	timerGen int
	newTimer timerFactory
}

// NewRouter wires a router to its two panels and status sink.
func NewRouter(transcripts, translations *panel.Presenter, status StatusSink, commitInterval func() time.Duration) *Router {
	return &Router{
		transcripts:    transcripts,
		translations:   translations,
		status:         status,
		logger:         observability.GetLogger().With().Str("component", "router").Logger(),
		commitInterval: commitInterval,
		newTimer:       startTimer,
	}
}

// SetSender attaches the outbound side of the event channel. A nil sender
// detaches it; pending timer fires then become no-ops.
func (r *Router) SetSender(s Sender) {
	r.mu.Lock()
	r.sender = s
	r.mu.Unlock()
}

// HandleMessage decodes and routes one raw channel message. Unparseable
// payloads are logged and dropped without touching session state.
func (r *Router) HandleMessage(data []byte) {
	ev, err := DecodeEvent(data)
	if err != nil {
		observability.IncMalformedMessages()
		r.logger.Warn().Err(err).Msg("Dropping unparseable channel message")
		return
	}
	r.Route(ev)
}

// Route applies one decoded event to session state.
func (r *Router) Route(ev Event) {
	observability.IncEventRouted(ev.Type)

	switch ev.Kind {
	case KindSessionCreated:
		r.status.SetStatus(StatusReady)

	case KindError:
		// In-band errors do not tear the session down; the peer may continue.
		r.status.SetStatus("Error: " + ev.ErrorMessage)
		r.logger.Warn().Str("event_type", ev.Type).Str("message", ev.ErrorMessage).Msg("Peer reported error")

	case KindSpeechStarted:
		r.ArmAutoCommit()
		r.status.SetStatus(StatusSpeechDetected)
		r.transcripts.Show()

	case KindSpeechStopped:
		r.CancelAutoCommit()
		r.status.SetStatus(StatusProcessing)

	case KindResponseCreated:
		if ev.ResponseID != "" {
			trackNewSegment(r.translations, "translation", ev.ResponseID)
			r.translations.Store().Upsert(ev.ResponseID, nil)
			r.translations.Show()
		}

	case KindResponseDone:
		// Only a cancelled response forces finality here; completed responses
		// are finalized by their output_text.done event.
		if ev.ResponseID != "" && ev.Status == "cancelled" && r.translations.Store().Has(ev.ResponseID) {
			r.translations.Store().Upsert(ev.ResponseID, func(seg *segment.Segment) {
				seg.Final = true
			})
			r.translations.Show()
		}
		r.status.SetStatus(StatusListening)

	case KindTranscriptionDelta:
		key := segment.Key(ev.ItemID, ev.ContentIndex)
		delta := ev.Delta
		trackNewSegment(r.transcripts, "transcript", key)
		r.transcripts.Store().Upsert(key, func(seg *segment.Segment) {
			seg.Text += delta
		})
		r.transcripts.Show()

	case KindTranscriptionCompleted:
		key := segment.Key(ev.ItemID, ev.ContentIndex)
		transcript := ev.Transcript
		trackNewSegment(r.transcripts, "transcript", key)
		r.transcripts.Store().Upsert(key, func(seg *segment.Segment) {
			if transcript != nil {
				seg.Text = *transcript
			}
			seg.Final = true
		})
		r.transcripts.Show()

	case KindTranslationDelta:
		if ev.ResponseID == "" {
			return
		}
		delta := ev.Delta
		trackNewSegment(r.translations, "translation", ev.ResponseID)
		r.translations.Store().Upsert(ev.ResponseID, func(seg *segment.Segment) {
			seg.Text += delta
		})
		r.translations.Show()

	case KindTranslationDone:
		if ev.ResponseID == "" {
			return
		}
		text := ev.Text
		trackNewSegment(r.translations, "translation", ev.ResponseID)
		r.translations.Store().Upsert(ev.ResponseID, func(seg *segment.Segment) {
			if text != nil {
				seg.Text = *text
			}
			seg.Final = true
		})
		r.translations.Show()

	default:
		r.logger.Debug().Str("event_type", ev.Type).Msg("Ignoring unhandled event type")
	}
}

func trackNewSegment(p *panel.Presenter, name, key string) {
	if !p.Store().Has(key) {
		observability.IncSegmentsCreated(name)
	}
}

// ArmAutoCommit cancels any armed timer and starts a fresh one when a
// positive interval is configured. The timer re-arms itself after each fire
// so buffered audio is flushed periodically while speech is ongoing.
func (r *Router) ArmAutoCommit() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopTimerLocked()
	d := r.commitInterval()
	if d <= 0 {
		return
	}
	gen := r.timerGen
	r.timer = r.newTimer(d, func() { r.fireAutoCommit(gen) })
}

// CancelAutoCommit stops the timer. Fires already in flight become no-ops.
func (r *Router) CancelAutoCommit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopTimerLocked()
}

func (r *Router) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.timerGen++
}

func (r *Router) fireAutoCommit(gen int) {
	r.mu.Lock()
	// gen is captured at arm time; any cancel or re-arm since then bumps
	// timerGen and makes this fire stale.
	if gen != r.timerGen {
		r.mu.Unlock()
		return
	}
	sender := r.sender
	d := r.commitInterval()
	if d > 0 {
		r.timer = r.newTimer(d, func() { r.fireAutoCommit(gen) })
	} else {
		r.timer = nil
	}
	r.mu.Unlock()

	if sender == nil {
		return
	}
	if err := sender.Send(CommitMessage()); err != nil {
		// Best effort: the channel may have closed under us.
		r.logger.Warn().Err(err).Msg("Failed to send auto-commit")
		return
	}
	observability.IncCommitsFired()
}
