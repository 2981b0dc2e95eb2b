// Package transport establishes the realtime session's media connection and
// its ordered, reliable event channel. Two variants exist: the WebRTC peer
// connection (the primary client) and a WebSocket fallback that carries
// audio in-band.
package transport

// Channel is the outbound side of the event channel. Send marshals v to JSON
// and pushes it as one message.
type Channel interface {
	Send(v any) error
	Close() error
}

// Callbacks wires transport events back into the session layer. All fields
// are optional; nil callbacks are skipped.
type Callbacks struct {
	// OnMessage delivers one inbound channel message in arrival order.
	OnMessage func(data []byte)
	// OnOpen fires once when the event channel becomes usable, carrying the
	// channel itself. The session pushes its configuration snapshot over it;
	// the handle avoids racing the caller's connection registration when the
	// channel opens before the dial returns.
	OnOpen func(ch Channel)
	// OnConnected fires when the media connection reports connected.
	OnConnected func()
	// OnClose fires on terminal transport closure (disconnected, failed or
	// closed), but not on an explicit local Close.
	OnClose func(reason string)
	// OnSpeechEdge delivers local VAD transitions: true for speech start,
	// false for speech stop. Only used when a VAD is configured.
	OnSpeechEdge func(started bool)
}

func (cb Callbacks) message(data []byte) {
	if cb.OnMessage != nil {
		cb.OnMessage(data)
	}
}

func (cb Callbacks) open(ch Channel) {
	if cb.OnOpen != nil {
		cb.OnOpen(ch)
	}
}

func (cb Callbacks) connected() {
	if cb.OnConnected != nil {
		cb.OnConnected()
	}
}

func (cb Callbacks) closed(reason string) {
	if cb.OnClose != nil {
		cb.OnClose(reason)
	}
}

func (cb Callbacks) speechEdge(started bool) {
	if cb.OnSpeechEdge != nil {
		cb.OnSpeechEdge(started)
	}
}
