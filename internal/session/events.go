package session

import (
	"encoding/json"
)

// Kind enumerates the inbound event variants the router acts on. Anything
// else decodes to KindUnknown and is ignored.
type Kind int

const (
	KindUnknown Kind = iota
	KindSessionCreated
	KindError
	KindSpeechStarted
	KindSpeechStopped
	KindResponseCreated
	KindResponseDone
	KindTranscriptionDelta
	KindTranscriptionCompleted
	KindTranslationDelta
	KindTranslationDone
)

// Event is the decoded form of one inbound channel message. Only the fields
// relevant to the matched Kind are populated.
type Event struct {
	Kind         Kind
	Type         string
	ItemID       string
	ContentIndex int
	Delta        string
	Transcript   *string
	Text         *string
	ResponseID   string
	Status       string
	ErrorMessage string
}

type errorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type responseInfo struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type envelope struct {
	Type         string        `json:"type"`
	ItemID       string        `json:"item_id"`
	ContentIndex int           `json:"content_index"`
	Delta        string        `json:"delta"`
	Transcript   *string       `json:"transcript"`
	Text         *string       `json:"text"`
	ResponseID   string        `json:"response_id"`
	Response     *responseInfo `json:"response"`
	Error        *errorInfo    `json:"error"`
	Message      string        `json:"message"`
}

// DecodeEvent parses one JSON channel message into its variant. The match
// order follows the router's table: session.created first, then the error
// catch (explicit error types or any payload carrying an error field), then
// the remaining known types.
func DecodeEvent(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Event{}, err
	}

	ev := Event{
		Kind:         KindUnknown,
		Type:         env.Type,
		ItemID:       env.ItemID,
		ContentIndex: env.ContentIndex,
		Delta:        env.Delta,
		Transcript:   env.Transcript,
		Text:         env.Text,
		ResponseID:   env.ResponseID,
	}
	if env.Response != nil {
		if env.Response.ID != "" {
			ev.ResponseID = env.Response.ID
		}
		ev.Status = env.Response.Status
	}

	switch {
	case env.Type == "session.created":
		ev.Kind = KindSessionCreated
	case env.Type == "error" || env.Type == "session.error" || env.Error != nil:
		ev.Kind = KindError
		ev.ErrorMessage = errorMessage(env)
	default:
		switch env.Type {
		case "input_audio_buffer.speech_started":
			ev.Kind = KindSpeechStarted
		case "input_audio_buffer.speech_stopped":
			ev.Kind = KindSpeechStopped
		case "response.created":
			ev.Kind = KindResponseCreated
		case "response.done":
			ev.Kind = KindResponseDone
		case "conversation.item.input_audio_transcription.delta":
			ev.Kind = KindTranscriptionDelta
		case "conversation.item.input_audio_transcription.completed":
			ev.Kind = KindTranscriptionCompleted
		case "response.output_text.delta":
			ev.Kind = KindTranslationDelta
		case "response.output_text.done":
			ev.Kind = KindTranslationDone
		}
	}

	return ev, nil
}

func errorMessage(env envelope) string {
	if env.Error != nil {
		if env.Error.Message != "" {
			return env.Error.Message
		}
		if env.Error.Code != "" {
			return env.Error.Code
		}
	}
	if env.Message != "" {
		return env.Message
	}
	return "unknown error"
}

// CommitMessage is the outbound flush command for buffered audio.
func CommitMessage() any {
	return struct {
		Type string `json:"type"`
	}{Type: "input_audio_buffer.commit"}
}
