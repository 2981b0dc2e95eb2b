package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExchangeSDP_Success(t *testing.T) {
	const offer = "v=0\r\no=- 0 0 IN IP4 127.0.0.1\r\n"
	const answer = "v=0\r\no=- 1 1 IN IP4 127.0.0.1\r\n"

	var gotAuth, gotContentType, gotModel, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotModel = r.URL.Query().Get("model")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte(answer))
	}))
	defer server.Close()

	cfg := WebRTCConfig{
		SignalingURL: server.URL,
		Credential:   "ek_short",
		Model:        "gpt-realtime",
		HTTPClient:   server.Client(),
	}
	got, err := exchangeSDP(context.Background(), cfg, offer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != answer {
		t.Errorf("unexpected answer %q", got)
	}
	if gotAuth != "Bearer ek_short" {
		t.Errorf("unexpected authorization %q", gotAuth)
	}
	if gotContentType != "application/sdp" {
		t.Errorf("unexpected content type %q", gotContentType)
	}
	if gotModel != "gpt-realtime" {
		t.Errorf("unexpected model %q", gotModel)
	}
	if gotBody != offer {
		t.Errorf("offer body not forwarded verbatim: %q", gotBody)
	}
}

func TestExchangeSDP_ErrorSurfacesProviderMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"expired credential"}}`))
	}))
	defer server.Close()

	cfg := WebRTCConfig{
		SignalingURL: server.URL,
		Credential:   "ek_stale",
		HTTPClient:   server.Client(),
	}
	_, err := exchangeSDP(context.Background(), cfg, "v=0")
	if err == nil || !strings.Contains(err.Error(), "expired credential") {
		t.Errorf("expected provider message in error, got %v", err)
	}
}
