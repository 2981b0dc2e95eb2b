// Package credential mints short-lived session credentials from the
// user-supplied long-lived API key. The long-lived key is never logged and
// never persisted.
package credential

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lexiqai/translate-client/internal/observability"
)

// ErrNoCredential is returned when the provider responds successfully but the
// body is missing the credential value field.
var ErrNoCredential = errors.New("provider did not return a credential")

// Exchange performs the one-shot token mint against the provider's
// client-secrets endpoint. A single attempt, no retries; the caller decides
// whether the user may try again.
type Exchange struct {
	endpoint string
	client   *http.Client
}

// NewExchange creates an exchange targeting endpoint, e.g.
// https://api.openai.com/v1/realtime/client_secrets.
func NewExchange(endpoint string, client *http.Client) *Exchange {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Exchange{endpoint: endpoint, client: client}
}

type mintRequest struct {
	Session mintSession `json:"session"`
}

type mintSession struct {
	Type  string `json:"type"`
	Model string `json:"model"`
}

type mintResponse struct {
	Value string `json:"value"`
}

// Mint exchanges the long-lived apiKey for an ephemeral session credential
// scoped to model.
func (e *Exchange) Mint(ctx context.Context, apiKey, model string) (string, error) {
	logger := observability.GetLogger()

	body, err := json.Marshal(mintRequest{Session: mintSession{Type: "realtime", Model: model}})
	if err != nil {
		return "", fmt.Errorf("failed to encode mint request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build mint request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("credential mint request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read mint response: %w", err)
	}
	observability.ObserveMintLatency(time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ExtractErrorMessage(raw)
		logger.Warn().Int("status", resp.StatusCode).Str("model", model).Msg("Credential mint rejected")
		return "", fmt.Errorf("credential mint failed: %s", msg)
	}

	var parsed mintResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode mint response: %w", err)
	}
	if parsed.Value == "" {
		return "", ErrNoCredential
	}

	logger.Debug().Str("model", model).Msg("Minted ephemeral session credential")
	return parsed.Value, nil
}

// ExtractErrorMessage pulls the most specific error message out of a provider
// error body: error.message, then a top-level message, then the raw text.
func ExtractErrorMessage(raw []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error.Message != "" {
			return envelope.Error.Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "unknown provider error"
	}
	return text
}
