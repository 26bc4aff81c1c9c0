package rest

import (
	"PayoutDesk/internal/core/ports"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const adminPathPrefix = "/admin/"

// Client is the shared HTTP client for the platform backend. It injects the
// bearer token for the path's scope and purges that scope on 401.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  ports.TokenStore
	log     zerolog.Logger
}

// NewClient creates a backend client. baseURL has no trailing slash.
func NewClient(baseURL string, timeout time.Duration, tokens ports.TokenStore, baseLogger *zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     baseLogger.With().Str("component", "rest_client").Logger(),
	}
}

// envelope is the response wrapper every endpoint uses.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func isAdminPath(path string) bool {
	return strings.HasPrefix(path, adminPathPrefix)
}

// scopeKeys returns the token key and the cached-user key for a path.
func scopeKeys(path string) (tokenKey, userKey string) {
	if isAdminPath(path) {
		return ports.KeyAdminToken, ports.KeyAdminUser
	}
	return ports.KeyUserToken, ports.KeyUser
}

// do performs one request. body is JSON-encoded when non-nil; out receives
// the envelope's data (or the whole body when there is no data field).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	requestID := uuid.NewString()
	log := c.log.With().Str("method", method).Str("path", path).Str("request_id", requestID).Logger()

	// 1. Build the request
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// 2. Inject the bearer token of this path's scope
	tokenKey, userKey := scopeKeys(path)
	token, ok, err := c.tokens.Get(ctx, tokenKey)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read token, sending request unauthenticated")
	} else if ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	// 3. Send
	resp, err := c.http.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("Request failed")
		return &APIError{Message: "network error: " + err.Error(), RequestID: requestID, cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Status: resp.StatusCode, Message: "failed to read response", RequestID: requestID, cause: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	// 4. Map failures, preferring the server's message
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{
			Status:    resp.StatusCode,
			Message:   serverMessage(env, resp.StatusCode),
			RequestID: requestID,
		}

		if resp.StatusCode == http.StatusUnauthorized ||
			(resp.StatusCode == http.StatusForbidden && isAdminPath(path)) {
			log.Warn().Int("status", resp.StatusCode).Msg("Backend rejected credentials, purging session scope")
			if err := c.tokens.Delete(ctx, tokenKey, userKey); err != nil {
				log.Error().Err(err).Msg("Failed to purge tokens after auth failure")
			}
		} else {
			log.Warn().Int("status", resp.StatusCode).Str("message", apiErr.Message).Msg("Backend returned an error")
		}
		return apiErr
	}

	if decodeErr != nil {
		if out == nil && len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		log.Error().Err(decodeErr).Msg("Backend returned malformed JSON")
		return &APIError{Status: resp.StatusCode, Message: "malformed response from server", RequestID: requestID, cause: decodeErr}
	}
	if env.Success != nil && !*env.Success {
		return &APIError{Status: resp.StatusCode, Message: serverMessage(env, resp.StatusCode), RequestID: requestID}
	}

	if out == nil {
		return nil
	}
	data := []byte(env.Data)
	if len(data) == 0 || string(data) == "null" {
		data = raw
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Error().Err(err).Msg("Failed to decode response data")
		return &APIError{Status: resp.StatusCode, Message: "unexpected response shape", RequestID: requestID, cause: err}
	}
	return nil
}

func serverMessage(env envelope, status int) string {
	if env.Message != "" {
		return env.Message
	}
	if env.Error != "" {
		return env.Error
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", status)
}
