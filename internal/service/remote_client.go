package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/josh-kwaku/shop-ledger/internal/ledger"
	"github.com/josh-kwaku/shop-ledger/internal/logging"
)

// RemoteClient writes action records to the external store.
type RemoteClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewRemoteClient(baseURL string) *RemoteClient {
	return &RemoteClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type remoteRecord struct {
	Type    ledger.Kind     `json:"type"`
	Actor   string          `json:"actor"`
	At      time.Time       `json:"at"`
	Payload any             `json:"payload"`
	Audit   json.RawMessage `json:"audit,omitempty"`
}

func (c *RemoteClient) Write(ctx context.Context, scope string, a ledger.Action) error {
	log := logging.FromContext(ctx)

	body, err := json.Marshal(remoteRecord{
		Type:    a.Kind,
		Actor:   a.Actor.Username,
		At:      a.At.UTC(),
		Payload: a.Payload,
		Audit:   a.Audit,
	})
	if err != nil {
		return fmt.Errorf("Write: marshal: %w", err)
	}

	endpoint := c.baseURL + "/scopes/" + url.PathEscape(scope) + "/records"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("Write: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	log.Info("remote write sent", "scope", scope, "action", a.Kind)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Write: send: %w", err)
	}
	defer resp.Body.Close()

	log.Info("remote write answered",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("Write: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
