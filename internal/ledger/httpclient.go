package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

type ClientSettings struct {
	URL          string `json:"url"`
	Timeout      int    `json:"timeout,omitempty"`
	WriteRetries int    `json:"write_retries,omitempty"`
}

type httpClient struct {
	baseURL      string
	timeout      time.Duration
	writeRetries int
	client       *http.Client
}

func NewHTTPClient(settings *ClientSettings) Client {
	var timeout = 10 * time.Second
	if settings.Timeout > 0 {
		timeout = time.Duration(settings.Timeout) * time.Second
	}
	return &httpClient{
		baseURL:      strings.TrimRight(settings.URL, "/"),
		timeout:      timeout,
		writeRetries: settings.WriteRetries,
		client:       &http.Client{},
	}
}

type registerRequest struct {
	TokenHash  string `json:"token_hash"`
	ExpiryTime int64  `json:"expiry_time"`
}

type fingerprintRequest struct {
	TokenHash string `json:"token_hash"`
}

type confirmResponse struct {
	Confirmed bool `json:"confirmed"`
}

type validateResponse struct {
	Valid bool `json:"valid"`
}

func (c *httpClient) Register(ctx context.Context, fingerprint string, expiresAt time.Time) (*WriteResult, error) {
	log.Printf("LEDGER: register -- %s exp=%d", fingerprint, expiresAt.Unix())
	var start = time.Now()
	var err = c.write(ctx, "/register-token", registerRequest{TokenHash: fingerprint, ExpiryTime: expiresAt.Unix()})
	if err != nil {
		return &WriteResult{Latency: time.Since(start)}, err
	}
	return &WriteResult{Confirmed: true, Latency: time.Since(start)}, nil
}

func (c *httpClient) Validate(ctx context.Context, fingerprint string) (*ReadResult, error) {
	log.Printf("LEDGER: validate -- %s", fingerprint)
	var start = time.Now()
	var response validateResponse
	if err := c.post(ctx, "/validate-token", fingerprintRequest{TokenHash: fingerprint}, &response); err != nil {
		return &ReadResult{Latency: time.Since(start)}, err
	}
	return &ReadResult{Valid: response.Valid, Latency: time.Since(start)}, nil
}

// Remove deletes a registry entry. Removing a fingerprint the registry
// does not hold confirms as a no-op.
func (c *httpClient) Remove(ctx context.Context, fingerprint string) (*WriteResult, error) {
	log.Printf("LEDGER: remove -- %s", fingerprint)
	var start = time.Now()
	var err = c.write(ctx, "/remove-token", fingerprintRequest{TokenHash: fingerprint})
	if err != nil {
		return &WriteResult{Latency: time.Since(start)}, err
	}
	return &WriteResult{Confirmed: true, Latency: time.Since(start)}, nil
}

// write posts a registry mutation and retries on ordering conflicts. Any
// other failure is final; the caller decides whether and when to retry.
func (c *httpClient) write(ctx context.Context, path string, body any) error {
	var err error
	for attempt := 0; attempt <= c.writeRetries; attempt++ {
		var response confirmResponse
		err = c.post(ctx, path, body, &response)
		if errors.Is(err, ErrWriteConflict) {
			log.Printf("LEDGER: POST %s conflicted, attempt %d", path, attempt+1)
			continue
		}
		if err != nil {
			return err
		}
		if !response.Confirmed {
			return fmt.Errorf("%w: write not confirmed", ErrRejected)
		}
		return nil
	}
	return err
}

func (c *httpClient) post(ctx context.Context, path string, body, result any) error {
	var ctx2, cancel = context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var payload, _ = json.Marshal(body)
	request, err := http.NewRequestWithContext(ctx2, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.client.Do(request)
	if err != nil {
		log.Printf("!!! LEDGER: POST %s failed: %v", path, err)
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer response.Body.Close()

	switch {
	case response.StatusCode == http.StatusConflict:
		return ErrWriteConflict
	case response.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnreachable, response.StatusCode)
	case response.StatusCode >= 400:
		return fmt.Errorf("%w: status %d", ErrRejected, response.StatusCode)
	}

	if err := json.NewDecoder(response.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return nil
}
