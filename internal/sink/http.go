package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"flight-loadgen/internal/models"

	"github.com/google/uuid"
)

const maxErrorBody = 512

// HTTPSink posts events as JSON to the receiver
type HTTPSink struct {
	url    string
	client *http.Client
}

// NewHTTPSink creates a sink posting to url. The timeout bounds each
// request independently of the caller's context; zero means none.
func NewHTTPSink(url string, timeout time.Duration) *HTTPSink {
	return &HTTPSink{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Send posts one event
func (s *HTTPSink) Send(ctx context.Context, event models.OrderEvent) (models.Ack, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return models.Ack{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return models.Ack{}, &RemoteCallError{Sink: "http", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := s.client.Do(req)
	if err != nil {
		return models.Ack{}, &RemoteCallError{Sink: "http", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Ack{}, &RemoteCallError{Sink: "http", StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(respBody) > maxErrorBody {
			respBody = respBody[:maxErrorBody]
		}
		return models.Ack{}, &RemoteCallError{
			Sink:       "http",
			StatusCode: resp.StatusCode,
			Err:        errors.New(string(bytes.TrimSpace(respBody))),
		}
	}

	var ack models.Ack
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &ack); err != nil {
			return models.Ack{}, &RemoteCallError{Sink: "http", StatusCode: resp.StatusCode, Err: fmt.Errorf("invalid ack: %w", err)}
		}
	}
	return ack, nil
}
