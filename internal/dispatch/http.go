// internal/dispatch/http.go
//
// HTTP delivery: POST the clean values as JSON to /api/<form> and read the
// {success, message} envelope back.  No retries.  No timeout beyond what the
// caller's context or the client's transport imposes.

package dispatch

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

	"github.com/yanizio/krishnacabs/internal/form"
)

// ErrStatus wraps non-2xx responses.
var ErrStatus = errors.New("unexpected HTTP status")

const maxResponseBytes = 64 << 10

// envelope mirrors the server response body.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HTTPStrategy delivers submissions to the enquiry API at BaseURL.
type HTTPStrategy struct {
	BaseURL string       // e.g. "https://krishnacabspvtltd.com"
	Client  *http.Client // nil means http.DefaultClient
}

func (s HTTPStrategy) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

func (s HTTPStrategy) url(path string) string {
	return strings.TrimRight(s.BaseURL, "/") + path
}

// Deliver implements Strategy.
func (s HTTPStrategy) Deliver(ctx context.Context, fd *form.FormDef, clean map[string]string) (Delivery, error) {
	payload, err := json.Marshal(clean)
	if err != nil {
		return Delivery{}, fmt.Errorf("encode %s: %w", fd.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url("/api/"+fd.ID), bytes.NewReader(payload))
	if err != nil {
		return Delivery{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client().Do(req)
	if err != nil {
		return Delivery{}, fmt.Errorf("post %s: %w", fd.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return Delivery{}, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		return Delivery{}, fmt.Errorf("decode %s response: %w", fd.ID, err)
	}
	return Delivery{Success: env.Success, Message: env.Message, Confirmed: true}, nil
}

// Health is the body of GET /api/health.
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Health probes the API.
func (s HTTPStrategy) Health(ctx context.Context) (Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url("/api/health"), nil)
	if err != nil {
		return Health{}, err
	}
	resp, err := s.client().Do(req)
	if err != nil {
		return Health{}, fmt.Errorf("health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Health{}, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}
	var h Health
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&h); err != nil {
		return Health{}, fmt.Errorf("decode health: %w", err)
	}
	return h, nil
}
