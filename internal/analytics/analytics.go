// Package analytics posts fire-and-forget events to an external collector.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is the payload sent to the collector.
type Event struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	ID          string  `json:"id"`
	URL         string  `json:"url"`
	UserAgent   string  `json:"user_agent"`
	Description string  `json:"description,omitempty"`
	Timestamp   int64   `json:"timestamp"`
}

// Beacon sends events in the background. A zero URL disables it.
type Beacon struct {
	url     string
	token   string
	timeout time.Duration
	client  *http.Client
	log     *zap.Logger
	now     func() time.Time
	wg      sync.WaitGroup
}

func New(url, token string, timeout time.Duration, log *zap.Logger) *Beacon {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Beacon{url: url, token: token, timeout: timeout, client: &http.Client{}, log: log, now: time.Now}
}

func (b *Beacon) Enabled() bool { return b != nil && b.url != "" }

// Navigation records an HTML page view. Only the path is sent: query
// strings carry search terms and questions.
func (b *Beacon) Navigation(r *http.Request, d time.Duration) {
	b.Send(Event{
		Name:      "navigation",
		Value:     float64(d.Milliseconds()),
		URL:       r.URL.Path,
		UserAgent: r.UserAgent(),
	})
}

// Error records an uncaught error.
func (b *Beacon) Error(r *http.Request, recovered any) {
	b.Send(Event{
		Name:        "error",
		Value:       1,
		URL:         r.URL.Path,
		UserAgent:   r.UserAgent(),
		Description: fmt.Sprint(recovered),
	})
}

// Send posts e without blocking the caller. Failures are logged at debug level.
func (b *Beacon) Send(e Event) {
	if !b.Enabled() {
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp == 0 {
		e.Timestamp = b.now().UnixMilli()
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := b.post(e); err != nil {
			b.log.Debug("analytics beacon failed", zap.String("event", e.Name), zap.Error(err))
		}
	}()
}

// Wait blocks until in-flight events are done.
func (b *Beacon) Wait() {
	if b != nil {
		b.wg.Wait()
	}
}

func (b *Beacon) post(e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("analytics: status %d", resp.StatusCode)
	}
	return nil
}
