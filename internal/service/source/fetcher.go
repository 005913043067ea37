// Package source is the transport collaborator that fetches the raw punch
// CSV export. The engine itself only ever sees the returned byte slice.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-insight-go/internal/domain/punch"
)

type HTTPFetcher struct {
	url    string
	client *http.Client

	// Repeated upstream failures would otherwise flood the log every
	// refresh tick; warnings are rate-limited to one per cooldown window.
	warnCooldown time.Duration
	mu           sync.Mutex
	lastWarnedAt time.Time
}

func NewHTTPFetcher(url string, timeout, warnCooldown time.Duration) punch.EventSource {
	return &HTTPFetcher{
		url:          url,
		client:       &http.Client{Timeout: timeout},
		warnCooldown: warnCooldown,
	}
}

// Fetch implements punch.EventSource.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if f.url == "" {
		return nil, fmt.Errorf("source url is not configured: %w", punch.ErrSourceUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build source request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.warn("Punch source fetch failed", err)
		return nil, fmt.Errorf("failed to fetch punch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("punch source returned status %d", resp.StatusCode)
		f.warn("Punch source fetch failed", err)
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read punch source body: %w", err)
	}
	return body, nil
}

func (f *HTTPFetcher) warn(msg string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if time.Since(f.lastWarnedAt) < f.warnCooldown {
		return
	}
	f.lastWarnedAt = time.Now()
	slog.Warn(msg, "url", f.url, "error", err)
}
