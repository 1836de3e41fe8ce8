package pricerd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/logger"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/models"
)

// Callback is where a terminal run is reported. The secret is sent as a header
// and never stored on the run.
type Callback struct {
	URL    string
	Secret string
}

// NotificationPayload is the JSON body posted to a callback URL
type NotificationPayload struct {
	Run       models.Run `json:"run"`
	Timestamp time.Time  `json:"timestamp"` // when the notification was sent
}

// Notifier posts terminal runs to callback URLs with retries
type Notifier struct {
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration

	wg sync.WaitGroup
}

func NewNotifier() *Notifier {
	return &Notifier{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxRetries: 3,
		baseDelay:  1 * time.Second,
	}
}

// Notify sends run to cb.URL on its own goroutine and returns immediately.
// A "{run_id}" placeholder in the URL is replaced by the run ID.
func (n *Notifier) Notify(cb Callback, run models.Run) {
	if cb.URL == "" {
		return
	}

	finalURL := strings.ReplaceAll(cb.URL, "{run_id}", run.ID)
	payload := NotificationPayload{
		Run:       run,
		Timestamp: time.Now().UTC(),
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.send(finalURL, cb.Secret, payload)
	}()
}

// Wait blocks until every pending notification has been delivered or given up
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) send(callbackURL, secret string, payload NotificationPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal notification payload", "run_id", payload.Run.ID, "error", err)
		return
	}

	var lastErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		if attempt > 0 {
			// delay = baseDelay * 2^(attempt-1)
			delay := n.baseDelay * time.Duration(1<<uint(attempt-1))
			logger.Debug("retrying notification", "run_id", payload.Run.ID, "attempt", attempt, "delay", delay)
			time.Sleep(delay)
		}

		req, err := http.NewRequest(http.MethodPost, callbackURL, bytes.NewReader(body))
		if err != nil {
			// a malformed URL will not get better
			logger.Error("invalid callback url", "run_id", payload.Run.ID, "callback_url", callbackURL, "error", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "mc-option-pricer/1.0")
		if secret != "" {
			req.Header.Set("X-Pricer-Callback-Secret", secret)
		}

		resp, err := n.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			logger.Warn("notification attempt failed", "run_id", payload.Run.ID, "attempt", attempt+1, "error", err)
			continue
		}
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			logger.Info("notification sent", "run_id", payload.Run.ID, "status", payload.Run.Status, "status_code", resp.StatusCode)
			return
		}
		lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		logger.Warn("notification returned non-2xx status", "run_id", payload.Run.ID, "status_code", resp.StatusCode, "attempt", attempt+1)
	}

	logger.Error("failed to send notification after retries",
		"run_id", payload.Run.ID,
		"callback_url", callbackURL,
		"max_retries", n.maxRetries,
		"last_error", lastErr)
}
