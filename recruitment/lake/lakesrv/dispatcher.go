package lakesrv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/pkg/logx"
	"github.com/meridian-hr/funnel/recruitment/lake"
)

// WebhookPath is where the dispatcher delivers submission events, relative
// to the API base URL.
const WebhookPath = "/api/v1/webhooks/application-submitted"

const (
	defaultDispatchAttempts = 3
	defaultDispatchBudget   = 15 * time.Second
	defaultAttemptTimeout   = 5 * time.Second
	maxDispatchBackoff      = 2 * time.Second
)

// DispatcherConfig tunes the fan-out call. Zero values fall back to
// defaults.
type DispatcherConfig struct {
	// BaseURL is the API origin the webhook lives under.
	BaseURL string
	// Secret is sent as X-Webhook-Token.
	Secret string
	// Budget caps the total wall time of one dispatch including retries.
	Budget time.Duration
	// Attempts is the delivery attempt count.
	Attempts int
}

// Dispatcher signals the projector after a submission commits. Each
// dispatch runs in a detached goroutine with its own deadline so the write
// path returns immediately; a failed delivery is logged and recorded for
// replay, never surfaced to the candidate.
type Dispatcher struct {
	endpoint string
	secret   string
	budget   time.Duration
	attempts int

	client *http.Client
	recons lake.ReconciliationRepository

	root   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher delivering to cfg.BaseURL+WebhookPath.
func NewDispatcher(cfg DispatcherConfig, recons lake.ReconciliationRepository) *Dispatcher {
	if cfg.Budget <= 0 {
		cfg.Budget = defaultDispatchBudget
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = defaultDispatchAttempts
	}

	root, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + WebhookPath,
		secret:   cfg.Secret,
		budget:   cfg.Budget,
		attempts: cfg.Attempts,
		client:   &http.Client{Timeout: defaultAttemptTimeout},
		recons:   recons,
		root:     root,
		cancel:   cancel,
	}
}

// Dispatch fires the submission event without blocking the caller. The
// goroutine is tracked so Drain can wait for in-flight deliveries at
// shutdown.
func (d *Dispatcher) Dispatch(applicationID kernel.ApplicationID) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(d.root, d.budget)
		defer cancel()

		if err := d.deliver(ctx, applicationID); err != nil {
			logx.Warnf("Webhook dispatch failed: application=%s error=%v", applicationID, err)
			d.recordFailure(applicationID, err)
			return
		}

		logx.Debugf("Webhook dispatch delivered: application=%s", applicationID)
	}()
}

// Drain waits for in-flight dispatches. Past the timeout it cancels them;
// the cancelled deliveries write reconciliation records before exiting, so
// no event is lost across a shutdown.
func (d *Dispatcher) Drain(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		logx.Warnf("Dispatcher drain timed out after %s, cancelling in-flight deliveries", timeout)
		d.cancel()
		<-done
	}
}

func (d *Dispatcher) deliver(ctx context.Context, applicationID kernel.ApplicationID) error {
	event := lake.SubmittedEvent{
		ApplicationID: applicationID,
		Event:         lake.EventApplicationSubmitted,
		TS:            time.Now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < d.attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * 500 * time.Millisecond
			if backoff > maxDispatchBackoff {
				backoff = maxDispatchBackoff
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf("dispatch cancelled after %d attempts: %w", attempt, ctx.Err())
			case <-time.After(backoff):
			}
		}

		if lastErr = d.post(ctx, body); lastErr == nil {
			return nil
		}
		logx.Debugf("Webhook attempt %d/%d failed: application=%s error=%v",
			attempt+1, d.attempts, applicationID, lastErr)
	}

	return fmt.Errorf("all %d attempts failed: %w", d.attempts, lastErr)
}

func (d *Dispatcher) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Token", d.secret)

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// recordFailure persists the reconciliation entry on a fresh context; the
// dispatch context may already be cancelled by drain.
func (d *Dispatcher) recordFailure(applicationID kernel.ApplicationID, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	rec := &lake.ReconciliationRecord{
		ID:            kernel.NewReconciliationID(uuid.NewString()),
		ApplicationID: applicationID,
		Reason:        lake.ReasonDispatchFailed,
		Attempts:      d.attempts,
		LastError:     cause.Error(),
		Status:        lake.ReconciliationPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := d.recons.Upsert(ctx, rec); err != nil {
		logx.Errorf("Failed to persist reconciliation record: application=%s error=%v", applicationID, err)
	}
}
