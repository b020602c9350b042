package lakesrv

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/lake"
)

func TestDispatcher_Dispatch(t *testing.T) {
	t.Run("an unreachable endpoint is recorded, never raised", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		recons := &fakeReconRepo{}
		d := NewDispatcher(DispatcherConfig{
			BaseURL:  "http://127.0.0.1:1",
			Secret:   "hook-secret",
			Attempts: 1,
		}, recons)

		d.Dispatch(kernel.NewApplicationID("app-1"))
		d.Drain(5 * time.Second)

		assert.Equal(t, 1, recons.pendingCount())
	})

	t.Run("delivers the event with the shared token", func(t *testing.T) {
		sink := newWebhookSink(http.StatusAccepted)
		srv := httptest.NewServer(sink)
		defer srv.Close()

		recons := &fakeReconRepo{}
		d := NewDispatcher(DispatcherConfig{
			BaseURL:  srv.URL,
			Secret:   "hook-secret",
			Attempts: 1,
		}, recons)

		d.Dispatch(kernel.NewApplicationID("app-1"))
		d.Drain(2 * time.Second)

		calls := sink.calls()
		require.Len(t, calls, 1)
		assert.Equal(t, WebhookPath, calls[0].path)
		assert.Equal(t, "hook-secret", calls[0].token)
		assert.Equal(t, "app-1", calls[0].event.ApplicationID.String())
		assert.Equal(t, lake.EventApplicationSubmitted, calls[0].event.Event)
		assert.False(t, calls[0].event.TS.IsZero())

		assert.Zero(t, recons.pendingCount())
	})

	t.Run("a transient 5xx is retried", func(t *testing.T) {
		sink := newWebhookSink(http.StatusOK)
		sink.failFirst(1)
		srv := httptest.NewServer(sink)
		defer srv.Close()

		recons := &fakeReconRepo{}
		d := NewDispatcher(DispatcherConfig{
			BaseURL:  srv.URL,
			Secret:   "hook-secret",
			Attempts: 3,
		}, recons)

		d.Dispatch(kernel.NewApplicationID("app-1"))
		d.Drain(5 * time.Second)

		assert.Len(t, sink.calls(), 2)
		assert.Zero(t, recons.pendingCount())
	})

	t.Run("exhausted deliveries leave a pending reconciliation record", func(t *testing.T) {
		sink := newWebhookSink(http.StatusInternalServerError)
		srv := httptest.NewServer(sink)
		defer srv.Close()

		recons := &fakeReconRepo{}
		d := NewDispatcher(DispatcherConfig{
			BaseURL:  srv.URL,
			Secret:   "hook-secret",
			Attempts: 2,
		}, recons)

		d.Dispatch(kernel.NewApplicationID("app-1"))
		d.Drain(5 * time.Second)

		assert.Len(t, sink.calls(), 2)
		require.Len(t, recons.records, 1)
		rec := recons.records[0]
		assert.Equal(t, lake.ReasonDispatchFailed, rec.Reason)
		assert.Equal(t, lake.ReconciliationPending, rec.Status)
		assert.Equal(t, 2, rec.Attempts)
		assert.Contains(t, rec.LastError, "status 500")
	})

}

func TestDispatcher_Drain(t *testing.T) {
	t.Run("drain waits for in-flight deliveries", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		recons := &fakeReconRepo{}
		d := NewDispatcher(DispatcherConfig{
			BaseURL:  srv.URL,
			Secret:   "hook-secret",
			Attempts: 1,
		}, recons)

		d.Dispatch(kernel.NewApplicationID("app-1"))

		go func() {
			time.Sleep(50 * time.Millisecond)
			close(release)
		}()

		start := time.Now()
		d.Drain(3 * time.Second)

		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
		assert.Zero(t, recons.pendingCount())
	})

	t.Run("a timed-out drain cancels laggards and still records them", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Hold the request until the client gives up.
			<-r.Context().Done()
		}))
		defer srv.Close()

		recons := &fakeReconRepo{}
		d := NewDispatcher(DispatcherConfig{
			BaseURL:  srv.URL,
			Secret:   "hook-secret",
			Attempts: 1,
		}, recons)

		d.Dispatch(kernel.NewApplicationID("app-1"))
		d.Drain(100 * time.Millisecond)

		assert.Equal(t, 1, recons.pendingCount(), "cancelled deliveries still leave a record")
	})

	t.Run("drain with nothing in flight returns immediately", func(t *testing.T) {
		d := NewDispatcher(DispatcherConfig{BaseURL: "http://127.0.0.1:1"}, &fakeReconRepo{})

		start := time.Now()
		d.Drain(time.Second)
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})
}

// ============================================================================
// Helper Functions
// ============================================================================

type webhookCall struct {
	path  string
	token string
	event lake.SubmittedEvent
}

// webhookSink records deliveries and answers with a configurable status. The
// first failFirst calls answer 500 regardless.
type webhookSink struct {
	mu         sync.Mutex
	status     int
	failures   int
	deliveries []webhookCall
}

func newWebhookSink(status int) *webhookSink {
	return &webhookSink{status: status}
}

func (s *webhookSink) failFirst(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
}

func (s *webhookSink) calls() []webhookCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]webhookCall, len(s.deliveries))
	copy(out, s.deliveries)
	return out
}

func (s *webhookSink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	var event lake.SubmittedEvent
	_ = json.Unmarshal(body, &event)

	s.mu.Lock()
	s.deliveries = append(s.deliveries, webhookCall{
		path:  r.URL.Path,
		token: r.Header.Get("X-Webhook-Token"),
		event: event,
	})
	failing := s.failures > 0
	if failing {
		s.failures--
	}
	status := s.status
	s.mu.Unlock()

	if failing {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
}
