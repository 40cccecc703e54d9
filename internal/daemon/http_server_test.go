package daemon

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hypersql/docpub/internal/config"
	"github.com/hypersql/docpub/internal/runstore"
	"github.com/hypersql/docpub/internal/trigger"
)

type fakeEnqueuer struct {
	events []trigger.Event
	full   bool
}

func (f *fakeEnqueuer) Enqueue(evt trigger.Event) bool {
	if f.full {
		return false
	}
	f.events = append(f.events, evt)
	return true
}

func newTestServer(t *testing.T, secret string, enq *fakeEnqueuer) *httptest.Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.Daemon.Listen = ":0"
	cfg.Daemon.WebhookSecret = secret

	s := NewHTTPServer(cfg, enq, runstore.NoopStore{}, nil)
	ts := httptest.NewServer(s.server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func postWebhook(t *testing.T, ts *httptest.Server, eventType, body string, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/webhook", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("X-GitHub-Event", eventType)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestWebhookEnqueuesPushEvent(t *testing.T) {
	enq := &fakeEnqueuer{}
	ts := newTestServer(t, "", enq)

	resp := postWebhook(t, ts, "push", pushBody, nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	if len(enq.events) != 1 {
		t.Fatalf("expected 1 enqueued event, got %d", len(enq.events))
	}
	evt := enq.events[0]
	if evt.Kind != trigger.KindPush || evt.Owner != "hypersql" || evt.Branch != "main" {
		t.Fatalf("unexpected event: %+v", evt)
	}
}

func TestWebhookIgnoredEventStillAccepted(t *testing.T) {
	enq := &fakeEnqueuer{}
	ts := newTestServer(t, "", enq)

	resp := postWebhook(t, ts, "ping", `{"zen": "ok"}`, nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	if len(enq.events) != 0 {
		t.Fatal("ping must not enqueue a run")
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	enq := &fakeEnqueuer{}
	ts := newTestServer(t, "s3cret", enq)

	resp := postWebhook(t, ts, "push", pushBody, map[string]string{
		"X-Hub-Signature-256": "sha256=0000",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if len(enq.events) != 0 {
		t.Fatal("invalid signature must not enqueue")
	}
}

func TestWebhookAcceptsValidSignature(t *testing.T) {
	secret := "s3cret"
	enq := &fakeEnqueuer{}
	ts := newTestServer(t, secret, enq)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(pushBody))
	sig := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	resp := postWebhook(t, ts, "push", pushBody, map[string]string{
		"X-Hub-Signature-256": sig,
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	if len(enq.events) != 1 {
		t.Fatal("signed delivery must enqueue")
	}
}

func TestWebhookQueueFull(t *testing.T) {
	enq := &fakeEnqueuer{full: true}
	ts := newTestServer(t, "", enq)

	resp := postWebhook(t, ts, "push", pushBody, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
}

func TestWebhookMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, "", &fakeEnqueuer{})
	resp, err := http.Get(ts.URL + "/webhook")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, "", &fakeEnqueuer{})
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestRunsEndpointEmpty(t *testing.T) {
	ts := newTestServer(t, "", &fakeEnqueuer{})
	resp, err := http.Get(ts.URL + "/runs")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var runs []runstore.Run
	if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected empty list, got %v", runs)
	}
}
