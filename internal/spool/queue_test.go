package spool

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tillpoint/print-engine/internal/profile"
	"github.com/tillpoint/print-engine/internal/transport"
	"github.com/tillpoint/print-engine/pkg/receipt"
)

type fakeDeliverer struct {
	mu       sync.Mutex
	results  []transport.Result
	payloads [][]byte
	docs     []transport.Document
	calls    int
}

func (f *fakeDeliverer) Deliver(payload []byte, doc transport.Document, p *profile.Profile) transport.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.payloads = append(f.payloads, payload)
	f.docs = append(f.docs, doc)
	f.calls++

	if len(f.results) == 0 {
		return transport.Result{Status: transport.StatusDelivered}
	}
	r := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return r
}

func (f *fakeDeliverer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestStore(t *testing.T) (*profile.Store, *profile.Profile) {
	t.Helper()

	store, err := profile.NewStore(filepath.Join(t.TempDir(), "profiles.json"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	p, err := store.Create(profile.Profile{
		Name:      "Counter 1",
		Transport: profile.TransportNetwork,
		Dialect:   profile.DialectThermalESCPOS,
		Host:      "192.0.2.10",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return store, p
}

func waitForStatus(t *testing.T, q *Queue, id string, want Status) *Job {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if job := q.Get(id); job != nil && job.Status == want {
			return job
		}
		time.Sleep(20 * time.Millisecond)
	}
	job := q.Get(id)
	if job == nil {
		t.Fatalf("job %s not found", id)
	}
	t.Fatalf("job %s status = %s, want %s (reason: %s)", id, job.Status, want, job.Reason)
	return nil
}

func TestQueueDelivers(t *testing.T) {
	store, p := newTestStore(t)
	deliverer := &fakeDeliverer{}
	q := New(store, deliverer, 1)
	defer q.Stop()

	id := q.Enqueue(p.ID, receipt.TestPage(p.Name))
	job := waitForStatus(t, q, id, StatusDelivered)

	if job.Reason != "" {
		t.Errorf("delivered job carries reason %q", job.Reason)
	}

	deliverer.mu.Lock()
	defer deliverer.mu.Unlock()
	if len(deliverer.payloads) != 1 {
		t.Fatalf("deliver calls = %d, want 1", len(deliverer.payloads))
	}
	if len(deliverer.payloads[0]) == 0 {
		t.Error("payload is empty")
	}
	if deliverer.docs[0].ReceiptNumber == "" {
		t.Error("fallback document has no receipt number")
	}
	if len(deliverer.docs[0].Lines) == 0 {
		t.Error("fallback document has no lines")
	}
}

func TestQueueFallbackIsTerminal(t *testing.T) {
	store, p := newTestStore(t)
	deliverer := &fakeDeliverer{results: []transport.Result{
		{Status: transport.StatusFallback, Reason: "connect to 192.0.2.10:9100 failed"},
	}}
	q := New(store, deliverer, 3)
	defer q.Stop()

	id := q.Enqueue(p.ID, receipt.TestPage(p.Name))
	job := waitForStatus(t, q, id, StatusFallback)

	if job.Reason == "" {
		t.Error("fallback job should keep the primary failure reason")
	}
	if deliverer.callCount() != 1 {
		t.Errorf("deliver calls = %d, want 1 (fallback must not requeue)", deliverer.callCount())
	}
}

func TestQueueRequeuesThenFails(t *testing.T) {
	store, p := newTestStore(t)
	deliverer := &fakeDeliverer{results: []transport.Result{
		{Status: transport.StatusFailed, Reason: "printer unplugged"},
		{Status: transport.StatusFailed, Reason: "printer unplugged"},
	}}
	q := New(store, deliverer, 1)
	defer q.Stop()

	id := q.Enqueue(p.ID, receipt.TestPage(p.Name))
	job := waitForStatus(t, q, id, StatusFailed)

	if job.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", job.Attempts)
	}
	if deliverer.callCount() != 2 {
		t.Errorf("deliver calls = %d, want 2", deliverer.callCount())
	}
	if job.Reason != "printer unplugged" {
		t.Errorf("reason = %q", job.Reason)
	}
}

func TestQueueRequeueRecovers(t *testing.T) {
	store, p := newTestStore(t)
	deliverer := &fakeDeliverer{results: []transport.Result{
		{Status: transport.StatusFailed, Reason: "transient"},
		{Status: transport.StatusDelivered},
	}}
	q := New(store, deliverer, 2)
	defer q.Stop()

	id := q.Enqueue(p.ID, receipt.TestPage(p.Name))
	waitForStatus(t, q, id, StatusDelivered)

	if deliverer.callCount() != 2 {
		t.Errorf("deliver calls = %d, want 2", deliverer.callCount())
	}
}

func TestQueueMissingProfileFailsWithoutRequeue(t *testing.T) {
	store, _ := newTestStore(t)
	deliverer := &fakeDeliverer{}
	q := New(store, deliverer, 3)
	defer q.Stop()

	id := q.Enqueue("no-such-profile", receipt.TestPage("x"))
	job := waitForStatus(t, q, id, StatusFailed)

	if deliverer.callCount() != 0 {
		t.Errorf("deliver calls = %d, want 0", deliverer.callCount())
	}
	if job.Reason == "" {
		t.Error("failed job should carry a reason")
	}
}

func TestQueueCopiesRepeatPayload(t *testing.T) {
	store, p := newTestStore(t)
	p.PrintSettings.Copies = 3
	if err := store.Update(*p); err != nil {
		t.Fatalf("Update: %v", err)
	}

	deliverer := &fakeDeliverer{}
	q := New(store, deliverer, 0)
	defer q.Stop()

	id := q.Enqueue(p.ID, receipt.TestPage(p.Name))
	waitForStatus(t, q, id, StatusDelivered)

	deliverer.mu.Lock()
	payload := deliverer.payloads[0]
	deliverer.mu.Unlock()

	single := len(payload) / 3
	if single == 0 || len(payload)%3 != 0 {
		t.Fatalf("payload length %d is not a multiple of 3", len(payload))
	}
	if string(payload[:single]) != string(payload[single:2*single]) {
		t.Error("copies are not identical repetitions")
	}
}

func TestQueueOnUpdateAndClearFinished(t *testing.T) {
	store, p := newTestStore(t)
	deliverer := &fakeDeliverer{}
	q := New(store, deliverer, 0)
	defer q.Stop()

	var mu sync.Mutex
	var seen []Status
	q.OnUpdate(func(j Job) {
		mu.Lock()
		seen = append(seen, j.Status)
		mu.Unlock()
	})

	id := q.Enqueue(p.ID, receipt.TestPage(p.Name))
	waitForStatus(t, q, id, StatusDelivered)

	mu.Lock()
	if len(seen) < 3 || seen[0] != StatusQueued || seen[1] != StatusPrinting || seen[len(seen)-1] != StatusDelivered {
		t.Errorf("status sequence = %v, want queued, printing, delivered", seen)
	}
	mu.Unlock()

	q.ClearFinished()
	if got := q.All(); len(got) != 0 {
		t.Errorf("jobs after ClearFinished = %d, want 0", len(got))
	}
	if q.Get(id) != nil {
		t.Error("cleared job still retrievable")
	}
}

func TestQueueStoreNotFoundSentinel(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.Get("missing"); !errors.Is(err, profile.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
