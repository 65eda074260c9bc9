// Package spool queues print jobs and drives them through format, encode,
// and delivery
package spool

import (
	"bytes"
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tillpoint/print-engine/internal/dialect"
	"github.com/tillpoint/print-engine/internal/layout"
	"github.com/tillpoint/print-engine/internal/profile"
	"github.com/tillpoint/print-engine/internal/transport"
	"github.com/tillpoint/print-engine/pkg/receipt"
)

// Status of a job in the queue
type Status string

const (
	StatusQueued    Status = "queued"
	StatusPrinting  Status = "printing"
	StatusDelivered Status = Status(transport.StatusDelivered)
	StatusFallback  Status = Status(transport.StatusFallback)
	StatusFailed    Status = Status(transport.StatusFailed)
)

// Job is one queued print request
type Job struct {
	ID        string           `json:"id"`
	ProfileID string           `json:"profile_id"`
	Content   *receipt.Content `json:"-"`
	Status    Status           `json:"status"`
	Reason    string           `json:"reason,omitempty"`
	Attempts  int              `json:"attempts"`
	CreatedAt time.Time        `json:"created_at"`
}

// Deliverer abstracts the transport dispatcher for the queue
type Deliverer interface {
	Deliver(payload []byte, doc transport.Document, p *profile.Profile) transport.Result
}

// Queue processes print jobs on a single worker goroutine. A job whose
// delivery fails outright may be requeued up to maxRequeues times; a
// fallback delivery is terminal success.
type Queue struct {
	jobs        []*Job
	mu          sync.Mutex
	store       *profile.Store
	deliverer   Deliverer
	maxRequeues int
	onUpdate    func(Job)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a queue and starts its worker
func New(store *profile.Store, deliverer Deliverer, maxRequeues int) *Queue {
	ctx, cancel := context.WithCancel(context.Background())

	q := &Queue{
		store:       store,
		deliverer:   deliverer,
		maxRequeues: maxRequeues,
		ctx:         ctx,
		cancel:      cancel,
	}

	q.wg.Add(1)
	go q.worker()

	return q
}

// OnUpdate registers a callback invoked with a copy of every job whose
// status changes
func (q *Queue) OnUpdate(cb func(Job)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onUpdate = cb
}

// Enqueue adds a print job for the given profile and returns its ID
func (q *Queue) Enqueue(profileID string, content *receipt.Content) string {
	q.mu.Lock()
	job := &Job{
		ID:        uuid.New().String(),
		ProfileID: profileID,
		Content:   content,
		Status:    StatusQueued,
		CreatedAt: time.Now(),
	}
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()

	q.notify(job)
	return job.ID
}

func (q *Queue) worker() {
	defer q.wg.Done()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.processNext()
		}
	}
}

func (q *Queue) processNext() {
	q.mu.Lock()
	var job *Job
	for _, j := range q.jobs {
		if j.Status == StatusQueued {
			job = j
			job.Status = StatusPrinting
			break
		}
	}
	q.mu.Unlock()

	if job == nil {
		return
	}
	q.notify(job)

	result := q.print(job)

	q.mu.Lock()
	switch result.Status {
	case transport.StatusDelivered:
		job.Status = StatusDelivered
		job.Reason = ""
	case transport.StatusFallback:
		job.Status = StatusFallback
		job.Reason = result.Reason
	default:
		job.Attempts++
		job.Reason = result.Reason
		if job.Attempts > q.maxRequeues {
			job.Status = StatusFailed
			log.Printf("print job %s failed: %s", job.ID, job.Reason)
		} else {
			job.Status = StatusQueued
			log.Printf("print job %s requeued (%d/%d): %s", job.ID, job.Attempts, q.maxRequeues, job.Reason)
		}
	}
	q.mu.Unlock()
	q.notify(job)
}

func (q *Queue) print(job *Job) transport.Result {
	p, err := q.store.Get(job.ProfileID)
	if err != nil {
		// No requeue can fix a missing profile
		q.mu.Lock()
		job.Attempts = q.maxRequeues
		q.mu.Unlock()
		return transport.Result{Status: transport.StatusFailed, Reason: "profile not found: " + job.ProfileID}
	}

	lines := layout.Format(job.Content, p)

	opts := dialect.OptionsFor(p)
	if p.Dialect == profile.DialectThermalESCPOS && p.Layout.ShowLogo {
		if logo, err := dialect.LogoRaster(p.Business, p.Layout.PaperWidth); err == nil {
			opts.Logo = logo
		} else {
			log.Printf("logo raster skipped for profile %s: %v", p.ID, err)
		}
	}

	payload := dialect.Encode(lines, p.Dialect, opts)
	if p.PrintSettings.Copies > 1 {
		payload = bytes.Repeat(payload, p.PrintSettings.Copies)
	}

	doc := transport.Document{
		Title:         p.Business.Name,
		ReceiptNumber: job.Content.ReceiptNumber,
		Lines:         lines,
	}

	return q.deliverer.Deliver(payload, doc, p)
}

func (q *Queue) notify(job *Job) {
	q.mu.Lock()
	cb := q.onUpdate
	copied := *job
	q.mu.Unlock()

	if cb != nil {
		cb(copied)
	}
}

// Get returns a copy of the job with the given ID
func (q *Queue) Get(id string) *Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, job := range q.jobs {
		if job.ID == id {
			copied := *job
			return &copied
		}
	}
	return nil
}

// All returns copies of every job in submission order
func (q *Queue) All() []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	jobs := make([]*Job, len(q.jobs))
	for i, job := range q.jobs {
		copied := *job
		jobs[i] = &copied
	}
	return jobs
}

// ClearFinished drops jobs that reached a terminal state
func (q *Queue) ClearFinished() {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.jobs[:0]
	for _, job := range q.jobs {
		switch job.Status {
		case StatusDelivered, StatusFallback, StatusFailed:
		default:
			kept = append(kept, job)
		}
	}
	q.jobs = kept
}

// Stop shuts down the worker and waits for it to exit
func (q *Queue) Stop() {
	q.cancel()
	q.wg.Wait()
}
