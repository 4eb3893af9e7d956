package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"clubsub/internal/logger"
)

// Job is a recurring unit of work. Next returns the fire instant after
// now; a zero time retires the job.
type Job interface {
	Name() string
	Next(now time.Time) time.Time
	Run(ctx context.Context)
}

type entry struct {
	job   Job
	at    time.Time
	index int
}

type jobHeap []*entry

func (h jobHeap) Len() int            { return len(h) }
func (h jobHeap) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h jobHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *jobHeap) Push(x interface{}) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *jobHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Scheduler runs all recurring jobs from a single goroutine, ordered by a
// next-fire-time priority queue. One slow job delays the queue but a
// failing one never stops it.
type Scheduler struct {
	mu   sync.Mutex
	jobs jobHeap
	wake chan struct{}
}

func New() *Scheduler {
	return &Scheduler{
		wake: make(chan struct{}, 1),
	}
}

// Add schedules a job at its next fire time. Safe to call while running.
func (s *Scheduler) Add(j Job) {
	now := time.Now()
	at := j.Next(now)
	if at.IsZero() {
		logger.Warn("job has no next fire time, not scheduled", "job", j.Name())
		return
	}

	s.mu.Lock()
	heap.Push(&s.jobs, &entry{job: j, at: at})
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Len reports how many jobs are queued.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs.Len()
}

// Start blocks until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	logger.Info("Scheduler started")

	for {
		s.mu.Lock()
		var wait time.Duration
		if s.jobs.Len() == 0 {
			wait = time.Hour
		} else {
			wait = time.Until(s.jobs[0].at)
		}
		s.mu.Unlock()

		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info("Scheduler stopped")
			return
		case <-s.wake:
			timer.Stop()
			continue
		case <-timer.C:
		}

		s.runDue(ctx)
	}
}

func (s *Scheduler) runDue(ctx context.Context) {
	now := time.Now()
	for {
		s.mu.Lock()
		if s.jobs.Len() == 0 || s.jobs[0].at.After(now) {
			s.mu.Unlock()
			return
		}
		e := heap.Pop(&s.jobs).(*entry)
		s.mu.Unlock()

		s.fire(ctx, e.job)

		if next := e.job.Next(time.Now()); !next.IsZero() {
			s.mu.Lock()
			heap.Push(&s.jobs, &entry{job: e.job, at: next})
			s.mu.Unlock()
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, j Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("job panicked", "job", j.Name(), "panic", r)
		}
	}()

	logger.Debug("job firing", "job", j.Name())
	j.Run(ctx)
}
