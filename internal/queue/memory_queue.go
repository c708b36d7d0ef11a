package queue

import (
	"errors"
	"sync"
	"time"
)

// ErrQueueEmpty is returned by Dequeue when no job is currently available
// (the queue is empty, or every job's AvailableAt is still in the future).
var ErrQueueEmpty = errors.New("queue: no job available")

// MemoryQueue is an in-process priority queue: jobs are dequeued by
// Priority (highest first), then by AvailableAt (earliest first). It is
// the only Queue implementation TimeClock needs — a single kiosk process
// has no reason to share a job queue across machines.
type MemoryQueue struct {
	mu   sync.Mutex
	jobs []*Job
}

// NewMemoryQueue constructs an empty MemoryQueue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

// Enqueue adds a job to the queue.
func (q *MemoryQueue) Enqueue(job *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

// Dequeue removes and returns the highest-priority available job (earliest
// AvailableAt within that priority). Returns ErrQueueEmpty if nothing is
// ready yet.
func (q *MemoryQueue) Dequeue() (*Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	bestIdx := -1
	for i, j := range q.jobs {
		if j.AvailableAt.After(now) {
			continue
		}
		if bestIdx == -1 {
			bestIdx = i
			continue
		}
		best := q.jobs[bestIdx]
		if j.Priority > best.Priority {
			bestIdx = i
		} else if j.Priority == best.Priority && j.AvailableAt.Before(best.AvailableAt) {
			bestIdx = i
		}
	}

	if bestIdx == -1 {
		return nil, ErrQueueEmpty
	}

	job := q.jobs[bestIdx]
	q.jobs = append(q.jobs[:bestIdx], q.jobs[bestIdx+1:]...)
	return job, nil
}

// Size returns the number of jobs currently queued, including jobs not yet
// available.
func (q *MemoryQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}
