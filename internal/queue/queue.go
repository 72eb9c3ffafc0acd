package queue

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// SyncTopic carries service.SyncJob payloads.
const SyncTopic = "acumbamail_sync"

// Publisher enqueues a payload on a topic.
type Publisher interface {
	Publish(topic string, payload any) error
}

// Queue interface
type Queue interface {
	Publisher
	Subscribe(topic string, handler func(payload any) error) error
	Close() error
}

var ErrQueueClosed = errors.New("queue is closed")

// InMemoryQueue delivers to in-process handlers with retry
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
	closed   bool
	inFlight sync.WaitGroup

	MaxRetries int
	Backoff    func(attempt int) time.Duration
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers:   make(map[string][]func(payload any) error),
		MaxRetries: 3,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(attempt*500) * time.Millisecond
		},
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	handlers := q.handlers[topic]
	q.inFlight.Add(len(handlers))
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		go func(handler func(payload any) error) {
			defer q.inFlight.Done()
			q.processJob(handler, JobPayload{Payload: payload, MaxRetries: q.MaxRetries})
		}(handler)
	}
	return nil
}

// Close rejects new jobs and waits for the ones in flight, retries included.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.inFlight.Wait()
	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	for {
		err := handler(job.Payload)
		if err == nil {
			return // ACK
		}

		job.RetryCount++
		log.Printf("⚠️ [Queue] job failed (attempt %d/%d): %+v, error: %v", job.RetryCount, job.MaxRetries, job.Payload, err)

		if job.RetryCount > job.MaxRetries {
			log.Printf("❌ [Queue] job permanently failed after %d retries: %+v", job.MaxRetries, job.Payload)
			return
		}

		if q.Backoff != nil {
			time.Sleep(q.Backoff(job.RetryCount))
		}
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}
