package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const deliveryTimeout = 30 * time.Second

// Queue hands notifications to a fixed pool of workers over a bounded
// channel. Dispatch never blocks: when the buffer is full the notification
// is dropped and logged.
type Queue struct {
	deliverer Deliverer
	jobs      chan Notification
	workers   int

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewQueue(deliverer Deliverer, size, workers int) *Queue {
	if size <= 0 {
		size = 100
	}
	if workers <= 0 {
		workers = 1
	}

	return &Queue{
		deliverer: deliverer,
		jobs:      make(chan Notification, size),
		workers:   workers,
	}
}

func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(ctx)
	}
}

func (q *Queue) Dispatch(n Notification) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		zap.L().Warn("notification queue stopped, dropping notification", zap.String("kind", string(n.Kind)))
		return
	}

	select {
	case q.jobs <- n:
	default:
		zap.L().Warn("notification queue full, dropping notification",
			zap.String("kind", string(n.Kind)),
			zap.Strings("recipients", n.Recipients),
		)
	}
}

// Stop refuses new notifications and waits for queued ones to be delivered.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	q.wg.Wait()
}

func (q *Queue) work(ctx context.Context) {
	defer q.wg.Done()

	for n := range q.jobs {
		deliverCtx, cancel := context.WithTimeout(ctx, deliveryTimeout)
		if err := q.deliverer.Deliver(deliverCtx, n); err != nil {
			logDeliveryFailure(n, err)
		}
		cancel()
	}
}
