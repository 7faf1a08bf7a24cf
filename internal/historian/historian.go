// internal/historian/historian.go
//
// Package historian drains room events from the Redis queue the server publishes to
// and writes them to durable storage in batches.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jason-s-yu/park/internal/cache"
	"github.com/jason-s-yu/park/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBatchSize  = 20
	DefaultFlushDelay = 500 * time.Millisecond

	// maxPending caps how many events are held while the sink keeps failing.
	maxPending = 10_000
)

// Sink persists a batch of events. It must tolerate redelivery of events it already stored.
type Sink interface {
	WriteEvents(ctx context.Context, events []models.RoomEvent) error
}

type Options struct {
	Queue      string
	BatchSize  int
	FlushDelay time.Duration
	Logger     *logrus.Logger
}

// Service pops events with BLPop, accumulates them and flushes when the batch is full
// or the queue has been idle for FlushDelay.
type Service struct {
	rdb        *redis.Client
	sink       Sink
	queue      string
	batchSize  int
	flushDelay time.Duration
	logger     *logrus.Logger

	batchMu sync.Mutex
	batch   []models.RoomEvent
}

func New(rdb *redis.Client, sink Sink, opts Options) *Service {
	s := &Service{
		rdb:        rdb,
		sink:       sink,
		queue:      opts.Queue,
		batchSize:  opts.BatchSize,
		flushDelay: opts.FlushDelay,
		logger:     opts.Logger,
	}
	if s.queue == "" {
		s.queue = cache.DefaultQueueName
	}
	if s.batchSize <= 0 {
		s.batchSize = DefaultBatchSize
	}
	if s.flushDelay <= 0 {
		s.flushDelay = DefaultFlushDelay
	}
	if s.logger == nil {
		s.logger = logrus.New()
	}
	s.batch = make([]models.RoomEvent, 0, s.batchSize)
	return s
}

// Run blocks until ctx is done, then flushes what is left.
func (s *Service) Run(ctx context.Context) error {
	s.logger.WithField("queue", s.queue).Info("historian started")
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Flush(flushCtx)
		s.logger.Info("historian stopped")
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		// BLPop's timeout doubles as the idle flush timer.
		res, err := s.rdb.BLPop(ctx, s.flushDelay, s.queue).Result()
		switch {
		case errors.Is(err, redis.Nil):
			s.Flush(ctx)
			continue
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Errorf("BLPop: %v", err)
			s.sleep(ctx, time.Second)
			continue
		}
		// res[0] is the queue name and res[1] the payload.
		if len(res) < 2 {
			continue
		}
		s.handlePayload(ctx, res[1])
	}
}

func (s *Service) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// handlePayload decodes one queued event; malformed payloads are logged and dropped.
func (s *Service) handlePayload(ctx context.Context, payload string) {
	var ev models.RoomEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		s.logger.Warnf("invalid room event payload: %v", err)
		return
	}
	if s.append(ev) {
		s.Flush(ctx)
	}
}

// append adds ev and reports whether the batch is full.
func (s *Service) append(ev models.RoomEvent) bool {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	s.batch = append(s.batch, ev)
	return len(s.batch) >= s.batchSize
}

// Flush writes the pending batch. On failure the events stay pending for the next flush.
func (s *Service) Flush(ctx context.Context) {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	if len(s.batch) == 0 {
		return
	}
	batchCopy := make([]models.RoomEvent, len(s.batch))
	copy(batchCopy, s.batch)

	if err := s.sink.WriteEvents(ctx, batchCopy); err != nil {
		s.logger.WithField("pending", len(s.batch)).Errorf("flush room events: %v", err)
		if over := len(s.batch) - maxPending; over > 0 {
			s.logger.Warnf("dropping %d oldest room events", over)
			s.batch = append(s.batch[:0], s.batch[over:]...)
		}
		return
	}
	s.batch = s.batch[:0]
	s.logger.Debugf("flushed %d room events", len(batchCopy))
}

// Pending reports how many events wait for the next flush.
func (s *Service) Pending() int {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return len(s.batch)
}
