// internal/expiry/sweeper.go
package expiry

import (
	"context"
	"time"

	"github.com/jason-s-yu/park/internal/models"
	"github.com/sirupsen/logrus"
)

// Expirer moves overdue Waiting rooms to Expired in one transaction.
type Expirer interface {
	ExpireRooms(ctx context.Context) ([]*models.Room, error)
}

// Sweeper periodically expires rooms whose host never started them. Join and start
// never look at expires_at themselves; this is the only path to Expired.
type Sweeper struct {
	expirer  Expirer
	interval time.Duration
	logger   *logrus.Logger
}

func NewSweeper(expirer Expirer, interval time.Duration, logger *logrus.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{expirer: expirer, interval: interval, logger: logger}
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Infof("room expiry sweeper started (interval %s)", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("room expiry sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single pass and returns how many rooms expired.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	rooms, err := s.expirer.ExpireRooms(ctx)
	if err != nil {
		s.logger.Errorf("expiry sweep failed: %v", err)
		return 0
	}
	if len(rooms) > 0 {
		s.logger.WithField("count", len(rooms)).Info("expired overdue rooms")
	}
	return len(rooms)
}
