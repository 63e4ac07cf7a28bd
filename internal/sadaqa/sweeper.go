package sadaqa

import (
	"context"
	"time"
)

const (
	defaultSweepInterval = time.Hour
	sweepTimeout         = 5 * time.Minute
)

// startSweeper expires overdue campaigns once now and then every interval
// until Stop.
func (s *Sadaqa) startSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.sweep()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.ctx.Done():
				s.logger.Info("Expiry sweeper stopped")
				return
			}
		}
	}()
}

func (s *Sadaqa) sweep() {
	ctx, cancel := context.WithTimeout(s.ctx, sweepTimeout)
	defer cancel()

	s.logger.Debug("Sweeping expired campaigns")
	if _, err := s.SweepExpired(ctx, s.now()); err != nil {
		s.logger.Error("Failed to sweep expired campaigns", "error", err)
	}
}
