/*
scheduler.go - Holiday cache prefetcher

PURPOSE:
  Keeps the holiday cache warm so the first request of the day does not pay
  for the upstream API (and its retries). Warms the current and next year.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on Start
  - Failures are logged; the next tick tries again

USAGE:
  p := NewHolidayPrefetcher(cache, logger)
  p.Start()
  // ... later
  p.Stop()
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Prefetcher loads one year into a cache.
type Prefetcher interface {
	Prefetch(ctx context.Context, year int) error
}

// HolidayPrefetcher periodically warms a holiday cache.
type HolidayPrefetcher struct {
	Cache         Prefetcher
	CheckInterval time.Duration
	Timeout       time.Duration
	Enabled       bool
	Now           func() time.Time
	Logger        *zap.Logger

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastRun time.Time
}

// NewHolidayPrefetcher creates a new prefetcher.
func NewHolidayPrefetcher(cache Prefetcher, logger *zap.Logger) *HolidayPrefetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HolidayPrefetcher{
		Cache:         cache,
		CheckInterval: 6 * time.Hour,
		Timeout:       time.Minute,
		Enabled:       true,
		Now:           time.Now,
		Logger:        logger,
	}
}

// Start begins the prefetcher.
func (p *HolidayPrefetcher) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.Enabled {
		p.Logger.Info("Holiday prefetcher disabled, not starting")
		return
	}
	if p.ticker != nil {
		return
	}

	p.ticker = time.NewTicker(p.CheckInterval)
	p.stop = make(chan struct{})
	p.wg.Add(1)

	go p.run(p.ticker, p.stop)

	p.Logger.Info("Holiday prefetcher started", zap.Duration("interval", p.CheckInterval))
}

// Stop stops the prefetcher and waits for a running pass.
func (p *HolidayPrefetcher) Stop() {
	p.mu.Lock()
	ticker, stop := p.ticker, p.stop
	p.ticker, p.stop = nil, nil
	p.mu.Unlock()

	if ticker == nil {
		return
	}
	ticker.Stop()
	close(stop)
	p.wg.Wait()
	p.Logger.Info("Holiday prefetcher stopped")
}

func (p *HolidayPrefetcher) run(ticker *time.Ticker, stop chan struct{}) {
	defer p.wg.Done()

	// Run immediately on start
	p.RunNow()

	for {
		select {
		case <-ticker.C:
			p.RunNow()
		case <-stop:
			return
		}
	}
}

// RunNow warms the current and the next year synchronously.
func (p *HolidayPrefetcher) RunNow() {
	ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
	defer cancel()

	year := p.Now().Year()
	for _, y := range []int{year, year + 1} {
		if err := p.Cache.Prefetch(ctx, y); err != nil {
			p.Logger.Warn("Holiday prefetch failed",
				zap.Int("year", y),
				zap.Error(err))
			continue
		}
		p.Logger.Debug("Holiday prefetch done", zap.Int("year", y))
	}

	p.mu.Lock()
	p.lastRun = p.Now()
	p.mu.Unlock()
}

// LastRun returns when the last pass finished.
func (p *HolidayPrefetcher) LastRun() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRun
}
