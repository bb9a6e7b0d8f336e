package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"ainews/domain"
	"ainews/internal/logging"
)

// RunFunc performs one crawl pass. *Runner satisfies it.
type RunFunc interface {
	Run(ctx context.Context, trigger string) domain.RunSummary
}

// RunLock guards a run across processes. *flock.Flock satisfies it.
type RunLock interface {
	TryLock() (bool, error)
	Unlock() error
}

// Status is a snapshot of the scheduler.
type Status struct {
	Started  bool
	Running  bool
	Interval time.Duration
	NextRun  time.Time
	LastRun  *domain.RunSummary
}

// Scheduler fires a run on wall-clock multiples of the interval and on
// demand. At most one run is active per process; a tick or trigger that lands
// during a run is dropped.
type Scheduler struct {
	runner     RunFunc
	lock       RunLock
	logger     *slog.Logger
	runOnStart bool

	mu             sync.Mutex
	interval       time.Duration
	ctx            context.Context
	cancel         context.CancelFunc
	tickerStopChan chan struct{}
	started        bool
	running        bool
	nextRun        time.Time
	last           *domain.RunSummary
	wg             sync.WaitGroup
}

// SchedulerOption customizes a Scheduler.
type SchedulerOption func(*Scheduler)

// WithRunLock makes every run take lock first and skip when it is held.
func WithRunLock(lock RunLock) SchedulerOption {
	return func(s *Scheduler) { s.lock = lock }
}

// WithRunOnStart fires one run as soon as the scheduler starts.
func WithRunOnStart(enabled bool) SchedulerOption {
	return func(s *Scheduler) { s.runOnStart = enabled }
}

// WithLogger sets the scheduler logger.
func WithLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewScheduler(runner RunFunc, interval time.Duration, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{runner: runner, interval: interval, logger: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ domain.Scheduler = (*Scheduler)(nil)

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("scheduler already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.tickerStopChan = make(chan struct{})
	s.started = true
	s.wg.Add(1)
	go s.loop()
	s.mu.Unlock()

	s.logger.Info("scheduler started", "interval", s.CurrentInterval().String())
	if s.runOnStart {
		s.start(TriggerStartup)
	}
	return nil
}

// Stop cancels any in-flight run and waits for it to unwind.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	cancel := s.cancel
	stopCh := s.tickerStopChan
	s.started = false
	s.mu.Unlock()

	cancel()
	close(stopCh)
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) SetInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.interval = d
		return
	}
	close(s.tickerStopChan)
	s.tickerStopChan = make(chan struct{})
	s.interval = d
}

func (s *Scheduler) CurrentInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Trigger starts a run in the background and returns immediately. It reports
// false when the scheduler is stopped or a run is already in progress.
func (s *Scheduler) Trigger() bool {
	return s.start(TriggerManual)
}

// Status returns a snapshot of the scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Started:  s.started,
		Running:  s.running,
		Interval: s.interval,
		NextRun:  s.nextRun,
	}
	if s.last != nil {
		last := *s.last
		st.LastRun = &last
	}
	return st
}

func (s *Scheduler) loop() {
	defer s.wg.Done()
	for {
		if s.ctx.Err() != nil {
			return
		}
		s.mu.Lock()
		interval := s.interval
		stopCh := s.tickerStopChan
		next := nextTick(time.Now(), interval)
		s.nextRun = next
		s.mu.Unlock()

		timer := time.NewTimer(time.Until(next))
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-stopCh:
			timer.Stop()
			continue
		case <-timer.C:
		}

		s.start(TriggerSchedule)
	}
}

func (s *Scheduler) start(trigger string) bool {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return false
	}
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("run already in progress, skipping", "trigger", trigger)
		return false
	}
	s.running = true
	ctx := s.ctx
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		summary, ok := s.run(ctx, trigger)

		s.mu.Lock()
		s.running = false
		if ok {
			s.last = &summary
		}
		s.mu.Unlock()
	}()
	return true
}

func (s *Scheduler) run(ctx context.Context, trigger string) (domain.RunSummary, bool) {
	if s.lock != nil {
		locked, err := s.lock.TryLock()
		if err != nil {
			s.logger.Error("acquire run lock", logging.Err(err))
			return domain.RunSummary{}, false
		}
		if !locked {
			s.logger.Warn("another process is crawling, skipping", "trigger", trigger)
			return domain.RunSummary{}, false
		}
		defer func() {
			if err := s.lock.Unlock(); err != nil {
				s.logger.Warn("release run lock", logging.Err(err))
			}
		}()
	}
	return s.runner.Run(ctx, trigger), true
}

// nextTick returns the next wall-clock multiple of d after now, so a 12h
// interval fires at 00:00 and 12:00 UTC.
func nextTick(now time.Time, d time.Duration) time.Time {
	return now.Truncate(d).Add(d)
}
