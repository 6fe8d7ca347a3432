package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "centi/internal/errors"
	"centi/internal/logger"
	"centi/internal/models"
	"centi/internal/services"
)

// UserDirectory lists the users eligible for weekly scoring.
type UserDirectory interface {
	ListActiveUsers(ctx context.Context) ([]models.User, error)
}

// ScoreCalculator computes and persists one user's weekly score.
type ScoreCalculator interface {
	CalculateWeeklyScore(ctx context.Context, userID string, now time.Time) (*models.WeeklyScore, error)
}

// WeeklyScoreStore answers whether a user already has a score for a week.
type WeeklyScoreStore interface {
	GetWeeklyScore(ctx context.Context, userID string, monday time.Time) (*models.WeeklyScore, error)
}

// BatchResult reports the outcome of one weekly scoring run. Skipped users
// already had a score for the week and are counted separately from
// successes and failures.
type BatchResult struct {
	WeekOf       time.Time `json:"week_of"`
	TotalUsers   int       `json:"total_users"`
	SuccessCount int       `json:"success_count"`
	ErrorCount   int       `json:"error_count"`
	SkippedCount int       `json:"skipped_count"`
	Duration     string    `json:"duration"`
}

// Options tunes the scheduler loop. Zero values fall back to defaults.
type Options struct {
	// PollInterval is how often the loop checks whether a weekly run is
	// due.
	PollInterval time.Duration
	// UserTimeout bounds each user's score calculation.
	UserTimeout time.Duration
	// Workers is the number of users scored concurrently.
	Workers int
	// Now overrides the clock, for tests.
	Now func() time.Time
}

const (
	defaultPollInterval = time.Minute
	defaultUserTimeout  = 30 * time.Second
	defaultWorkers      = 4
)

// WeeklyScoreScheduler runs the weekly scoring batch: every Monday it walks
// all active users and computes each one's score for the week, at most once
// per user per week. One user's failure never stops the batch.
type WeeklyScoreScheduler struct {
	users  UserDirectory
	scores ScoreCalculator
	store  WeeklyScoreStore
	opts   Options

	mu      sync.Mutex
	running bool
	lastRun time.Time
	stop    chan struct{}
	done    chan struct{}
}

// New creates a WeeklyScoreScheduler.
func New(users UserDirectory, scores ScoreCalculator, store WeeklyScoreStore, opts Options) *WeeklyScoreScheduler {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.UserTimeout <= 0 {
		opts.UserTimeout = defaultUserTimeout
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &WeeklyScoreScheduler{
		users:  users,
		scores: scores,
		store:  store,
		opts:   opts,
	}
}

// Start launches the scheduler loop. Calling Start on a running scheduler
// is a no-op.
func (s *WeeklyScoreScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop(s.stop, s.done)
	logger.Get().Infow("weekly score scheduler started",
		"poll_interval", s.opts.PollInterval,
		"workers", s.opts.Workers)
}

// Stop shuts the loop down and waits for an in-flight batch to finish.
// Calling Stop on a stopped scheduler is a no-op.
func (s *WeeklyScoreScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done
	logger.Get().Infow("weekly score scheduler stopped")
}

func (s *WeeklyScoreScheduler) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick fires the batch when the current day is Monday and this week has not
// been processed yet. The in-process lastRun guard stops the poll loop from
// re-firing within a Monday; the per-user skip check makes reruns after a
// restart harmless.
func (s *WeeklyScoreScheduler) tick() {
	now := s.opts.Now()
	if now.Weekday() != time.Monday {
		return
	}

	week := services.MondayOf(now)
	s.mu.Lock()
	if s.lastRun.Equal(week) {
		s.mu.Unlock()
		return
	}
	s.lastRun = week
	s.mu.Unlock()

	if _, err := s.runBatch(context.Background(), now); err != nil {
		logger.Get().Errorw("weekly score batch failed", "error", err)
	}
}

// RunNow executes one scoring batch immediately, regardless of weekday.
// Used by the pipeline trigger endpoint. Returns an error when the
// scheduler is stopped or the user listing fails; per-user failures are
// reported in the result, not as an error.
func (s *WeeklyScoreScheduler) RunNow(ctx context.Context) (*BatchResult, error) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return nil, apperrors.ErrSchedulerStopped
	}
	return s.runBatch(ctx, s.opts.Now())
}

func (s *WeeklyScoreScheduler) runBatch(ctx context.Context, now time.Time) (*BatchResult, error) {
	log := logger.Get()
	week := services.MondayOf(now)
	started := s.opts.Now()

	users, err := s.users.ListActiveUsers(ctx)
	if err != nil {
		return nil, err
	}

	log.Infow("weekly score batch starting",
		"week_of", week.Format("2006-01-02"),
		"total_users", len(users))

	var successCount, errorCount, skippedCount atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i := range users {
		user := users[i]
		g.Go(func() error {
			// Per-user failures are counted, never returned: returning
			// would cancel gctx and starve the rest of the batch.
			s.scoreUser(gctx, user.ID, week, now, &successCount, &errorCount, &skippedCount)
			return nil
		})
	}
	g.Wait()

	result := &BatchResult{
		WeekOf:       week,
		TotalUsers:   len(users),
		SuccessCount: int(successCount.Load()),
		ErrorCount:   int(errorCount.Load()),
		SkippedCount: int(skippedCount.Load()),
		Duration:     s.opts.Now().Sub(started).Round(time.Millisecond).String(),
	}

	log.Infow("weekly score batch finished",
		"week_of", week.Format("2006-01-02"),
		"total_users", result.TotalUsers,
		"success_count", result.SuccessCount,
		"error_count", result.ErrorCount,
		"skipped_count", result.SkippedCount,
		"duration", result.Duration)

	return result, nil
}

func (s *WeeklyScoreScheduler) scoreUser(ctx context.Context, userID string, week, now time.Time, success, failed, skipped *atomic.Int64) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.UserTimeout)
	defer cancel()

	existing, err := s.store.GetWeeklyScore(ctx, userID, week)
	if err != nil {
		failed.Add(1)
		logger.Get().Errorw("weekly score lookup failed", "user_id", userID, "error", err)
		return
	}
	if existing != nil {
		skipped.Add(1)
		return
	}

	if _, err := s.scores.CalculateWeeklyScore(ctx, userID, now); err != nil {
		failed.Add(1)
		logger.Get().Errorw("weekly score calculation failed", "user_id", userID, "error", err)
		return
	}
	success.Add(1)
}
