/*
session.go - Cloud sync and migration reconciler

PURPOSE:
  A Session is one device's view of one user's vacation record. It is the
  only stateful piece of the package: everything else is pure functions over
  Data values.

STATES:
  Anonymous         no user; the device record is authoritative
  Loading           sign-in in progress
  CloudOnly         a cloud record exists and is used directly
  LocalFallback     no cloud record (or the cloud is unreachable); device record used
  MigrationPending  comparing device and cloud records
  MigrationConflict waiting for Resolve
  Reconciled        migration done (or not needed)

TRANSITIONS:
  Anonymous -> Loading                 SignIn
  Loading -> CloudOnly | LocalFallback cloud record found | missing or unreachable
  CloudOnly|LocalFallback -> MigrationPending   first sign-in of this user on the device
  MigrationPending -> Reconciled       NoLocalData, Migrated, NoConflict
  MigrationPending -> MigrationConflict Conflict
  MigrationPending -> CloudOnly|LocalFallback   MigrationError (nothing changed)
  MigrationConflict -> Reconciled      Resolve
  any -> Anonymous                     SignOut

STALE LOADS:
  Every sign-in, sign-out and year switch bumps a generation counter. A load
  that returns into a different generation is discarded with ErrSessionChanged.

WRITES:
  Mutations write the device record immediately (best effort, logged) and,
  when signed in, schedule a debounced cloud write. Close flushes it.
*/
package vacation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pochivni/planner/calendar"
)

// State is the reconciler state.
type State string

const (
	StateAnonymous         State = "anonymous"
	StateLoading           State = "loading"
	StateCloudOnly         State = "cloud-only"
	StateLocalFallback     State = "local-fallback"
	StateMigrationPending  State = "migration-pending"
	StateMigrationConflict State = "migration-conflict"
	StateReconciled        State = "reconciled"
)

const (
	DefaultRemoteTimeout   = 5 * time.Second
	DefaultDebounceWait    = time.Second
	DefaultDebounceMaxWait = 5 * time.Second
)

// SessionConfig wires a Session. Local, Flags and Cloud are required.
type SessionConfig struct {
	Local    *LocalStore
	Flags    *FlagStore
	Cloud    RecordStore
	Rollover *RolloverEngine

	RemoteTimeout   time.Duration
	DebounceWait    time.Duration
	DebounceMaxWait time.Duration

	Logger *zap.Logger
}

type cloudWrite struct {
	userID string
	year   int
	data   Data
}

// Session is safe for concurrent use.
type Session struct {
	cfg    SessionConfig
	logger *zap.Logger
	writer *Debouncer[cloudWrite]

	mu       sync.Mutex
	gen      uint64
	state    State
	userID   string
	year     int
	data     Data
	cloud    *Data
	rollover *Rollover
	conflict *Conflict
}

// NewSession starts an anonymous session viewing year, seeded from the device record.
func NewSession(ctx context.Context, cfg SessionConfig, year int) *Session {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.RemoteTimeout <= 0 {
		cfg.RemoteTimeout = DefaultRemoteTimeout
	}
	if cfg.DebounceWait <= 0 {
		cfg.DebounceWait = DefaultDebounceWait
	}
	if cfg.DebounceMaxWait <= 0 {
		cfg.DebounceMaxWait = DefaultDebounceMaxWait
	}
	if cfg.Rollover == nil {
		cfg.Rollover = NewRolloverEngine(cfg.Cloud, cfg.Logger)
	}

	s := &Session{
		cfg:    cfg,
		logger: cfg.Logger.With(zap.String("component", "session")),
		state:  StateAnonymous,
		year:   year,
	}
	s.writer = NewDebouncer(cfg.DebounceWait, cfg.DebounceMaxWait, s.writeCloud)
	s.data = s.loadLocal(ctx)
	return s
}

// ===== accessors =====

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Data() Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Session) Year() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.year
}

func (s *Session) Authenticated() bool { return s.UserID() != "" }

// Cloud is the last record known to be stored in the cloud, nil if none.
func (s *Session) Cloud() *Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cloud == nil {
		return nil
	}
	d := *s.cloud
	return &d
}

// Rollover is nil for anonymous sessions and when there is nothing to carry over.
func (s *Session) Rollover() *Rollover {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollover
}

// Conflict is non-nil only in StateMigrationConflict.
func (s *Session) Conflict() *Conflict {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflict == nil {
		return nil
	}
	c := *s.conflict
	return &c
}

// Summary counts only the days of the viewed year; the device record spans years.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summarize(s.data.InYear(s.year), s.rollover)
}

// =============================================================================
// SIGN IN / OUT
// =============================================================================

// SignIn loads the user's cloud record and carryover for the viewed year and,
// on the user's first sign-in on this device, runs the migration. The result
// is nil when migration was skipped.
func (s *Session) SignIn(ctx context.Context, userID string) (MigrationResult, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	s.writer.Flush()

	s.mu.Lock()
	s.gen++
	gen, year := s.gen, s.year
	s.state = StateLoading
	s.userID = userID
	s.cloud, s.rollover, s.conflict = nil, nil, nil
	s.mu.Unlock()

	if err := s.loadCloud(ctx, gen, userID, year); err != nil {
		return nil, err
	}

	attempted, err := s.cfg.Flags.Attempted(ctx, userID)
	if err != nil {
		s.logger.Warn("read migration flag", zap.String("user_id", userID), zap.Error(err))
	}
	if attempted {
		return nil, nil
	}
	return s.migrate(ctx, gen, userID, year)
}

func (s *Session) migrate(ctx context.Context, gen uint64, userID string, year int) (MigrationResult, error) {
	if err := s.cfg.Flags.MarkAttempted(ctx, userID); err != nil {
		s.logger.Warn("write migration flag", zap.String("user_id", userID), zap.Error(err))
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return nil, ErrSessionChanged
	}
	fallback := s.state
	s.state = StateMigrationPending
	s.mu.Unlock()

	tctx, cancel := context.WithTimeout(ctx, s.cfg.RemoteTimeout)
	result := Migrate(tctx, s.cfg.Local, s.cfg.Cloud, userID, year)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil, ErrSessionChanged
	}

	switch r := result.(type) {
	case Migrated:
		if local, _, err := s.cfg.Local.Load(ctx); err != nil {
			s.logger.Warn("reload migrated record", zap.String("user_id", userID), zap.Error(err))
		} else {
			s.data = local
		}
		d := s.data
		s.cloud = &d
		s.state = StateReconciled
	case NoLocalData, NoConflict:
		s.state = StateReconciled
	case Conflict:
		s.conflict = &r
		s.state = StateMigrationConflict
	case MigrationError:
		s.logger.Warn("migration failed", zap.String("user_id", userID), zap.String("error", r.Message))
		// Nothing was reconciled, so the next sign-in tries again.
		if err := s.cfg.Flags.Clear(ctx, userID); err != nil {
			s.logger.Warn("clear migration flag", zap.String("user_id", userID), zap.Error(err))
		}
		s.state = fallback
	}
	s.logger.Info("migration finished",
		zap.String("user_id", userID),
		zap.Int("year", year),
		zap.String("status", string(result.Status())))
	return result, nil
}

// Resolve settles a pending conflict and writes the winner to the cloud.
// On a failed write the conflict stays pending.
func (s *Session) Resolve(ctx context.Context, r Resolution) (Data, error) {
	s.mu.Lock()
	if s.state != StateMigrationConflict || s.conflict == nil {
		s.mu.Unlock()
		return Data{}, ErrNoConflict
	}
	gen, userID, year, c := s.gen, s.userID, s.year, *s.conflict
	s.mu.Unlock()

	data, err := c.Resolve(r)
	if err != nil {
		return Data{}, err
	}
	if r != ResolveKeepCloud {
		tctx, cancel := context.WithTimeout(ctx, s.cfg.RemoteTimeout)
		err = s.cfg.Cloud.SaveYear(tctx, userID, year, data)
		cancel()
		if err != nil {
			s.logger.Warn("save resolved record", zap.String("user_id", userID), zap.Error(err))
			return Data{}, err
		}
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return Data{}, ErrSessionChanged
	}
	s.data = data
	s.cloud = &data
	s.conflict = nil
	s.state = StateReconciled
	s.mu.Unlock()

	s.saveLocal(ctx, data)
	return data, nil
}

// SignOut flushes pending cloud writes, drops all cloud state and clears the
// user's migration flag so the next sign-in reconciles again.
func (s *Session) SignOut(ctx context.Context) {
	s.writer.Flush()

	s.mu.Lock()
	userID := s.userID
	s.gen++
	s.state = StateAnonymous
	s.userID = ""
	s.cloud, s.rollover, s.conflict = nil, nil, nil
	s.mu.Unlock()

	if userID != "" {
		if err := s.cfg.Flags.Clear(ctx, userID); err != nil {
			s.logger.Warn("clear migration flag", zap.String("user_id", userID), zap.Error(err))
		}
	}

	local := s.loadLocal(ctx)
	s.mu.Lock()
	s.data = local
	s.mu.Unlock()
}

// SwitchYear changes the viewed year, reloading the cloud record and
// carryover when signed in.
func (s *Session) SwitchYear(ctx context.Context, year int) error {
	s.writer.Flush()

	s.mu.Lock()
	s.gen++
	gen, userID := s.gen, s.userID
	s.year = year
	s.conflict = nil
	if userID == "" {
		s.mu.Unlock()
		return nil
	}
	s.state = StateLoading
	s.mu.Unlock()

	return s.loadCloud(ctx, gen, userID, year)
}

// Close flushes the pending cloud write and stops the writer.
func (s *Session) Close() {
	s.writer.Flush()
	s.writer.Stop()
}

// loadCloud fetches the year record and the carryover concurrently.
func (s *Session) loadCloud(ctx context.Context, gen uint64, userID string, year int) error {
	var (
		wg       sync.WaitGroup
		rec      *Data
		recErr   error
		rollover *Rollover
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		tctx, cancel := context.WithTimeout(ctx, s.cfg.RemoteTimeout)
		defer cancel()
		rec, recErr = s.cfg.Cloud.LoadYear(tctx, userID, year)
	}()
	go func() {
		defer wg.Done()
		tctx, cancel := context.WithTimeout(ctx, s.cfg.RemoteTimeout)
		defer cancel()
		// Errors are logged by the engine and mean "no carryover".
		rollover, _ = s.cfg.Rollover.Calculate(tctx, userID, year)
	}()
	wg.Wait()

	// Without a cloud record the device record stands in for the year.
	var local Data
	if rec == nil {
		local = s.loadLocal(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		s.logger.Debug("discarding stale load", zap.String("user_id", userID), zap.Int("year", year))
		return ErrSessionChanged
	}

	s.rollover = rollover
	switch {
	case recErr != nil:
		s.logger.Warn("load cloud record", zap.String("user_id", userID), zap.Int("year", year), zap.Error(recErr))
		s.data = local
		s.state = StateLocalFallback
	case rec != nil:
		d := Normalize(*rec)
		s.cloud = &d
		s.data = d
		s.state = StateCloudOnly
	default:
		s.cloud = nil
		s.data = local
		s.state = StateLocalFallback
	}
	return nil
}

// =============================================================================
// MUTATIONS
// =============================================================================

func (s *Session) Toggle(ctx context.Context, day calendar.Date) (Data, error) {
	return s.mutate(ctx, func(d Data) (Data, error) { return Toggle(d, day) })
}

func (s *Session) ApplyRange(ctx context.Context, a, b calendar.Date) (Data, error) {
	return s.mutate(ctx, func(d Data) (Data, error) { return ApplyRange(d, a, b) })
}

func (s *Session) SetEntitlement(ctx context.Context, total int) (Data, error) {
	return s.mutate(ctx, func(d Data) (Data, error) { return SetEntitlement(d, total) })
}

func (s *Session) mutate(ctx context.Context, edit func(Data) (Data, error)) (Data, error) {
	s.mu.Lock()
	next, err := edit(s.data)
	if err != nil {
		current := s.data
		s.mu.Unlock()
		return current, err
	}
	s.data = next
	userID, year := s.userID, s.year
	s.mu.Unlock()

	s.saveLocal(ctx, next)
	if userID != "" {
		s.writer.Schedule(cloudWrite{userID: userID, year: year, data: next})
	}
	return next, nil
}

// ===== persistence helpers =====

func (s *Session) loadLocal(ctx context.Context) Data {
	d, _, err := s.cfg.Local.Load(ctx)
	if err != nil {
		s.logger.Warn("load local record", zap.Error(err))
	}
	return d
}

func (s *Session) saveLocal(ctx context.Context, d Data) {
	if err := s.cfg.Local.Save(ctx, d); err != nil {
		s.logger.Warn("save local record", zap.Error(err))
	}
}

func (s *Session) writeCloud(w cloudWrite) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RemoteTimeout)
	defer cancel()
	if err := s.cfg.Cloud.SaveYear(ctx, w.userID, w.year, w.data); err != nil {
		s.logger.Warn("save cloud record",
			zap.String("user_id", w.userID),
			zap.Int("year", w.year),
			zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == w.userID && s.year == w.year {
		d := w.data
		s.cloud = &d
	}
}
