package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/pochivni/planner/config"
	"github.com/pochivni/planner/holidays"
	"github.com/pochivni/planner/remote"
	"github.com/pochivni/planner/store/memory"
	"github.com/pochivni/planner/store/postgres"
	"github.com/pochivni/planner/store/sqlite"
	"github.com/pochivni/planner/vacation"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// =============================================================================
// HOLIDAYS
// =============================================================================

func newHolidaySource(cfg *config.Config, logger *zap.Logger) *holidays.Cached {
	var src holidays.Source = holidays.NewComputed()
	if !cfg.Holidays.Offline {
		api := holidays.NewOpenHolidays(holidays.OpenHolidaysConfig{
			BaseURL: cfg.Holidays.APIURL,
			Timeout: cfg.Holidays.GetTimeout(),
			Retries: cfg.Holidays.Retries,
		}, logger)
		src = holidays.NewComposite(api, src, logger)
	}
	return holidays.NewCached(src, cfg.Holidays.GetCacheTTL())
}

func newPlanner(cfg *config.Config, logger *zap.Logger) (*holidays.Planner, error) {
	return holidays.NewPlanner(newHolidaySource(cfg, logger), cfg.Bridges.Strategy, cfg.School.Exclude, logger)
}

// =============================================================================
// SERVER STORAGE
// =============================================================================

// openRecords opens the cloud record store of planner serve.
func openRecords(cfg config.StorageConfig) (vacation.RecordStore, io.Closer, error) {
	switch cfg.Driver {
	case "postgres":
		s, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "memory":
		return memory.NewRecords(), nopCloser{}, nil
	default:
		if cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
				return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		s, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
}

// =============================================================================
// DEVICE
// =============================================================================

var errUnresolvedConflict = errors.New("device and cloud records differ; run planner sync --resolve merge|keep-cloud|keep-local")

// credentialsKey holds the signed-in identity of the device.
const credentialsKey = "pochivni-cloud-credentials"

type credentials struct {
	User  string `json:"user"`
	Token string `json:"token"`
}

// device is the CLI's local state: the KV and whoever is signed in.
type device struct {
	kv     vacation.KV
	closer io.Closer
	cfg    *config.Config
	logger *zap.Logger
	now    func() time.Time
}

func openDevice(cfg *config.Config, logger *zap.Logger, now func() time.Time) (*device, error) {
	dir := cfg.Local.GetDir()
	switch cfg.Local.Driver {
	case "sqlite":
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create device directory: %w", err)
		}
		s, err := sqlite.New(filepath.Join(dir, "device.db"))
		if err != nil {
			return nil, err
		}
		return &device{kv: s, closer: s, cfg: cfg, logger: logger, now: now}, nil
	default:
		kv, err := vacation.NewFileKV(dir)
		if err != nil {
			return nil, err
		}
		return &device{kv: kv, closer: nopCloser{}, cfg: cfg, logger: logger, now: now}, nil
	}
}

func (d *device) Close() error { return d.closer.Close() }

// credentials returns the signed-in identity. Config values win over the
// stored ones.
func (d *device) credentials(ctx context.Context) (credentials, bool) {
	var c credentials
	if raw, ok, err := d.kv.Get(ctx, credentialsKey); err != nil {
		d.logger.Warn("read credentials", zap.Error(err))
	} else if ok {
		if err := json.Unmarshal(raw, &c); err != nil {
			d.logger.Warn("decode credentials", zap.Error(err))
		}
	}
	if d.cfg.Cloud.User != "" {
		c.User = d.cfg.Cloud.User
	}
	if d.cfg.Cloud.Token != "" {
		c.Token = d.cfg.Cloud.Token
	}
	return c, c.User != "" && c.Token != ""
}

func (d *device) saveCredentials(ctx context.Context, c credentials) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return d.kv.Set(ctx, credentialsKey, raw)
}

func (d *device) clearCredentials(ctx context.Context) error {
	return d.kv.Delete(ctx, credentialsKey)
}

func (d *device) flags() *vacation.FlagStore { return vacation.NewFlagStore(d.kv) }

// session opens an anonymous session on year. The cloud store is the remote
// client built from the stored credentials; it is only called after SignIn.
func (d *device) session(ctx context.Context, year int) (*vacation.Session, credentials, bool) {
	creds, signedIn := d.credentials(ctx)
	cloud := remote.New(d.cfg.Cloud.URL, creds.Token, d.logger)

	rollover := vacation.NewRolloverEngine(cloud, d.logger)
	rollover.Now = d.now

	s := vacation.NewSession(ctx, vacation.SessionConfig{
		Local:           vacation.NewLocalStore(d.kv),
		Flags:           d.flags(),
		Cloud:           cloud,
		Rollover:        rollover,
		RemoteTimeout:   d.cfg.Sync.GetRemoteTimeout(),
		DebounceWait:    d.cfg.Sync.GetDebounceWait(),
		DebounceMaxWait: d.cfg.Sync.GetDebounceMaxWait(),
		Logger:          d.logger,
	}, year)
	return s, creds, signedIn
}

// openSession opens a session on year and signs in when credentials exist.
// An unresolved migration conflict clears the migration flag so the next
// sync offers it again; with strict it is an error, otherwise the device
// record stays in view.
func (d *device) openSession(ctx context.Context, year int, strict bool) (*vacation.Session, error) {
	s, creds, signedIn := d.session(ctx, year)
	if !signedIn {
		return s, nil
	}

	result, err := s.SignIn(ctx, creds.User)
	if err != nil {
		s.Close()
		return nil, err
	}
	switch r := result.(type) {
	case vacation.Conflict:
		if err := d.flags().Clear(ctx, creds.User); err != nil {
			d.logger.Warn("clear migration flag", zap.String("user_id", creds.User), zap.Error(err))
		}
		if strict {
			s.Close()
			return nil, errUnresolvedConflict
		}
		d.logger.Warn("migration conflict pending, showing device record", zap.String("user_id", creds.User))
	case vacation.MigrationError:
		d.logger.Warn("migration failed", zap.String("user_id", creds.User), zap.String("error", r.Message))
	}
	return s, nil
}
