/*
Package postgres provides a GORM/Postgres implementation of vacation.RecordStore.

KEY TABLES:
  vacation_data: id (uuid), user_id, year, total_days, vacation_dates (TEXT[]),
                 unique (user_id, year)

Dates live in a native TEXT[] column through lib/pq's StringArray. The schema
carries no version column; loaded records are always SchemaVersion.

USAGE:
  store, err := postgres.Open(dsn)
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
*/
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pochivni/planner/vacation"
)

// VacationRecord is the row model.
type VacationRecord struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserID        string         `gorm:"not null;size:128;uniqueIndex:idx_vacation_data_user_year"`
	Year          int            `gorm:"not null;uniqueIndex:idx_vacation_data_user_year"`
	TotalDays     int            `gorm:"not null;default:20"`
	VacationDates pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (VacationRecord) TableName() string { return "vacation_data" }

// BeforeCreate assigns the row id.
func (r *VacationRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ToData converts a row to a record.
func (r VacationRecord) ToData() vacation.Data {
	return vacation.Normalize(vacation.Data{
		Version:       vacation.SchemaVersion,
		TotalDays:     r.TotalDays,
		VacationDates: []string(r.VacationDates),
	})
}

// FromData builds the row for (userID, year).
func FromData(userID string, year int, d vacation.Data) VacationRecord {
	d = vacation.Normalize(d)
	return VacationRecord{
		UserID:        userID,
		Year:          year,
		TotalDays:     d.TotalDays,
		VacationDates: pq.StringArray(d.VacationDates),
	}
}

// =============================================================================
// STORE
// =============================================================================

// Store implements vacation.RecordStore.
type Store struct {
	db *gorm.DB
}

// Open connects to dsn and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(gormpg.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return New(db)
}

// New wraps an open connection and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&VacationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// LoadYear returns the user's record for year, nil if none.
func (s *Store) LoadYear(ctx context.Context, userID string, year int) (*vacation.Data, error) {
	var rec VacationRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND year = ?", userID, year).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d := rec.ToData()
	return &d, nil
}

// SaveYear upserts on (user_id, year).
func (s *Store) SaveYear(ctx context.Context, userID string, year int, data vacation.Data) error {
	rec := FromData(userID, year, data)
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "year"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_days", "vacation_dates", "updated_at"}),
		}).
		Create(&rec).Error
}
