/*
migration.go - One-time local to cloud migration

PURPOSE:
  When a user signs in, the record kept on the device is compared with the
  cloud record for the viewed year.

RULES:
  1. Local record missing or empty         -> NoLocalData
  2. No cloud record                       -> copy local to cloud, Migrated
  3. Same date set and same entitlement    -> NoConflict
  4. Otherwise                             -> Conflict with the sorted union
  5. Any read/write failure                -> MigrationError (nothing changed)

RESOLUTION:
  merge       cloud entitlement, union of dates
  keep-cloud  the cloud record as is
  keep-local  the device record
*/
package vacation

import (
	"context"
	"encoding/json"
	"fmt"
)

// =============================================================================
// RESULT - sealed sum type
// =============================================================================

// MigrationStatus is the wire name of a MigrationResult variant.
type MigrationStatus string

const (
	StatusNoLocalData MigrationStatus = "no-local-data"
	StatusMigrated    MigrationStatus = "migrated"
	StatusNoConflict  MigrationStatus = "no-conflict"
	StatusConflict    MigrationStatus = "conflict"
	StatusError       MigrationStatus = "error"
)

// MigrationResult is one of NoLocalData, Migrated, NoConflict, Conflict or
// MigrationError. Use a type switch to handle it.
type MigrationResult interface {
	Status() MigrationStatus
	migrationResult()
}

type (
	NoLocalData struct{}
	Migrated    struct{}
	NoConflict  struct{}

	// Conflict needs an explicit Resolve.
	Conflict struct {
		Local       Data     `json:"localData"`
		Cloud       Data     `json:"cloudData"`
		MergedDates []string `json:"mergedDates"`
	}

	// MigrationError leaves both records untouched.
	MigrationError struct {
		Message string `json:"message"`
	}
)

func (NoLocalData) Status() MigrationStatus    { return StatusNoLocalData }
func (Migrated) Status() MigrationStatus       { return StatusMigrated }
func (NoConflict) Status() MigrationStatus     { return StatusNoConflict }
func (Conflict) Status() MigrationStatus       { return StatusConflict }
func (MigrationError) Status() MigrationStatus { return StatusError }

func (NoLocalData) migrationResult()    {}
func (Migrated) migrationResult()       {}
func (NoConflict) migrationResult()     {}
func (Conflict) migrationResult()       {}
func (MigrationError) migrationResult() {}

func (r NoLocalData) MarshalJSON() ([]byte, error) { return statusOnly(r) }
func (r Migrated) MarshalJSON() ([]byte, error)    { return statusOnly(r) }
func (r NoConflict) MarshalJSON() ([]byte, error)  { return statusOnly(r) }

func (r Conflict) MarshalJSON() ([]byte, error) {
	type plain Conflict
	return json.Marshal(struct {
		Status MigrationStatus `json:"status"`
		plain
	}{r.Status(), plain(r)})
}

func (r MigrationError) MarshalJSON() ([]byte, error) {
	type plain MigrationError
	return json.Marshal(struct {
		Status MigrationStatus `json:"status"`
		plain
	}{r.Status(), plain(r)})
}

func statusOnly(r MigrationResult) ([]byte, error) {
	return json.Marshal(struct {
		Status MigrationStatus `json:"status"`
	}{r.Status()})
}

// =============================================================================
// MIGRATE
// =============================================================================

// Migrate compares the device record with the user's cloud record for year.
func Migrate(ctx context.Context, local *LocalStore, cloud RecordStore, userID string, year int) MigrationResult {
	localData, ok, err := local.Load(ctx)
	if err != nil {
		return MigrationError{Message: err.Error()}
	}
	if !ok || localData.Used() == 0 {
		return NoLocalData{}
	}

	cloudData, err := cloud.LoadYear(ctx, userID, year)
	if err != nil {
		return MigrationError{Message: fmt.Sprintf("load cloud record: %v", err)}
	}
	if cloudData == nil {
		if err := cloud.SaveYear(ctx, userID, year, localData); err != nil {
			return MigrationError{Message: fmt.Sprintf("save cloud record: %v", err)}
		}
		return Migrated{}
	}

	cloudNorm := Normalize(*cloudData)
	if Equal(localData, cloudNorm) {
		return NoConflict{}
	}
	return Conflict{Local: localData, Cloud: cloudNorm, MergedDates: MergeDates(localData, cloudNorm)}
}

// =============================================================================
// RESOLUTION
// =============================================================================

// Resolution picks the winner of a Conflict.
type Resolution string

const (
	ResolveMerge     Resolution = "merge"
	ResolveKeepCloud Resolution = "keep-cloud"
	ResolveKeepLocal Resolution = "keep-local"
)

// ParseResolution accepts the canonical names plus "cloud" and "local".
func ParseResolution(s string) (Resolution, error) {
	switch s {
	case "merge":
		return ResolveMerge, nil
	case "keep-cloud", "cloud":
		return ResolveKeepCloud, nil
	case "keep-local", "local":
		return ResolveKeepLocal, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownResolution, s)
}

// Resolve returns the record to keep.
func (c Conflict) Resolve(r Resolution) (Data, error) {
	switch r {
	case ResolveMerge:
		return Data{Version: SchemaVersion, TotalDays: c.Cloud.TotalDays, VacationDates: append([]string(nil), c.MergedDates...)}, nil
	case ResolveKeepCloud:
		return c.Cloud, nil
	case ResolveKeepLocal:
		return c.Local, nil
	}
	return Data{}, fmt.Errorf("%w: %q", ErrUnknownResolution, r)
}
