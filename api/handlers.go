/*
handlers.go - HTTP API handlers for the holiday calendar and vacation records

PURPOSE:
  Exposes the calendar computations and the per-year vacation records via a
  REST API. Handles HTTP request/response, JSON serialization, and delegates
  to the calendar, holidays and vacation packages.

ENDPOINTS:
  Calendar (public):
    GET    /api/health                      Liveness + storage ping
    GET    /api/holidays/{year}             Public holidays
    GET    /api/bridges/{year}?strategy=    Suggested bridge days
    GET    /api/school-holidays/{year}      Merged school breaks + highlighted weekdays
    GET    /api/calendar/{year}/{month}     Month grid with classified days (month is 1-12)

  Records (bearer token):
    GET    /api/records/{year}              The user's record, 404 if none
    PUT    /api/records/{year}              Upsert the user's record
    GET    /api/rollover/{year}             Carryover from the two previous years
    GET    /api/summary/{year}              Entitlement, rollover, used, remaining

REQUEST FLOW:
  1. Parse path parameters (year 1-9999, month 1-12)
  2. Decode and validate the body (validator tags in dto.go)
  3. Call domain logic
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON ErrorResponse with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing or invalid token
  - 404: No record
  - 500: Storage failures

  Holiday provider failures never fail a request: the lists come back empty
  and the failure is logged.

SEE ALSO:
  - dto.go: Request/response data structures
  - auth.go: Token middleware
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pochivni/planner/calendar"
	"github.com/pochivni/planner/holidays"
	"github.com/pochivni/planner/vacation"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Planner  *holidays.Planner
	Records  vacation.RecordStore
	Rollover *vacation.RolloverEngine
	Logger   *zap.Logger
	Now      func() time.Time

	validate *validator.Validate
}

// NewHandler creates a new handler.
func NewHandler(planner *holidays.Planner, records vacation.RecordStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Planner:  planner,
		Records:  records,
		Rollover: vacation.NewRolloverEngine(records, logger),
		Logger:   logger,
		Now:      time.Now,
		validate: validator.New(),
	}
}

func (h *Handler) today() calendar.Date {
	return calendar.TodayAt(h.Now())
}

// =============================================================================
// HEALTH
// =============================================================================

type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports liveness. Storage is "ok", "down" or "n/a".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Storage: "n/a"}
	if p, ok := h.Records.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			h.Logger.Warn("Storage ping failed", zap.Error(err))
			resp.Storage = "down"
		} else {
			resp.Storage = "ok"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// ListHolidays returns the public holidays of a year.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year", err)
		return
	}

	writeJSON(w, http.StatusOK, HolidaysResponse{
		Year:     year,
		Holidays: h.Planner.Holidays(r.Context(), year),
	})
}

// ListBridges returns bridge-day suggestions for a year.
func (h *Handler) ListBridges(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year", err)
		return
	}

	strategy := r.URL.Query().Get("strategy")
	bridges, err := h.Planner.Bridges(r.Context(), year, strategy)
	if errors.Is(err, calendar.ErrUnknownStrategy) {
		writeError(w, http.StatusBadRequest, "unknown strategy", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to detect bridge days", err)
		return
	}

	if strategy == "" {
		strategy = "default"
	}
	writeJSON(w, http.StatusOK, BridgesResponse{Year: year, Strategy: strategy, Bridges: bridges})
}

// ListSchoolHolidays returns merged school breaks.
func (h *Handler) ListSchoolHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year", err)
		return
	}

	school := h.Planner.School(r.Context(), year)
	writeJSON(w, http.StatusOK, SchoolHolidaysResponse{
		Year:     year,
		Breaks:   school.Breaks,
		Weekdays: school.Weekdays.Strings(),
	})
}

// GetMonth returns the grid of one month. Authenticated callers also get
// their vacation days classified.
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year", err)
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid month", calendar.ErrInvalidMonth)
		return
	}

	var taken calendar.DateSet
	if user, ok := UserFromContext(r.Context()); ok {
		rec, err := h.Records.LoadYear(r.Context(), user, year)
		if err != nil {
			h.Logger.Warn("Failed to load record for month view",
				zap.String("user_id", user),
				zap.Int("year", year),
				zap.Error(err))
		} else if rec != nil {
			taken = rec.Dates()
		}
	}

	view, err := h.Planner.Month(r.Context(), year, time.Month(month), taken, h.today())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build month", err)
		return
	}

	writeJSON(w, http.StatusOK, MonthResponse{
		Year:           year,
		Month:          month,
		FirstDayOfWeek: view.Grid.FirstDayOfWeek,
		DaysInMonth:    view.Grid.DaysInMonth,
		Weeks:          view.Grid.Weeks(),
		Days:           view.Days,
		Bridges:        view.Bridges,
	})
}

// =============================================================================
// RECORD HANDLERS
// =============================================================================

// GetRecord returns the caller's record for a year.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	user, year, ok := h.userYear(w, r)
	if !ok {
		return
	}

	rec, err := h.Records.LoadYear(r.Context(), user, year)
	if err != nil {
		h.Logger.Error("Failed to load record",
			zap.String("user_id", user),
			zap.Int("year", year),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load record", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "no record", nil)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// PutRecord upserts the caller's record for a year.
func (h *Handler) PutRecord(w http.ResponseWriter, r *http.Request) {
	user, year, ok := h.userYear(w, r)
	if !ok {
		return
	}

	var req RecordRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid record", err)
		return
	}

	if err := h.Records.SaveYear(r.Context(), user, year, req.ToData()); err != nil {
		h.Logger.Error("Failed to save record",
			zap.String("user_id", user),
			zap.Int("year", year),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save record", err)
		return
	}

	h.Logger.Info("Record saved",
		zap.String("user_id", user),
		zap.Int("year", year),
		zap.Int("days", len(req.VacationDates)))
	w.WriteHeader(http.StatusNoContent)
}

// GetRollover returns the carryover into a year.
func (h *Handler) GetRollover(w http.ResponseWriter, r *http.Request) {
	user, year, ok := h.userYear(w, r)
	if !ok {
		return
	}

	rollover, err := h.rollover().Calculate(r.Context(), user, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to calculate rollover", err)
		return
	}

	writeJSON(w, http.StatusOK, RolloverResponse{Year: year, Rollover: rollover})
}

// GetSummary returns the vacation summary of a year. A missing record counts
// as the default entitlement with no days; an unavailable rollover as zero.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	user, year, ok := h.userYear(w, r)
	if !ok {
		return
	}

	rec, err := h.Records.LoadYear(r.Context(), user, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load record", err)
		return
	}
	data := vacation.Default()
	if rec != nil {
		data = *rec
	}

	rollover, _ := h.rollover().Calculate(r.Context(), user, year)

	writeJSON(w, http.StatusOK, SummaryResponse{Year: year, Summary: vacation.Summarize(data, rollover)})
}

// =============================================================================
// HELPERS
// =============================================================================

// rollover returns the engine with the handler's clock.
func (h *Handler) rollover() *vacation.RolloverEngine {
	e := *h.Rollover
	e.Now = h.Now
	return &e
}

func (h *Handler) userYear(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", nil)
		return "", 0, false
	}
	year, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year", err)
		return "", 0, false
	}
	return user, year, true
}

func yearParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "year")
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1 || year > 9999 {
		return 0, fmt.Errorf("year %q: must be 1-9999", raw)
	}
	return year, nil
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return h.validate.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
