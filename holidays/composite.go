package holidays

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pochivni/planner/calendar"
)

// Composite implements Source with a fallback strategy.
// Primary: usually the OpenHolidays API
// Fallback: usually the computed calendar
type Composite struct {
	primary  Source
	fallback Source
	logger   *zap.Logger
}

// NewComposite creates a Composite.
func NewComposite(primary, fallback Source, logger *zap.Logger) *Composite {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composite{primary: primary, fallback: fallback, logger: logger}
}

// Holidays tries the primary first. An error or an empty list falls back.
func (cs *Composite) Holidays(ctx context.Context, year int) ([]calendar.Holiday, error) {
	hs, err := cs.primary.Holidays(ctx, year)
	if err == nil && len(hs) > 0 {
		return hs, nil
	}

	cs.logger.Warn("Primary holiday source failed, falling back",
		zap.Int("year", year),
		zap.Bool("empty", err == nil),
		zap.Error(err))

	fb, fbErr := cs.fallback.Holidays(ctx, year)
	if fbErr != nil {
		return nil, bothFailed(err, fbErr)
	}
	return fb, nil
}

// SchoolHolidays tries the primary first. An error or an empty list falls back.
func (cs *Composite) SchoolHolidays(ctx context.Context, year int) ([]calendar.SchoolHoliday, error) {
	sh, err := cs.primary.SchoolHolidays(ctx, year)
	if err == nil && len(sh) > 0 {
		return sh, nil
	}

	cs.logger.Warn("Primary school holiday source failed, falling back",
		zap.Int("year", year),
		zap.Bool("empty", err == nil),
		zap.Error(err))

	fb, fbErr := cs.fallback.SchoolHolidays(ctx, year)
	if fbErr != nil {
		return nil, bothFailed(err, fbErr)
	}
	return fb, nil
}

func bothFailed(primary, fallback error) error {
	if primary == nil {
		return fallback
	}
	return fmt.Errorf("primary and fallback both failed: primary=%v, fallback=%w", primary, fallback)
}
