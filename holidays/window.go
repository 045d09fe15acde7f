package holidays

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pochivni/planner/calendar"
)

// Window returns the holidays of year-1, year and year+1, sorted by date.
// A year that cannot be fetched contributes nothing and is logged; only a
// cancelled context is an error, and it stops the other fetches.
func Window(ctx context.Context, src Source, year int, logger *zap.Logger) ([]calendar.Holiday, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var parts [3][]calendar.Holiday
	g, gctx := errgroup.WithContext(ctx)
	for i := range parts {
		i := i
		y := year - 1 + i
		g.Go(func() error {
			hs, err := src.Holidays(gctx, y)
			if err != nil {
				if cerr := gctx.Err(); cerr != nil {
					return cerr
				}
				logger.Warn("Holidays unavailable for year",
					zap.Int("year", y),
					zap.Error(err))
				return nil
			}
			parts[i] = hs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []calendar.Holiday
	for _, p := range parts {
		out = append(out, p...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
