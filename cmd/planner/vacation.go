package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pochivni/planner/api"
	"github.com/pochivni/planner/calendar"
	"github.com/pochivni/planner/vacation"
)

// withSession runs fn on a session over year and flushes pending writes after.
func (a *app) withSession(ctx context.Context, year int, fn func(*vacation.Session) error) error {
	dev, err := openDevice(a.cfg, a.logger, a.now)
	if err != nil {
		return err
	}
	defer dev.Close()

	s, err := dev.openSession(ctx, year, true)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// parseDays parses dates that must all fall in one year.
func parseDays(args []string) ([]calendar.Date, int, error) {
	days := make([]calendar.Date, 0, len(args))
	year := 0
	for _, arg := range args {
		d, err := calendar.ParseStrict(arg)
		if err != nil {
			return nil, 0, err
		}
		if year != 0 && d.Year() != year {
			return nil, 0, fmt.Errorf("dates span %d and %d; mark one year at a time", year, d.Year())
		}
		year = d.Year()
		days = append(days, d)
	}
	return days, year, nil
}

func printSummary(w io.Writer, year int, s vacation.Summary) {
	fmt.Fprintf(w, "%d: %d/%d дни използвани (%d%%), остават %d\n",
		year, s.Used, s.EffectiveTotal, s.PercentUsed, s.Remaining)
	if s.Rollover > 0 {
		fmt.Fprintf(w, "  полагаем %d + прехвърлени %d\n", s.Entitlement, s.Rollover)
	}
}

// =============================================================================
// EDITING
// =============================================================================

func newMarkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mark DATE...",
		Short: "Toggle vacation days (YYYY-MM-DD)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, year, err := parseDays(args)
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), year, func(s *vacation.Session) error {
				for _, d := range days {
					if _, err := s.Toggle(cmd.Context(), d); err != nil {
						return err
					}
				}
				printSummary(cmd.OutOrStdout(), year, s.Summary())
				return nil
			})
		},
	}
}

func newRangeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "range FROM TO",
		Short: "Mark every day between two dates, in either order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, year, err := parseDays(args)
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), year, func(s *vacation.Session) error {
				if _, err := s.ApplyRange(cmd.Context(), days[0], days[1]); err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), year, s.Summary())
				return nil
			})
		},
	}
}

func newEntitlementCmd(a *app) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "entitlement DAYS",
		Short: "Set the yearly vacation entitlement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid entitlement %q", args[0])
			}
			y, err := a.year(year)
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), y, func(s *vacation.Session) error {
				if _, err := s.SetEntitlement(cmd.Context(), total); err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), y, s.Summary())
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default: current)")
	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	var year int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show entitlement, carryover and usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			y, err := a.year(year)
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), y, func(s *vacation.Session) error {
				if asJSON {
					return printJSON(cmd.OutOrStdout(), api.SummaryResponse{Year: y, Summary: s.Summary()})
				}
				w := cmd.OutOrStdout()
				printSummary(w, y, s.Summary())
				if r := s.Rollover(); r != nil {
					for _, b := range r.Buckets {
						status := "валидни до " + b.ExpiresAt.String()
						if b.IsExpired {
							status = "изтекли на " + b.ExpiresAt.String()
						}
						fmt.Fprintf(w, "  от %d: %d дни, %s\n", b.Year, b.RolloverDays, status)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default: current)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// =============================================================================
// ACCOUNT
// =============================================================================

func newSyncCmd(a *app) *cobra.Command {
	var year int
	var resolve string
	var force bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sign in and reconcile the device record with the cloud",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			y, err := a.year(year)
			if err != nil {
				return err
			}
			var res vacation.Resolution
			if resolve != "" {
				if res, err = vacation.ParseResolution(resolve); err != nil {
					return err
				}
			}

			dev, err := openDevice(a.cfg, a.logger, a.now)
			if err != nil {
				return err
			}
			defer dev.Close()

			s, creds, signedIn := dev.session(ctx, y)
			defer s.Close()
			if !signedIn {
				return fmt.Errorf("%w: run planner token --user NAME --save or set cloud.user and cloud.token", vacation.ErrNotAuthenticated)
			}
			if force {
				if err := dev.flags().Clear(ctx, creds.User); err != nil {
					return err
				}
			}

			result, err := s.SignIn(ctx, creds.User)
			if err != nil {
				return err
			}
			return reportSync(cmd, dev, s, creds.User, result, res)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default: current)")
	cmd.Flags().StringVar(&resolve, "resolve", "", "settle a conflict: merge, keep-cloud or keep-local")
	cmd.Flags().BoolVar(&force, "force", false, "reconcile again even if this device already did")
	return cmd
}

func reportSync(cmd *cobra.Command, dev *device, s *vacation.Session, user string, result vacation.MigrationResult, res vacation.Resolution) error {
	ctx, w := cmd.Context(), cmd.OutOrStdout()
	if result == nil {
		fmt.Fprintf(w, "%s: %s\n", user, s.State())
		printSummary(w, s.Year(), s.Summary())
		return nil
	}

	fmt.Fprintf(w, "%s: %s\n", user, result.Status())
	switch r := result.(type) {
	case vacation.Conflict:
		if res == "" {
			fmt.Fprintf(w, "  на устройството: %d дни от %d\n", r.Local.Used(), r.Local.TotalDays)
			fmt.Fprintf(w, "  в облака:        %d дни от %d\n", r.Cloud.Used(), r.Cloud.TotalDays)
			fmt.Fprintf(w, "  обединени:       %d дни\n", len(r.MergedDates))
			if err := dev.flags().Clear(ctx, user); err != nil {
				return err
			}
			return errUnresolvedConflict
		}
		if _, err := s.Resolve(ctx, res); err != nil {
			if err := dev.flags().Clear(ctx, user); err != nil {
				dev.logger.Warn("clear migration flag", zap.String("user_id", user), zap.Error(err))
			}
			return err
		}
		fmt.Fprintf(w, "%s: %s\n", user, res)
	case vacation.MigrationError:
		return errors.New(r.Message)
	}
	printSummary(w, s.Year(), s.Summary())
	return nil
}

func newSignOutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget the cloud credentials of this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dev, err := openDevice(a.cfg, a.logger, a.now)
			if err != nil {
				return err
			}
			defer dev.Close()

			creds, _ := dev.credentials(ctx)
			if creds.User != "" {
				if err := dev.flags().Clear(ctx, creds.User); err != nil {
					return err
				}
			}
			if err := dev.clearCredentials(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func newTokenCmd(a *app) *cobra.Command {
	var user string
	var save bool
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for planner serve",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return errors.New("--user is required")
			}
			if err := a.cfg.ValidateServer(); err != nil {
				return err
			}
			auth := api.NewAuthenticator(a.cfg.Auth.JWTSecret, a.cfg.Auth.GetTokenTTL())
			token, err := auth.GenerateToken(user)
			if err != nil {
				return err
			}

			if save {
				dev, err := openDevice(a.cfg, a.logger, a.now)
				if err != nil {
					return err
				}
				defer dev.Close()
				if err := dev.saveCredentials(cmd.Context(), credentials{User: user, Token: token}); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id (token subject)")
	cmd.Flags().BoolVar(&save, "save", false, "store the token as this device's credentials")
	return cmd
}
