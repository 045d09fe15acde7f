/*
Command planner is the Bulgarian holiday calendar and vacation planner.

COMMANDS:
  serve        HTTP API (holidays, bridges, school breaks, cloud records)
  holidays     public holidays of a year
  bridges      suggested bridge days of a year
  school       merged school breaks of a year
  grid         one month, classified day by day
  mark         toggle vacation days
  range        mark every day of a date range
  entitlement  set the yearly entitlement
  summary      entitlement, carryover and usage
  sync         sign in to the cloud and reconcile the device record
  signout      forget the cloud credentials
  token        issue an access token (needs auth.jwt_secret)

CONFIGURATION:
  See package config. --config points at an explicit file.

SEE ALSO:
  - api/server.go: routes served by planner serve
  - vacation/session.go: the device/cloud reconciler behind mark, range and sync
*/
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pochivni/planner/calendar"
	"github.com/pochivni/planner/config"
)

// app carries what every command needs after PersistentPreRunE.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
	now        func() time.Time
}

func (a *app) today() calendar.Date { return calendar.TodayAt(a.now()) }

// year resolves a --year flag; zero means the current year.
func (a *app) year(flag int) (int, error) {
	if flag == 0 {
		return a.now().Year(), nil
	}
	if flag < 1 || flag > 9999 {
		return 0, fmt.Errorf("invalid year %d", flag)
	}
	return flag, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:           "planner",
		Short:         "Bulgarian holiday calendar and vacation planner",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := newLogger(cfg.Log)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: ./config.yaml, $HOME/.pochivni/config.yaml)")

	root.AddCommand(
		newServeCmd(a),
		newHolidaysCmd(a),
		newBridgesCmd(a),
		newSchoolCmd(a),
		newGridCmd(a),
		newMarkCmd(a),
		newRangeCmd(a),
		newEntitlementCmd(a),
		newSummaryCmd(a),
		newSyncCmd(a),
		newSignOutCmd(a),
		newTokenCmd(a),
	)
	return root
}
