// Command reportctl reads and exports faculty reports from the command line
package main

import (
	"context"
	"fmt"
	"os"

	appreport "github.com/facultymis/backend/internal/application/report"
	"github.com/facultymis/backend/internal/domain/report"
	"github.com/facultymis/backend/internal/infrastructure/config"
	"github.com/facultymis/backend/internal/infrastructure/logger"
	"github.com/facultymis/backend/internal/infrastructure/persistence"
	"github.com/facultymis/backend/internal/infrastructure/source"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// globals bound to the root command's persistent flags
var (
	flagRole       string
	flagDepartment string
	flagUser       string
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "reportctl",
	Short: "Faculty MIS report tool",
	Long: `reportctl lists report entities and units, exports filtered reports as CSV and
mints development tokens for the HTTP API.

Configuration is read from config.toml and FMIS_* environment variables, the same
way the server reads it.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRole, "role", string(report.RoleAdmin), "caller role: admin, principal, hod, faculty")
	rootCmd.PersistentFlags().StringVar(&flagDepartment, "department", "", "caller department, required for hod and faculty")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "reportctl", "caller user id")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(entitiesCmd, unitsCmd, exportCmd, summaryCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// caller is the identity commands act as
func caller() report.Caller {
	return report.Caller{
		UserID:     flagUser,
		Role:       report.ParseRole(flagRole),
		Department: flagDepartment,
	}
}

// session is a report service wired from configuration, plus its cleanup
type session struct {
	cfg     *config.Config
	log     *zap.Logger
	service *appreport.ReportService
	close   func()
}

func newLogger() (*zap.Logger, error) {
	level := "warn"
	if flagVerbose {
		level = "debug"
	}
	return logger.New(&logger.Config{Level: level, Format: "console", Output: "stderr"})
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	log, err := newLogger()
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, log: log, close: func() { _ = log.Sync() }}
	deps := appreport.ServiceDeps{
		Registry: report.DefaultRegistry(),
		Export: report.ExportOptions{
			IncludeBOM: cfg.Export.IncludeBOM,
			DateSuffix: cfg.Export.DateSuffix,
		},
		Logger: log,
	}

	switch cfg.Source.Mode {
	case config.SourceModeDatabase:
		db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{Logger: log, LogLevel: "silent"})
		if err != nil {
			return nil, fmt.Errorf("records database: %w", err)
		}
		store := persistence.NewRecordStore(db.DB)
		deps.Source, deps.Units = store, store
		s.close = func() {
			_ = db.Close()
			_ = log.Sync()
		}
	default:
		src, err := source.NewHTTPSource(cfg.Source, log)
		if err != nil {
			return nil, fmt.Errorf("records API: %w", err)
		}
		deps.Source, deps.Units = src, src
	}

	s.service = appreport.NewReportService(deps)
	return s, nil
}

// withSession runs fn with a configured session and closes it afterwards
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(ctx, s)
}
