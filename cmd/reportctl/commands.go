package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	appreport "github.com/facultymis/backend/internal/application/report"
	"github.com/facultymis/backend/internal/infrastructure/auth"
	"github.com/facultymis/backend/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "List report entities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withSession(cmd, func(_ context.Context, s *session) error {
			return printEntities(cmd.OutOrStdout(), s.service.ListEntities())
		})
	},
}

func printEntities(out io.Writer, entities []appreport.EntityResponse) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tGROUP\tCOLUMNS\tFILTER")
	for _, e := range entities {
		filter := "-"
		switch {
		case e.HasDate:
			filter = "date"
		case e.HasYear:
			filter = "year"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", e.ID, e.DisplayName, e.Group, e.ColumnCount, filter)
	}
	return w.Flush()
}

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List the units the caller may report on",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			units, err := s.service.ListUnits(ctx, caller())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tTITLE")
			for _, u := range units {
				fmt.Fprintf(w, "%s\t%s\n", u.Code, u.Title)
			}
			return w.Flush()
		})
	},
}

// exportOptions are the flags of the export command
type exportOptions struct {
	entity   string
	units    []string
	columns  []string
	search   string
	from     string
	to       string
	yearFrom int
	yearTo   int
	facet    string
	format   string
	out      string
}

var exportOpts exportOptions

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a filtered entity as CSV or PDF",
	Long: `Export fetches one entity for the selected units, applies the filter and writes
the result. Dates use the 2006-01-02 layout and each range needs both ends.

Examples:
  reportctl export --entity fac_teach --units ALL --from 2020-01-01 --to 2021-12-31
  reportctl export --entity fac_patent --units CS,EC --year-from 2018 --year-to 2024 --out -`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		req := appreport.ExportEntityRequest{
			Entity:  exportOpts.entity,
			Units:   exportOpts.units,
			Columns: exportOpts.columns,
			Format:  exportOpts.format,
			Filter: appreport.FilterInput{
				Search: exportOpts.search,
				From:   exportOpts.from,
				To:     exportOpts.to,
				Facet:  exportOpts.facet,
			},
		}
		if cmd.Flags().Changed("year-from") {
			req.Filter.YearFrom = &exportOpts.yearFrom
		}
		if cmd.Flags().Changed("year-to") {
			req.Filter.YearTo = &exportOpts.yearTo
		}

		return withSession(cmd, func(ctx context.Context, s *session) error {
			exp, err := s.service.ExportEntity(ctx, caller(), req)
			if err != nil {
				return err
			}
			if exportOpts.out == "-" {
				_, err := cmd.OutOrStdout().Write(exp.Content)
				return err
			}
			path := exportOpts.out
			if path == "" {
				path = exp.Filename
			} else if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, exp.Filename)
			}
			if err := os.WriteFile(path, exp.Content, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", exp.RowCount, path)
			return nil
		})
	},
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportOpts.entity, "entity", "", "entity id (see reportctl entities)")
	f.StringSliceVar(&exportOpts.units, "units", nil, "unit codes, or ALL")
	f.StringSliceVar(&exportOpts.columns, "columns", nil, "column keys; default is every column")
	f.StringVar(&exportOpts.search, "search", "", "case-insensitive text search")
	f.StringVar(&exportOpts.from, "from", "", "start date, inclusive")
	f.StringVar(&exportOpts.to, "to", "", "end date, inclusive")
	f.IntVar(&exportOpts.yearFrom, "year-from", 0, "first year, inclusive")
	f.IntVar(&exportOpts.yearTo, "year-to", 0, "last year, inclusive")
	f.StringVar(&exportOpts.facet, "facet", "", "facet value, e.g. a conference type")
	f.StringVar(&exportOpts.format, "format", appreport.FormatCSV, "csv or pdf")
	f.StringVarP(&exportOpts.out, "out", "o", "", "output file or directory; - for stdout")
	_ = exportCmd.MarkFlagRequired("entity")
}

var summaryUnits []string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Count rows per entity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			sum, err := s.service.Summary(ctx, caller(), summaryUnits)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "ENTITY\tROWS\t(scope %s)\n", sum.Scope)
			for _, e := range sum.Entities {
				rows := fmt.Sprint(e.Rows)
				if e.Error != "" {
					rows = "error: " + e.Error
				}
				fmt.Fprintf(w, "%s\t%s\n", e.Entity, rows)
			}
			fmt.Fprintf(w, "TOTAL\t%d\n", sum.Total)
			return w.Flush()
		})
	},
}

func init() {
	summaryCmd.Flags().StringSliceVar(&summaryUnits, "units", []string{"ALL"}, "unit codes, or ALL")
}

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development access token for the HTTP API",
	Long: `Token signs an access token with the configured JWT secret for the caller given by
--user, --role and --department. It never contacts the records backend.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		jwtCfg := cfg.JWT
		if tokenTTL > 0 {
			jwtCfg.AccessTokenExpiration = tokenTTL
		}
		tok, err := auth.NewJWTService(jwtCfg).GenerateAccessToken(auth.GenerateTokenInput{
			UserID:     flagUser,
			Username:   flagUser,
			Role:       strings.ToLower(flagRole),
			Department: flagDepartment,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok.AccessToken)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", tok.ExpiresAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime; default is jwt.access_token_expiration")
}
