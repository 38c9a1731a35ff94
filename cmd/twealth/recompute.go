package main

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/twealth/twealth/internal/recompute"
	"github.com/twealth/twealth/internal/store"
	"github.com/twealth/twealth/pkg/config"
	"github.com/twealth/twealth/pkg/finance"
	"github.com/twealth/twealth/pkg/scoring"
	"github.com/twealth/twealth/pkg/surface"
)

func newRecomputeCmd() *cobra.Command {
	var (
		userID     string
		monthStr   string
		allUsers   bool
		configPath string
		outputFmt  string
	)

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute rollup and scores against the database",
		Long: `Runs the full pipeline for one user-month (or every user with --all)
against the database at DATABASE_URL and renders the resulting snapshot.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !allUsers && userID == "" {
				return fmt.Errorf("either --user or --all is required")
			}

			_ = godotenv.Load()
			dbURL := os.Getenv("DATABASE_URL")
			if dbURL == "" {
				return fmt.Errorf("DATABASE_URL is not set")
			}

			var month time.Time
			if monthStr != "" {
				t, err := time.Parse("2006-01", monthStr)
				if err != nil {
					return fmt.Errorf("invalid month %q, want YYYY-MM", monthStr)
				}
				month = t
			}

			db, err := sql.Open("postgres", dbURL)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()
			if err := db.Ping(); err != nil {
				return fmt.Errorf("pinging database: %w", err)
			}

			cfgPath := configPath
			if cfgPath == "" {
				wd, _ := os.Getwd()
				cfgPath = config.FindConfigFile(wd)
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			engine, err := scoring.NewEngine(scoring.DefaultPillars(), cfg.Scoring.Weights)
			if err != nil {
				return err
			}

			svc := recompute.NewService(store.NewService(db), engine, cfg.Classification, nil)
			ctx := cmd.Context()

			if allUsers {
				if month.IsZero() {
					month = finance.TruncateMonth(time.Now().UTC())
				}
				completed, failed, err := svc.RecomputeAll(ctx, month)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "%s: %d completed, %d failed\n",
					month.Format("2006-01"), completed, failed)
				return nil
			}

			snap, err := svc.Recompute(ctx, userID, month)
			if err != nil {
				return err
			}

			switch outputFmt {
			case "json":
				renderer := &surface.JSONRenderer{}
				return renderer.Render(os.Stdout, snap)
			default:
				renderer := &surface.TerminalRenderer{}
				return renderer.Render(os.Stdout, snap)
			}
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID to recompute")
	cmd.Flags().StringVar(&monthStr, "month", "", "Target month, YYYY-MM (default: current month)")
	cmd.Flags().BoolVar(&allUsers, "all", false, "Recompute every known user")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: detect .twealth/config.yaml)")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")

	return cmd
}
