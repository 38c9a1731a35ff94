package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/twealth/twealth/pkg/config"
	"github.com/twealth/twealth/pkg/finance"
	"github.com/twealth/twealth/pkg/rollup"
	"github.com/twealth/twealth/pkg/scoring"
	"github.com/twealth/twealth/pkg/surface"
)

// scoreInput is the offline input bundle: raw records for one user.
type scoreInput struct {
	Transactions []finance.Transaction `json:"transactions"`
	Debts        []finance.Debt        `json:"debts"`
	Profile      *finance.Profile      `json:"profile"`
}

func newScoreCmd() *cobra.Command {
	var (
		inputPath  string
		monthStr   string
		configPath string
		outputFmt  string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a user's financial health from a local data file",
		Long: `Reads a JSON bundle of transactions, debts, and profile, rolls up the
trailing six months, scores all four pillars, and renders the result.
No database required.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(scoreOpts{
				inputPath:  inputPath,
				monthStr:   monthStr,
				configPath: configPath,
				outputFmt:  outputFmt,
			})
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Path to JSON data bundle (required)")
	cmd.Flags().StringVar(&monthStr, "month", "", "Target month, YYYY-MM (default: current month)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: detect .twealth/config.yaml)")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

type scoreOpts struct {
	inputPath  string
	monthStr   string
	configPath string
	outputFmt  string
}

func runScore(opts scoreOpts) error {
	data, err := os.ReadFile(opts.inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	var input scoreInput
	if err := json.Unmarshal(data, &input); err != nil {
		return fmt.Errorf("parsing input: %w", err)
	}

	month := time.Now().UTC()
	if opts.monthStr != "" {
		month, err = time.Parse("2006-01", opts.monthStr)
		if err != nil {
			return fmt.Errorf("invalid month %q, want YYYY-MM", opts.monthStr)
		}
	}
	month = finance.TruncateMonth(month)

	cfgPath := opts.configPath
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

	// Roll up the trailing window, most recent month first, skipping
	// months with no activity so the confidence estimate reflects the
	// data that actually exists.
	defaults := scoring.Defaults()
	fmt.Fprintf(os.Stderr, "Step 1/2: Rolling up %d months ending %s...\n",
		defaults.HistoryMonths, month.Format("2006-01"))

	var history []finance.MonthlyFinancials
	for i := 0; i < defaults.HistoryMonths; i++ {
		m := month.AddDate(0, -i, 0)
		mf, err := rollup.BuildMonth("local", m, input.Transactions, input.Debts, input.Profile, cfg.Classification)
		if err != nil {
			return fmt.Errorf("rollup %s: %w", m.Format("2006-01"), err)
		}
		if mf.TransactionCount == 0 {
			continue
		}
		history = append(history, mf)
	}
	fmt.Fprintf(os.Stderr, "  %d months with activity\n", len(history))

	fmt.Fprintf(os.Stderr, "Step 2/2: Scoring...\n")
	snap := engine.Score(history)
	snap.UserID = "local"
	snap.Month = month

	switch opts.outputFmt {
	case "json":
		renderer := &surface.JSONRenderer{}
		return renderer.Render(os.Stdout, snap)
	default:
		renderer := &surface.TerminalRenderer{}
		return renderer.Render(os.Stdout, snap)
	}
}
