package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/georepute/visibility-cli/internal/model"
	"github.com/georepute/visibility-cli/internal/pipeline"
)

var (
	runAccount string
	runDomain  string
	runVariant string
	runInput   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a visibility report for a domain",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		typ := model.ReportType(runVariant)
		if !typ.Valid() {
			return eris.Errorf("invalid report variant %q (want %s or %s)", runVariant, model.ReportTypeGap, model.ReportTypeBlindSpot)
		}

		env, err := initPipeline(ctx, runInput)
		if err != nil {
			return err
		}
		defer env.Close()

		zap.L().Info("generating report",
			zap.String("account", runAccount),
			zap.String("domain", runDomain),
			zap.String("variant", runVariant),
			zap.Strings("engines", env.Registry.Keys()),
		)

		var report *model.Report
		switch typ {
		case model.ReportTypeBlindSpot:
			report, err = env.Pipeline.GenerateBlindSpotReport(ctx, runAccount, runDomain)
		default:
			report, err = env.Pipeline.GenerateGapReport(ctx, runAccount, runDomain)
		}
		if err != nil {
			if eris.Is(err, pipeline.ErrNotPersisted) && report != nil {
				zap.L().Warn("report generated but not persisted", zap.Error(err))
			} else {
				return err
			}
		}

		zap.L().Info("report complete",
			zap.String("domain", report.Domain),
			zap.Int("queries", report.Summary.TotalQueries),
			zap.Strings("engines_used", report.EnginesUsed),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	runCmd.Flags().StringVar(&runAccount, "account", "", "account identifier")
	runCmd.Flags().StringVar(&runDomain, "domain", "", "domain to analyze (e.g. example.com)")
	runCmd.Flags().StringVar(&runVariant, "variant", string(model.ReportTypeGap), "report variant: gap or blindspot")
	runCmd.Flags().StringVar(&runInput, "input", "", "optional CSV of performance rows instead of Search Console")
	runCmd.MarkFlagRequired("account")
	runCmd.MarkFlagRequired("domain")
	rootCmd.AddCommand(runCmd)
}
