package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/georepute/visibility-cli/internal/model"
)

var (
	reportAccount string
	reportDomain  string
	reportVariant string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the last persisted report without recomputation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		typ := model.ReportType(reportVariant)
		if !typ.Valid() {
			return eris.Errorf("invalid report variant %q (want %s or %s)", reportVariant, model.ReportTypeGap, model.ReportTypeBlindSpot)
		}

		env, err := initPipeline(ctx, "")
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.Pipeline.LastReport(ctx, reportAccount, reportDomain, typ)
		if err != nil {
			return err
		}
		if report == nil {
			return eris.Errorf("no %s report stored for %s/%s", reportVariant, reportAccount, reportDomain)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportAccount, "account", "", "account identifier")
	reportCmd.Flags().StringVar(&reportDomain, "domain", "", "domain the report was generated for")
	reportCmd.Flags().StringVar(&reportVariant, "variant", string(model.ReportTypeGap), "report variant: gap or blindspot")
	reportCmd.MarkFlagRequired("account")
	reportCmd.MarkFlagRequired("domain")
	rootCmd.AddCommand(reportCmd)
}
