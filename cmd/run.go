package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/fbz-tec/vexport/core/action"
	"github.com/fbz-tec/vexport/core/export"
	"github.com/fbz-tec/vexport/internal/logger"
	"github.com/fbz-tec/vexport/internal/ui"
	"github.com/fbz-tec/vexport/internal/version"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the export",
	Example: `  # Export with inline query
  vexport run --dsn jdbc:vertica://vertica:5433/sales -u dbadmin -p secret \
    -s "SELECT * FROM orders" -o /data/orders.csv

  # Export to HDFS with a pipe delimiter and zstd compression
  vexport run -c export.yaml -o hdfs://namenode:8020/exports/orders.csv.zst -D "|" -z zstd

  # Resolve macros used in the configuration file
  vexport run -c export.yaml -m day=2024-03-15`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	logger.Debug("Version: %s, Build: %s, Commit: %s", version.AppVersion, version.BuildTime, version.GitCommit)

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	for _, line := range describeConfig(cfg) {
		logger.Debug("  %s", line)
	}

	stage := action.NewStageContext(export.StageName)
	action.New(cfg).ConfigurePipeline(stage)
	if err := stage.FailureCollector().GetOrThrow(); err != nil {
		return err
	}

	cfg, err = resolveMacros(cfg)
	if err != nil {
		return err
	}

	runner := export.NewRunner()
	var bar *ui.RowProgress
	if progress && !logger.IsQuiet() {
		bar = ui.NewRowProgress(os.Stderr)
		runner.Progress = bar.Row
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := action.New(cfg, action.WithRunner(runner)).Run(ctx, action.NewStageContext(export.StageName))
	bar.Finish()
	if err != nil {
		return err
	}

	if res.Rows == 0 {
		logger.Warn("Query returned 0 rows. File created at %s but contains only the header", res.Path)
	}
	return nil
}

func init() {
	runCmd.Flags().BoolVar(&progress, "progress", false, "Show a row counter while exporting")
}
