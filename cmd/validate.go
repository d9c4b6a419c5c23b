package cmd

import (
	"fmt"

	"github.com/fbz-tec/vexport/core/action"
	"github.com/fbz-tec/vexport/core/export"
	"github.com/fbz-tec/vexport/internal/logger"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration without connecting",
	Long: `Runs the definition-time checks only. Properties that still contain
${...} macros are not checked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig()
		if err != nil {
			return err
		}
		for _, line := range describeConfig(cfg) {
			logger.Debug("  %s", line)
		}

		stage := action.NewStageContext(export.StageName)
		action.New(cfg).ConfigurePipeline(stage)

		lines := failureReport(stage)
		for _, line := range lines {
			logger.Error("%s", line)
		}
		if n := len(stage.Failures()); n > 0 {
			return fmt.Errorf("configuration has %d error(s)", n)
		}
		logger.Success("Configuration is valid")
		return nil
	},
}

// failureReport renders the failures grouped by property. A failure tagged
// with several properties is listed under each of them.
func failureReport(stage *action.StageContext) []string {
	var lines []string
	for property, failures := range stage.ByField().AllFromFront() {
		for _, f := range failures {
			line := property + ": " + f.Message
			if f.Correction != "" {
				line += " " + f.Correction
			}
			lines = append(lines, line)
		}
	}
	return lines
}
