package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective run configuration",
	Long: `Print the run configuration after applying the config file and flags,
as YAML. The output is a valid --config file.

Examples:
  rastreador config > costa-rica.yaml
  rastreador config --config costa-rica.yaml --window 60`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	out, err := runCfg.YAML()
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
