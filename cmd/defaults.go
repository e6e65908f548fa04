package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pyrochlore-sim/pyrochlore-sim/sim"
)

// defaultsCmd prints the default configuration as YAML, suitable as a --config starting point
var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the default configuration as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		data, err := sim.DefaultConfig().YAML()
		if err != nil {
			logrus.Fatalf("Failed to render defaults: %v", err)
		}
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			logrus.Fatalf("Failed to write defaults: %v", err)
		}
	},
}
