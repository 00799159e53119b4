package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/netguard-sim/netguard-sim/sim"
)

// defaultConfigCmd prints the built-in scenario as a starting point for
// custom YAML files.
var defaultConfigCmd = &cobra.Command{
	Use:   "default-config",
	Short: "Print the built-in scenario as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		data, err := sim.DefaultScenarioConfig().Marshal()
		if err != nil {
			logrus.Fatalf("Failed to encode default scenario: %v", err)
		}
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			logrus.Fatalf("Failed to write default scenario: %v", err)
		}
	},
}
