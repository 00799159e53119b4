package cmd

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// validateCmd checks a scenario without running it
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a scenario's fields and topology without running it",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		cfg, err := loadScenario(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("invalid scenario: %v", err)
		}
		topo, err := cfg.BuildTopology()
		if err != nil {
			logrus.Fatalf("invalid scenario: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %d flows, %d edges, horizon %gs\n",
			len(cfg.Flows), len(topo.Edges()), cfg.Horizon)
		fmt.Fprintf(cmd.OutOrStdout(), "nodes: %s\n", strings.Join(topo.Nodes(), ", "))
	},
}

func init() {
	addScenarioFlags(validateCmd)
}
