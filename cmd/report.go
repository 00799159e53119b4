package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/netguard-sim/netguard-sim/sim/eventlog"
)

var reportTop int // Number of attack sources listed

// reportCmd summarizes a saved event log
var reportCmd = &cobra.Command{
	Use:   "report <log>",
	Short: "Summarize a saved event log (.csv or .csv.sz)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		records, err := eventlog.ReadFile(args[0])
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := eventlog.BuildReport(records, reportTop).Write(cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Failed to write report: %v", err)
		}
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportTop, "top", 5, "Number of top attack sources to list")
}
