package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/netguard-sim/netguard-sim/sim"
	"github.com/netguard-sim/netguard-sim/sim/eventlog"
	"github.com/netguard-sim/netguard-sim/sim/trace"
)

var (
	// CLI flags for the scenario
	configPath     string  // Scenario YAML; empty runs the built-in scenario
	seed           int64   // Master seed, overrides the YAML seed when set
	horizonSeconds float64 // Simulation horizon (in seconds), overrides the YAML horizon when set
	logLevel       string  // Log verbosity level
	traceLevel     string  // Admission trace verbosity

	// CLI flags for outputs
	outputPath     string // Event-log CSV (".sz" suffix writes snappy-framed)
	fallbackOutput string // Retried if saving to outputPath fails
	metricsOut     string // Prometheus textfile
	summaryOut     string // YAML run summary

	// CLI flags for the Redis hand-off
	redisAddr     string
	redisPassword string
	redisDB       int
	redisKey      string
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "netguard-sim",
	Short: "Discrete-event simulator for firewall admission under attack traffic",
}

// setLogLevel applies --log, exiting on an unknown level.
func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// loadScenario returns the configured scenario, or the built-in one when no
// --config is given. --seed and --horizon override the file only when set.
func loadScenario(cmd *cobra.Command) (*sim.ScenarioConfig, error) {
	cfg := sim.DefaultScenarioConfig()
	if configPath != "" {
		loaded, err := sim.LoadScenarioConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("horizon") {
		cfg.Horizon = horizonSeconds
	}
	return cfg, nil
}

// runCmd executes the simulation using the scenario and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation and save the admitted-event log",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		cfg, err := loadScenario(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		scenario, err := sim.NewScenario(cfg, trace.TraceLevel(traceLevel))
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		scenario.Run()
		scenario.Metrics.Print(os.Stdout)

		if err := saveLog(scenario, outputPath, fallbackOutput); err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := export(cmd.Context(), scenario); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// saveLog writes the event log to path, retrying at fallback if that fails.
func saveLog(s *sim.Scenario, path, fallback string) error {
	err := s.Save(path)
	if err == nil || fallback == "" {
		return err
	}
	logrus.Warnf("Save to %s failed (%v); retrying at %s", path, err, fallback)
	if ferr := s.Save(fallback); ferr != nil {
		return fmt.Errorf("%w; fallback: %v", err, ferr)
	}
	return nil
}

// export writes the optional metrics, summary, and Redis outputs.
func export(ctx context.Context, s *sim.Scenario) error {
	if metricsOut != "" {
		if err := s.Metrics.WriteTextfile(metricsOut); err != nil {
			return err
		}
	}
	if summaryOut != "" {
		if err := sim.WriteSummary(summaryOut, s.Summary()); err != nil {
			return err
		}
	}
	if redisKey == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	pub, err := eventlog.NewPublisher(eventlog.PublisherConfig{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
		Key:      redisKey,
	})
	if err != nil {
		return err
	}
	defer pub.Close()
	n, err := pub.Publish(ctx, s.Monitor.Records())
	if err != nil {
		return fmt.Errorf("published %d records before failure: %w", n, err)
	}
	logrus.Infof("Published %d records to redis list %s", n, redisKey)
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addScenarioFlags registers the flags shared by run and validate.
func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configPath, "config", "", "Scenario YAML file (default: built-in scenario)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Master seed; overrides the scenario seed when set")
	cmd.Flags().Float64Var(&horizonSeconds, "horizon", 1800, "Simulation horizon in seconds; overrides the scenario horizon when set")
	cmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
}

// init sets up CLI flags and subcommands
func init() {
	addScenarioFlags(runCmd)
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Admission trace level (none, decisions, denials)")

	// Outputs
	runCmd.Flags().StringVar(&outputPath, "output", "data/logs.csv", "Event-log path; a .sz suffix writes snappy-compressed CSV")
	runCmd.Flags().StringVar(&fallbackOutput, "fallback-output", "", "Alternate event-log path tried if --output cannot be written")
	runCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "Write Prometheus textfile metrics to this path")
	runCmd.Flags().StringVar(&summaryOut, "summary-out", "", "Write a YAML run summary to this path")

	// Redis hand-off
	runCmd.Flags().StringVar(&redisAddr, "redis-addr", "127.0.0.1:6379", "Redis address for the event-log hand-off")
	runCmd.Flags().StringVar(&redisPassword, "redis-password", "", "Redis password")
	runCmd.Flags().IntVar(&redisDB, "redis-db", 0, "Redis database number")
	runCmd.Flags().StringVar(&redisKey, "redis-key", "", "Redis list to RPUSH admitted records onto (empty disables)")

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(defaultConfigCmd)
	rootCmd.AddCommand(reportCmd)
}
