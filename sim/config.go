package sim

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/netguard-sim/netguard-sim/sim/eventlog"
)

// validate is a singleton validator instance; field names in its errors are
// the YAML keys.
var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// ScenarioConfig is the top-level run configuration.
// Loaded from YAML via LoadScenarioConfig(path).
type ScenarioConfig struct {
	Seed         int64        `yaml:"seed"`
	Horizon      float64      `yaml:"horizon" validate:"gte=0"` // seconds
	ClientPrefix string       `yaml:"client_prefix,omitempty"`
	Firewall     FirewallSpec `yaml:"firewall,omitempty"`
	Topology     TopologySpec `yaml:"topology"`
	Flows        []FlowSpec   `yaml:"flows" validate:"required,min=1,dive"`
}

// FirewallSpec overrides admission thresholds. Zero fields keep the defaults.
type FirewallSpec struct {
	RateLimit          int     `yaml:"rate_limit,omitempty" validate:"gte=0"`
	MaliciousThreshold int     `yaml:"malicious_threshold,omitempty" validate:"gte=0"`
	WindowSeconds      float64 `yaml:"window_seconds,omitempty" validate:"gte=0"`
}

// TopologySpec lists nodes and undirected edges as [a, b] pairs.
type TopologySpec struct {
	Nodes []string   `yaml:"nodes" validate:"required,min=1,dive,required"`
	Edges [][]string `yaml:"edges,omitempty" validate:"dive,len=2,dive,required"`
}

// FlowSpec configures one generator process.
type FlowSpec struct {
	Archetype   string     `yaml:"archetype" validate:"required,oneof=Benign DDoS PortScan Exfiltration BruteForce"`
	Source      string     `yaml:"source" validate:"required"`
	Destination string     `yaml:"destination" validate:"required"`
	Delay       *DelaySpec `yaml:"delay,omitempty"`
}

// DelaySpec replaces an archetype's delay range, in seconds. min == max
// gives a fixed inter-packet delay.
type DelaySpec struct {
	Min float64 `yaml:"min" validate:"gte=0"`
	Max float64 `yaml:"max" validate:"gt=0,gtefield=Min"`
}

// LoadScenarioConfig reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadScenarioConfig(path string) (*ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario config: %w", err)
	}
	cfg, err := ParseScenarioConfig(data)
	if err != nil {
		return nil, fmt.Errorf("parsing scenario config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseScenarioConfig decodes YAML bytes with strict field checking.
func ParseScenarioConfig(data []byte) (*ScenarioConfig, error) {
	var cfg ScenarioConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal renders the config as YAML.
func (c *ScenarioConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks field ranges, archetype names, and that every flow names
// nodes present in the topology. The first problem found is returned,
// prefixed with its YAML path.
func (c *ScenarioConfig) Validate() error {
	if err := c.validateFields(); err != nil {
		return err
	}
	_, err := c.BuildTopology()
	return err
}

func (c *ScenarioConfig) validateFields() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return c.validateResolution()
}

// validateResolution checks durations against the tick clock: each must
// fit in the clock, and window and delay bounds must be at least one tick
// so the firewall has a window and every generator advances time.
func (c *ScenarioConfig) validateResolution() error {
	if err := checkDuration("horizon", c.Horizon); err != nil {
		return err
	}
	if w := c.Firewall.WindowSeconds; w > 0 {
		if err := checkDuration("firewall.window_seconds", w); err != nil {
			return err
		}
		if err := checkOneTick("firewall.window_seconds", w); err != nil {
			return err
		}
	}
	for i, f := range c.Flows {
		if f.Delay == nil {
			continue
		}
		field := fmt.Sprintf("flows[%d].delay.max", i)
		if err := checkDuration(field, f.Delay.Max); err != nil {
			return err
		}
		if err := checkOneTick(field, f.Delay.Max); err != nil {
			return err
		}
	}
	return nil
}

func checkDuration(field string, seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds > MaxSeconds {
		return fmt.Errorf("%s: must be <= %g seconds, got %v", field, MaxSeconds, seconds)
	}
	return nil
}

func checkOneTick(field string, seconds float64) error {
	if SecondsToTicks(seconds) < 1 {
		return fmt.Errorf("%s: must be at least one tick (%g s), got %v", field, 1.0/TicksPerSecond, seconds)
	}
	return nil
}

// BuildTopology constructs the topology and checks every flow against it.
func (c *ScenarioConfig) BuildTopology() (*Topology, error) {
	edges := make([]Edge, 0, len(c.Topology.Edges))
	for i, e := range c.Topology.Edges {
		if len(e) != 2 {
			return nil, fmt.Errorf("topology.edges[%d]: expected [a, b], got %d names", i, len(e))
		}
		edges = append(edges, Edge{A: e[0], B: e[1]})
	}
	topo, err := NewTopology(c.Topology.Nodes, edges)
	if err != nil {
		return nil, err
	}
	for i, f := range c.RuntimeFlows() {
		if err := topo.ValidateFlow(i, f); err != nil {
			return nil, err
		}
	}
	return topo, nil
}

// RuntimeFlows converts the flow specs, in configuration order.
func (c *ScenarioConfig) RuntimeFlows() []Flow {
	flows := make([]Flow, len(c.Flows))
	for i, f := range c.Flows {
		flows[i] = Flow{
			Archetype:   eventlog.AttackType(f.Archetype),
			Source:      f.Source,
			Destination: f.Destination,
		}
	}
	return flows
}

// ProfileForFlow returns the archetype profile for flow i with any delay
// override applied.
func (c *ScenarioConfig) ProfileForFlow(i int) (Profile, error) {
	f := c.Flows[i]
	p, err := ProfileFor(eventlog.AttackType(f.Archetype))
	if err != nil {
		return Profile{}, fmt.Errorf("flows[%d].archetype: %w", i, err)
	}
	if f.Delay != nil {
		p.DelayMin, p.DelayMax = f.Delay.Min, f.Delay.Max
	}
	return p, nil
}

// FirewallConfig returns the thresholds with defaults filled in.
func (c *ScenarioConfig) FirewallConfig() FirewallConfig {
	cfg := DefaultFirewallConfig()
	if c.Firewall.RateLimit > 0 {
		cfg.RateLimit = c.Firewall.RateLimit
	}
	if c.Firewall.MaliciousThreshold > 0 {
		cfg.MaliciousThreshold = c.Firewall.MaliciousThreshold
	}
	if c.Firewall.WindowSeconds > 0 {
		cfg.WindowTicks = SecondsToTicks(c.Firewall.WindowSeconds)
	}
	return cfg
}

// HorizonTicks returns the horizon on the simulator clock.
func (c *ScenarioConfig) HorizonTicks() int64 {
	return SecondsToTicks(c.Horizon)
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must have at least %s entries", field, e.Param())
		case "len":
			return fmt.Errorf("%s: must have exactly %s entries", field, e.Param())
		case "gte":
			return fmt.Errorf("%s: must be >= %s, got %v", field, e.Param(), e.Value())
		case "gt":
			return fmt.Errorf("%s: must be > %s, got %v", field, e.Param(), e.Value())
		case "gtefield":
			return fmt.Errorf("%s: must be >= %s, got %v", field, strings.ToLower(e.Param()), e.Value())
		case "oneof":
			return fmt.Errorf("%s: unknown value %q; valid: %s", field, e.Value(), strings.ReplaceAll(e.Param(), " ", ", "))
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}

// DefaultScenarioConfig returns the built-in scenario: one benign client
// alongside twelve attack flows spread over five clients, run for 30
// simulated minutes.
func DefaultScenarioConfig() *ScenarioConfig {
	flow := func(archetype eventlog.AttackType, src string) FlowSpec {
		return FlowSpec{Archetype: string(archetype), Source: src, Destination: "Server"}
	}
	return &ScenarioConfig{
		Seed:         42,
		Horizon:      1800,
		ClientPrefix: DefaultClientPrefix,
		Firewall: FirewallSpec{
			RateLimit:          DefaultRateLimit,
			MaliciousThreshold: DefaultMaliciousThreshold,
			WindowSeconds:      DefaultWindowSeconds,
		},
		Topology: TopologySpec{
			Nodes: []string{"Client1", "Client2", "Client3", "Client4", "Client5", "Router", "Firewall", "Server"},
			Edges: [][]string{
				{"Client1", "Router"},
				{"Client2", "Router"},
				{"Client3", "Router"},
				{"Client4", "Router"},
				{"Client5", "Router"},
				{"Router", "Firewall"},
				{"Firewall", "Server"},
			},
		},
		Flows: []FlowSpec{
			flow(eventlog.Benign, "Client1"),
			flow(eventlog.DDoS, "Client2"),
			flow(eventlog.PortScan, "Client2"),
			flow(eventlog.Exfiltration, "Client2"),
			flow(eventlog.BruteForce, "Client2"),
			flow(eventlog.DDoS, "Client1"),
			flow(eventlog.BruteForce, "Client1"),
			flow(eventlog.PortScan, "Client3"),
			flow(eventlog.Exfiltration, "Client3"),
			flow(eventlog.DDoS, "Client4"),
			flow(eventlog.BruteForce, "Client4"),
			flow(eventlog.PortScan, "Client5"),
			flow(eventlog.Exfiltration, "Client5"),
		},
	}
}
