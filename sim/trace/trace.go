package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every admission decision.
	TraceLevelDecisions TraceLevel = "decisions"
	// TraceLevelDenials captures only denied packets.
	TraceLevelDenials TraceLevel = "denials"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	TraceLevelDenials:   true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects decision records during a run.
type SimulationTrace struct {
	Config     TraceConfig
	Admissions []AdmissionRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:     config,
		Admissions: make([]AdmissionRecord, 0),
	}
}

// Enabled reports whether any records will be kept.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level != TraceLevelNone && st.Config.Level != ""
}

// RecordAdmission appends an admission record if the level keeps it.
func (st *SimulationTrace) RecordAdmission(record AdmissionRecord) {
	if !st.Enabled() {
		return
	}
	if st.Config.Level == TraceLevelDenials && record.Admitted {
		return
	}
	st.Admissions = append(st.Admissions, record)
}
