// Package trace provides decision-trace recording for admission analysis.
// It has no dependencies on sim/ and stores pure data types.
package trace

// AdmissionRecord captures a single firewall decision.
type AdmissionRecord struct {
	Source     string
	AttackType string
	Clock      int64 // tick of the decision
	Window     int64 // window index; -1 when the source was already blocked
	Count      int   // window counter after the increment
	Admitted   bool
	Reason     string
}
