// Package eventlog defines the admitted-event record and its durable forms:
// the CSV artifact (optionally snappy-framed) and a Redis list hand-off.
// It has no dependencies on sim/.
package eventlog

// AttackType labels the traffic archetype that produced a record.
type AttackType string

const (
	Benign       AttackType = "Benign"
	DDoS         AttackType = "DDoS"
	PortScan     AttackType = "PortScan"
	Exfiltration AttackType = "Exfiltration"
	BruteForce   AttackType = "BruteForce"
)

// AttackTypes lists every label in a fixed order.
var AttackTypes = []AttackType{Benign, DDoS, PortScan, Exfiltration, BruteForce}

// IsValidAttackType returns true if name is one of the five labels.
func IsValidAttackType(name string) bool {
	for _, at := range AttackTypes {
		if string(at) == name {
			return true
		}
	}
	return false
}

// Direction is derived from the source identifier, never configured.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Columns is the artifact header, in column order.
var Columns = []string{"Source", "Destination", "Packet_Size", "Attack_Type", "Timestamp", "Direction"}

// Record is one admitted event.
type Record struct {
	Source      string     `json:"source"`
	Destination string     `json:"destination"`
	PacketSize  int        `json:"packet_size"`
	AttackType  AttackType `json:"attack_type"`
	Timestamp   float64    `json:"timestamp"` // simulated seconds
	Direction   Direction  `json:"direction"`
}
