package contracts

import (
	"math"
	"time"
)

// InstructionKind says why a target weight was emitted
type InstructionKind string

const (
	KindLiquidate InstructionKind = "LIQUIDATE"
	KindLong      InstructionKind = "LONG"
	KindShort     InstructionKind = "SHORT"
)

// Instruction is one order_target_percent style request
type Instruction struct {
	SecurityID   string          `json:"security_id"`
	TargetWeight float64         `json:"target_weight"` // [-1, 1]
	Kind         InstructionKind `json:"kind"`
}

// AllocationPlan is the engine output handed to the execution collaborator
// ⭐ SSOT: Signals → Execution 목표 비중 전달
type AllocationPlan struct {
	RunID        string             `json:"run_id"`
	Date         time.Time          `json:"date"`
	Weights      map[string]float64 `json:"weights"`
	Instructions []Instruction      `json:"instructions"`      // liquidations, longs, shorts
	Excluded     map[string]string  `json:"excluded"`          // security: reason
	Skipped      []string           `json:"skipped,omitempty"` // not tradable this cycle
	LongWeight   float64            `json:"long_weight"`
	ShortWeight  float64            `json:"short_weight"`
}

// NewAllocationPlan returns an empty plan for date
func NewAllocationPlan(date time.Time) *AllocationPlan {
	return &AllocationPlan{
		Date:         date,
		Weights:      make(map[string]float64),
		Instructions: make([]Instruction, 0),
		Excluded:     make(map[string]string),
	}
}

// Add appends an instruction and records its weight
func (p *AllocationPlan) Add(id string, weight float64, kind InstructionKind) {
	p.Instructions = append(p.Instructions, Instruction{SecurityID: id, TargetWeight: weight, Kind: kind})
	p.Weights[id] = weight
}

// Get returns the target weight for a security
func (p *AllocationPlan) Get(id string) (float64, bool) {
	w, ok := p.Weights[id]
	return w, ok
}

// IsEmpty reports whether the plan carries no instructions
func (p *AllocationPlan) IsEmpty() bool {
	return len(p.Instructions) == 0
}

// CountKind counts instructions of a kind
func (p *AllocationPlan) CountKind(kind InstructionKind) int {
	n := 0
	for _, ins := range p.Instructions {
		if ins.Kind == kind {
			n++
		}
	}
	return n
}

// LongExposure sums the positive target weights
func (p *AllocationPlan) LongExposure() float64 {
	total := 0.0
	for _, ins := range p.Instructions {
		if ins.Kind == KindLong {
			total += ins.TargetWeight
		}
	}
	return total
}

// ShortExposure sums the magnitudes of the short target weights
func (p *AllocationPlan) ShortExposure() float64 {
	total := 0.0
	for _, ins := range p.Instructions {
		if ins.Kind == KindShort {
			total += math.Abs(ins.TargetWeight)
		}
	}
	return total
}
