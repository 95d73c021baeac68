package contracts

// Stage represents a step of one rebalance cycle
// 모든 로그와 DB row에서 이 상수를 사용
type Stage string

const (
	// StageUniverse builds snapshots from the price store
	StageUniverse Stage = "UNIVERSE"
	// StageHoldings reads current holdings and their tradability
	StageHoldings Stage = "HOLDINGS"
	// StageAllocation classifies snapshots and computes target weights
	StageAllocation Stage = "ALLOCATION"
	// StagePublish hands the plan to the sinks
	StagePublish Stage = "PUBLISH"
)

func (s Stage) String() string {
	return string(s)
}

// AllStages returns cycle stages in execution order
func AllStages() []Stage {
	return []Stage{StageUniverse, StageHoldings, StageAllocation, StagePublish}
}
