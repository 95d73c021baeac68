package contracts

// Direction is the position intent derived from a snapshot
type Direction string

const (
	DirectionLong     Direction = "LONG"
	DirectionShort    Direction = "SHORT"
	DirectionExcluded Direction = "EXCLUDED"
)

// Signal is the classification of one snapshot
type Signal struct {
	SecurityID        string    `json:"security_id"`
	PercentDifference float64   `json:"percent_difference"` // (mean10 - mean30) / mean30
	Direction         Direction `json:"direction"`
	Reason            string    `json:"reason,omitempty"` // set when EXCLUDED
}

// IsTradeable reports whether the signal takes a side
func (s Signal) IsTradeable() bool {
	return s.Direction == DirectionLong || s.Direction == DirectionShort
}
