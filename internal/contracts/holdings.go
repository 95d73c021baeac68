package contracts

// Holding is a position currently held in the externally owned portfolio
// ⭐ 엔진은 보유 종목을 읽기만 함 (청산 판단용)
type Holding struct {
	SecurityID string  `json:"security_id"`
	Shares     float64 `json:"shares,omitempty"`
	Tradable   bool    `json:"tradable"`
}
