package services

import "math"

// Component weights and policy constants for the Centi Score. The liability
// reference point and cash-flow bands are policy values carried over from
// the original scoring model; the reward and penalty bands are deliberately
// asymmetric.
const (
	NetWorthWeight    = 40
	AssetsWeight      = 30
	LiabilitiesWeight = 20
	CashFlowWeight    = 10

	// LiabilityReference is the liability amount at which the liabilities
	// component bottoms out at zero.
	LiabilityReference = 50000.0

	// CashFlowRewardBand is the monthly cash flow that earns the full
	// cash-flow reward; CashFlowPenaltyBand is the negative monthly cash
	// flow at which the penalty caps at CashFlowPenaltyFloor.
	CashFlowRewardBand   = 5000.0
	CashFlowPenaltyBand  = 2000.0
	CashFlowPenaltyFloor = -5
)

// ComponentScore reports one score component for UI consumption: the points
// earned, the maximum available, and the raw financial value scored.
type ComponentScore struct {
	Score int     `json:"score"`
	Max   int     `json:"max"`
	Value float64 `json:"value"`
}

// ScoreBreakdown holds the per-component breakdown of a Centi Score.
type ScoreBreakdown struct {
	NetWorth    ComponentScore `json:"net_worth"`
	Assets      ComponentScore `json:"assets"`
	Liabilities ComponentScore `json:"liabilities"`
	CashFlow    ComponentScore `json:"cash_flow"`
}

// ScoreResult is the full output of a Centi Score calculation.
type ScoreResult struct {
	TotalScore       int            `json:"total_score"`
	NetWorthScore    int            `json:"net_worth_score"`
	AssetsScore      int            `json:"assets_score"`
	LiabilitiesScore int            `json:"liabilities_score"`
	CashFlowScore    int            `json:"cash_flow_score"`
	Breakdown        ScoreBreakdown `json:"breakdown"`
}

// CalculateScore maps a point-in-time financial aggregate to a composite
// 0-100 score with a per-component breakdown. Pure function: no I/O, never
// fails for any numeric input.
//
// Net worth and assets scale logarithmically so gains diminish at high
// values and the components never go negative. Liabilities earn full marks
// at zero debt and decay linearly to zero at LiabilityReference. Cash flow
// is the only component that can go negative; its penalty band is smaller
// in magnitude than its reward band. The total is clamped to [0, 100] as
// the final step, since the negative cash-flow path can pull a component
// sum below zero.
func CalculateScore(netWorth, totalAssets, totalLiabilities, monthlyCashFlow float64) ScoreResult {
	var netWorthScore, assetsScore, liabilitiesScore, cashFlowScore int

	if netWorth > 0 {
		netWorthScore = minInt(NetWorthWeight, int(math.Floor(math.Log10(netWorth+1)/5*NetWorthWeight)))
	}

	if totalAssets > 0 {
		assetsScore = minInt(AssetsWeight, int(math.Floor(math.Log10(totalAssets+1)/5*AssetsWeight)))
	}

	if totalLiabilities == 0 {
		liabilitiesScore = LiabilitiesWeight
	} else {
		ratio := math.Min(1, totalLiabilities/LiabilityReference)
		liabilitiesScore = maxInt(0, int(math.Floor(LiabilitiesWeight*(1-ratio))))
	}

	if monthlyCashFlow > 0 {
		cashFlowScore = minInt(CashFlowWeight, int(math.Floor(monthlyCashFlow/CashFlowRewardBand*CashFlowWeight)))
	} else {
		cashFlowScore = maxInt(CashFlowPenaltyFloor, int(math.Floor(monthlyCashFlow/CashFlowPenaltyBand*5)))
	}

	total := netWorthScore + assetsScore + liabilitiesScore + cashFlowScore
	total = maxInt(0, minInt(100, total))

	return ScoreResult{
		TotalScore:       total,
		NetWorthScore:    netWorthScore,
		AssetsScore:      assetsScore,
		LiabilitiesScore: liabilitiesScore,
		CashFlowScore:    cashFlowScore,
		Breakdown: ScoreBreakdown{
			NetWorth:    ComponentScore{Score: netWorthScore, Max: NetWorthWeight, Value: netWorth},
			Assets:      ComponentScore{Score: assetsScore, Max: AssetsWeight, Value: totalAssets},
			Liabilities: ComponentScore{Score: liabilitiesScore, Max: LiabilitiesWeight, Value: totalLiabilities},
			CashFlow:    ComponentScore{Score: cashFlowScore, Max: CashFlowWeight, Value: monthlyCashFlow},
		},
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
