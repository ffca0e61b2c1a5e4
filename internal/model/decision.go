package model

// Outcome is the terminal state assigned to a campaign row.
type Outcome string

// Outcome constants.
const (
	OutcomeMovedToGood Outcome = "MOVE_TO_GOOD"
	OutcomeMovedToBad  Outcome = "MOVE_TO_BAD"
	OutcomeNoAction    Outcome = "NO_ACTION"
	OutcomeUnassigned  Outcome = "UNASSIGNED"
)

// Outcomes lists every outcome in report order.
var Outcomes = []Outcome{OutcomeMovedToGood, OutcomeMovedToBad, OutcomeNoAction, OutcomeUnassigned}

// CampaignRow is an owned copy of a campaign row together with its worksheet context.
type CampaignRow struct {
	Row     *Row
	Sheet   string
	Columns ColumnMap
	Index   int
}

// DecisionRecord is the single decision made for one campaign id in a run.
type DecisionRecord struct {
	CampaignID    string
	Outcome       Outcome
	FromGrouping  string
	ToGrouping    string
	Profitability string
	Reason        string
	Sheet         string
	Product       string
	Threshold     string
	CurrentTier   Tier
	RowIndex      int
}

// UnassignedCampaign is a campaign with spend but no grouping, kept for manual assignment.
type UnassignedCampaign struct {
	CampaignRow
	CampaignID       string
	CampaignName     string
	Profitability    string
	AssignedGrouping string
	Ratio            float64
	Spend            float64
	HasRatio         bool
	Assigned         bool
}

// Edit describes one field change applied to an owned row copy.
type Edit struct {
	Sheet      string
	CampaignID string
	Field      string
	Old        Value
	New        Value
	RowIndex   int
}
