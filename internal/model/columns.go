package model

// Role is a semantic column role resolved from header text.
type Role string

// Column roles.
const (
	RoleEntity       Role = "entity"
	RoleCampaignID   Role = "campaign_id"
	RoleGroupingID   Role = "grouping_id"
	RoleGroupingName Role = "grouping_name"
	RoleRatio        Role = "ratio"
	RoleSpend        Role = "spend"
	RoleRevenue      Role = "revenue"
	RoleUnits        Role = "units"
	RoleCampaignName Role = "campaign_name"
	RoleOperation    Role = "operation"
)

// ColumnMap is the per-worksheet role to header mapping. An empty string
// means the role was not found on that worksheet.
type ColumnMap struct {
	Entity       string
	CampaignID   string
	GroupingID   string
	GroupingName string
	Ratio        string
	Spend        string
	Revenue      string
	Units        string
	CampaignName string
	Operation    string
}

// Header returns the header bound to a role.
func (c ColumnMap) Header(role Role) string {
	switch role {
	case RoleEntity:
		return c.Entity
	case RoleCampaignID:
		return c.CampaignID
	case RoleGroupingID:
		return c.GroupingID
	case RoleGroupingName:
		return c.GroupingName
	case RoleRatio:
		return c.Ratio
	case RoleSpend:
		return c.Spend
	case RoleRevenue:
		return c.Revenue
	case RoleUnits:
		return c.Units
	case RoleCampaignName:
		return c.CampaignName
	case RoleOperation:
		return c.Operation
	default:
		return ""
	}
}

// Bind sets the header for a role.
func (c *ColumnMap) Bind(role Role, header string) {
	switch role {
	case RoleEntity:
		c.Entity = header
	case RoleCampaignID:
		c.CampaignID = header
	case RoleGroupingID:
		c.GroupingID = header
	case RoleGroupingName:
		c.GroupingName = header
	case RoleRatio:
		c.Ratio = header
	case RoleSpend:
		c.Spend = header
	case RoleRevenue:
		c.Revenue = header
	case RoleUnits:
		c.Units = header
	case RoleCampaignName:
		c.CampaignName = header
	case RoleOperation:
		c.Operation = header
	}
}

// GroupingColumns maps the two roles needed on the groupings worksheet.
type GroupingColumns struct {
	Name string
	ID   string
}
