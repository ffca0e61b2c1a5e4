package columns

import (
	"testing"

	"github.com/Veraticus/portfolio-optimizer/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestResolve_AmazonBulkHeaders(t *testing.T) {
	fields := []string{
		"Product", "Entity", "Operation", "Campaign ID", "Ad Group ID", "Portfolio ID",
		"Campaign Name", "Campaign Name (Informational only)", "Portfolio Name (Informational only)",
		"Spend", "Sales", "Units", "ACOS", "ROAS",
	}

	cols := Resolve(fields)

	assert.Equal(t, "Entity", cols.Entity)
	assert.Equal(t, "Operation", cols.Operation)
	assert.Equal(t, "Campaign ID", cols.CampaignID)
	assert.Equal(t, "Portfolio ID", cols.GroupingID)
	assert.Equal(t, "Portfolio Name (Informational only)", cols.GroupingName)
	assert.Equal(t, "Campaign Name", cols.CampaignName)
	assert.Equal(t, "Spend", cols.Spend)
	assert.Equal(t, "Sales", cols.Revenue)
	assert.Equal(t, "Units", cols.Units)
	assert.Equal(t, "ACOS", cols.Ratio)
}

func TestResolve_RolePatterns(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		role   model.Role
		expect bool
	}{
		{name: "entity exact", field: "ENTITY", role: model.RoleEntity, expect: true},
		{name: "entity substring is not enough", field: "Entity Type", role: model.RoleEntity, expect: false},
		{name: "ratio long form", field: "Advertising Cost of Sales (ACoS)", role: model.RoleRatio, expect: true},
		{name: "spend long form", field: "Total Spend", role: model.RoleSpend, expect: true},
		{name: "revenue excludes cost", field: "Advertising Cost of Sales", role: model.RoleRevenue, expect: false},
		{name: "revenue long form", field: "7 Day Total Sales", role: model.RoleRevenue, expect: true},
		{name: "units sold", field: "Total Units Sold", role: model.RoleUnits, expect: true},
		{name: "campaign name informational excluded", field: "Campaign Name (Informational only)", role: model.RoleCampaignName, expect: false},
		{name: "grouping name requires informational", field: "Portfolio Name", role: model.RoleGroupingName, expect: false},
		{name: "campaign id", field: "campaign id", role: model.RoleCampaignID, expect: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := Resolve([]string{tt.field})
			if tt.expect {
				assert.Equal(t, tt.field, cols.Header(tt.role))
			} else {
				assert.Empty(t, cols.Header(tt.role))
			}
		})
	}
}

func TestResolve_LastMatchWins(t *testing.T) {
	cols := Resolve([]string{"Spend", "Total Spend"})
	assert.Equal(t, "Total Spend", cols.Spend)

	cols = Resolve([]string{"Total Spend", "Spend"})
	assert.Equal(t, "Spend", cols.Spend)
}

func TestResolve_Unresolved(t *testing.T) {
	cols := Resolve([]string{"Foo", "Bar"})
	assert.Equal(t, model.ColumnMap{}, cols)
	assert.Equal(t, model.ColumnMap{}, Resolve(nil))
}

func TestResolveGroupings(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   model.GroupingColumns
	}{
		{
			name:   "standard headers",
			fields: []string{"Portfolio ID", "Portfolio Name", "Budget"},
			want:   model.GroupingColumns{Name: "Portfolio Name", ID: "Portfolio ID"},
		},
		{
			name:   "informational name ignored",
			fields: []string{"Portfolio ID", "Portfolio Name (Informational only)"},
			want:   model.GroupingColumns{ID: "Portfolio ID"},
		},
		{
			name:   "missing both",
			fields: []string{"Name", "Id"},
			want:   model.GroupingColumns{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveGroupings(tt.fields))
		})
	}
}
