// Package columns resolves heterogeneous worksheet headers to semantic roles.
package columns

import (
	"strings"

	"github.com/Veraticus/portfolio-optimizer/internal/model"
)

// Predicate tests a lowercased header.
type Predicate func(lower string) bool

// Rule binds a role to the predicate that recognizes its header.
type Rule struct {
	Predicate Predicate
	Role      model.Role
}

// Equals matches a header exactly (after lowercasing).
func Equals(s string) Predicate {
	return func(lower string) bool { return lower == s }
}

// ContainsAll matches when every fragment appears in the header.
func ContainsAll(fragments ...string) Predicate {
	return func(lower string) bool {
		for _, f := range fragments {
			if !strings.Contains(lower, f) {
				return false
			}
		}
		return true
	}
}

// Any matches when at least one predicate matches.
func Any(preds ...Predicate) Predicate {
	return func(lower string) bool {
		for _, p := range preds {
			if p(lower) {
				return true
			}
		}
		return false
	}
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return func(lower string) bool { return !p(lower) }
}

// All matches when every predicate matches.
func All(preds ...Predicate) Predicate {
	return func(lower string) bool {
		for _, p := range preds {
			if !p(lower) {
				return false
			}
		}
		return true
	}
}

var informational = ContainsAll("informational")

// CampaignRules is the role vocabulary for campaign worksheets.
var CampaignRules = []Rule{
	{Role: model.RoleEntity, Predicate: Equals("entity")},
	{Role: model.RoleOperation, Predicate: Equals("operation")},
	{Role: model.RoleCampaignID, Predicate: ContainsAll("campaign", "id")},
	{Role: model.RoleGroupingID, Predicate: ContainsAll("portfolio", "id")},
	{Role: model.RoleGroupingName, Predicate: ContainsAll("portfolio", "name", "informational")},
	{Role: model.RoleRatio, Predicate: Any(Equals("acos"), ContainsAll("advertising cost of sales"))},
	{Role: model.RoleSpend, Predicate: Any(Equals("spend"), ContainsAll("total spend"))},
	{Role: model.RoleRevenue, Predicate: Any(Equals("sales"), All(ContainsAll("sales"), Not(ContainsAll("cost"))))},
	{Role: model.RoleUnits, Predicate: Any(Equals("units"), ContainsAll("units sold"))},
	{Role: model.RoleCampaignName, Predicate: All(Any(Equals("campaign name"), ContainsAll("campaign", "name")), Not(informational))},
}

// GroupingRules is the role vocabulary for the groupings worksheet.
var GroupingRules = []Rule{
	{Role: model.RoleGroupingName, Predicate: All(ContainsAll("portfolio", "name"), Not(informational))},
	{Role: model.RoleGroupingID, Predicate: ContainsAll("portfolio", "id")},
}

// groupingFallback is tried only when GroupingRules leave a role unresolved.
var groupingFallback = []Rule{
	{Role: model.RoleGroupingName, Predicate: Equals("portfolio name")},
	{Role: model.RoleGroupingID, Predicate: Equals("portfolio id")},
}

// Match evaluates rules against fields in order and returns role to header.
// Every rule is checked against every field, so when several fields satisfy
// one role the last one wins.
func Match(fields []string, rules []Rule) map[model.Role]string {
	found := make(map[model.Role]string)
	for _, field := range fields {
		lower := strings.ToLower(field)
		for _, rule := range rules {
			if rule.Predicate(lower) {
				found[rule.Role] = field
			}
		}
	}
	return found
}

// Resolve maps the field set of one representative campaign row to a ColumnMap.
// Unresolved roles stay empty; the function never fails.
func Resolve(fields []string) model.ColumnMap {
	var cols model.ColumnMap
	for role, header := range Match(fields, CampaignRules) {
		cols.Bind(role, header)
	}
	return cols
}

// ResolveRow is Resolve over a row's fields.
func ResolveRow(row *model.Row) model.ColumnMap {
	return Resolve(row.Fields())
}

// ResolveGroupings maps the groupings worksheet headers to name and id columns.
func ResolveGroupings(fields []string) model.GroupingColumns {
	found := Match(fields, GroupingRules)
	if found[model.RoleGroupingName] == "" || found[model.RoleGroupingID] == "" {
		for role, header := range Match(fields, groupingFallback) {
			found[role] = header
		}
	}
	return model.GroupingColumns{
		Name: found[model.RoleGroupingName],
		ID:   found[model.RoleGroupingID],
	}
}
