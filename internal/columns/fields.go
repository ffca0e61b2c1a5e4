package columns

import (
	"strings"

	"github.com/Veraticus/portfolio-optimizer/internal/model"
)

// IsCampaign reports whether a row's entity value is "campaign".
func IsCampaign(row *model.Row, cols model.ColumnMap) bool {
	if cols.Entity == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(row.Get(cols.Entity).String()), "campaign")
}

// Float reads a numeric field. An unresolved column or a non-numeric cell reports false.
func Float(row *model.Row, header string) (float64, bool) {
	if header == "" {
		return 0, false
	}
	return row.Get(header).Float()
}

// PositiveFloat returns the numeric field value, or zero when it is absent,
// non-numeric or not positive.
func PositiveFloat(row *model.Row, header string) float64 {
	v, ok := Float(row, header)
	if !ok || v <= 0 {
		return 0
	}
	return v
}

// Text reads a field as trimmed text.
func Text(row *model.Row, header string) string {
	if header == "" {
		return ""
	}
	return strings.TrimSpace(row.Get(header).String())
}
