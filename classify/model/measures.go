package model

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"rbc-shenglin/classify/format"
	"rbc-shenglin/classify/ml/rule"
)

// RuleMeasureRow 单条规则的两套度量:
// Local是在"前面规则还没覆盖掉的剩余子集"上算的(层级视角),
// Global是在全量数据上算的
type RuleMeasureRow struct {
	Pos    int
	Rule   string
	Local  rule.Measures
	Global rule.Measures
}

// ComputeRuleMeasures 必须严格按规则顺序算:
// 每条规则算完后把它覆盖的实例从剩余子集里去掉, 再给下一条算Local
func (m *RuleBasedModel) ComputeRuleMeasures(fullData *format.Instances) ([]RuleMeasureRow, error) {
	identical, aligned, err := fullData.SortAttrsAs(m.schema, false, false)
	if err != nil {
		return nil, fmt.Errorf("model %s: measures: %v", m.ModelId, err)
	}
	if !identical {
		fullData = aligned
	}

	rows := make([]RuleMeasureRow, 0, len(m.rules))
	remaining := fullData
	for i, r := range m.rules {
		local, _, uncovered := r.ComputeMeasures(remaining)
		global, _, _ := r.ComputeMeasures(fullData)
		rows = append(rows, RuleMeasureRow{
			Pos:    i,
			Rule:   r.String(m.schema),
			Local:  local,
			Global: global,
		})
		remaining = uncovered
	}
	return rows, nil
}

// PrintMeasures 把度量表打到stderr, 排查模型质量用
func PrintMeasures(rows []RuleMeasureRow) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stderr)
	t.SetTitle("RULE MEASURES")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Rule", WidthMax: 60},
		{Name: "Conf", Align: text.AlignRight},
		{Name: "Lift", Align: text.AlignRight},
	})
	t.AppendHeader(table.Row{"#", "Rule", "Scope", "Coverage", "Support", "Conf", "Lift", "Conviction"})
	for _, row := range rows {
		t.AppendRow(table.Row{row.Pos, row.Rule, "local",
			fmt.Sprintf("%.1f", row.Local.Coverage),
			fmt.Sprintf("%.4f", row.Local.Support),
			fmt.Sprintf("%.4f", row.Local.Confidence),
			fmt.Sprintf("%.4f", row.Local.Lift),
			fmt.Sprintf("%.4f", row.Local.Conviction)})
		t.AppendRow(table.Row{"", "", "global",
			fmt.Sprintf("%.1f", row.Global.Coverage),
			fmt.Sprintf("%.4f", row.Global.Support),
			fmt.Sprintf("%.4f", row.Global.Confidence),
			fmt.Sprintf("%.4f", row.Global.Lift),
			fmt.Sprintf("%.4f", row.Global.Conviction)})
		t.AppendSeparator()
	}
	t.Render()
}
