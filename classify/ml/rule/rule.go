package rule

import (
	"fmt"
	"math"
	"strings"

	"github.com/yourbasic/bit"
	"rbc-shenglin/classify/format"
	"rbc-shenglin/rock-share/global/model/rbc"
)

// Rule 前件合取 + 后件(类别域下标)
// 没有前件的规则是默认规则, 覆盖所有实例
type Rule struct {
	Antecedents []format.Antecedent
	Consequent  int
}

func (r *Rule) Size() int {
	return len(r.Antecedents)
}

// Covers 所有前件都命中才算覆盖
func (r *Rule) Covers(row []float64) bool {
	for _, a := range r.Antecedents {
		if !a.Covers(row) {
			return false
		}
	}
	return true
}

// Coverage 整个数据集上的覆盖测试, 置位的下标是被覆盖的行
func (r *Rule) Coverage(data *format.Instances) *bit.Set {
	mask := bit.New()
	for i := 0; i < data.Len(); i++ {
		if r.Covers(data.Row(i)) {
			mask.Add(i)
		}
	}
	return mask
}

// Split 按覆盖掩码把data切成covered/uncovered两个子集
func Split(data *format.Instances, mask *bit.Set) (*format.Instances, *format.Instances) {
	covered := make([]int, 0, mask.Size())
	uncovered := make([]int, 0, data.Len()-mask.Size())
	for i := 0; i < data.Len(); i++ {
		if mask.Contains(i) {
			covered = append(covered, i)
		} else {
			uncovered = append(uncovered, i)
		}
	}
	return data.Select(covered), data.Select(uncovered)
}

// Measures 规则在一个数据集上的质量度量, 全部按权重算
type Measures struct {
	Coverage   float64 // 覆盖的加权实例数
	Support    float64 // 覆盖且后件成立的份额
	Confidence float64
	Lift       float64
	Conviction float64
}

// ComputeMeasures 对data计算度量, 同时切出covered/uncovered给调用方继续用
func (r *Rule) ComputeMeasures(data *format.Instances) (Measures, *format.Instances, *format.Instances) {
	covered, uncovered := Split(data, r.Coverage(data))
	total := data.SumOfWeights()
	var m Measures
	m.Coverage = covered.SumOfWeights()
	if total <= 0 {
		return m, covered, uncovered
	}

	hit := 0.0 // 覆盖且类别等于后件
	for i := 0; i < covered.Len(); i++ {
		if covered.ClassIndex(i) == r.Consequent {
			hit += covered.Weight(i)
		}
	}
	classW := 0.0 // 后件类别在全集里的加权数
	for i := 0; i < data.Len(); i++ {
		if data.ClassIndex(i) == r.Consequent {
			classW += data.Weight(i)
		}
	}

	m.Support = hit / total
	if m.Coverage > 0 {
		m.Confidence = hit / m.Coverage
	}
	classShare := classW / total
	if classShare > 0 {
		m.Lift = m.Confidence / classShare
	}
	if m.Confidence < 1 {
		m.Conviction = (1 - classShare) / (1 - m.Confidence)
	} else {
		m.Conviction = math.Inf(1)
	}
	return m, covered, uncovered
}

// ToJSON 导出持久化形式, 后件还原成类别取值
func (r *Rule) ToJSON(schema *format.Schema) (rbc.RuleJSON, error) {
	out := rbc.RuleJSON{}
	className, err := schema.ClassAttr().ValueAt(r.Consequent)
	if err != nil {
		return out, fmt.Errorf("rule: consequent %d: %v", r.Consequent, err)
	}
	out.Consequent = className
	for _, a := range r.Antecedents {
		j, err := a.ToJSON(schema)
		if err != nil {
			return out, err
		}
		out.Antecedents = append(out.Antecedents, j)
	}
	return out, nil
}

// FromJSON 从持久化形式恢复, schema必须已经恢复好
func FromJSON(schema *format.Schema, j rbc.RuleJSON) (*Rule, error) {
	consequent, ok := schema.ClassAttr().IndexOf(j.Consequent)
	if !ok {
		return nil, fmt.Errorf("rule: consequent %q not in class domain", j.Consequent)
	}
	r := &Rule{Consequent: consequent}
	for _, aj := range j.Antecedents {
		a, err := format.AntecedentFromJSON(schema, aj)
		if err != nil {
			return nil, err
		}
		r.Antecedents = append(r.Antecedents, a)
	}
	return r, nil
}

func (r *Rule) String(schema *format.Schema) string {
	j, err := r.ToJSON(schema)
	if err != nil {
		items := make([]string, 0, len(r.Antecedents))
		for _, a := range r.Antecedents {
			items = append(items, a.String(schema))
		}
		return fmt.Sprintf("%s => class[%d]", strings.Join(items, " AND "), r.Consequent)
	}
	return j.String()
}
