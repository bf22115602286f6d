package model

import (
	"fmt"
	"strings"

	"rbc-shenglin/classify/format"
	"rbc-shenglin/classify/ml/rule"
	"rbc-shenglin/rbc_config"
	"rbc-shenglin/rock-share/global/model/rbc"
)

// ToJSON 导出持久化形式: 有序规则表 + schema + 正例逻辑规则
func (m *RuleBasedModel) ToJSON() (*rbc.ModelJSON, error) {
	if m.schema == nil {
		return nil, fmt.Errorf("model %s: no schema to serialize", m.ModelId)
	}
	out := &rbc.ModelJSON{
		ModelId:      m.ModelId,
		IsNormalized: m.IsNormalized,
		Attributes:   m.schema.ToJSON(),
	}
	for _, r := range m.rules {
		j, err := r.ToJSON(m.schema)
		if err != nil {
			return nil, err
		}
		out.Rules = append(out.Rules, j)
	}
	logic, err := m.PositiveLogicRules()
	if err != nil {
		return nil, err
	}
	out.LogicRules = logic
	return out, nil
}

// PositiveLogicRules 导出正例规则的AND逻辑形式
// 正例 = 后件类别名不带负例前缀的规则
// 非互斥模型里, 每条正例规则都拼上它前面所有规则的前件取反,
// 这样导出的单条规则自带"前面的规则都没中且这条中了", 可以独立求值
func (m *RuleBasedModel) PositiveLogicRules() ([]rbc.LogicRule, error) {
	var out []rbc.LogicRule
	for i, r := range m.rules {
		className, err := m.schema.ClassAttr().ValueAt(r.Consequent)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(className, rbc_config.NegativePrefix) {
			continue
		}
		lr := rbc.LogicRule{
			Name:       fmt.Sprintf("%s_rule_%d", m.ModelId, i),
			Consequent: className,
		}
		if !m.IsNormalized {
			for _, earlier := range m.rules[:i] {
				for _, a := range earlier.Antecedents {
					j, err := a.Negate().ToJSON(m.schema)
					if err != nil {
						return nil, err
					}
					lr.Items = append(lr.Items, j)
				}
			}
		}
		for _, a := range r.Antecedents {
			j, err := a.ToJSON(m.schema)
			if err != nil {
				return nil, err
			}
			lr.Items = append(lr.Items, j)
		}
		out = append(out, lr)
	}
	return out, nil
}

// FromJSON 从持久化形式重建模型
// 必须先恢复schema(含派生属性的meta)再恢复规则, 前件是按属性下标引用的
func FromJSON(j *rbc.ModelJSON) (*RuleBasedModel, error) {
	schema, err := format.SchemaFromJSON(j.Attributes)
	if err != nil {
		return nil, fmt.Errorf("model %s: restore schema: %v", j.ModelId, err)
	}
	m := &RuleBasedModel{
		ModelId:      j.ModelId,
		IsNormalized: j.IsNormalized,
		schema:       schema,
	}
	rules := make([]*rule.Rule, 0, len(j.Rules))
	for i, rj := range j.Rules {
		r, err := rule.FromJSON(schema, rj)
		if err != nil {
			return nil, fmt.Errorf("model %s: restore rule %d: %v", j.ModelId, i, err)
		}
		rules = append(rules, r)
	}
	if err := m.SetRules(rules); err != nil {
		return nil, err
	}
	return m, nil
}
