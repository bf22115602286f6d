package rbc

import (
	"fmt"
	"strings"
)

// AntecedentJSON 单个原子条件的通用逻辑形式 (feature, operator, value)
type AntecedentJSON struct {
	Feature  string `json:"feature"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

func (a AntecedentJSON) String() string {
	return fmt.Sprintf("%s %s %s", a.Feature, a.Operator, a.Value)
}

// RuleJSON 一条规则的持久化形式, 前件按顺序存
type RuleJSON struct {
	Antecedents []AntecedentJSON `json:"antecedents"`
	Consequent  string           `json:"consequent"`
}

func (r RuleJSON) String() string {
	if len(r.Antecedents) == 0 {
		return fmt.Sprintf("() => %s", r.Consequent)
	}
	items := make([]string, 0, len(r.Antecedents))
	for _, a := range r.Antecedents {
		items = append(items, a.String())
	}
	return fmt.Sprintf("%s => %s", strings.Join(items, " AND "), r.Consequent)
}

// LogicRule 正例规则的AND逻辑形式
// 非互斥规则集导出时, 每条正例规则已经拼上了之前所有规则的否定,
// 所以单条LogicRule可以独立求值, 不需要知道规则顺序
type LogicRule struct {
	Name       string           `json:"name"`
	Consequent string           `json:"consequent"`
	Items      []AntecedentJSON `json:"items"`
}

func (l LogicRule) String() string {
	items := make([]string, 0, len(l.Items))
	for _, a := range l.Items {
		items = append(items, a.String())
	}
	return strings.Join(items, " AND ")
}
