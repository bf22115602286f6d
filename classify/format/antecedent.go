package format

import (
	"fmt"
	"math"

	"rbc-shenglin/rbc_config"
	"rbc-shenglin/rock-share/global/model/rbc"
)

// Antecedent 对单个属性的一次原子测试
// 离散属性是对域下标的等值判断, 连续属性是对阈值的比较
type Antecedent struct {
	Attr  AttrIndex
	Op    string
	Value float64
}

// Covers 行是否命中该测试, 空值(NaN)不命中任何测试
func (a Antecedent) Covers(row []float64) bool {
	v := row[a.Attr.Pos]
	if math.IsNaN(v) {
		return false
	}
	switch a.Op {
	case rbc_config.Equal:
		return v == a.Value
	case rbc_config.NotEqual:
		return v != a.Value
	case rbc_config.Less:
		return v < a.Value
	case rbc_config.LessE:
		return v <= a.Value
	case rbc_config.Greater:
		return v > a.Value
	case rbc_config.GreaterE:
		return v >= a.Value
	default:
		return false
	}
}

// Negate 比较符取反: >= <-> <, > <-> <=, == <-> !=
func (a Antecedent) Negate() Antecedent {
	return Antecedent{Attr: a.Attr, Op: NegateOp(a.Op), Value: a.Value}
}

func NegateOp(op string) string {
	switch op {
	case rbc_config.Equal:
		return rbc_config.NotEqual
	case rbc_config.NotEqual:
		return rbc_config.Equal
	case rbc_config.Less:
		return rbc_config.GreaterE
	case rbc_config.LessE:
		return rbc_config.Greater
	case rbc_config.Greater:
		return rbc_config.LessE
	case rbc_config.GreaterE:
		return rbc_config.Less
	default:
		return op
	}
}

// ToJSON 导出(feature, operator, value)三元组, 值用属性的展示形式
func (a Antecedent) ToJSON(s *Schema) (rbc.AntecedentJSON, error) {
	attr, err := s.Resolve(a.Attr)
	if err != nil {
		return rbc.AntecedentJSON{}, err
	}
	return rbc.AntecedentJSON{
		Feature:  attr.Name,
		Operator: a.Op,
		Value:    attr.Represent(a.Value),
	}, nil
}

// AntecedentFromJSON 从三元组恢复前件, 属性按名字在schema里找
func AntecedentFromJSON(s *Schema, j rbc.AntecedentJSON) (Antecedent, error) {
	pos, ok := s.IndexOf(j.Feature)
	if !ok {
		return Antecedent{}, fmt.Errorf("antecedent: feature %q not in schema", j.Feature)
	}
	ref, err := s.Ref(pos)
	if err != nil {
		return Antecedent{}, err
	}
	attr := s.Attr(pos)
	var value float64
	if attr.IsDiscrete() {
		idx, ok := attr.IndexOf(j.Value)
		if !ok {
			return Antecedent{}, fmt.Errorf("antecedent: value %q not in domain of %s", j.Value, attr.Name)
		}
		value = float64(idx)
	} else {
		v, err := ParseContinuous(attr.SubType, j.Value)
		if err != nil {
			return Antecedent{}, fmt.Errorf("antecedent: bad value %q for %s: %v", j.Value, attr.Name, err)
		}
		value = v
	}
	return Antecedent{Attr: ref, Op: j.Operator, Value: value}, nil
}

// String 调试用
func (a Antecedent) String(s *Schema) string {
	j, err := a.ToJSON(s)
	if err != nil {
		return fmt.Sprintf("attr[%d] %s %v", a.Attr.Pos, a.Op, a.Value)
	}
	return j.String()
}
