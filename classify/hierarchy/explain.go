package hierarchy

import (
	"rbc-shenglin/classify/format"
	"rbc-shenglin/classify/model"
	"rbc-shenglin/rbc_config"
	"rbc-shenglin/rock-share/global/model/rbc"
)

/*
	BuildExplanation 把单次命中还原成一组原子条件

	互斥模型里命中规则的前件就是全部解释; 非互斥模型里命中之前
	试过没中的每条规则至少有一个前件不成立, 这里取它们全部前件
	的取反并入解释, 再按特征合并同向比较, 只留最紧的界
*/
func BuildExplanation(m *model.RuleBasedModel, pr model.Prediction) ([]rbc.AntecedentJSON, error) {
	if pr.Fired == nil {
		return nil, nil
	}
	var ants []format.Antecedent
	if !m.IsNormalized {
		for _, r := range pr.Tried {
			for _, a := range r.Antecedents {
				ants = append(ants, a.Negate())
			}
		}
	}
	ants = append(ants, pr.Fired.Antecedents...)
	merged := MergeAntecedents(ants)

	out := make([]rbc.AntecedentJSON, 0, len(merged))
	for _, a := range merged {
		j, err := a.ToJSON(m.Schema())
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, nil
}

// 同一特征上按比较方向聚合的界
type featureBounds struct {
	ref      format.AttrIndex
	lower    *format.Antecedent // > 或 >=
	upper    *format.Antecedent // < 或 <=
	equals   []format.Antecedent
	firstPos int
}

/*
	MergeAntecedents 按特征合并原子条件

	下界取最大值, 同值时 > 紧于 >=; 上界取最小值, 同值时 < 紧于 <=.
	等值和不等测试没有序关系, 去重后原样保留.
	输出按特征首次出现的顺序, 同特征内先下界再上界再等值测试
*/
func MergeAntecedents(ants []format.Antecedent) []format.Antecedent {
	byFeature := make(map[int]*featureBounds)
	var order []int
	for _, a := range ants {
		fb, ok := byFeature[a.Attr.Pos]
		if !ok {
			fb = &featureBounds{ref: a.Attr, firstPos: len(order)}
			byFeature[a.Attr.Pos] = fb
			order = append(order, a.Attr.Pos)
		}
		a := a
		switch a.Op {
		case rbc_config.Greater, rbc_config.GreaterE:
			if fb.lower == nil || tighterLower(a, *fb.lower) {
				fb.lower = &a
			}
		case rbc_config.Less, rbc_config.LessE:
			if fb.upper == nil || tighterUpper(a, *fb.upper) {
				fb.upper = &a
			}
		default:
			dup := false
			for _, e := range fb.equals {
				if e.Op == a.Op && e.Value == a.Value {
					dup = true
					break
				}
			}
			if !dup {
				fb.equals = append(fb.equals, a)
			}
		}
	}

	var out []format.Antecedent
	for _, pos := range order {
		fb := byFeature[pos]
		if fb.lower != nil {
			out = append(out, *fb.lower)
		}
		if fb.upper != nil {
			out = append(out, *fb.upper)
		}
		out = append(out, fb.equals...)
	}
	return out
}

func tighterLower(a, b format.Antecedent) bool {
	if a.Value != b.Value {
		return a.Value > b.Value
	}
	return a.Op == rbc_config.Greater && b.Op == rbc_config.GreaterE
}

func tighterUpper(a, b format.Antecedent) bool {
	if a.Value != b.Value {
		return a.Value < b.Value
	}
	return a.Op == rbc_config.Less && b.Op == rbc_config.LessE
}
