package hierarchy

import (
	"testing"

	"rbc-shenglin/classify/format"
	"rbc-shenglin/classify/ml/rule"
	"rbc-shenglin/classify/model"
	"rbc-shenglin/rbc_config"
)

func refsFor(t *testing.T) (format.AttrIndex, format.AttrIndex) {
	t.Helper()
	class, err := format.NewDiscreteAttribute("label", []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	age := format.NewContinuousAttribute("age", rbc_config.IntSubType)
	color, err := format.NewDiscreteAttribute("color", []string{"red", "blue"})
	if err != nil {
		t.Fatal(err)
	}
	schema, err := format.NewSchema([]*format.Attribute{class, age, color})
	if err != nil {
		t.Fatal(err)
	}
	ageRef, _ := schema.Ref(1)
	colorRef, _ := schema.Ref(2)
	return ageRef, colorRef
}

func TestMergeAntecedentsTightestLowerBound(t *testing.T) {
	ageRef, _ := refsFor(t)
	merged := MergeAntecedents([]format.Antecedent{
		{Attr: ageRef, Op: rbc_config.GreaterE, Value: 30},
		{Attr: ageRef, Op: rbc_config.GreaterE, Value: 40},
	})
	if len(merged) != 1 {
		t.Fatalf("want one bound, got %v", merged)
	}
	if merged[0].Op != rbc_config.GreaterE || merged[0].Value != 40 {
		t.Fatalf("want age >= 40, got %s %v", merged[0].Op, merged[0].Value)
	}
}

func TestMergeAntecedentsStrictBeatsInclusive(t *testing.T) {
	ageRef, _ := refsFor(t)
	merged := MergeAntecedents([]format.Antecedent{
		{Attr: ageRef, Op: rbc_config.GreaterE, Value: 40},
		{Attr: ageRef, Op: rbc_config.Greater, Value: 40},
	})
	if len(merged) != 1 || merged[0].Op != rbc_config.Greater {
		t.Fatalf("same value, strict comparison is tighter: %v", merged)
	}

	merged = MergeAntecedents([]format.Antecedent{
		{Attr: ageRef, Op: rbc_config.LessE, Value: 50},
		{Attr: ageRef, Op: rbc_config.Less, Value: 50},
	})
	if len(merged) != 1 || merged[0].Op != rbc_config.Less {
		t.Fatalf("same value, strict comparison is tighter: %v", merged)
	}
}

func TestMergeAntecedentsKeepsRangeAndEqualities(t *testing.T) {
	ageRef, colorRef := refsFor(t)
	merged := MergeAntecedents([]format.Antecedent{
		{Attr: colorRef, Op: rbc_config.NotEqual, Value: 1},
		{Attr: ageRef, Op: rbc_config.GreaterE, Value: 30},
		{Attr: ageRef, Op: rbc_config.Less, Value: 60},
		{Attr: colorRef, Op: rbc_config.NotEqual, Value: 1}, // 重复
		{Attr: colorRef, Op: rbc_config.Equal, Value: 0},
	})
	// color上!=和==各留一个, age留上下界
	if len(merged) != 4 {
		t.Fatalf("want 4 conditions, got %v", merged)
	}
	// 特征按首次出现排: color在前
	if merged[0].Attr.Pos != colorRef.Pos {
		t.Fatalf("first-seen feature order broken: %v", merged)
	}
}

// 规则 [x==1 => NO_x, 默认 => yes], x=2命中默认规则: 解释是前面规则的取反 x != 1
func TestExplanationInvertsTriedRules(t *testing.T) {
	class, _ := format.NewDiscreteAttribute("label", []string{"NO_x", "yes"})
	x := format.NewContinuousAttribute("x", rbc_config.IntSubType)
	schema, err := format.NewSchema([]*format.Attribute{class, x})
	if err != nil {
		t.Fatal(err)
	}
	xRef, _ := schema.Ref(1)
	m := model.NewRuleBasedModel(false)
	m.SetSchema(schema)
	if err := m.SetRules([]*rule.Rule{
		{Antecedents: []format.Antecedent{{Attr: xRef, Op: rbc_config.Equal, Value: 1}}, Consequent: 0},
		{Consequent: 1},
	}); err != nil {
		t.Fatal(err)
	}

	ins, err := format.NewInstances(schema, nil, [][]float64{{1, 2}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	preds, err := m.Predict(ins)
	if err != nil {
		t.Fatal(err)
	}
	cond, err := BuildExplanation(m, preds[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(cond) != 1 {
		t.Fatalf("want the single inverted antecedent, got %v", cond)
	}
	if cond[0].Feature != "x" || cond[0].Operator != rbc_config.NotEqual || cond[0].Value != "1" {
		t.Fatalf("explanation: %+v", cond[0])
	}

	// 互斥模型只看命中规则自身的前件
	m.IsNormalized = true
	preds, err = m.Predict(ins)
	if err != nil {
		t.Fatal(err)
	}
	cond, err = BuildExplanation(m, preds[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(cond) != 0 {
		t.Fatalf("normalized default rule explains nothing beyond itself, got %v", cond)
	}
}

func TestNodeOrder(t *testing.T) {
	order := NewNodeOrder([]string{"high", "mid", "low"})
	names := []string{"zz", "low", "aa", "high"}
	order.Sort(names)
	want := []string{"high", "low", "aa", "zz"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}

func TestPathName(t *testing.T) {
	if PathName(nil) != "root" {
		t.Fatal(PathName(nil))
	}
	if PathName([]string{"a", "b"}) != "root/a/b" {
		t.Fatal(PathName([]string{"a", "b"}))
	}
}
