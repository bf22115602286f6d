package model

import (
	"testing"

	"rbc-shenglin/classify/format"
	"rbc-shenglin/classify/ml/rule"
	"rbc-shenglin/rbc_config"
)

// 类别{ok NO_bad}, 特征age(int)和color{red blue}
func testModel(t *testing.T) (*RuleBasedModel, *format.Schema) {
	t.Helper()
	class, err := format.NewDiscreteAttribute("label", []string{"ok", "NO_bad"})
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
	m := NewRuleBasedModel(false)
	m.SetSchema(schema)
	err = m.SetRules([]*rule.Rule{
		{Antecedents: []format.Antecedent{
			{Attr: ageRef, Op: rbc_config.GreaterE, Value: 30},
			{Attr: colorRef, Op: rbc_config.Equal, Value: 0}, // red
		}, Consequent: 0},
		{Consequent: 1}, // 默认NO_bad
	})
	if err != nil {
		t.Fatal(err)
	}
	return m, schema
}

func instancesOn(t *testing.T, schema *format.Schema, rows [][]float64) *format.Instances {
	t.Helper()
	ins, err := format.NewInstances(schema, nil, rows, nil)
	if err != nil {
		t.Fatal(err)
	}
	return ins
}

func TestPredictFirstMatch(t *testing.T) {
	m, schema := testModel(t)
	ins := instancesOn(t, schema, [][]float64{
		{0, 35, 0}, // 命中第一条
		{0, 20, 0}, // 落到默认规则
	})
	preds, err := m.Predict(ins)
	if err != nil {
		t.Fatal(err)
	}
	if preds[0].ClassName != "ok" || preds[0].FiredPos != 0 {
		t.Fatalf("first instance: %+v", preds[0])
	}
	if len(preds[0].Tried) != 0 {
		t.Fatalf("first rule fired, nothing tried before it: %+v", preds[0].Tried)
	}
	if preds[1].ClassName != "NO_bad" || preds[1].FiredPos != 1 {
		t.Fatalf("second instance: %+v", preds[1])
	}
	if len(preds[1].Tried) != 1 {
		t.Fatalf("default fired after one miss, tried=%d", len(preds[1].Tried))
	}
}

func TestPredictNullOnNoMatch(t *testing.T) {
	m, schema := testModel(t)
	// 去掉默认规则, 没命中就是空预测
	ageRef, _ := schema.Ref(1)
	if err := m.SetRules([]*rule.Rule{
		{Antecedents: []format.Antecedent{{Attr: ageRef, Op: rbc_config.GreaterE, Value: 30}}, Consequent: 0},
	}); err != nil {
		t.Fatal(err)
	}
	ins := instancesOn(t, schema, [][]float64{{1, 20, 1}})
	preds, err := m.Predict(ins)
	if err != nil {
		t.Fatal(err)
	}
	if preds[0].ClassIndex != -1 || preds[0].Fired != nil {
		t.Fatalf("expected null prediction, got %+v", preds[0])
	}
	if preds[0].Tried != nil {
		t.Fatal("null prediction carries no explanation material")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	m, schema := testModel(t)
	js, err := m.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	restored, err := FromJSON(js)
	if err != nil {
		t.Fatal(err)
	}
	if restored.ModelId != m.ModelId || restored.IsNormalized != m.IsNormalized {
		t.Fatalf("identity lost: %+v", restored)
	}

	ins := instancesOn(t, schema, [][]float64{
		{0, 35, 0},
		{0, 20, 1},
		{1, 40, 1},
	})
	orig, err := m.Predict(ins)
	if err != nil {
		t.Fatal(err)
	}
	back, err := restored.Predict(ins)
	if err != nil {
		t.Fatal(err)
	}
	for i := range orig {
		if orig[i].ClassName != back[i].ClassName || orig[i].FiredPos != back[i].FiredPos {
			t.Fatalf("instance %d: %+v vs %+v", i, orig[i], back[i])
		}
	}
}

func TestPositiveLogicRules(t *testing.T) {
	m, _ := testModel(t)
	logic, err := m.PositiveLogicRules()
	if err != nil {
		t.Fatal(err)
	}
	// 默认规则的后件带负例前缀, 只剩第一条
	if len(logic) != 1 {
		t.Fatalf("want 1 positive rule, got %d", len(logic))
	}
	lr := logic[0]
	if lr.Consequent != "ok" || len(lr.Items) != 2 {
		t.Fatalf("logic rule: %+v", lr)
	}
	t.Log("logic==>", lr.String())

	hit, err := EvaluateLogicRule(lr, map[string]interface{}{"age": 35.0, "color": "red"})
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Fatal("age 35 red must satisfy the rule")
	}
	hit, err = EvaluateLogicRule(lr, map[string]interface{}{"age": 35.0, "color": "blue"})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Fatal("blue must not satisfy the rule")
	}
}

func TestLogicRuleCarriesEarlierNegations(t *testing.T) {
	class, _ := format.NewDiscreteAttribute("label", []string{"NO_skip", "take"})
	age := format.NewContinuousAttribute("age", rbc_config.IntSubType)
	schema, err := format.NewSchema([]*format.Attribute{class, age})
	if err != nil {
		t.Fatal(err)
	}
	ageRef, _ := schema.Ref(1)
	m := NewRuleBasedModel(false)
	m.SetSchema(schema)
	if err := m.SetRules([]*rule.Rule{
		{Antecedents: []format.Antecedent{{Attr: ageRef, Op: rbc_config.Less, Value: 18}}, Consequent: 0},
		{Consequent: 1},
	}); err != nil {
		t.Fatal(err)
	}

	logic, err := m.PositiveLogicRules()
	if err != nil {
		t.Fatal(err)
	}
	if len(logic) != 1 {
		t.Fatalf("want 1 positive rule, got %d", len(logic))
	}
	// 默认规则的逻辑形式 = 前一条规则的取反
	item := logic[0].Items[0]
	if item.Feature != "age" || item.Operator != rbc_config.GreaterE || item.Value != "18" {
		t.Fatalf("negated antecedent: %+v", item)
	}
}

func TestComputeRuleMeasuresOrder(t *testing.T) {
	m, schema := testModel(t)
	ins := instancesOn(t, schema, [][]float64{
		{0, 35, 0},
		{0, 40, 0},
		{1, 20, 1},
		{1, 25, 0},
	})
	rows, err := m.ComputeRuleMeasures(ins)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("want a row per rule, got %d", len(rows))
	}
	// 第一条规则局部和全局一样, 默认规则的局部度量只看剩余两行
	if rows[0].Local.Coverage != 2 || rows[0].Global.Coverage != 2 {
		t.Fatalf("rule 0 coverage: %+v", rows[0])
	}
	if rows[1].Local.Coverage != 2 || rows[1].Global.Coverage != 4 {
		t.Fatalf("default coverage: %+v", rows[1])
	}
	if rows[1].Local.Confidence != 1 {
		t.Fatalf("default local confidence: %+v", rows[1].Local)
	}
	PrintMeasures(rows)
}
