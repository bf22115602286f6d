package rule

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"rbc-shenglin/classify/format"
	"rbc-shenglin/rbc_config"
)

// x取0..9, x>=5的行类别是a, 其余是b
func thresholdData(t *testing.T) *format.Instances {
	t.Helper()
	class, err := format.NewDiscreteAttribute("label", []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	x := format.NewContinuousAttribute("x", rbc_config.IntSubType)
	schema, err := format.NewSchema([]*format.Attribute{class, x})
	if err != nil {
		t.Fatal(err)
	}
	rows := make([][]float64, 10)
	for i := 0; i < 10; i++ {
		label := 1.0 // b
		if i >= 5 {
			label = 0.0 // a
		}
		rows[i] = []float64{label, float64(i)}
	}
	ins, err := format.NewInstances(schema, nil, rows, nil)
	if err != nil {
		t.Fatal(err)
	}
	return ins
}

func geq(t *testing.T, ins *format.Instances, value float64) format.Antecedent {
	t.Helper()
	ref, err := ins.Schema().Ref(1)
	if err != nil {
		t.Fatal(err)
	}
	return format.Antecedent{Attr: ref, Op: rbc_config.GreaterE, Value: value}
}

func TestSubsetDL(t *testing.T) {
	// p=0.5时每个元素恰好1比特
	assert.InDelta(t, 10.0, SubsetDL(10, 3, 0.5), 1e-9)
	// 没有正例且p=0时两项都不计
	assert.Equal(t, 0.0, SubsetDL(8, 0, 0))
}

func TestDataDLNoErrors(t *testing.T) {
	// 无错时只剩实例条数那一项
	assert.InDelta(t, math.Log2(10), DataDL(0.5, 6, 3, 0, 0), 1e-9)
}

func TestNumAllConditions(t *testing.T) {
	class, _ := format.NewDiscreteAttribute("label", []string{"a", "b"})
	color, _ := format.NewDiscreteAttribute("color", []string{"red", "blue"})
	x := format.NewContinuousAttribute("x", rbc_config.FloatSubType)
	schema, err := format.NewSchema([]*format.Attribute{class, color, x})
	if err != nil {
		t.Fatal(err)
	}
	ins, err := format.NewInstances(schema, nil, [][]float64{
		{0, 0, 1.5},
		{1, 1, 2.5},
		{0, 0, 2.5},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	// color贡献2, x两个去重取值贡献4, 类别列不算
	assert.Equal(t, 6.0, NumAllConditions(ins))
}

func TestComputeSimpleStats(t *testing.T) {
	ins := thresholdData(t)
	r := &Rule{Antecedents: []format.Antecedent{geq(t, ins, 3)}, Consequent: 0}

	stats := make([]float64, 6)
	covered, uncovered := ComputeSimpleStats(r, ins, stats)
	assert.Equal(t, 7, covered.Len())
	assert.Equal(t, 3, uncovered.Len())
	// x in [3,4]是覆盖侧的b, FP=2; x in [0,2]是未覆盖侧的b, TN=3
	assert.Equal(t, []float64{7, 3, 5, 3, 2, 0}, stats)
}

func TestMeasures(t *testing.T) {
	ins := thresholdData(t)
	r := &Rule{Antecedents: []format.Antecedent{geq(t, ins, 5)}, Consequent: 0}

	m, covered, uncovered := r.ComputeMeasures(ins)
	assert.Equal(t, 5, covered.Len())
	assert.Equal(t, 5, uncovered.Len())
	assert.Equal(t, 5.0, m.Coverage)
	assert.Equal(t, 0.5, m.Support)
	assert.Equal(t, 1.0, m.Confidence)
	assert.Equal(t, 2.0, m.Lift)
	assert.True(t, math.IsInf(m.Conviction, 1))
}

func TestReduceDLKeepsPerfectRule(t *testing.T) {
	ins := thresholdData(t)
	rules := []*Rule{
		{Antecedents: []format.Antecedent{geq(t, ins, 5)}, Consequent: 0},
	}
	rs := NewRuleStats(ins, rules)
	rs.ReduceDL(0.5, true)
	assert.Len(t, rs.Rules(), 1)
}

func TestReduceDLForcesOutOverErrRule(t *testing.T) {
	ins := thresholdData(t)
	good := &Rule{Antecedents: []format.Antecedent{geq(t, ins, 5)}, Consequent: 0}
	// 覆盖剩余的{3,4}, 全是b却断言a, FP率1
	bad := &Rule{Antecedents: []format.Antecedent{geq(t, ins, 3)}, Consequent: 0}
	deflt := &Rule{Consequent: 1}

	rs := NewRuleStats(ins, []*Rule{good, bad, deflt})
	rs.ReduceDL(0.5, true)
	kept := len(rs.Rules())

	// 再跑一遍不会有新的删除
	rs.ReduceDL(0.5, true)
	assert.Len(t, rs.Rules(), kept)

	for _, r := range rs.Rules() {
		if len(r.Antecedents) == 1 && r.Antecedents[0].Value == 3 {
			t.Fatal("rule with over-half error rate must be deleted")
		}
	}

	// 剩余规则的覆盖计数仍要把数据分完
	total := 0.0
	for i := range rs.Rules() {
		total += rs.SimpleStats(i)[0]
		if i == len(rs.Rules())-1 {
			total += rs.SimpleStats(i)[1]
		}
	}
	assert.Equal(t, ins.SumOfWeights(), total)
}

func TestCoverageMaskDrivesSplit(t *testing.T) {
	data := thresholdData(t)
	r := &Rule{Antecedents: []format.Antecedent{geq(t, data, 5)}, Consequent: 0}

	mask := r.Coverage(data)
	assert.Equal(t, 5, mask.Size())
	for i := 0; i < data.Len(); i++ {
		assert.Equal(t, i >= 5, mask.Contains(i), "row %d", i)
	}

	covered, uncovered := Split(data, mask)
	assert.Equal(t, 5, covered.Len())
	assert.Equal(t, 5, uncovered.Len())
	for i := 0; i < covered.Len(); i++ {
		assert.True(t, r.Covers(covered.Row(i)))
	}
	for i := 0; i < uncovered.Len(); i++ {
		assert.False(t, r.Covers(uncovered.Row(i)))
	}
	// 切分后id不重不漏
	seen := map[int64]bool{}
	for i := 0; i < covered.Len(); i++ {
		seen[covered.Id(i)] = true
	}
	for i := 0; i < uncovered.Len(); i++ {
		assert.False(t, seen[uncovered.Id(i)])
		seen[uncovered.Id(i)] = true
	}
	assert.Equal(t, data.Len(), len(seen))
}
