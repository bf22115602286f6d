package learner

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"rbc-shenglin/classify/format"
	"rbc-shenglin/classify/ml/rule"
	"rbc-shenglin/classify/model"
	"rbc-shenglin/rbc_config"
	"rbc-shenglin/rock-share/base/logger"
	"rbc-shenglin/rock-share/global/enum"
)

/*
	原生贪心规则生长器, 建在RuleStats统计引擎上, 不依赖外部进程
	流程(按类别从少到多逐类处理, 最多的类别留给默认规则):
	1.洗牌后分层切出grow/prune两份
	2.在grow上按FOIL增益贪心加前件
	3.在prune上从尾部剪前件
	4.prune上错误率过半的规则不收, 该类别停止生长
	5.全类别长完后对整个规则集跑一遍ReduceDL
	产出的规则集按序优先匹配, 不互斥(IsNormalized=false)
*/

type NativeGrower struct {
	NumFolds     int
	MinNo        float64 // 规则至少要覆盖的加权实例数
	ExpFPOverErr float64
	CheckErr     bool
	Seed         int64
}

func NewNativeGrower() *NativeGrower {
	return &NativeGrower{
		NumFolds:     rbc_config.DefaultNumFolds,
		MinNo:        rbc_config.DefaultMinNo,
		ExpFPOverErr: rbc_config.ExpFPOverErr,
		CheckErr:     true,
		Seed:         1,
	}
}

func (g *NativeGrower) GetName() string {
	return enum.LEARNER_NATIVE
}

func (g *NativeGrower) InitModel() *model.RuleBasedModel {
	return model.NewRuleBasedModel(enum.LearnerNormalized(g.GetName()))
}

func (g *NativeGrower) Teach(m *model.RuleBasedModel, data *format.Instances) error {
	schema := data.Schema()
	m.SetSchema(schema)

	counts := data.ClassCounts()
	type classCount struct {
		idx   int
		count float64
	}
	order := make([]classCount, 0, len(counts))
	for i, c := range counts {
		if c > 0 {
			order = append(order, classCount{idx: i, count: c})
		}
	}
	if len(order) == 0 {
		return fmt.Errorf("native grower: no class values present in %d instances", data.Len())
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].count < order[j].count
	})

	rng := rand.New(rand.NewSource(g.Seed))
	var rules []*rule.Rule
	remaining := data
	for _, cc := range order[:len(order)-1] {
		rules, remaining = g.growForClass(cc.idx, remaining, rules, rng)
	}

	// 整个规则集按描述长度净收益剪一遍
	rs := rule.NewRuleStats(data, rules)
	rs.ReduceDL(g.ExpFPOverErr, g.CheckErr)
	rules = rs.Rules()

	// 默认规则兜底, 后件是最多的类别, 不参与剪枝
	rules = append(rules, &rule.Rule{Consequent: order[len(order)-1].idx})
	return m.SetRules(rules)
}

// growForClass 为一个类别逐条长规则, 直到正例耗尽或长不出可信的规则
func (g *NativeGrower) growForClass(class int, remaining *format.Instances, rules []*rule.Rule, rng *rand.Rand) ([]*rule.Rule, *format.Instances) {
	for {
		posW := 0.0
		for i := 0; i < remaining.Len(); i++ {
			if remaining.ClassIndex(i) == class {
				posW += remaining.Weight(i)
			}
		}
		if posW < g.MinNo {
			return rules, remaining
		}

		shuffled := remaining.Randomize(rng)
		grow, prune, err := shuffled.StratifiedBinPartition(g.NumFolds)
		if err != nil {
			logger.Errorf("native grower: stratified partition: %v", err)
			return rules, remaining
		}
		r := g.growRule(class, grow)
		if r == nil {
			return rules, remaining
		}
		r = g.pruneRule(r, class, prune)

		// prune集上错得比对得多的规则不收
		stats := make([]float64, 6)
		rule.ComputeSimpleStats(r, prune, stats)
		cover, fp := stats[0], stats[4]
		if cover > 0 && fp/cover >= 0.5 {
			return rules, remaining
		}

		rules = append(rules, r)
		mask := r.Coverage(remaining)
		if mask.Size() == 0 {
			// 规则没覆盖任何剩余实例, 再长也只会重复
			return rules, remaining
		}
		_, uncovered := rule.Split(remaining, mask)
		remaining = uncovered
	}
}

// growRule 在grow集上贪心加前件, FOIL增益为正才加, 负例清零就停
func (g *NativeGrower) growRule(class int, grow *format.Instances) *rule.Rule {
	r := &rule.Rule{Consequent: class}
	current := grow
	for {
		p0, n0 := classSplit(current, class)
		if p0 <= 0 {
			return nil
		}
		if n0 <= 0 {
			break
		}
		best, gain := g.bestAntecedent(class, current, p0, n0)
		if gain <= 0 {
			break
		}
		r.Antecedents = append(r.Antecedents, best)
		step := &rule.Rule{Antecedents: []format.Antecedent{best}, Consequent: class}
		covered, _ := rule.Split(current, step.Coverage(current))
		current = covered
	}
	if len(r.Antecedents) == 0 {
		return nil
	}
	return r
}

// bestAntecedent 枚举所有候选原子条件, 取FOIL增益最大的
func (g *NativeGrower) bestAntecedent(class int, current *format.Instances, p0, n0 float64) (format.Antecedent, float64) {
	schema := current.Schema()
	var best format.Antecedent
	bestGain := 0.0

	try := func(a format.Antecedent) {
		p1, n1 := 0.0, 0.0
		for i := 0; i < current.Len(); i++ {
			if !a.Covers(current.Row(i)) {
				continue
			}
			if current.ClassIndex(i) == class {
				p1 += current.Weight(i)
			} else {
				n1 += current.Weight(i)
			}
		}
		if p1 <= 0 || p1+n1 < g.MinNo {
			return
		}
		gain := p1 * (math.Log2(p1/(p1+n1)) - math.Log2(p0/(p0+n0)))
		if gain > bestGain {
			bestGain = gain
			best = a
		}
	}

	for j := 1; j < schema.NumAttrs(); j++ {
		attr := schema.Attr(j)
		ref, err := schema.Ref(j)
		if err != nil {
			continue
		}
		if attr.IsDiscrete() {
			for v := 0; v < attr.NumValues(); v++ {
				try(format.Antecedent{Attr: ref, Op: rbc_config.Equal, Value: float64(v)})
			}
			continue
		}
		for _, v := range splitPoints(current, j) {
			try(format.Antecedent{Attr: ref, Op: rbc_config.GreaterE, Value: v})
			try(format.Antecedent{Attr: ref, Op: rbc_config.LessE, Value: v})
		}
	}
	return best, bestGain
}

// splitPoints 连续属性的候选阈值: 去重取值, 超过上限时等距抽样
func splitPoints(data *format.Instances, attrPos int) []float64 {
	seen := make(map[float64]struct{})
	var values []float64
	for i := 0; i < data.Len(); i++ {
		v := data.Row(i)[attrPos]
		if math.IsNaN(v) {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}
	sort.Float64s(values)
	if len(values) <= rbc_config.MaxSplitPoints {
		return values
	}
	sampled := make([]float64, 0, rbc_config.MaxSplitPoints)
	step := float64(len(values)) / float64(rbc_config.MaxSplitPoints)
	for i := 0; i < rbc_config.MaxSplitPoints; i++ {
		sampled = append(sampled, values[int(float64(i)*step)])
	}
	return sampled
}

// pruneRule 在prune集上从尾部剪前件, 取worth=(p-n)/(p+n)最大的前缀
func (g *NativeGrower) pruneRule(r *rule.Rule, class int, prune *format.Instances) *rule.Rule {
	bestK := len(r.Antecedents)
	bestWorth := ruleWorth(r.Antecedents, class, prune)
	for k := len(r.Antecedents) - 1; k >= 1; k-- {
		worth := ruleWorth(r.Antecedents[:k], class, prune)
		if worth >= bestWorth {
			bestWorth = worth
			bestK = k
		}
	}
	return &rule.Rule{Antecedents: r.Antecedents[:bestK], Consequent: class}
}

func ruleWorth(antecedents []format.Antecedent, class int, data *format.Instances) float64 {
	r := rule.Rule{Antecedents: antecedents, Consequent: class}
	p, n := 0.0, 0.0
	for i := 0; i < data.Len(); i++ {
		if !r.Covers(data.Row(i)) {
			continue
		}
		if data.ClassIndex(i) == class {
			p += data.Weight(i)
		} else {
			n += data.Weight(i)
		}
	}
	if p+n <= 0 {
		return math.Inf(-1)
	}
	return (p - n) / (p + n)
}

func classSplit(data *format.Instances, class int) (pos, neg float64) {
	for i := 0; i < data.Len(); i++ {
		if data.ClassIndex(i) == class {
			pos += data.Weight(i)
		} else {
			neg += data.Weight(i)
		}
	}
	return pos, neg
}
