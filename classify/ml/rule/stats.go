package rule

import (
	"math"

	"rbc-shenglin/classify/format"
	"rbc-shenglin/rock-share/base/logger"
)

/*
	RuleStats 规则集的MDL统计引擎
	持有一份数据和一组有序规则, 按规则位置缓存:
	1.covered/uncovered数据切分(filtered)
	2.六个加权计数 [coverage, uncoverage, TP, TN, FP, FN] (simpleStats)
	两份缓存一起失效, 只在需要时重算(countData), 不是每次调用都算
	剪枝判定是数值推导出来的, 公式不能动
*/

// 理论编码的冗余折扣
const redundancyFactor = 0.5

// simpleStats向量里各计数的位置
const (
	statCoverage = iota
	statUncoverage
	statTP
	statTN
	statFP
	statFN
	numStats
)

type RuleStats struct {
	data  *format.Instances
	rules []*Rule

	filtered    [][2]*format.Instances
	simpleStats [][]float64

	// 所有可能的原子条件数, theoryDL的全集规模
	totalConds float64
}

func NewRuleStats(data *format.Instances, rules []*Rule) *RuleStats {
	return &RuleStats{
		data:       data,
		rules:      rules,
		totalConds: NumAllConditions(data),
	}
}

// NumAllConditions 数据上所有可能的原子条件数:
// 离散属性贡献取值数, 连续属性贡献2倍去重取值数(两个比较方向)
func NumAllConditions(data *format.Instances) float64 {
	total := 0.0
	schema := data.Schema()
	for j := 1; j < schema.NumAttrs(); j++ {
		attr := schema.Attr(j)
		if attr.IsDiscrete() {
			total += float64(attr.NumValues())
			continue
		}
		distinct := make(map[float64]struct{})
		for i := 0; i < data.Len(); i++ {
			v := data.Row(i)[j]
			if !math.IsNaN(v) {
				distinct[v] = struct{}{}
			}
		}
		total += 2.0 * float64(len(distinct))
	}
	return total
}

func (rs *RuleStats) Rules() []*Rule {
	return rs.rules
}

func (rs *RuleStats) Data() *format.Instances {
	return rs.data
}

// Copy what-if探索用的私有副本, 共享数据但不共享缓存
func (rs *RuleStats) Copy() *RuleStats {
	rules := make([]*Rule, len(rs.rules))
	copy(rules, rs.rules)
	return &RuleStats{data: rs.data, rules: rules, totalConds: rs.totalConds}
}

// CountData 逐条规则切分数据并累计计数, 每条规则只看前面规则没覆盖到的剩余数据
func (rs *RuleStats) CountData() {
	rs.filtered = make([][2]*format.Instances, len(rs.rules))
	rs.simpleStats = make([][]float64, len(rs.rules))
	data := rs.data
	for i, r := range rs.rules {
		stats := make([]float64, numStats)
		covered, uncovered := ComputeSimpleStats(r, data, stats)
		rs.filtered[i] = [2]*format.Instances{covered, uncovered}
		rs.simpleStats[i] = stats
		data = uncovered
	}
}

func (rs *RuleStats) countIfNeeded() {
	if rs.simpleStats == nil {
		rs.CountData()
	}
}

// SimpleStats 第idx条规则的六计数
func (rs *RuleStats) SimpleStats(idx int) []float64 {
	rs.countIfNeeded()
	return rs.simpleStats[idx]
}

// Filtered 第idx条规则的covered/uncovered切分
func (rs *RuleStats) Filtered(idx int) (*format.Instances, *format.Instances) {
	rs.countIfNeeded()
	return rs.filtered[idx][0], rs.filtered[idx][1]
}

// ComputeSimpleStats 先算规则的覆盖掩码, 再按掩码累计六计数并切分:
// 覆盖侧按类别是否等于后件累计TP/FP, 未覆盖侧累计TN/FN, 全按权重
func ComputeSimpleStats(r *Rule, data *format.Instances, stats []float64) (*format.Instances, *format.Instances) {
	mask := r.Coverage(data)
	for i := 0; i < data.Len(); i++ {
		w := data.Weight(i)
		if mask.Contains(i) {
			stats[statCoverage] += w
			if data.ClassIndex(i) == r.Consequent {
				stats[statTP] += w
			} else {
				stats[statFP] += w
			}
		} else {
			stats[statUncoverage] += w
			if data.ClassIndex(i) != r.Consequent {
				stats[statTN] += w
			} else {
				stats[statFN] += w
			}
		}
	}
	return Split(data, mask)
}

func log2(x float64) float64 {
	return math.Log2(x)
}

// SubsetDL 从t个已知元素里指明k个"正例"所需的比特数, p是期望的正例概率
// p越接近实际占比编码越省, p<=0或>=1的项跳过不计
func SubsetDL(t, k, p float64) float64 {
	dl := 0.0
	if p > 0 {
		dl -= k * log2(p)
	}
	if p < 1 {
		dl -= (t - k) * log2(1 - p)
	}
	return dl
}

// DataDL 数据编码比特数 = 实例条数 + 两侧错误的编码
// cover和uncover谁大谁用期望错误率编码, 另一侧用实际错误率
// 这个不对称是推导出来的, 按cover和uncover的大小比较来选, 不能改
func DataDL(expFPOverErr, cover, uncover, fp, fn float64) float64 {
	totalBits := log2(cover + uncover + 1.0)
	var coverBits, uncoverBits, expErr float64
	if cover > uncover {
		expErr = expFPOverErr * (fp + fn)
		coverBits = SubsetDL(cover, fp, expErr/cover)
		if uncover > 0 {
			uncoverBits = SubsetDL(uncover, fn, fn/uncover)
		}
	} else {
		expErr = (1.0 - expFPOverErr) * (fp + fn)
		if cover > 0 {
			coverBits = SubsetDL(cover, fp, fp/cover)
		}
		uncoverBits = SubsetDL(uncover, fn, expErr/uncover)
	}
	return totalBits + coverBits + uncoverBits
}

// TheoryDL 指明这条规则用了全部可能条件里哪k个的通用先验编码成本
func (rs *RuleStats) TheoryDL(idx int) float64 {
	k := float64(rs.rules[idx].Size())
	if k == 0 {
		return 0.0
	}
	tdl := log2(k)
	if k > 1 {
		tdl += 2.0 * log2(tdl)
	}
	tdl += SubsetDL(rs.totalConds, k, k/rs.totalConds)
	return redundancyFactor * tdl
}

// potential 删掉第idx条规则能省下的比特数
// 省得下(>=0)或者该规则自身FP率>=0.5且开了checkErr时执行删除并更新聚合计数,
// 返回省下的比特数; 否则返回NaN表示保留
// FP率过半的强删不看DL符号: 错得比对得多的规则没有表达价值, 编码再便宜也没用
func (rs *RuleStats) potential(idx int, expFPOverErr float64, rulesetStat, ruleStat []float64, checkErr bool) float64 {
	pcov := rulesetStat[statCoverage] - ruleStat[statCoverage]
	puncov := rulesetStat[statUncoverage] + ruleStat[statCoverage]
	pfp := rulesetStat[statFP] - ruleStat[statFP]
	pfn := rulesetStat[statFN] + ruleStat[statTP] // 删掉后TP翻成FN

	dataDLWith := DataDL(expFPOverErr, rulesetStat[statCoverage], rulesetStat[statUncoverage], rulesetStat[statFP], rulesetStat[statFN])
	theoryDLRule := rs.TheoryDL(idx)
	dataDLWithout := DataDL(expFPOverErr, pcov, puncov, pfp, pfn)
	saved := dataDLWith + theoryDLRule - dataDLWithout

	overErr := false
	if checkErr && ruleStat[statCoverage] > 0 {
		overErr = ruleStat[statFP]/ruleStat[statCoverage] >= 0.5
	}

	if saved >= 0.0 || overErr {
		rulesetStat[statCoverage] = pcov
		rulesetStat[statUncoverage] = puncov
		rulesetStat[statFP] = pfp
		rulesetStat[statFN] = pfn
		return saved
	}
	return math.NaN()
}

// ReduceDL 从后往前扫一遍, 删掉对总描述长度有净收益的规则
// 必须倒序: 删掉第i条会改变它后面所有规则的覆盖归属,
// 从后往前让每次判定用的都是已经定型的下游统计
// 有删除时缓存只在最后统一失效重算一次
func (rs *RuleStats) ReduceDL(expFPRate float64, checkErr bool) {
	rs.countIfNeeded()

	rulesetStat := make([]float64, numStats)
	for j, stats := range rs.simpleStats {
		rulesetStat[statCoverage] += stats[statCoverage]
		rulesetStat[statTP] += stats[statTP]
		rulesetStat[statFP] += stats[statFP]
		if j == len(rs.simpleStats)-1 { // 未覆盖侧只有最后一条规则的剩余才是全集的剩余
			rulesetStat[statUncoverage] = stats[statUncoverage]
			rulesetStat[statTN] = stats[statTN]
			rulesetStat[statFN] = stats[statFN]
		}
	}

	needUpdate := false
	for k := len(rs.simpleStats) - 1; k >= 0; k-- {
		ruleStat := rs.simpleStats[k]
		ifDeleted := rs.potential(k, expFPRate, rulesetStat, ruleStat, checkErr)
		if !math.IsNaN(ifDeleted) {
			logger.Debugf("reduceDL: delete rule %d, %.4f bits saved", k, ifDeleted)
			last := k == len(rs.rules)-1
			rs.rules = append(rs.rules[:k], rs.rules[k+1:]...)
			rs.simpleStats = append(rs.simpleStats[:k], rs.simpleStats[k+1:]...)
			rs.filtered = append(rs.filtered[:k], rs.filtered[k+1:]...)
			if !last {
				needUpdate = true
			}
		}
	}

	if needUpdate {
		rs.filtered = nil
		rs.simpleStats = nil
		rs.CountData()
	}
}
