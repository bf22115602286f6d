package format

import (
	"fmt"
	"math"
	"math/rand"

	"rbc-shenglin/rbc_config"
)

/*
	Instances 带权表格数据集, 类别值固定在行首
	约束:
	1.行宽等于属性数
	2.类别属性必须是离散的
	3.显式给权重时长度要和行数一致
	派生操作(切分/分层/对齐)一律产出新Instances, 不改源数据行
*/

type Instances struct {
	schema  *Schema
	ids     []int64
	rows    [][]float64
	weights []float64
}

func NewInstances(schema *Schema, ids []int64, rows [][]float64, weights []float64) (*Instances, error) {
	if !schema.ClassAttr().IsDiscrete() {
		return nil, fmt.Errorf("instances: class attribute %s must be discrete", schema.ClassAttr().Name)
	}
	for i, row := range rows {
		if len(row) != schema.NumAttrs() {
			return nil, fmt.Errorf("instances: row %d has %d values, schema has %d attributes", i, len(row), schema.NumAttrs())
		}
	}
	if ids == nil {
		ids = make([]int64, len(rows))
		for i := range ids {
			ids[i] = int64(i)
		}
	} else if len(ids) != len(rows) {
		return nil, fmt.Errorf("instances: %d ids for %d rows", len(ids), len(rows))
	}
	if weights == nil {
		weights = make([]float64, len(rows))
		for i := range weights {
			weights[i] = 1
		}
	} else if len(weights) != len(rows) {
		return nil, fmt.Errorf("instances: %d weights for %d rows", len(weights), len(rows))
	}
	return &Instances{schema: schema, ids: ids, rows: rows, weights: weights}, nil
}

func (ins *Instances) Len() int {
	return len(ins.rows)
}

func (ins *Instances) Schema() *Schema {
	return ins.schema
}

func (ins *Instances) Row(i int) []float64 {
	return ins.rows[i]
}

func (ins *Instances) Id(i int) int64 {
	return ins.ids[i]
}

func (ins *Instances) Weight(i int) float64 {
	return ins.weights[i]
}

// ClassIndex 第i行的类别域下标, 空值返回-1
func (ins *Instances) ClassIndex(i int) int {
	v := ins.rows[i][0]
	if math.IsNaN(v) {
		return -1
	}
	return int(v)
}

func (ins *Instances) SumOfWeights() float64 {
	sum := 0.0
	for _, w := range ins.weights {
		sum += w
	}
	return sum
}

// ClassCounts 各类别的加权计数, 按类别域下标排
func (ins *Instances) ClassCounts() []float64 {
	counts := make([]float64, ins.schema.ClassAttr().NumValues())
	for i := range ins.rows {
		ci := ins.ClassIndex(i)
		if ci >= 0 && ci < len(counts) {
			counts[ci] += ins.weights[i]
		}
	}
	return counts
}

// Select 按行下标取子集, 共享schema和底层行
func (ins *Instances) Select(indices []int) *Instances {
	ids := make([]int64, 0, len(indices))
	rows := make([][]float64, 0, len(indices))
	weights := make([]float64, 0, len(indices))
	for _, i := range indices {
		ids = append(ids, ins.ids[i])
		rows = append(rows, ins.rows[i])
		weights = append(weights, ins.weights[i])
	}
	return &Instances{schema: ins.schema, ids: ids, rows: rows, weights: weights}
}

// Empty 同schema的空数据集
func (ins *Instances) Empty() *Instances {
	return &Instances{schema: ins.schema}
}

// Merge 拼接两个同schema的数据集
func (ins *Instances) Merge(other *Instances) (*Instances, error) {
	if ins.schema != other.schema && !ins.schema.SameAs(other.schema) {
		return nil, fmt.Errorf("instances: merge across different schemas")
	}
	return &Instances{
		schema:  ins.schema,
		ids:     append(append([]int64{}, ins.ids...), other.ids...),
		rows:    append(append([][]float64{}, ins.rows...), other.rows...),
		weights: append(append([]float64{}, ins.weights...), other.weights...),
	}, nil
}

// Randomize 洗牌, 产出新Instances, 调用方在需要随机切分时先洗再Partition
func (ins *Instances) Randomize(rng *rand.Rand) *Instances {
	indices := make([]int, ins.Len())
	for i := range indices {
		indices[i] = i
	}
	rng.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	return ins.Select(indices)
}

// Partition 按当前顺序在round(n*ratio)处切开, 不做隐式洗牌
func (ins *Instances) Partition(ratio float64) (*Instances, *Instances) {
	k := int(math.Round(float64(ins.Len()) * ratio))
	if k < 0 {
		k = 0
	}
	if k > ins.Len() {
		k = ins.Len()
	}
	first := make([]int, 0, k)
	second := make([]int, 0, ins.Len()-k)
	for i := 0; i < ins.Len(); i++ {
		if i < k {
			first = append(first, i)
		} else {
			second = append(second, i)
		}
	}
	return ins.Select(first), ins.Select(second)
}

// StratifiedBinPartition 按类别分桶, 每桶各自按(numFolds-1)/numFolds切开再拼回,
// 保证严重不均衡时每个类别在grow和prune两侧都有成比例的代表
func (ins *Instances) StratifiedBinPartition(numFolds int) (*Instances, *Instances, error) {
	if numFolds < 2 {
		return nil, nil, fmt.Errorf("instances: numFolds %d must be at least 2", numFolds)
	}
	numClasses := ins.schema.ClassAttr().NumValues()
	buckets := make([][]int, numClasses)
	for i := 0; i < ins.Len(); i++ {
		ci := ins.ClassIndex(i)
		if ci < 0 || ci >= numClasses {
			return nil, nil, fmt.Errorf("instances: row %d (id %d) has class index %d outside domain", i, ins.ids[i], ci)
		}
		buckets[ci] = append(buckets[ci], i)
	}
	ratio := float64(numFolds-1) / float64(numFolds)
	var growIdx, pruneIdx []int
	for _, bucket := range buckets {
		k := int(math.Round(float64(len(bucket)) * ratio))
		growIdx = append(growIdx, bucket[:k]...)
		pruneIdx = append(pruneIdx, bucket[k:]...)
	}
	return ins.Select(growIdx), ins.Select(pruneIdx), nil
}

// CheckCutOff 数据里出现的每个类别占总加权数的份额都要达到threshold,
// 有类别低于它就返回false, 调用方据此放弃在不可信的数据上训练
func (ins *Instances) CheckCutOff(threshold float64) bool {
	total := ins.SumOfWeights()
	if total <= 0 {
		return true
	}
	for _, count := range ins.ClassCounts() {
		if count > 0 && count/total < threshold {
			return false
		}
	}
	return true
}

// SortAttrsAs 把本数据集的schema逐值对齐到target的顺序和取值域
// 返回值: 是否本来就语义一致(一致时直接复用, 跳过拷贝), 对齐后的数据集, 错误
// target属性找不到同名来源时报能力错误, 除非allowDummy(离散缺列补占位取值, 连续缺列填空值);
// target属性表达能力不如来源时报能力错误, 除非allowDataLoss(域外值映射到哨兵)
func (ins *Instances) SortAttrsAs(target *Schema, allowDataLoss, allowDummy bool) (bool, *Instances, error) {
	if ins.schema.SameAs(target) {
		return true, ins, nil
	}

	type mapping struct {
		srcPos int  // -1表示dummy列
		remap  bool // 离散列需要按取值重映射
	}
	mappings := make([]mapping, target.NumAttrs())
	finalAttrs := make([]*Attribute, target.NumAttrs())
	extended := false

	for j := 0; j < target.NumAttrs(); j++ {
		tAttr := target.Attr(j)
		finalAttrs[j] = tAttr
		srcPos, ok := ins.schema.IndexOf(tAttr.Name)
		if !ok {
			if !allowDummy {
				return false, nil, fmt.Errorf("sortAttrsAs: target attribute %q has no source counterpart", tAttr.Name)
			}
			// 离散dummy列补占位取值, 行值才是合法的域下标; 连续dummy列只能填空值
			if tAttr.IsDiscrete() {
				ext, err := tAttr.WithExtraValue(rbc_config.DummyValue)
				if err != nil {
					return false, nil, err
				}
				if ext != tAttr {
					finalAttrs[j] = ext
					extended = true
				}
			}
			mappings[j] = mapping{srcPos: -1}
			continue
		}
		sAttr := ins.schema.Attr(srcPos)
		if !tAttr.IsAtLeastAsExpressiveAs(sAttr, allowDataLoss) {
			return false, nil, fmt.Errorf("sortAttrsAs: target attribute %q is not at least as expressive as its source", tAttr.Name)
		}
		needRemap := false
		if tAttr.IsDiscrete() {
			needRemap = !sAttr.sameAs(tAttr)
			if needRemap && allowDataLoss {
				// 域外取值要落到哨兵上, 哨兵不在目标域里就补上
				for _, v := range sAttr.Domain() {
					if _, ok := tAttr.IndexOf(v); !ok {
						ext, err := tAttr.WithExtraValue(rbc_config.UnseenValue)
						if err != nil {
							return false, nil, err
						}
						if ext != tAttr {
							finalAttrs[j] = ext
							extended = true
						}
						break
					}
				}
			}
		}
		mappings[j] = mapping{srcPos: srcPos, remap: needRemap}
	}

	finalSchema := target
	if extended {
		var err error
		finalSchema, err = NewSchema(finalAttrs)
		if err != nil {
			return false, nil, err
		}
	}

	rows := make([][]float64, ins.Len())
	for i := 0; i < ins.Len(); i++ {
		row := make([]float64, finalSchema.NumAttrs())
		for j, m := range mappings {
			if m.srcPos < 0 {
				fAttr := finalSchema.Attr(j)
				if fAttr.IsDiscrete() {
					idx, ok := fAttr.IndexOf(rbc_config.DummyValue)
					if !ok {
						return false, nil, fmt.Errorf("sortAttrsAs: dummy value missing from %s domain", fAttr.Name)
					}
					row[j] = float64(idx)
				} else {
					row[j] = math.NaN()
				}
				continue
			}
			v := ins.rows[i][m.srcPos]
			if !m.remap || math.IsNaN(v) {
				row[j] = v
				continue
			}
			sAttr := ins.schema.Attr(m.srcPos)
			fAttr := finalSchema.Attr(j)
			valueStr, err := sAttr.ValueAt(int(v))
			if err != nil {
				return false, nil, fmt.Errorf("sortAttrsAs: row %d (id %d): %v", i, ins.ids[i], err)
			}
			idx, ok := fAttr.IndexOf(valueStr)
			if !ok {
				idx, ok = fAttr.IndexOf(rbc_config.UnseenValue)
				if !ok {
					return false, nil, fmt.Errorf("sortAttrsAs: value %q of %s not in target domain", valueStr, fAttr.Name)
				}
			}
			row[j] = float64(idx)
		}
		rows[i] = row
	}

	ids := make([]int64, len(ins.ids))
	copy(ids, ins.ids)
	weights := make([]float64, len(ins.weights))
	copy(weights, ins.weights)
	aligned, err := NewInstances(finalSchema, ids, rows, weights)
	if err != nil {
		return false, nil, err
	}
	return false, aligned, nil
}
