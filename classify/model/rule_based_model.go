package model

import (
	"fmt"

	"github.com/google/uuid"
	"rbc-shenglin/classify/format"
	"rbc-shenglin/classify/ml/rule"
	"rbc-shenglin/rock-share/base/logger"
)

// Learner 规则构造插件, 模型只负责规则存在之后的事
type Learner interface {
	InitModel() *RuleBasedModel
	Teach(m *RuleBasedModel, data *format.Instances) error
	GetName() string
}

/*
	RuleBasedModel 有序规则表 + 拟合时的完整属性schema
	IsNormalized为true表示规则互斥(比如决策树导出的), 单条命中规则自身就能解释;
	为false表示规则按序优先匹配(逐条增长的), 解释时要带上前面试过没中的规则
*/

type RuleBasedModel struct {
	ModelId      string
	IsNormalized bool

	schema *format.Schema
	rules  []*rule.Rule
}

func NewRuleBasedModel(isNormalized bool) *RuleBasedModel {
	return &RuleBasedModel{
		ModelId:      uuid.NewString(),
		IsNormalized: isNormalized,
	}
}

func (m *RuleBasedModel) Schema() *format.Schema {
	return m.schema
}

// SetSchema 拟合期由学习器调用, schema之后不再变
func (m *RuleBasedModel) SetSchema(s *format.Schema) {
	m.schema = s
}

func (m *RuleBasedModel) Rules() []*rule.Rule {
	return m.rules
}

// SetRules 校验前件引用都出自本模型的schema后接管规则表
// 跨schema的下标误用在这里就会失败, 不会等到预测时悄悄算错
func (m *RuleBasedModel) SetRules(rules []*rule.Rule) error {
	if m.schema == nil {
		return fmt.Errorf("model %s: schema must be set before rules", m.ModelId)
	}
	for i, r := range rules {
		if r.Consequent < 0 || r.Consequent >= m.schema.ClassAttr().NumValues() {
			return fmt.Errorf("model %s: rule %d consequent %d outside class domain", m.ModelId, i, r.Consequent)
		}
		for _, a := range r.Antecedents {
			if _, err := m.schema.Resolve(a.Attr); err != nil {
				return fmt.Errorf("model %s: rule %d: %v", m.ModelId, i, err)
			}
		}
	}
	m.rules = rules
	return nil
}

// Fit 规则构造完全交给学习器插件
func (m *RuleBasedModel) Fit(data *format.Instances, l Learner) error {
	if data == nil || data.Len() == 0 {
		return fmt.Errorf("model %s: no data to fit", m.ModelId)
	}
	logger.Infof("model %s: fitting %d instances with learner %s", m.ModelId, data.Len(), l.GetName())
	if err := l.Teach(m, data); err != nil {
		return fmt.Errorf("model %s: learner %s: %v", m.ModelId, l.GetName(), err)
	}
	logger.Infof("model %s: fitted, %d rules", m.ModelId, len(m.rules))
	return nil
}

// Prediction 单个实例的预测结果
// ClassIndex为-1表示没有规则命中(空预测), 调用方按聚合计数告警, 不算硬错误
type Prediction struct {
	Id         int64
	ClassIndex int
	ClassName  string
	FiredPos   int          // 命中规则在规则表里的位置, -1表示没命中
	Fired      *rule.Rule   // 命中的规则
	Tried      []*rule.Rule // 非互斥模型里, 命中之前试过没中的规则
}

// Predict 按存储顺序走规则表, 第一条全前件命中的规则给出后件
// 非互斥模型把命中之前的规则记为"试过没中", 互斥模型只记命中那条
func (m *RuleBasedModel) Predict(data *format.Instances) ([]Prediction, error) {
	// 预测期显式接受数据丢失: 训练时没见过的离散值映射到哨兵, 降级而不是报错
	identical, aligned, err := data.SortAttrsAs(m.schema, true, false)
	if err != nil {
		return nil, fmt.Errorf("model %s: predict: %v", m.ModelId, err)
	}
	if !identical {
		data = aligned
	}

	preds := make([]Prediction, data.Len())
	nullCount := 0
	for i := 0; i < data.Len(); i++ {
		row := data.Row(i)
		p := Prediction{Id: data.Id(i), ClassIndex: -1, FiredPos: -1}
		for j, r := range m.rules {
			if r.Covers(row) {
				p.ClassIndex = r.Consequent
				p.FiredPos = j
				p.Fired = r
				if name, err := m.schema.ClassAttr().ValueAt(r.Consequent); err == nil {
					p.ClassName = name
				}
				break
			}
			if !m.IsNormalized {
				p.Tried = append(p.Tried, r)
			}
		}
		if p.FiredPos < 0 {
			p.Tried = nil // 空预测没有可解释的内容
			nullCount++
		}
		preds[i] = p
	}
	if nullCount > 0 {
		logger.Warnf("model %s: %d null predictions out of %d instances", m.ModelId, nullCount, data.Len())
	}
	return preds, nil
}
