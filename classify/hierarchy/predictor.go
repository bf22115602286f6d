package hierarchy

import (
	"fmt"
	"strings"

	"rbc-shenglin/classify/format"
	"rbc-shenglin/classify/model"
	"rbc-shenglin/rbc_config"
	"rbc-shenglin/rock-share/base/logger"
	"rbc-shenglin/rock-share/global/model/rbc"
	"rbc-shenglin/storage"
)

// LevelExplanation 某一层的判定结果和它的条件解释
type LevelExplanation struct {
	Node      string               `json:"node"`
	ClassName string               `json:"className"`
	Condition []rbc.AntecedentJSON `json:"condition"`
}

// Predictor 取回整棵层级树逐层走模型, 模型按需加载后常驻缓存
type Predictor struct {
	hierarchy *Hierarchy
	store     storage.Store
	models    map[string]*model.RuleBasedModel
}

func NewPredictor(store storage.Store, taskId string) (*Predictor, error) {
	js, err := store.LoadHierarchy(taskId)
	if err != nil {
		return nil, fmt.Errorf("predict %s: load hierarchy: %v", taskId, err)
	}
	h, err := FromJSON(js)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %v", taskId, err)
	}
	root, ok := h.Root()
	if !ok {
		return nil, fmt.Errorf("predict %s: hierarchy has no root", taskId)
	}
	if root.ModelId == "" {
		return nil, fmt.Errorf("predict %s: root node status %s, no model to run", taskId, root.Status)
	}
	return &Predictor{hierarchy: h, store: store, models: make(map[string]*model.RuleBasedModel)}, nil
}

func NewPredictorFrom(h *Hierarchy, store storage.Store) (*Predictor, error) {
	root, ok := h.Root()
	if !ok {
		return nil, fmt.Errorf("predict: hierarchy has no root")
	}
	if root.ModelId == "" {
		return nil, fmt.Errorf("predict: root node status %s, no model to run", root.Status)
	}
	return &Predictor{hierarchy: h, store: store, models: make(map[string]*model.RuleBasedModel)}, nil
}

func (p *Predictor) Hierarchy() *Hierarchy {
	return p.hierarchy
}

// Predict 逐实例从根往下走, 每层的输出决定下一层进哪个结点
// 空预测或负例类别都让该实例止步于当前层, 已走过的层照常返回
func (p *Predictor) Predict(data *format.Instances) ([][]LevelExplanation, error) {
	root, _ := p.hierarchy.Root()
	out := make([][]LevelExplanation, data.Len())
	nulls := 0
	for i := 0; i < data.Len(); i++ {
		single := data.Select([]int{i})
		levels, err := p.walk(root, single, nil)
		if err != nil {
			return nil, err
		}
		if len(levels) == 0 {
			nulls++
		}
		out[i] = levels
	}
	if nulls > 0 {
		logger.Warnf("predict: %d null predictions out of %d instances", nulls, data.Len())
	}
	return out, nil
}

func (p *Predictor) walk(node *Node, single *format.Instances, acc []LevelExplanation) ([]LevelExplanation, error) {
	m, err := p.model(node)
	if err != nil {
		return nil, err
	}
	preds, err := m.Predict(single)
	if err != nil {
		return nil, err
	}
	pr := preds[0]
	if pr.FiredPos < 0 {
		// 没有规则命中, 这一层给不出判定也给不出解释
		return acc, nil
	}
	cond, err := BuildExplanation(m, pr)
	if err != nil {
		return nil, fmt.Errorf("predict: node %s: %v", node.Name, err)
	}
	acc = append(acc, LevelExplanation{Node: node.Name, ClassName: pr.ClassName, Condition: cond})

	if strings.HasPrefix(pr.ClassName, rbc_config.NegativePrefix) {
		return acc, nil
	}
	child, ok := p.hierarchy.Node(node.Name + "/" + pr.ClassName)
	if !ok || child.ModelId == "" {
		// 训练时该分支没有数据或没过cutoff, 没有模型可走
		return acc, nil
	}
	return p.walk(child, single, acc)
}

func (p *Predictor) model(node *Node) (*model.RuleBasedModel, error) {
	if m, ok := p.models[node.ModelId]; ok {
		return m, nil
	}
	mj, err := p.store.LoadModel(node.ModelId)
	if err != nil {
		return nil, fmt.Errorf("predict: node %s: load model: %v", node.Name, err)
	}
	m, err := model.FromJSON(mj)
	if err != nil {
		return nil, fmt.Errorf("predict: node %s: %v", node.Name, err)
	}
	p.models[node.ModelId] = m
	logger.Debugf("predict: model %s for node %s loaded", node.ModelId, node.Name)
	return m, nil
}
