package rbc

// HierarchyNodeJSON 层级树结点的持久化形式
// 训练结束后整棵树一次性落库, 预测时整棵树取回重建
type HierarchyNodeJSON struct {
	Name       string          `json:"name"`
	ModelId    string          `json:"model_id"`
	ClassName  string          `json:"class_name"`
	Father     string          `json:"father"`
	Children   []string        `json:"children,omitempty"`
	Level      int             `json:"level"`
	Status     string          `json:"status"`
	Attributes []AttributeJSON `json:"attributes,omitempty"`
}

// ModelJSON 单个模型的持久化形式
type ModelJSON struct {
	ModelId      string          `json:"model_id"`
	IsNormalized bool            `json:"is_normalized"`
	Attributes   []AttributeJSON `json:"attributes"`
	Rules        []RuleJSON      `json:"rules"`
	LogicRules   []LogicRule     `json:"logic_rules,omitempty"`
}
