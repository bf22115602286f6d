package rbc

// AttributeJSON 属性的持久化形式, 反序列化模型时必须先恢复schema再恢复规则
type AttributeJSON struct {
	Name    string            `json:"name"`
	Kind    string            `json:"kind"`     // discrete / continuous
	SubType string            `json:"sub_type"` // continuous才有: int/float/date/datetime
	Domain  []string          `json:"domain,omitempty"`
	Meta    map[string]string `json:"meta,omitempty"` // 离散取值的附加信息, 比如派生二值属性的来源词
}
