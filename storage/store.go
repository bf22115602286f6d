package storage

import "rbc-shenglin/rock-share/global/model/rbc"

// Store 训练产物的持久化契约
// 每个训练出的结点存一份模型(规则+逻辑规则+schema),
// 每次训练任务存一棵完整层级树, 预测端靠这两样重建一切
type Store interface {
	SaveModel(m *rbc.ModelJSON) error
	LoadModel(modelId string) (*rbc.ModelJSON, error)
	SaveHierarchy(taskId string, nodes []rbc.HierarchyNodeJSON) error
	LoadHierarchy(taskId string) ([]rbc.HierarchyNodeJSON, error)
}
