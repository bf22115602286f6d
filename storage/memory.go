package storage

import (
	"fmt"

	cmap "github.com/orcaman/concurrent-map"
	"rbc-shenglin/rock-share/global/model/rbc"
)

// MemoryStore 进程内存储, 同时充当服务期的模型缓存
type MemoryStore struct {
	models      cmap.ConcurrentMap // modelId -> *rbc.ModelJSON
	hierarchies cmap.ConcurrentMap // taskId -> []rbc.HierarchyNodeJSON
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		models:      cmap.New(),
		hierarchies: cmap.New(),
	}
}

func (s *MemoryStore) SaveModel(m *rbc.ModelJSON) error {
	if m.ModelId == "" {
		return fmt.Errorf("memory store: model without id")
	}
	s.models.Set(m.ModelId, m)
	return nil
}

func (s *MemoryStore) LoadModel(modelId string) (*rbc.ModelJSON, error) {
	v, ok := s.models.Get(modelId)
	if !ok {
		return nil, fmt.Errorf("memory store: model %q not found", modelId)
	}
	return v.(*rbc.ModelJSON), nil
}

func (s *MemoryStore) SaveHierarchy(taskId string, nodes []rbc.HierarchyNodeJSON) error {
	s.hierarchies.Set(taskId, nodes)
	return nil
}

func (s *MemoryStore) LoadHierarchy(taskId string) ([]rbc.HierarchyNodeJSON, error) {
	v, ok := s.hierarchies.Get(taskId)
	if !ok {
		return nil, fmt.Errorf("memory store: hierarchy for task %q not found", taskId)
	}
	return v.([]rbc.HierarchyNodeJSON), nil
}
