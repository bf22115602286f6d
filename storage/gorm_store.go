package storage

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"rbc-shenglin/rock-share/global/model/rbc"
)

// ModelPO 模型表, 规则/逻辑规则/schema都序列化成json列存
type ModelPO struct {
	Id      int64  `gorm:"primaryKey;autoIncrement"`
	ModelId string `gorm:"uniqueIndex;size:64"`
	Payload string
}

func (ModelPO) TableName() string {
	return "rbc_model"
}

// HierarchyPO 层级树表, 一次训练任务一行
type HierarchyPO struct {
	Id      int64  `gorm:"primaryKey;autoIncrement"`
	TaskId  string `gorm:"uniqueIndex;size:64"`
	Payload string
}

func (HierarchyPO) TableName() string {
	return "rbc_hierarchy"
}

// GormStore 关系库存储, *gorm.DB由调用方按自己的驱动打开后传入
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&ModelPO{}, &HierarchyPO{}); err != nil {
		return nil, fmt.Errorf("gorm store: migrate: %v", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) SaveModel(m *rbc.ModelJSON) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	po := ModelPO{ModelId: m.ModelId, Payload: string(data)}
	return s.db.Create(&po).Error
}

func (s *GormStore) LoadModel(modelId string) (*rbc.ModelJSON, error) {
	var po ModelPO
	if err := s.db.Where("model_id = ?", modelId).First(&po).Error; err != nil {
		return nil, fmt.Errorf("gorm store: model %q: %v", modelId, err)
	}
	m := &rbc.ModelJSON{}
	if err := json.Unmarshal([]byte(po.Payload), m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *GormStore) SaveHierarchy(taskId string, nodes []rbc.HierarchyNodeJSON) error {
	data, err := json.Marshal(nodes)
	if err != nil {
		return err
	}
	po := HierarchyPO{TaskId: taskId, Payload: string(data)}
	return s.db.Create(&po).Error
}

func (s *GormStore) LoadHierarchy(taskId string) ([]rbc.HierarchyNodeJSON, error) {
	var po HierarchyPO
	if err := s.db.Where("task_id = ?", taskId).First(&po).Error; err != nil {
		return nil, fmt.Errorf("gorm store: hierarchy %q: %v", taskId, err)
	}
	var nodes []rbc.HierarchyNodeJSON
	if err := json.Unmarshal([]byte(po.Payload), &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}
