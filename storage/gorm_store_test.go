package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"rbc-shenglin/rock-share/global/model/rbc"
)

func openTestStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	s, err := NewGormStore(db)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM rbc_model")
		db.Exec("DELETE FROM rbc_hierarchy")
	})
	return s
}

func TestGormStoreModelRoundTrip(t *testing.T) {
	s := openTestStore(t)
	m := &rbc.ModelJSON{
		ModelId: "m-001",
		Attributes: []rbc.AttributeJSON{
			{Name: "label", Kind: "discrete", Domain: []string{"ok", "NO_bad"}},
			{Name: "age", Kind: "continuous", SubType: "int"},
		},
		Rules: []rbc.RuleJSON{
			{Antecedents: []rbc.AntecedentJSON{{Feature: "age", Operator: ">=", Value: "30"}}, Consequent: "ok"},
			{Consequent: "NO_bad"},
		},
	}
	if err := s.SaveModel(m); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadModel("m-001")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, m, got)

	_, err = s.LoadModel("m-missing")
	assert.Error(t, err)
}

func TestGormStoreHierarchyRoundTrip(t *testing.T) {
	s := openTestStore(t)
	nodes := []rbc.HierarchyNodeJSON{
		{Name: "root", ModelId: "m-001", Level: 0, Status: "NODE_TRAINED", Children: []string{"root/animal"}},
		{Name: "root/animal", ModelId: "m-002", ClassName: "animal", Father: "root", Level: 1, Status: "NODE_TRAINED"},
	}
	if err := s.SaveHierarchy("task-1", nodes); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadHierarchy("task-1")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, nodes, got)

	_, err = s.LoadHierarchy("task-missing")
	assert.Error(t, err)
}
