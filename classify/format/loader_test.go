package format

import (
	"os"
	"path/filepath"
	"testing"

	"rbc-shenglin/rbc_config"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, "label,age,city\nyes,30,beijing\nno,25,shanghai\nyes,41,beijing\nno,?,shanghai\n")
	ins, err := LoadCSV(path, map[string]string{"age": rbc_config.IntSubType}, "label")
	if err != nil {
		t.Fatal(err)
	}
	if ins.Len() != 4 {
		t.Fatalf("want 4 rows, got %d", ins.Len())
	}
	schema := ins.Schema()
	if schema.ClassAttr().Name != "label" {
		t.Fatalf("class column not moved to front: %s", schema.ClassAttr().Name)
	}
	// 域按首次出现排
	if v, _ := schema.ClassAttr().ValueAt(0); v != "yes" {
		t.Fatalf("domain order: %v", schema.ClassAttr().Domain())
	}
	if schema.Attr(1).IsDiscrete() {
		t.Fatal("age must be continuous")
	}
	if schema.Attr(1).Represent(ins.Row(3)[1]) != rbc_config.NilValueStr {
		t.Fatal("? cell must load as nil value")
	}
	if got := schema.Attr(2).Represent(ins.Row(1)[2]); got != "shanghai" {
		t.Fatalf("city cell: %q", got)
	}
}

func TestLoadCSVRejectsRaggedRows(t *testing.T) {
	path := writeCSV(t, "label,age\nyes,30\nno\n")
	if _, err := LoadCSV(path, nil, "label"); err == nil {
		t.Fatal("ragged row must be rejected")
	}
}

func TestLoadCSVUnknownClassColumn(t *testing.T) {
	path := writeCSV(t, "label,age\nyes,30\n")
	if _, err := LoadCSV(path, nil, "missing"); err == nil {
		t.Fatal("unknown class column must be rejected")
	}
}

func TestBuildPredictInstancesKeepsUnlabeledRows(t *testing.T) {
	path := writeCSV(t, "label,age\nyes,30\n,25\n")
	table, err := LoadTable(path, map[string]string{"age": rbc_config.IntSubType})
	if err != nil {
		t.Fatal(err)
	}
	labeled, err := table.BuildInstances("label", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if labeled.Len() != 1 {
		t.Fatalf("training build drops unlabeled rows, got %d", labeled.Len())
	}
	all, err := table.BuildPredictInstances("label", nil)
	if err != nil {
		t.Fatal(err)
	}
	if all.Len() != 2 {
		t.Fatalf("predict build keeps unlabeled rows, got %d", all.Len())
	}
}
