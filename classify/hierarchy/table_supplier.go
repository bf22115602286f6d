package hierarchy

import (
	"fmt"

	"rbc-shenglin/classify/format"
)

/*
	TableSupplier 单张宽表上的层级供数器

	表里有若干输出列, 从外到内一列对应一层. 路径[v1 v2]的子问题
	取输出列1==v1且输出列2==v2的行, 类别是输出列3, 特征是全部
	非输出列. 每个子问题的离散域按子集内的取值重新建立
*/
type TableSupplier struct {
	table   *format.Table
	outputs []string
	skip    map[string]bool
	cols    []int
}

func NewTableSupplier(table *format.Table, outputColumns []string) (*TableSupplier, error) {
	if len(outputColumns) == 0 {
		return nil, fmt.Errorf("tableSupplier: no output columns")
	}
	skip := make(map[string]bool, len(outputColumns))
	cols := make([]int, len(outputColumns))
	for i, name := range outputColumns {
		pos := -1
		for j, h := range table.Header() {
			if h == name {
				pos = j
				break
			}
		}
		if pos < 0 {
			return nil, fmt.Errorf("tableSupplier: output column %q not in header", name)
		}
		skip[name] = true
		cols[i] = pos
	}
	return &TableSupplier{table: table, outputs: outputColumns, skip: skip, cols: cols}, nil
}

func (s *TableSupplier) NumLevels() int {
	return len(s.outputs)
}

func (s *TableSupplier) Supply(path []string) (*format.Instances, error) {
	if len(path) >= len(s.outputs) {
		return nil, fmt.Errorf("tableSupplier: path %v deeper than %d output columns", path, len(s.outputs))
	}
	var filter func(record []string) bool
	if len(path) > 0 {
		prefix := append([]string(nil), path...)
		filter = func(record []string) bool {
			for i, want := range prefix {
				if record[s.cols[i]] != want {
					return false
				}
			}
			return true
		}
	}
	return s.table.BuildInstances(s.outputs[len(path)], s.skip, filter)
}
