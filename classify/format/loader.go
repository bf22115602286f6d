package format

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"rbc-shenglin/rbc_config"
	"rbc-shenglin/rock-share/base/logger"
)

// ParseContinuous 按语义子类型解析连续值, 日期存成epoch秒
func ParseContinuous(subType, s string) (float64, error) {
	switch subType {
	case rbc_config.IntSubType:
		v, err := strconv.ParseInt(s, 10, 64)
		return float64(v), err
	case rbc_config.DateSubType:
		t, err := time.Parse(rbc_config.DateLayout, s)
		return float64(t.Unix()), err
	case rbc_config.DatetimeSubType:
		t, err := time.Parse(rbc_config.DatetimeLayout, s)
		return float64(t.Unix()), err
	default:
		return strconv.ParseFloat(s, 64)
	}
}

func isNilCell(s string) bool {
	return s == "" || s == rbc_config.NilValueStr
}

// Table 解析后的原始表格, 还没有绑定类别列
// 同一张表可以按不同的类别列和行筛选反复构建Instances
type Table struct {
	path        string
	header      []string
	records     [][]string
	columnsType map[string]string
}

// LoadTable 读入csv表格并校验行宽
// columnsType: 列名 -> 类型(discrete/int/float/date/datetime), 没写的列按discrete处理
func LoadTable(path string, columnsType map[string]string) (*Table, error) {
	fs, err := os.Open(path)
	if err != nil {
		logger.Errorf("can not open the file, err is %s", err.Error())
		return nil, err
	}
	defer fs.Close()
	r := csv.NewReader(fs)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("loadTable %s: read header: %v", path, err)
	}

	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("loadTable %s: %v", path, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("loadTable %s: row %d has %d cells, header has %d", path, len(records)+1, len(record), len(header))
		}
		records = append(records, record)
	}
	logger.Infof("loaded table %s, %d rows, %d columns", path, len(records), len(header))
	return &Table{path: path, header: header, records: records, columnsType: columnsType}, nil
}

func (t *Table) Len() int {
	return len(t.records)
}

func (t *Table) Header() []string {
	return t.header
}

func (t *Table) colType(name string) string {
	if tp, ok := t.columnsType[name]; ok {
		return tp
	}
	return rbc_config.DiscreteType
}

func (t *Table) colIndex(name string) (int, error) {
	for i, h := range t.header {
		if h == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("table %s: column %q not in header", t.path, name)
}

/*
	BuildInstances 从表格构建一份训练数据

	classColumn 作为类别属性放到下标0, 其余列按表头顺序排;
	skip 里的列不进特征; filter 非nil时只保留命中的行.
	离散域按取值首次出现的顺序建立, 类别取值为空的行直接丢掉
*/
func (t *Table) BuildInstances(classColumn string, skip map[string]bool, filter func(record []string) bool) (*Instances, error) {
	return t.build(classColumn, skip, filter, false)
}

// BuildPredictInstances 预测数据的构建入口
// 类别取值为空的行保留(预测时类别本来就未知), 不做行筛选
func (t *Table) BuildPredictInstances(classColumn string, skip map[string]bool) (*Instances, error) {
	return t.build(classColumn, skip, nil, true)
}

func (t *Table) build(classColumn string, skip map[string]bool, filter func(record []string) bool, keepNilClass bool) (*Instances, error) {
	classCol, err := t.colIndex(classColumn)
	if err != nil {
		return nil, err
	}

	var records [][]string
	for _, record := range t.records {
		if !keepNilClass && isNilCell(record[classCol]) {
			continue
		}
		if filter != nil && !filter(record) {
			continue
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// 类别列提前, 其余按表头顺序
	order := []int{classCol}
	for i, name := range t.header {
		if i != classCol && !skip[name] {
			order = append(order, i)
		}
	}

	attrs := make([]*Attribute, 0, len(order))
	domainIdx := make(map[int]map[string]int) // 原始列下标 -> 取值到域下标

	for _, col := range order {
		name := t.header[col]
		switch tp := t.colType(name); tp {
		case rbc_config.DiscreteType:
			var domain []string
			index := make(map[string]int)
			for _, record := range records {
				cell := record[col]
				if isNilCell(cell) {
					continue
				}
				if _, ok := index[cell]; !ok {
					index[cell] = len(domain)
					domain = append(domain, cell)
				}
			}
			domainIdx[col] = index
			attr, err := NewDiscreteAttribute(name, domain)
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, attr)
		case rbc_config.IntSubType, rbc_config.FloatSubType, rbc_config.DateSubType, rbc_config.DatetimeSubType:
			attrs = append(attrs, NewContinuousAttribute(name, tp))
		default:
			return nil, fmt.Errorf("table %s: column %q has unknown type %q", t.path, name, tp)
		}
	}

	schema, err := NewSchema(attrs)
	if err != nil {
		return nil, err
	}

	rows := make([][]float64, len(records))
	for i, record := range records {
		row := make([]float64, len(order))
		for j, col := range order {
			cell := record[col]
			if isNilCell(cell) {
				row[j] = math.NaN()
				continue
			}
			if idx, ok := domainIdx[col]; ok {
				row[j] = float64(idx[cell])
				continue
			}
			v, err := ParseContinuous(t.colType(t.header[col]), cell)
			if err != nil {
				return nil, fmt.Errorf("table %s: row %d column %q: bad value %q", t.path, i+1, t.header[col], cell)
			}
			row[j] = v
		}
		rows[i] = row
	}
	return NewInstances(schema, nil, rows, nil)
}

// LoadCSV 单层训练的便捷入口, 整张表按一个类别列建Instances
func LoadCSV(path string, columnsType map[string]string, classColumn string) (*Instances, error) {
	t, err := LoadTable(path, columnsType)
	if err != nil {
		return nil, err
	}
	ins, err := t.BuildInstances(classColumn, nil, nil)
	if err != nil {
		return nil, err
	}
	if ins == nil {
		return nil, fmt.Errorf("loadCSV %s: no usable rows for class %q", path, classColumn)
	}
	logger.Infof("loaded %d instances with %d attributes from %s", ins.Len(), ins.Schema().NumAttrs(), path)
	return ins, nil
}
