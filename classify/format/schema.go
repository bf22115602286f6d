package format

import (
	"fmt"
	"sync/atomic"

	"rbc-shenglin/rock-share/global/model/rbc"
)

// schema的代际编号, 每建一个schema加一
// 前件里的AttrIndex带着代际, 跨schema误用在构造模型时就能查出来, 不会等到预测时才悄悄算错
var schemaGeneration uint64

// Schema 一组有序属性, 建好之后冻结, 各处按只读引用共享
// 下标0固定是类别属性
type Schema struct {
	attrs []*Attribute
	index map[string]int
	gen   uint64
}

func NewSchema(attrs []*Attribute) (*Schema, error) {
	if len(attrs) == 0 {
		return nil, fmt.Errorf("schema: no attributes")
	}
	index := make(map[string]int, len(attrs))
	for i, attr := range attrs {
		if _, ok := index[attr.Name]; ok {
			return nil, fmt.Errorf("schema: duplicate attribute name %q", attr.Name)
		}
		index[attr.Name] = i
	}
	return &Schema{
		attrs: attrs,
		index: index,
		gen:   atomic.AddUint64(&schemaGeneration, 1),
	}, nil
}

func (s *Schema) NumAttrs() int {
	return len(s.attrs)
}

func (s *Schema) Attr(i int) *Attribute {
	return s.attrs[i]
}

// ClassAttr 类别属性, 固定在下标0
func (s *Schema) ClassAttr() *Attribute {
	return s.attrs[0]
}

func (s *Schema) IndexOf(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

func (s *Schema) Gen() uint64 {
	return s.gen
}

// AttrIndex 带代际校验的属性下标, 前件用它引用属性
type AttrIndex struct {
	Pos int
	Gen uint64
}

// Ref 取第i个属性的带代际引用
func (s *Schema) Ref(i int) (AttrIndex, error) {
	if i < 0 || i >= len(s.attrs) {
		return AttrIndex{}, fmt.Errorf("schema: attribute index %d out of range [0,%d)", i, len(s.attrs))
	}
	return AttrIndex{Pos: i, Gen: s.gen}, nil
}

// Resolve 校验引用出自本schema后返回属性
func (s *Schema) Resolve(ref AttrIndex) (*Attribute, error) {
	if ref.Gen != s.gen {
		return nil, fmt.Errorf("schema: attribute ref generation %d does not match schema generation %d", ref.Gen, s.gen)
	}
	if ref.Pos < 0 || ref.Pos >= len(s.attrs) {
		return nil, fmt.Errorf("schema: attribute index %d out of range [0,%d)", ref.Pos, len(s.attrs))
	}
	return s.attrs[ref.Pos], nil
}

// WithClassValue 类别域末尾补一个取值(预测期的unseen哨兵), 返回新schema
func (s *Schema) WithClassValue(value string) (*Schema, error) {
	ext, err := s.attrs[0].WithExtraValue(value)
	if err != nil {
		return nil, err
	}
	if ext == s.attrs[0] {
		return s, nil
	}
	attrs := make([]*Attribute, len(s.attrs))
	copy(attrs, s.attrs)
	attrs[0] = ext
	return NewSchema(attrs)
}

// SameAs 语义一致(同名同序同域), 一致时调用方可以跳过数据拷贝
func (s *Schema) SameAs(other *Schema) bool {
	if s == other {
		return true
	}
	if len(s.attrs) != len(other.attrs) {
		return false
	}
	for i, attr := range s.attrs {
		if !attr.sameAs(other.attrs[i]) {
			return false
		}
	}
	return true
}

func (s *Schema) ToJSON() []rbc.AttributeJSON {
	out := make([]rbc.AttributeJSON, 0, len(s.attrs))
	for _, attr := range s.attrs {
		out = append(out, attr.ToJSON())
	}
	return out
}

func SchemaFromJSON(js []rbc.AttributeJSON) (*Schema, error) {
	attrs := make([]*Attribute, 0, len(js))
	for _, j := range js {
		attr, err := AttributeFromJSON(j)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return NewSchema(attrs)
}
