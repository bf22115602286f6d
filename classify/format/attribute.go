package format

import (
	"fmt"
	"math"
	"strconv"
	"time"

	mapset "github.com/deckarep/golang-set"
	"rbc-shenglin/rbc_config"
	"rbc-shenglin/rock-share/global/model/rbc"
)

/*
	属性模型, 两类:
	1.离散属性, 带有序的取值域(值<->下标双射), 取值可以带附加信息(比如派生二值属性的来源词)
	2.连续属性, 带语义子类型(int/float/date/datetime), 子类型只影响取值的展示形式
	数据行里统一存float64: 离散存域下标, 连续存原值(日期存epoch秒), 空值存NaN
*/

type Attribute struct {
	Name    string
	Kind    string // rbc_config.DiscreteType / ContinuousType
	SubType string // 连续属性才有

	domain      []string
	domainIndex map[string]int
	meta        map[string]string // 按取值存的附加信息
}

func NewDiscreteAttribute(name string, domain []string) (*Attribute, error) {
	index := make(map[string]int, len(domain))
	for i, v := range domain {
		if _, ok := index[v]; ok {
			return nil, fmt.Errorf("attribute %s: duplicate domain value %q", name, v)
		}
		index[v] = i
	}
	return &Attribute{
		Name:        name,
		Kind:        rbc_config.DiscreteType,
		domain:      domain,
		domainIndex: index,
	}, nil
}

func NewContinuousAttribute(name, subType string) *Attribute {
	return &Attribute{
		Name:    name,
		Kind:    rbc_config.ContinuousType,
		SubType: subType,
	}
}

func (a *Attribute) IsDiscrete() bool {
	return a.Kind == rbc_config.DiscreteType
}

func (a *Attribute) NumValues() int {
	return len(a.domain)
}

func (a *Attribute) Domain() []string {
	out := make([]string, len(a.domain))
	copy(out, a.domain)
	return out
}

// IndexOf 取值在域里的下标, 不在域里时第二个返回值为false
// 训练期调用方把false当错误, 预测期先用WithExtraValue补上哨兵值再降级处理
func (a *Attribute) IndexOf(value string) (int, bool) {
	idx, ok := a.domainIndex[value]
	return idx, ok
}

func (a *Attribute) ValueAt(idx int) (string, error) {
	if idx < 0 || idx >= len(a.domain) {
		return "", fmt.Errorf("attribute %s: domain index %d out of range [0,%d)", a.Name, idx, len(a.domain))
	}
	return a.domain[idx], nil
}

func (a *Attribute) SetMeta(value, meta string) {
	if a.meta == nil {
		a.meta = make(map[string]string)
	}
	a.meta[value] = meta
}

func (a *Attribute) Meta(value string) (string, bool) {
	m, ok := a.meta[value]
	return m, ok
}

func (a *Attribute) cloneMeta() map[string]string {
	if a.meta == nil {
		return nil
	}
	m := make(map[string]string, len(a.meta))
	for k, v := range a.meta {
		m[k] = v
	}
	return m
}

// WithExtraValue 域末尾补一个取值, 返回新属性, 原属性不动
func (a *Attribute) WithExtraValue(value string) (*Attribute, error) {
	if !a.IsDiscrete() {
		return nil, fmt.Errorf("attribute %s: cannot extend domain of a continuous attribute", a.Name)
	}
	if _, ok := a.domainIndex[value]; ok {
		return a, nil
	}
	ext, err := NewDiscreteAttribute(a.Name, append(a.Domain(), value))
	if err != nil {
		return nil, err
	}
	ext.meta = a.cloneMeta()
	return ext, nil
}

// Represent 把行里的float64还原成可读形式
func (a *Attribute) Represent(v float64) string {
	if math.IsNaN(v) {
		return rbc_config.NilValueStr
	}
	if a.IsDiscrete() {
		idx := int(v)
		if idx < 0 || idx >= len(a.domain) {
			return rbc_config.NilValueStr
		}
		return a.domain[idx]
	}
	switch a.SubType {
	case rbc_config.IntSubType:
		return strconv.FormatInt(int64(v), 10)
	case rbc_config.DateSubType:
		return time.Unix(int64(v), 0).UTC().Format(rbc_config.DateLayout)
	case rbc_config.DatetimeSubType:
		return time.Unix(int64(v), 0).UTC().Format(rbc_config.DatetimeLayout)
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}

// IsAtLeastAsExpressiveAs 判断a(目标)能否无损地承接other(来源)的取值
// 连续对连续只要求同名; 离散对离散要求来源域是目标域的子集,
// allowLoss放松后, 域外取值映射到哨兵值, 调用方要显式接受丢失
func (a *Attribute) IsAtLeastAsExpressiveAs(other *Attribute, allowLoss bool) bool {
	if a.Name != other.Name || a.Kind != other.Kind {
		return false
	}
	if !a.IsDiscrete() {
		return true
	}
	if allowLoss {
		return true
	}
	target := mapset.NewSet()
	for _, v := range a.domain {
		target.Add(v)
	}
	source := mapset.NewSet()
	for _, v := range other.domain {
		source.Add(v)
	}
	return source.IsSubset(target)
}

// sameAs 语义上完全一致: 同名同类, 离散时域顺序也一致
func (a *Attribute) sameAs(other *Attribute) bool {
	if a.Name != other.Name || a.Kind != other.Kind || a.SubType != other.SubType {
		return false
	}
	if !a.IsDiscrete() {
		return true
	}
	if len(a.domain) != len(other.domain) {
		return false
	}
	for i, v := range a.domain {
		if other.domain[i] != v {
			return false
		}
	}
	return true
}

// ToJSON 持久化形式
func (a *Attribute) ToJSON() rbc.AttributeJSON {
	return rbc.AttributeJSON{
		Name:    a.Name,
		Kind:    a.Kind,
		SubType: a.SubType,
		Domain:  a.Domain(),
		Meta:    a.cloneMeta(),
	}
}

// AttributeFromJSON 反序列化, 派生属性的meta一并恢复
func AttributeFromJSON(j rbc.AttributeJSON) (*Attribute, error) {
	switch j.Kind {
	case rbc_config.DiscreteType:
		attr, err := NewDiscreteAttribute(j.Name, j.Domain)
		if err != nil {
			return nil, err
		}
		for k, v := range j.Meta {
			attr.SetMeta(k, v)
		}
		return attr, nil
	case rbc_config.ContinuousType:
		return NewContinuousAttribute(j.Name, j.SubType), nil
	default:
		return nil, fmt.Errorf("attribute %s: unknown kind %q", j.Name, j.Kind)
	}
}
