package hierarchy

import (
	"rbc-shenglin/classify/format"
)

// DataSupplier 外部协作者: 按递归路径供给训练数据
// 每个路径对应一个子问题, 类别属性就是该层的输出属性
// 预测期取到的schema必须和训练期完全一致(缓存取回, 不重算),
// 否则按下标引用属性的前件就没有意义了
type DataSupplier interface {
	// NumLevels 输出列数, 也就是层级树的最大深度
	NumLevels() int
	// Supply 该路径下的训练数据, nil表示没有数据
	Supply(path []string) (*format.Instances, error)
}

// MapSupplier 预先装好各路径数据的供给器, 单机流程和测试用
type MapSupplier struct {
	levels int
	data   map[string]*format.Instances
}

func NewMapSupplier(levels int) *MapSupplier {
	return &MapSupplier{levels: levels, data: make(map[string]*format.Instances)}
}

func (s *MapSupplier) Put(path []string, ins *format.Instances) {
	s.data[PathName(path)] = ins
}

func (s *MapSupplier) NumLevels() int {
	return s.levels
}

func (s *MapSupplier) Supply(path []string) (*format.Instances, error) {
	return s.data[PathName(path)], nil
}
