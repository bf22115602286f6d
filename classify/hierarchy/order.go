package hierarchy

import "sort"

// NodeOrder 同层兄弟结点的排序器
// 从外部给定的顺序表一次性建好(取值->名次), 排序时显式传入,
// 不再闭包在可变的实例状态上; 表里没有的取值排在已知取值之后, 按字典序
type NodeOrder struct {
	rank map[string]int
}

func NewNodeOrder(order []string) *NodeOrder {
	rank := make(map[string]int, len(order))
	for i, v := range order {
		rank[v] = i
	}
	return &NodeOrder{rank: rank}
}

func (o *NodeOrder) Sort(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		ri, iKnown := o.rank[names[i]]
		rj, jKnown := o.rank[names[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown:
			return true
		case jKnown:
			return false
		default:
			return names[i] < names[j]
		}
	})
}
