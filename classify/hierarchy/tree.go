package hierarchy

import (
	"fmt"
	"os"
	"strings"

	"github.com/awalterschulze/gographviz"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"rbc-shenglin/rock-share/global/model/rbc"
)

// RootName 根结点的固定名字, 子结点名是递归路径按"/"拼出来的
const RootName = "root"

// PathName 递归路径到结点名
func PathName(path []string) string {
	if len(path) == 0 {
		return RootName
	}
	return RootName + "/" + strings.Join(path, "/")
}

// Node 层级树结点, 训练一个结点就挂一个
type Node struct {
	Name       string
	ModelId    string
	ClassName  string // 这一层选中的类别取值, 根结点为空
	Father     string
	Children   []string
	Level      int
	Status     string
	Attributes []rbc.AttributeJSON // 拟合时的schema, 预测时必须原样取回
}

// Hierarchy 以结点名为键的层级树, 训练结束整棵落库, 预测时整棵取回
type Hierarchy struct {
	nodes map[string]*Node
}

func NewHierarchy() *Hierarchy {
	return &Hierarchy{nodes: make(map[string]*Node)}
}

func (h *Hierarchy) Node(name string) (*Node, bool) {
	n, ok := h.nodes[name]
	return n, ok
}

func (h *Hierarchy) Root() (*Node, bool) {
	return h.Node(RootName)
}

func (h *Hierarchy) Len() int {
	return len(h.nodes)
}

// Add 挂结点并回填父结点的children, 子结点名单随训练推进惰性补全
func (h *Hierarchy) Add(n *Node) error {
	if _, ok := h.nodes[n.Name]; ok {
		return fmt.Errorf("hierarchy: duplicate node %q", n.Name)
	}
	h.nodes[n.Name] = n
	if n.Father != "" {
		father, ok := h.nodes[n.Father]
		if !ok {
			return fmt.Errorf("hierarchy: node %q references missing father %q", n.Name, n.Father)
		}
		father.Children = append(father.Children, n.Name)
	}
	return nil
}

// ToJSON 持久化形式, 结点按名字排序保证落库内容稳定
func (h *Hierarchy) ToJSON() []rbc.HierarchyNodeJSON {
	names := maps.Keys(h.nodes)
	slices.Sort(names)
	out := make([]rbc.HierarchyNodeJSON, 0, len(names))
	for _, name := range names {
		n := h.nodes[name]
		out = append(out, rbc.HierarchyNodeJSON{
			Name:       n.Name,
			ModelId:    n.ModelId,
			ClassName:  n.ClassName,
			Father:     n.Father,
			Children:   n.Children,
			Level:      n.Level,
			Status:     n.Status,
			Attributes: n.Attributes,
		})
	}
	return out
}

// FromJSON 重建层级树, children已经存在结点里, 不再回填
func FromJSON(js []rbc.HierarchyNodeJSON) (*Hierarchy, error) {
	h := NewHierarchy()
	for _, j := range js {
		if _, ok := h.nodes[j.Name]; ok {
			return nil, fmt.Errorf("hierarchy: duplicate node %q in persisted form", j.Name)
		}
		h.nodes[j.Name] = &Node{
			Name:       j.Name,
			ModelId:    j.ModelId,
			ClassName:  j.ClassName,
			Father:     j.Father,
			Children:   j.Children,
			Level:      j.Level,
			Status:     j.Status,
			Attributes: j.Attributes,
		}
	}
	return h, nil
}

// ToSimpleGraph 层级树画成graphviz图, 排查训练结果用
func (h *Hierarchy) ToSimpleGraph(outPath string) error {
	graphAst, _ := gographviz.Parse([]byte(`digraph G{}`))
	graph := gographviz.NewGraph()
	if err := gographviz.Analyse(graphAst, graph); err != nil {
		return err
	}

	for name, n := range h.nodes {
		label := fmt.Sprintf("<%s<br/>model = %s<br/>level = %d<br/>status = %s>", name, n.ModelId, n.Level, n.Status)
		if err := graph.AddNode("G", fmt.Sprintf("%q", name), map[string]string{"label": label}); err != nil {
			return err
		}
	}
	for name, n := range h.nodes {
		for _, child := range n.Children {
			if err := graph.AddEdge(fmt.Sprintf("%q", name), fmt.Sprintf("%q", child), true, nil); err != nil {
				return err
			}
		}
	}
	return os.WriteFile(outPath, []byte(graph.String()), 0644)
}
