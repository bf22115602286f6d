package hierarchy

import (
	"fmt"
	"strings"

	"rbc-shenglin/classify/model"
	"rbc-shenglin/rbc_config"
	"rbc-shenglin/rock-share/base/logger"
	"rbc-shenglin/rock-share/global/enum"
	"rbc-shenglin/storage"
)

// TrainConfig 一次层级训练任务的参数
type TrainConfig struct {
	TaskId    string
	CutOff    float64 // 结点可训练的最小类别占比
	NumFolds  int     // 分层切分的折数, 留1折做评估
	FullTrain bool    // 全量数据训练, 不切分也不评估
	MaxDepth  int     // 0表示用供给器的层数
	Order     *NodeOrder
}

// Trainer 按层逐结点训练整棵层级树
// 数据供给/模型存储/学习器都是注入的, 训练器只管递归调度
type Trainer struct {
	supplier DataSupplier
	store    storage.Store
	learner  model.Learner
	cfg      TrainConfig
}

func NewTrainer(supplier DataSupplier, store storage.Store, learner model.Learner, cfg TrainConfig) *Trainer {
	if cfg.CutOff <= 0 {
		cfg.CutOff = rbc_config.DefaultCutOff
	}
	if cfg.NumFolds < 2 {
		cfg.NumFolds = rbc_config.DefaultNumFolds
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = supplier.NumLevels()
	}
	if cfg.Order == nil {
		cfg.Order = NewNodeOrder(nil)
	}
	return &Trainer{supplier: supplier, store: store, learner: learner, cfg: cfg}
}

/*
	Train 按层宽度优先训练

	每层的前线是上一层训出来的子路径. 单个结点:
	  - 没有数据: 挂一个NODE_EMPTY结点, 该分支到此为止, 根结点没有数据算任务失败
	  - 最小类别占比低于cutoff: 挂一个NODE_SKIPPED结点, 留日志
	  - 其余结点正常拟合并落库, 类别域里不带负例前缀的取值成为下一层的子结点

	整棵树训练完只落库一次, 训练中途失败不会留下半棵树
*/
func (t *Trainer) Train() (*Hierarchy, error) {
	h := NewHierarchy()
	frontier := [][]string{{}}
	for level := 0; level < t.cfg.MaxDepth && len(frontier) > 0; level++ {
		var next [][]string
		for _, path := range frontier {
			children, err := t.trainNode(h, path)
			if err != nil {
				return nil, err
			}
			for _, c := range children {
				child := make([]string, 0, len(path)+1)
				child = append(child, path...)
				child = append(child, c)
				next = append(next, child)
			}
		}
		frontier = next
	}
	if err := t.store.SaveHierarchy(t.cfg.TaskId, h.ToJSON()); err != nil {
		return nil, fmt.Errorf("train %s: save hierarchy: %v", t.cfg.TaskId, err)
	}
	logger.Infof("train %s: hierarchy trained, %d nodes", t.cfg.TaskId, h.Len())
	return h, nil
}

func (t *Trainer) trainNode(h *Hierarchy, path []string) ([]string, error) {
	name := PathName(path)
	data, err := t.supplier.Supply(path)
	if err != nil {
		return nil, fmt.Errorf("train %s: supply %s: %v", t.cfg.TaskId, name, err)
	}
	if data == nil || data.Len() == 0 {
		if len(path) == 0 {
			return nil, fmt.Errorf("train %s: no data at root", t.cfg.TaskId)
		}
		logger.Debugf("train %s: node %s has no data, branch stops", t.cfg.TaskId, name)
		if err := h.Add(barrenNode(path, enum.NODE_EMPTY)); err != nil {
			return nil, fmt.Errorf("train %s: %v", t.cfg.TaskId, err)
		}
		return nil, nil
	}
	if !data.CheckCutOff(t.cfg.CutOff) {
		logger.Warnf("train %s: node %s below cutoff %.3f, skipped", t.cfg.TaskId, name, t.cfg.CutOff)
		if err := h.Add(barrenNode(path, enum.NODE_SKIPPED)); err != nil {
			return nil, fmt.Errorf("train %s: %v", t.cfg.TaskId, err)
		}
		return nil, nil
	}

	trainSet, evalSet := data, data
	if !t.cfg.FullTrain {
		grow, hold, err := data.StratifiedBinPartition(t.cfg.NumFolds)
		if err != nil {
			return nil, fmt.Errorf("train %s: node %s: %v", t.cfg.TaskId, name, err)
		}
		trainSet, evalSet = grow, hold
	}

	m := t.learner.InitModel()
	if err := m.Fit(trainSet, t.learner); err != nil {
		return nil, fmt.Errorf("train %s: node %s: %v", t.cfg.TaskId, name, err)
	}
	if rows, err := m.ComputeRuleMeasures(evalSet); err == nil {
		logger.Debugf("train %s: node %s measures over %d rules computed", t.cfg.TaskId, name, len(rows))
	}

	mj, err := m.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("train %s: node %s: %v", t.cfg.TaskId, name, err)
	}
	if err := t.store.SaveModel(mj); err != nil {
		return nil, fmt.Errorf("train %s: node %s: save model: %v", t.cfg.TaskId, name, err)
	}

	node := &Node{
		Name:       name,
		ModelId:    m.ModelId,
		Level:      len(path),
		Status:     enum.NODE_TRAINED,
		Attributes: mj.Attributes,
	}
	if len(path) > 0 {
		node.ClassName = path[len(path)-1]
		node.Father = PathName(path[:len(path)-1])
	}
	if err := h.Add(node); err != nil {
		return nil, fmt.Errorf("train %s: %v", t.cfg.TaskId, err)
	}

	var children []string
	for _, v := range m.Schema().ClassAttr().Domain() {
		if strings.HasPrefix(v, rbc_config.NegativePrefix) || v == rbc_config.UnseenValue {
			continue
		}
		children = append(children, v)
	}
	t.cfg.Order.Sort(children)
	return children, nil
}

// barrenNode 没训出模型的结点(没数据/没过cutoff), 只留落点记录
func barrenNode(path []string, status string) *Node {
	n := &Node{Name: PathName(path), Level: len(path), Status: status}
	if len(path) > 0 {
		n.ClassName = path[len(path)-1]
		n.Father = PathName(path[:len(path)-1])
	}
	return n
}
