package enum

// 学习器名称, teach的具体实现由插件注册
const (
	LEARNER_NATIVE = "native"
	LEARNER_RIPPER = "ripper"
	LEARNER_TREE   = "tree"
)

// LearnerNormalized 学习器产出的规则集是否互斥
// 决策树导出的规则天然互斥, 逐条增长的规则集只能按序解释
func LearnerNormalized(name string) bool {
	switch name {
	case LEARNER_TREE:
		return true
	default:
		return false
	}
}
