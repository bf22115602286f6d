package enum

/*
层级训练中每个结点的落点：
NODE_TRAINED 训练出了模型
NODE_SKIPPED 数据不均衡没过cutoff, 跳过
NODE_EMPTY 没有数据, 叶子
*/

const (
	NODE_TRAINED = "NODE_TRAINED"
	NODE_SKIPPED = "NODE_SKIPPED"
	NODE_EMPTY   = "NODE_EMPTY"
)
