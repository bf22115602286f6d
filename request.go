package main

// Table 输入表格, 本机可读的csv路径加列类型表
type Table struct {
	Path        string            `json:"path"`
	ColumnsType map[string]string `json:"columnsType"`
}

// TrainRequest 层级训练请求
// OutputColumns 从外到内一列一层; 没带的参数取配置文件里的默认值
type TrainRequest struct {
	TaskId        string   `json:"taskId"`
	Table         Table    `json:"table"`
	OutputColumns []string `json:"outputColumns"`
	CutOff        float64  `json:"cutOff"`
	NumFolds      int      `json:"numFolds"`
	FullTrain     bool     `json:"fullTrain"`
	NodeOrder     []string `json:"nodeOrder"`
	GraphPath     string   `json:"graphPath"` // 非空时训练后把层级树落成graphviz文件
}

// PredictRequest 层级预测请求, 表头要包含训练时的输出列(取值可以为空)
type PredictRequest struct {
	TaskId string `json:"taskId"`
	Table  Table  `json:"table"`
}
