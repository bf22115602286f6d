package enum

import "rbc-shenglin/rock-share/base/logger"

/*
trainStatus训练任务状态：
TRAIN_EXEC 训练中
TRAIN_FINISH 训练完成
TRAIN_FAIL 训练失败
*/

const (
	TRAIN_EXEC   = "TRAIN_EXEC"
	TRAIN_FINISH = "TRAIN_FINISH"
	TRAIN_FAIL   = "TRAIN_FAIL"
)

func CheckTrainStatus(s string) string {
	switch s {
	case TRAIN_EXEC, TRAIN_FINISH, TRAIN_FAIL:
		return s
	default:
		logger.Errorf("UNKNOWN enum:%s", s)
		return "UNKNOWN"
	}
}
