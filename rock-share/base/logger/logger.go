package logger

import (
	"time"

	"go.uber.org/zap"
)

// InitLogger 根据配置初始化全局日志, 进程启动时调用一次
func InitLogger(level, projectName, logPath string, maxAge, rotationTime time.Duration, rotationSize uint32, sentryDsn string) {
	if len(level) != 0 {
		// 只校验配置合法性, 级别过滤在core里已做
		if _, err := zap.ParseAtomicLevel(level); err != nil {
			panic(err)
		}
	}
	initZap(projectName, logPath, maxAge, rotationTime, rotationSize, sentryDsn)
}

func Debugf(template string, args ...interface{}) {
	zap.S().Debugf(template, args...)
}

func Infof(template string, args ...interface{}) {
	zap.S().Infof(template, args...)
}

func Warnf(template string, args ...interface{}) {
	zap.S().Warnf(template, args...)
}

func Errorf(template string, args ...interface{}) {
	zap.S().Errorf(template, args...)
}

func Info(args ...interface{}) {
	zap.S().Info(args...)
}

func Warn(args ...interface{}) {
	zap.S().Warn(args...)
}

// Error 兼容两种用法: Error(err) 和 Error("xx:%v", err)
func Error(args ...interface{}) {
	if len(args) > 1 {
		if template, ok := args[0].(string); ok {
			zap.S().Errorf(template, args[1:]...)
			return
		}
	}
	zap.S().Error(args...)
}
