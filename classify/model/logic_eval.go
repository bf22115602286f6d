package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"rbc-shenglin/rock-share/base/logger"
	"rbc-shenglin/rock-share/global/model/rbc"
)

// LogicRuleExpression 把导出的AND逻辑规则编译成可求值的表达式,
// 取回的正例规则不经过模型也能在任意行上验证
func LogicRuleExpression(lr rbc.LogicRule) (*govaluate.EvaluableExpression, error) {
	if len(lr.Items) == 0 {
		return govaluate.NewEvaluableExpression("true")
	}
	parts := make([]string, 0, len(lr.Items))
	for _, item := range lr.Items {
		value := item.Value
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			value = "'" + strings.ReplaceAll(value, "'", "\\'") + "'"
		}
		parts = append(parts, fmt.Sprintf("[%s] %s %s", item.Feature, item.Operator, value))
	}
	expressionStr := strings.Join(parts, " && ")
	expression, err := govaluate.NewEvaluableExpression(expressionStr)
	if err != nil {
		logger.Errorf("EvaluableExpression err:%v", err)
		return nil, err
	}
	return expression, nil
}

// EvaluateLogicRule 在一行取值上验证逻辑规则, 缺列或取值类型不对按求值错误返回
func EvaluateLogicRule(lr rbc.LogicRule, variables map[string]interface{}) (bool, error) {
	expression, err := LogicRuleExpression(lr)
	if err != nil {
		return false, err
	}
	result, err := expression.Evaluate(variables)
	if err != nil {
		return false, fmt.Errorf("logic rule %s: %v", lr.Name, err)
	}
	hit, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("logic rule %s: expression is not boolean", lr.Name)
	}
	return hit, nil
}
