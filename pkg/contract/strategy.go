package contract

import (
	"fmt"
	"strings"
)

// StrategyID: 策略标识（注册表键）。
type StrategyID string

const (
	IterativeDirect  StrategyID = "iterative"
	OptimizedDirect  StrategyID = "optimized"
	TopDown          StrategyID = "topdown"
	DivideAndConquer StrategyID = "divconq"
	BottomUp         StrategyID = "bottomup"
)

// StrategyIDs 按渐进代价从高到低排列（与原始界面的下拉顺序一致）。
var StrategyIDs = []StrategyID{IterativeDirect, OptimizedDirect, TopDown, DivideAndConquer, BottomUp}

// Strategy: 最大子序列和算法。
// 约束：
//  1. 纯函数：不修改 seq，不在调用之间保留状态；
//  2. 空窗口恒为候选，结果 >= 0；
//  3. 所有实现对相同输入返回相同结果。
type Strategy interface {
	MaxSum(seq Sequence) int64
}

// DepthReporter: 可选扩展接口。递归实现报告长度为 n 的输入所需的最大调用深度，
// 供 harness 在启动计算前做栈预算检查。
type DepthReporter interface {
	Depth(n int) int
}

var strategyAliases = map[string]StrategyID{
	"iterative":        IterativeDirect,
	"iter":             IterativeDirect,
	"iterativedirect":  IterativeDirect,
	"maxsumiter":       IterativeDirect,
	"optimized":        OptimizedDirect,
	"opt":              OptimizedDirect,
	"optimizeddirect":  OptimizedDirect,
	"maxsumopt":        OptimizedDirect,
	"topdown":          TopDown,
	"td":               TopDown,
	"maxsumtd":         TopDown,
	"divconq":          DivideAndConquer,
	"dc":               DivideAndConquer,
	"divideandconquer": DivideAndConquer,
	"maxsumdc":         DivideAndConquer,
	"bottomup":         BottomUp,
	"bu":               BottomUp,
	"maxsumbu":         BottomUp,
}

// ParseStrategyID 解析策略名（大小写不敏感，忽略 '-' 与 '_'）。
func ParseStrategyID(s string) (StrategyID, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.NewReplacer("-", "", "_", "").Replace(k)
	if id, ok := strategyAliases[k]; ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}
