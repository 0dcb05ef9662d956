package bottomup

import (
	"encoding/json"

	"maxsum/pkg/contract"
)

// Options: 预留占位。
type Options struct{}

// Strategy 自底向上单次扫描，时间 O(n)，额外空间 O(1)。
// 规范实现：其余策略在测试中均以此为准。
type Strategy struct{}

func New(raw json.RawMessage) (contract.Strategy, error) {
	_ = raw
	return &Strategy{}, nil
}

func (Strategy) MaxSum(a contract.Sequence) int64 {
	best, _ := scan(a, nil)
	return best
}

// scan 执行扫描并在每次迭代顶部回调 (i, best, suffix)。
// 不变量：best 为 a[0..i-1] 的最大子序列和，suffix 为 a[0..i-1] 的最大后缀和。
// 最后一次回调 i == len(a)。
func scan(a contract.Sequence, visit func(i int, best, suffix int64)) (best, suffix int64) {
	for i := 0; i < len(a); i++ {
		if visit != nil {
			visit(i, best, suffix)
		}
		suffix = max(0, suffix+int64(a[i]))
		best = max(best, suffix)
	}
	if visit != nil {
		visit(len(a), best, suffix)
	}
	return best, suffix
}

var _ contract.Strategy = (*Strategy)(nil)
