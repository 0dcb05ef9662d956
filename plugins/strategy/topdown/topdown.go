package topdown

import (
	"encoding/json"

	"maxsum/pkg/contract"
)

// Options: 预留占位。
type Options struct{}

// Strategy 自顶向下递归：
//
//	M(n) = max(M(n-1), S(n))
//	S(n) = max(0, a[n-1] + S(n-1))
//	M(0) = S(0) = 0
//
// 每层 M 触发一次 O(n) 的后缀计算，时间 O(n²)；递归深度 O(n)。
// 递归结构本身即为该实现的要点，保持非尾递归形式，不改写为迭代。
type Strategy struct{}

func New(raw json.RawMessage) (contract.Strategy, error) {
	_ = raw
	return &Strategy{}, nil
}

func (Strategy) MaxSum(a contract.Sequence) int64 {
	return maxSum(a, len(a))
}

// Depth: 顶层 maxSum(a, n) 一帧，其下 maxSuffix(a, n)..maxSuffix(a, 0) 共 n+1 帧，最深 n+2 帧。
func (Strategy) Depth(n int) int { return n + 2 }

// maxSum 返回 a[0..n-1] 的最大子序列和。
func maxSum(a contract.Sequence, n int) int64 {
	if n == 0 {
		return 0
	}
	return max(maxSum(a, n-1), maxSuffix(a, n))
}

// maxSuffix 返回 a[0..n-1] 的最大后缀和（含空后缀）。
func maxSuffix(a contract.Sequence, n int) int64 {
	if n == 0 {
		return 0
	}
	return max(0, int64(a[n-1])+maxSuffix(a, n-1))
}

var (
	_ contract.Strategy      = (*Strategy)(nil)
	_ contract.DepthReporter = (*Strategy)(nil)
)
