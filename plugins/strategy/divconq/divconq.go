package divconq

import (
	"encoding/json"
	"math/bits"

	"maxsum/pkg/contract"
)

// Options: 预留占位。
type Options struct{}

// Strategy 分治：在 mid=(lo+hi)/2 处二分，分别求左右两半，
// 再加上跨越中点的和（左半最大后缀 + 右半最大前缀），取三者最大。
// T(n) = 2T(n/2) + O(n)，即 O(n log n)；递归深度 O(log n)。
type Strategy struct{}

func New(raw json.RawMessage) (contract.Strategy, error) {
	_ = raw
	return &Strategy{}, nil
}

func (Strategy) MaxSum(a contract.Sequence) int64 {
	if len(a) == 0 {
		return 0
	}
	return maxSum(a, 0, len(a)-1)
}

// Depth 返回 ceil(log2 n)+1。
func (Strategy) Depth(n int) int {
	if n <= 1 {
		return 1
	}
	return bits.Len(uint(n-1)) + 1
}

// maxSum 返回 a[lo..hi] 的最大子序列和；要求 lo <= hi。
func maxSum(a contract.Sequence, lo, hi int) int64 {
	if lo == hi {
		return max(0, int64(a[lo]))
	}
	mid := lo + (hi-lo)/2
	left := maxSum(a, lo, mid)
	right := maxSum(a, mid+1, hi)
	cross := maxSuffix(a, lo, mid) + maxPrefix(a, mid+1, hi)
	return max(left, right, cross)
}

// maxSuffix 返回 a[lo..hi] 的最大后缀和。
func maxSuffix(a contract.Sequence, lo, hi int) int64 {
	var m int64
	// 不变量：m 为 a[lo..i-1] 的最大后缀和
	for i := lo; i <= hi; i++ {
		m = max(0, m+int64(a[i]))
	}
	return m
}

// maxPrefix 返回 a[lo..hi] 的最大前缀和。
func maxPrefix(a contract.Sequence, lo, hi int) int64 {
	var m int64
	// 不变量：m 为 a[i+1..hi] 的最大前缀和
	for i := hi; i >= lo; i-- {
		m = max(0, m+int64(a[i]))
	}
	return m
}

var (
	_ contract.Strategy      = (*Strategy)(nil)
	_ contract.DepthReporter = (*Strategy)(nil)
)
