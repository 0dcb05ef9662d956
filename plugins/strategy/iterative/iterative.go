package iterative

import (
	"encoding/json"

	"maxsum/pkg/contract"
)

// Options: 预留占位，直接实现无需配置。
type Options struct{}

// Strategy 按定义直接计算：枚举所有 (i, j)，对 a[i..j) 显式求和。
// 时间 O(n³)，额外空间 O(1)。作为其他实现的定义基线。
type Strategy struct{}

// New 从原样 JSON Options 创建（当前忽略选项）。
func New(raw json.RawMessage) (contract.Strategy, error) {
	_ = raw
	return &Strategy{}, nil
}

func (Strategy) MaxSum(a contract.Sequence) int64 {
	n := len(a)
	var m int64
	for i := 0; i <= n; i++ {
		for j := i; j <= n; j++ {
			var sum int64
			for k := i; k < j; k++ {
				sum += int64(a[k])
			}
			if sum > m {
				m = sum
			}
		}
	}
	return m
}

var _ contract.Strategy = (*Strategy)(nil)
