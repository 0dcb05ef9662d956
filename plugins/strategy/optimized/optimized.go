package optimized

import (
	"encoding/json"

	"maxsum/pkg/contract"
)

// Options: 预留占位。
type Options struct{}

// Strategy 对直接实现的优化：固定起点 i，终点推进时增量累加，不再重算内层和。
// 时间 O(n²)，额外空间 O(1)。
type Strategy struct{}

func New(raw json.RawMessage) (contract.Strategy, error) {
	_ = raw
	return &Strategy{}, nil
}

func (Strategy) MaxSum(a contract.Sequence) int64 {
	var m int64
	for i := 0; i < len(a); i++ {
		var sum int64
		for k := i; k < len(a); k++ {
			sum += int64(a[k])
			if sum > m {
				m = sum
			}
		}
	}
	return m
}

var _ contract.Strategy = (*Strategy)(nil)
