package contract

import (
	"fmt"
	"math"
)

const (
	// MaxSize: 数据集最大长度。
	MaxSize = math.MaxInt32
	// MaxAbsLimit: 绝对值上界的最大取值（保证 2*max+1 不溢出 int32）。
	MaxAbsLimit = 1<<30 - 1
	// MinSeed/MaxSeed: 种子取值范围。
	MinSeed = math.MinInt32
	MaxSeed = math.MaxInt32
)

// CheckGenParams 校验生成参数；越界返回包装 ErrInvalidParameter 的错误。
func CheckGenParams(p GenParams) error {
	if p.Size < 0 || p.Size > MaxSize {
		return fmt.Errorf("%w: size must be a nonnegative integer no more than %d, got %d", ErrInvalidParameter, MaxSize, p.Size)
	}
	if p.MaxAbs < 1 || p.MaxAbs > MaxAbsLimit {
		return fmt.Errorf("%w: max must be a positive integer no more than %d, got %d", ErrInvalidParameter, MaxAbsLimit, p.MaxAbs)
	}
	if p.Seed != nil && (*p.Seed < MinSeed || *p.Seed > MaxSeed) {
		return fmt.Errorf("%w: seed must be at least %d and at most %d, got %d", ErrInvalidParameter, MinSeed, MaxSeed, *p.Seed)
	}
	return nil
}
