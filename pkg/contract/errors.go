package contract

import "errors"

// 最小错误分类（用于上层策略判定与退出码映射）。
var (
	// ErrInvalidParameter: 生成/加载边界上的参数越界（size/max/seed 或外部数据非法）。
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrResourceExhausted: 递归深度或内存等资源不足以完成一次计算。
	ErrResourceExhausted = errors.New("resource exhausted")
	// ErrUnknownStrategy: 策略标识无法识别。
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrInvariantViolation: 领域不变量违例（例如不同策略结果不一致）。
	ErrInvariantViolation = errors.New("invariant violation")
)
