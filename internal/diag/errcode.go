package diag

import (
	"context"
	"errors"
	"os"

	"maxsum/pkg/contract"
)

// Code 是最小错误分类代码。
// 仅用于日志/指标汇总，与退出码解耦。
type Code string

const (
	CodeUnknown      Code = "unknown"
	CodeInvalidParam Code = "invalid_param"
	CodeResource     Code = "resource"
	CodeInvariant    Code = "invariant"
	CodeCancel       Code = "cancel"
	CodeIO           Code = "io"
)

// Classify 将错误归为最小分类。
// 说明：仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	if errors.Is(err, contract.ErrInvalidParameter) || errors.Is(err, contract.ErrUnknownStrategy) {
		return CodeInvalidParam
	}
	if errors.Is(err, contract.ErrResourceExhausted) {
		return CodeResource
	}
	if errors.Is(err, contract.ErrInvariantViolation) {
		return CodeInvariant
	}
	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}
