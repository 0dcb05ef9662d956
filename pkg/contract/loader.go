package contract

import "context"

// Loader: 外部数据源（文件/STDIN）。
// 约束：
// 1) roots 按给定顺序拼接为一个序列；
// 2) "-" 表示 STDIN，不能与其他根混用；
// 3) 非法数值返回 ErrInvalidParameter。
type Loader interface {
	Load(ctx context.Context, roots []string) (Sequence, error)
}
