package contract

import "context"

// Generator: 按参数生成随机序列。
// 约束：
//  1. 参数越界返回 ErrInvalidParameter，不产出残缺序列；
//  2. 给定种子时结果逐位可复现；
//  3. 每个元素位于 [-MaxAbs, MaxAbs]。
type Generator interface {
	Generate(ctx context.Context, p GenParams) (Sequence, error)
}
