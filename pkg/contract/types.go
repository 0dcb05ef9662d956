package contract

// Sequence: 只读整数序列。
// 约束：
//   - 元素为 32 位有符号整数，求和一律提升到 int64；
//   - 调用方持有所有权；任何策略在调用期间不得修改其内容。
type Sequence []int32

// GenParams: 随机数据集生成参数。
type GenParams struct {
	// Size: 元素个数（0..MaxSize）。
	Size int
	// MaxAbs: 绝对值上界（1..MaxAbsLimit）；元素取值闭区间 [-MaxAbs, MaxAbs]。
	MaxAbs int
	// Seed: 可选种子（MinSeed..MaxSeed）；nil 表示未设置，每次运行结果不同。
	Seed *int64
}

// Clone 返回独立副本。
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}
