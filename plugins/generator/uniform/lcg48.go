package uniform

// lcg48 复刻 java.util.Random 的核心序列：
//
//	seed = (seed * 0x5DEECE66D + 0xB) mod 2^48
//
// 以及 nextInt(bound) 的拒绝采样，使同一种子产出相同的数据集。
type lcg48 struct {
	seed int64
}

const (
	lcgMultiplier = 0x5DEECE66D
	lcgAddend     = 0xB
	lcgMask       = 1<<48 - 1
)

func newLCG48(seed int64) *lcg48 {
	return &lcg48{seed: (seed ^ lcgMultiplier) & lcgMask}
}

// next 返回高 bits 位（按 int32 解释，与 Java 的 (int) 截断一致）。
func (r *lcg48) next(bits uint) int32 {
	r.seed = (r.seed*lcgMultiplier + lcgAddend) & lcgMask
	return int32(r.seed >> (48 - bits))
}

// IntN 等价于 Random.nextInt(bound)；bound 必须在 (0, 2^31-1]。
func (r *lcg48) IntN(bound int) int {
	if bound <= 0 {
		panic("lcg48: invalid bound")
	}
	b := int32(bound)
	if b&-b == b {
		return int((int64(b) * int64(r.next(31))) >> 31)
	}
	for {
		bits := r.next(31)
		val := bits % b
		// int32 溢出为负即拒绝（与 Java 行为一致）
		if bits-val+(b-1) >= 0 {
			return int(val)
		}
	}
}
