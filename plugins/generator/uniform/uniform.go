package uniform

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"maxsum/pkg/contract"
)

// 伪随机算法名。
const (
	// AlgoPCG: math/rand/v2 的 PCG，种子 (seed, seed)。
	AlgoPCG = "pcg"
	// AlgoLCG48: java.util.Random 的 48 位线性同余；同一种子得到与原始程序逐值相同的数据集。
	AlgoLCG48 = "lcg48"
)

// ctxCheckEvery: 生成大数据集时每隔多少个元素检查一次 ctx。
const ctxCheckEvery = 1 << 16

// Options: 生成器配置。
type Options struct {
	// Algorithm: "pcg"（默认）或 "lcg48"。
	Algorithm string `json:"algorithm"`
}

// intner: 在 [0, n) 上均匀取整。
type intner interface {
	IntN(n int) int
}

// Generator 在 [-max, max] 上独立均匀地取值。
type Generator struct {
	algo string
	// seedFn 提供未设置种子时的随机种子；测试可替换。
	seedFn func() int64
}

// New 创建生成器；未知算法名返回 ErrInvalidParameter。
func New(opts *Options) (*Generator, error) {
	algo := AlgoPCG
	if opts != nil && strings.TrimSpace(opts.Algorithm) != "" {
		algo = strings.ToLower(strings.TrimSpace(opts.Algorithm))
	}
	switch algo {
	case AlgoPCG, AlgoLCG48:
	default:
		return nil, fmt.Errorf("%w: unknown generator algorithm %q", contract.ErrInvalidParameter, algo)
	}
	return &Generator{algo: algo, seedFn: func() int64 { return rand.Int64() }}, nil
}

// Algorithm 返回生效的算法名。
func (g *Generator) Algorithm() string { return g.algo }

// Generate 按参数生成序列。参数先整体校验，校验通过才分配内存。
func (g *Generator) Generate(ctx context.Context, p contract.GenParams) (contract.Sequence, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if err := contract.CheckGenParams(p); err != nil {
		return nil, err
	}
	var seed int64
	if p.Seed != nil {
		seed = *p.Seed
	} else {
		seed = g.seedFn()
	}
	r := g.source(seed)
	lim := 2*p.MaxAbs + 1
	out := make(contract.Sequence, p.Size)
	for i := range out {
		if i%ctxCheckEvery == 0 && i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		out[i] = int32(r.IntN(lim) - p.MaxAbs)
	}
	return out, nil
}

func (g *Generator) source(seed int64) intner {
	if g.algo == AlgoLCG48 {
		return newLCG48(seed)
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

var _ contract.Generator = (*Generator)(nil)
