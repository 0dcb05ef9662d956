package bench

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"maxsum/internal/diag"
	"maxsum/pkg/contract"
)

// - 单点计时：计时严格包围 Strategy.MaxSum，不含数据获取与日志。
// - 栈预算：递归策略在启动前按 DepthReporter 检查深度；Go 的栈溢出不可恢复，只能预判。
// - 隔离执行：每次计算在独立 goroutine 上运行，策略内 panic 转换为错误返回。
// - 无重试：任何失败立即返回。

// DefaultMaxDepth 递归深度预算（帧数）。
const DefaultMaxDepth = 1 << 21

// Components 聚合运行所需的原子组件。
type Components struct {
	StrategyID contract.StrategyID
	Strategy   contract.Strategy
	Generator  contract.Generator
	// Loader 可选：Settings.Inputs 非空时使用，取代 Generator。
	Loader contract.Loader
}

// Settings 运行期配置（最小必要）。
type Settings struct {
	// Inputs: 外部数据根（文件或 "-"）；为空则由 Generator 按 Params 生成
	Inputs []string
	Params contract.GenParams
	// MaxDepth: 递归深度预算；<=0 表示不检查
	MaxDepth int
	// Repeat: Compare 中每个策略的采样次数（>=1）
	Repeat int
	// Concurrency: Compare 中并行执行的策略数（>=1）
	Concurrency int
}

// Outcome 单次计算结果。
type Outcome struct {
	Strategy contract.StrategyID
	N        int
	Sum      int64
	Elapsed  time.Duration
}

// Seconds 以秒表示的耗时。
func (o Outcome) Seconds() float64 { return o.Elapsed.Seconds() }

// Message 结果行：Max sum = <n>; time = <s> seconds.
func (o Outcome) Message() string {
	return fmt.Sprintf("Max sum = %d; time = %s seconds.", o.Sum, strconv.FormatFloat(o.Seconds(), 'f', -1, 64))
}

// CheckDepth 若策略报告的递归深度超出预算，返回 ErrResourceExhausted。
func CheckDepth(id contract.StrategyID, s contract.Strategy, n, maxDepth int) error {
	if maxDepth <= 0 {
		return nil
	}
	dr, ok := s.(contract.DepthReporter)
	if !ok {
		return nil
	}
	if d := dr.Depth(n); d > maxDepth {
		return fmt.Errorf("%w: %s needs recursion depth %d for n=%d, max_depth=%d", contract.ErrResourceExhausted, id, d, n, maxDepth)
	}
	return nil
}

type measured struct {
	sum int64
	dur time.Duration
	err error
}

// Measure 对单个策略执行一次计算并计时。
// 调用前检查 ctx 与栈预算；计算开始后不可取消。
func Measure(ctx context.Context, id contract.StrategyID, s contract.Strategy, seq contract.Sequence, set Settings) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if s == nil {
		return Outcome{}, fmt.Errorf("%w: %q has no implementation", contract.ErrUnknownStrategy, id)
	}
	if err := CheckDepth(id, s, len(seq), set.MaxDepth); err != nil {
		return Outcome{}, err
	}
	ch := make(chan measured, 1)
	go func() {
		var m measured
		defer func() {
			if p := recover(); p != nil {
				m.err = panicError(id, p)
			}
			ch <- m
		}()
		t0 := time.Now()
		m.sum = s.MaxSum(seq)
		m.dur = time.Since(t0)
	}()
	m := <-ch
	if m.err != nil {
		return Outcome{}, m.err
	}
	return Outcome{Strategy: id, N: len(seq), Sum: m.sum, Elapsed: m.dur}, nil
}

// panicError: 运行时错误（越界、内存不足等）归为资源类；其余原样描述。
func panicError(id contract.StrategyID, p any) error {
	var rerr runtime.Error
	if e, ok := p.(error); ok && errors.As(e, &rerr) {
		return fmt.Errorf("%w: %s panicked: %v", contract.ErrResourceExhausted, id, rerr)
	}
	return fmt.Errorf("%s panicked: %v", id, p)
}

// Run 执行一次完整测量：Loader/Generator → Measure。
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) (Outcome, error) {
	if err := sanity(comp, set); err != nil {
		return Outcome{}, fmt.Errorf("sanity: %w", err)
	}
	seq, err := acquire(ctx, comp, set, logger)
	if err != nil {
		return Outcome{}, err
	}

	id := string(comp.StrategyID)
	t := diag.GetTerminal()
	t.RunStart(id, len(seq))
	t.Busy()

	start := time.Now()
	stimer := logger.StartWithKV("strategy", "max_sum", map[string]string{"strategy": id, "n": strconv.Itoa(len(seq))})
	out, err := Measure(ctx, comp.StrategyID, comp.Strategy, seq, set)
	if err != nil {
		fail(logger, "strategy", "max_sum failed", start, err, map[string]string{"strategy": id})
		t.RunFinish(false, time.Since(start))
		return Outcome{}, fmt.Errorf("strategy %s: %w", id, err)
	}
	stimer.Finish("max_sum", int64(out.N), map[string]string{"strategy": id, "sum": strconv.FormatInt(out.Sum, 10)})
	diag.IncOp("strategy", "finish", "success")
	diag.ObserveDuration("strategy", id, out.Elapsed)
	t.RunFinish(true, out.Elapsed)
	return out, nil
}

// Acquire 获取待计算序列：Inputs 非空走 Loader，否则走 Generator。
func Acquire(ctx context.Context, comp Components, set Settings, logger *diag.Logger) (contract.Sequence, error) {
	if len(set.Inputs) == 0 && comp.Generator == nil {
		return nil, fmt.Errorf("%w: generator is nil", contract.ErrInvalidParameter)
	}
	if len(set.Inputs) > 0 && comp.Loader == nil {
		return nil, fmt.Errorf("%w: loader is nil", contract.ErrInvalidParameter)
	}
	return acquire(ctx, comp, set, logger)
}

func acquire(ctx context.Context, comp Components, set Settings, logger *diag.Logger) (contract.Sequence, error) {
	start := time.Now()
	if len(set.Inputs) > 0 {
		timer := logger.StartWithKV("loader", "load", map[string]string{"roots": strconv.Itoa(len(set.Inputs))})
		seq, err := comp.Loader.Load(ctx, set.Inputs)
		if err != nil {
			fail(logger, "loader", "load failed", start, err, nil)
			return nil, fmt.Errorf("loader load: %w", err)
		}
		timer.Finish("load", int64(len(seq)))
		diag.IncOp("loader", "finish", "success")
		diag.ObserveDuration("loader", "load", time.Since(start))
		return seq, nil
	}
	kv := map[string]string{"size": strconv.Itoa(set.Params.Size), "max": strconv.Itoa(set.Params.MaxAbs)}
	if set.Params.Seed != nil {
		kv["seed"] = strconv.FormatInt(*set.Params.Seed, 10)
	}
	timer := logger.StartWithKV("generator", "generate", kv)
	seq, err := comp.Generator.Generate(ctx, set.Params)
	if err != nil {
		fail(logger, "generator", "generate failed", start, err, kv)
		return nil, fmt.Errorf("generator generate: %w", err)
	}
	timer.Finish("generate", int64(len(seq)))
	diag.IncOp("generator", "finish", "success")
	diag.ObserveDuration("generator", "generate", time.Since(start))
	return seq, nil
}

// fail 统一记录错误日志与指标。
func fail(logger *diag.Logger, comp, msg string, start time.Time, err error, kv map[string]string) {
	code := diag.Classify(err)
	kv2 := map[string]string{"err": err.Error()}
	for k, v := range kv {
		kv2[k] = v
	}
	logger.ErrorWithKV(comp, string(code), msg, &start, kv2)
	diag.IncOp(comp, "error", "error")
	if code != diag.CodeUnknown {
		diag.IncError(comp, string(code))
	}
}

func sanity(comp Components, set Settings) error {
	if comp.Strategy == nil {
		return fmt.Errorf("%w: strategy %q is nil", contract.ErrUnknownStrategy, comp.StrategyID)
	}
	if len(set.Inputs) == 0 && comp.Generator == nil {
		return fmt.Errorf("%w: generator is nil", contract.ErrInvalidParameter)
	}
	if len(set.Inputs) > 0 && comp.Loader == nil {
		return fmt.Errorf("%w: loader is nil", contract.ErrInvalidParameter)
	}
	return nil
}
