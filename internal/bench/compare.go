package bench

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"maxsum/internal/diag"
	"maxsum/pkg/contract"
)

// Entry 参与对比的策略。
type Entry struct {
	ID       contract.StrategyID
	Strategy contract.Strategy
}

// Row 单个策略的对比结果。
type Row struct {
	Strategy contract.StrategyID
	Sum      int64
	Runs     []time.Duration
	// Skipped 非空表示因栈预算未执行（不参与一致性校验）
	Skipped string
}

// Min 最短耗时。
func (r Row) Min() time.Duration {
	if len(r.Runs) == 0 {
		return 0
	}
	return slices.Min(r.Runs)
}

// Median 中位耗时。
func (r Row) Median() time.Duration {
	if len(r.Runs) == 0 {
		return 0
	}
	s := slices.Clone(r.Runs)
	slices.Sort(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

// Mean 平均耗时。
func (r Row) Mean() time.Duration {
	if len(r.Runs) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range r.Runs {
		total += d
	}
	return total / time.Duration(len(r.Runs))
}

// Report 对比报告；Rows 顺序与输入 entries 一致。
type Report struct {
	N    int
	Sum  int64
	Rows []Row
}

// Compare 在同一不可变序列上对多个策略重复采样。
// 约束：
// - 策略之间并行（上限 Concurrency），同一策略的样本串行；
// - 首错取消：任一样本失败即取消其余策略，返回该错误；
// - 所有已执行策略的结果必须一致，否则返回 ErrInvariantViolation。
func Compare(ctx context.Context, entries []Entry, seq contract.Sequence, set Settings, logger *diag.Logger) (Report, error) {
	if len(entries) == 0 {
		return Report{}, fmt.Errorf("%w: no strategies to compare", contract.ErrInvalidParameter)
	}
	repeat := max(1, set.Repeat)
	conc := max(1, set.Concurrency)

	rep := Report{N: len(seq), Rows: make([]Row, len(entries))}
	runnable := 0
	for i, e := range entries {
		rep.Rows[i].Strategy = e.ID
		if err := CheckDepth(e.ID, e.Strategy, len(seq), set.MaxDepth); err != nil {
			rep.Rows[i].Skipped = err.Error()
			logger.ErrorWithKV("compare", string(diag.Classify(err)), "skip strategy", nil, map[string]string{"strategy": string(e.ID)})
			continue
		}
		runnable++
	}
	if runnable == 0 {
		return rep, fmt.Errorf("%w: every strategy exceeds max_depth=%d for n=%d", contract.ErrResourceExhausted, set.MaxDepth, len(seq))
	}

	total := runnable * repeat
	t := diag.GetTerminal()
	t.CompareStart(runnable, total)
	var done atomic.Int64

	start := time.Now()
	ctimer := logger.StartWithKV("compare", "compare", map[string]string{
		"strategies": strconv.Itoa(runnable), "repeat": strconv.Itoa(repeat), "n": strconv.Itoa(len(seq)),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(conc)
	for i, e := range entries {
		if rep.Rows[i].Skipped != "" {
			continue
		}
		row := &rep.Rows[i]
		g.Go(func() error {
			row.Runs = make([]time.Duration, 0, repeat)
			for k := 0; k < repeat; k++ {
				out, err := Measure(gctx, e.ID, e.Strategy, seq, set)
				if err != nil {
					return fmt.Errorf("strategy %s sample %d: %w", e.ID, k, err)
				}
				if k > 0 && out.Sum != row.Sum {
					return fmt.Errorf("%w: %s returned %d then %d on the same input", contract.ErrInvariantViolation, e.ID, row.Sum, out.Sum)
				}
				row.Sum = out.Sum
				row.Runs = append(row.Runs, out.Elapsed)
				diag.ObserveDuration("strategy", string(e.ID), out.Elapsed)
				t.SampleProgress(int(done.Add(1)), total, 0)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fail(logger, "compare", "compare failed", start, err, nil)
		t.RunFinish(false, time.Since(start))
		return rep, err
	}
	if err := agree(&rep); err != nil {
		fail(logger, "compare", "results disagree", start, err, nil)
		t.RunFinish(false, time.Since(start))
		return rep, err
	}
	ctimer.Finish("compare", int64(total), map[string]string{"sum": strconv.FormatInt(rep.Sum, 10)})
	diag.IncOp("compare", "finish", "success")
	t.RunFinish(true, time.Since(start))
	return rep, nil
}

// agree 校验所有已执行策略结果一致，并写入 rep.Sum。
func agree(rep *Report) error {
	var (
		ref  *Row
		diff []string
	)
	for i := range rep.Rows {
		r := &rep.Rows[i]
		if r.Skipped != "" {
			continue
		}
		if ref == nil {
			ref = r
			continue
		}
		if r.Sum != ref.Sum {
			diff = append(diff, fmt.Sprintf("%s=%d", r.Strategy, r.Sum))
		}
	}
	if ref == nil {
		return errors.New("no executed strategies")
	}
	if len(diff) > 0 {
		return fmt.Errorf("%w: %s=%d but %s", contract.ErrInvariantViolation, ref.Strategy, ref.Sum, strings.Join(diff, ", "))
	}
	rep.Sum = ref.Sum
	return nil
}
