package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"maxsum/internal/bench"
	cfgpkg "maxsum/internal/config"
	"maxsum/internal/diag"
	"maxsum/pkg/contract"
	"maxsum/pkg/registry"
)

// 测试替换点。
var (
	benchRun     = bench.Run
	benchCompare = bench.Compare
)

// genFlags 生成参数旗标（run/generate/compare 共用）。
type genFlags struct {
	size     int
	max      int
	seed     int64
	maxDepth int
}

func (g *genFlags) bind(fs *pflag.FlagSet, depth bool) {
	fs.IntVarP(&g.size, "size", "n", 0, "数据集大小（0..2147483647）")
	fs.IntVarP(&g.max, "max", "m", 0, "绝对值上界（1..1073741823）")
	fs.Int64VarP(&g.seed, "seed", "s", 0, "随机种子（-2147483648..2147483647）；缺省每次不同")
	if depth {
		fs.IntVar(&g.maxDepth, "max-depth", 0, "递归深度预算（帧数）")
	}
}

// overlay 只覆盖显式给出的旗标（显式 0 也生效）。
func (g *genFlags) overlay(fs *pflag.FlagSet, over *cfgpkg.Config) {
	if fs.Changed("size") {
		v := g.size
		over.Size = &v
	}
	if fs.Changed("max") {
		over.MaxAbs = g.max
		if g.max == 0 {
			// 显式 0 仍需进入校验并被拒绝
			over.MaxAbs = -1
		}
	}
	if fs.Changed("seed") {
		v := g.seed
		over.Seed = &v
	}
	if fs.Lookup("max-depth") != nil && fs.Changed("max-depth") {
		over.MaxDepth = g.maxDepth
		if g.maxDepth == 0 {
			over.MaxDepth = -1
		}
	}
}

func (a *app) runCmd() *cobra.Command {
	var (
		g        genFlags
		strategy string
	)
	cmd := &cobra.Command{
		Use:   "run [inputs...]",
		Short: "Compute the maximum subsequence sum with one strategy and report the time taken",
		Long: `Computes the maximum subsequence sum of a generated data set, or of the
integers read from the given files ("-" reads STDIN), and prints

  Max sum = <n>; time = <s> seconds.

Only the strategy's computation is timed.`,
		Example: `  maxsum run -a divconq -n 100000 -m 1000 -s 42
  maxsum generate -n 1000 -m 10 -s 7 | maxsum run -a topdown -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var over cfgpkg.Config
			over.Strategy = strategy
			over.Inputs = args
			g.overlay(cmd.Flags(), &over)
			cfg, err := a.loadConfig(over, cfgpkg.Validate)
			if err != nil {
				return err
			}
			comp, set, err := cfgpkg.Assemble(cfg)
			if err != nil {
				return configErr(fmt.Errorf("装配失败: %w", err))
			}
			a.bindStdin(comp.Loader)
			out, err := benchRun(cmd.Context(), comp, set, a.logger)
			if err != nil {
				return a.fail("run", err)
			}
			diag.IncOp("run", "finish", "success")
			_, err = fmt.Fprintln(a.out, out.Message())
			return err
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&strategy, "algorithm", "a", "", "策略："+strings.Join(registry.Names(registry.Strategy), "|")+"（接受别名）")
	g.bind(fs, true)
	return cmd
}

func (a *app) generateCmd() *cobra.Command {
	var g genFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random data set to stdout, one integer per line",
		Long: `Writes a uniformly distributed data set in [-max, max] to stdout. With a
seed the output is reproducible; pipe it into "maxsum run -" to time it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var over cfgpkg.Config
			g.overlay(cmd.Flags(), &over)
			cfg, err := a.loadConfig(over, func(c cfgpkg.Config) error {
				// generate 不读取外部输入：忽略 inputs 以校验生成参数
				c.Inputs = nil
				return cfgpkg.Validate(c)
			})
			if err != nil {
				return err
			}
			cfg.Inputs = nil
			comp, set, err := cfgpkg.Assemble(cfg)
			if err != nil {
				return configErr(fmt.Errorf("装配失败: %w", err))
			}
			seq, err := bench.Acquire(cmd.Context(), comp, set, a.logger)
			if err != nil {
				return a.fail("generate", err)
			}
			timer := a.logger.Start("generate", "write")
			if err := writeSequence(a.out, seq); err != nil {
				return a.fail("generate", err)
			}
			timer.Finish("write", int64(len(seq)))
			diag.IncOp("generate", "finish", "success")
			return nil
		},
	}
	g.bind(cmd.Flags(), false)
	return cmd
}

func (a *app) compareCmd() *cobra.Command {
	var (
		g           genFlags
		algorithms  []string
		repeat      int
		concurrency int
		thresholds  []float64
	)
	cmd := &cobra.Command{
		Use:   "compare [inputs...]",
		Short: "Time several strategies on the same data set and check that they agree",
		Long: `Runs each selected strategy --repeat times over one immutable data set,
up to --concurrency strategies at a time. All sums must agree. Prints a
timing table and, with at least two samples per strategy, bootstrap
confidences that the fastest strategy beats each other one by the given
relative thresholds. Recursive strategies whose depth would exceed
max_depth are skipped.`,
		Example: `  maxsum compare -n 5000 -m 100 -s 1 --repeat 5
  maxsum compare --algorithms divconq,bottomup -n 1000000 --repeat 10 --concurrency 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var over cfgpkg.Config
			over.Inputs = args
			over.Algorithms = algorithms
			fs := cmd.Flags()
			if fs.Changed("repeat") {
				over.Repeat = nonZero(repeat)
			}
			if fs.Changed("concurrency") {
				over.Concurrency = nonZero(concurrency)
			}
			g.overlay(fs, &over)
			cfg, err := a.loadConfig(over, cfgpkg.Validate)
			if err != nil {
				return err
			}
			entries, comp, set, err := cfgpkg.AssembleCompare(cfg)
			if err != nil {
				return configErr(fmt.Errorf("装配失败: %w", err))
			}
			a.bindStdin(comp.Loader)
			seq, err := bench.Acquire(cmd.Context(), comp, set, a.logger)
			if err != nil {
				return a.fail("compare", err)
			}
			rep, err := benchCompare(cmd.Context(), entries, seq, set, a.logger)
			if err != nil {
				return a.fail("compare", err)
			}
			lines, err := bench.Speedups(rep, thresholds)
			if err != nil {
				// 置信度为附加信息，失败不影响结果
				a.logger.Error("compare", string(diag.Classify(err)), "speedup skipped", nil)
				fmt.Fprintf(a.err, "提示：加速置信度计算失败（已跳过）：%v\n", err)
				lines = nil
			}
			if err := bench.Render(a.out, rep, lines); err != nil {
				return a.fail("compare", err)
			}
			diag.IncOp("compare", "finish", "success")
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringSliceVar(&algorithms, "algorithms", nil, "参与对比的策略（逗号分隔；缺省全部）")
	fs.IntVar(&repeat, "repeat", 0, "每个策略的采样次数（>=1）")
	fs.IntVar(&concurrency, "concurrency", 0, "并行执行的策略数（>=1）")
	fs.Float64SliceVar(&thresholds, "thresholds", bench.DefaultThresholds, "相对加速阈值（0.1 表示 10%）")
	g.bind(fs, true)
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available strategies, generators and loaders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := bufio.NewWriter(a.out)
			for _, id := range contract.StrategyIDs {
				fmt.Fprintf(w, "%-10s %s\n", id, complexity[id])
			}
			fmt.Fprintf(w, "\ngenerators: %s\nloaders:    %s\n",
				strings.Join(registry.Names(registry.Generator), ", "),
				strings.Join(registry.Names(registry.Loader), ", "))
			return w.Flush()
		},
	}
}

var complexity = map[contract.StrategyID]string{
	contract.IterativeDirect:  "O(n^3)      all (i, j) pairs, inner sum recomputed",
	contract.OptimizedDirect:  "O(n^2)      all (i, j) pairs, running sum",
	contract.TopDown:          "O(n^2)      recursive prefix/suffix, depth n+2",
	contract.DivideAndConquer: "O(n log n)  halves plus crossing sum, depth log n",
	contract.BottomUp:         "O(n)        single scan",
}

func (a *app) initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [dir]",
		Short: "Write config.json and .env templates (existing files are kept)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				dir = strings.TrimSpace(args[0])
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return configErr(fmt.Errorf("生成默认配置失败: %w", err))
			}
			cfgPath := filepath.Join(dir, "config.json")
			if err := writeConfig(cfgPath, cfgpkg.DefaultTemplateConfig()); err != nil {
				if !errors.Is(err, os.ErrExist) {
					return configErr(fmt.Errorf("生成默认配置失败: %w", err))
				}
				fmt.Fprintf(a.err, "提示：%s 已存在（已跳过）\n", cfgPath)
			}
			// 生成 .env 模板（不覆盖已存在文件）。
			if err := writeDotEnv(filepath.Join(dir, ".env")); err != nil {
				fmt.Fprintf(a.err, "提示：.env 生成失败（已跳过）：%v\n", err)
			}
			return nil
		},
	}
}

// bindStdin 让 "-" 读取命令的输入流而非进程 STDIN。
func (a *app) bindStdin(l contract.Loader) {
	if s, ok := l.(interface{ SetStdin(io.Reader) }); ok && a.in != nil {
		s.SetStdin(a.in)
	}
}

// writeSequence 每行一个整数。
func writeSequence(w io.Writer, seq contract.Sequence) error {
	bw := bufio.NewWriterSize(w, 64*1024)
	buf := make([]byte, 0, 16)
	for _, v := range seq {
		buf = strconv.AppendInt(buf[:0], int64(v), 10)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// nonZero: 显式 0 转为 -1，使其不被 Merge 视为“未设置”，从而进入校验被拒绝。
func nonZero(v int) int {
	if v == 0 {
		return -1
	}
	return v
}
