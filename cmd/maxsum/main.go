package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	cfgpkg "maxsum/internal/config"
	"maxsum/internal/diag"
)

// 退出码：0 成功；1 运行期失败；3 配置/参数错误。
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 3
)

// exitError 携带退出码的错误。
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func configErr(err error) error  { return &exitError{code: exitConfig, err: err} }
func runtimeErr(err error) error { return &exitError{code: exitRuntime, err: err} }

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// app 聚合一次进程调用的全局旗标与运行期对象。
type app struct {
	in  io.Reader
	out io.Writer
	err io.Writer

	start  time.Time
	corrID string
	logger *diag.Logger
	term   *diag.Terminal

	// 全局旗标
	flagConfig      string
	flagStatus      bool
	flagLogLevel    string
	flagMetricsFile string

	metricsFile string
}

func run(args []string, in io.Reader, out, errw io.Writer) int {
	// 在任何 ENV 读取前，尝试加载工作目录下的 .env（不覆盖已有 ENV）。
	_ = loadDotEnv(".env")

	a := &app{in: in, out: out, err: errw, start: time.Now(), corrID: uuid.NewString()}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errw)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := root.ExecuteContext(ctx)
	a.finish(err == nil)
	if err == nil {
		return exitOK
	}
	var xe *exitError
	if errors.As(err, &xe) {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(errw, "错误: %v\n", err)
		}
		return xe.code
	}
	// cobra 自身的旗标/参数错误
	fmt.Fprintf(errw, "错误: %v\n", err)
	return exitConfig
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "maxsum",
		Short: "Maximum subsequence sum: five algorithms, a data generator and a timing harness",
		Long: `maxsum computes the largest sum of any contiguous (possibly empty) run of an
integer sequence with one of five algorithms of decreasing cost:

  iterative  O(n^3)       optimized  O(n^2)       topdown  O(n^2), recursion depth n
  divconq    O(n log n)   bottomup   O(n)

Data comes from the uniform generator (size, max, optional seed) or from
files / STDIN. Only the computation itself is timed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.flagConfig, "config", "", "配置文件路径（.json 或 .yaml）；缺省读取 ./config.json（若存在）")
	pf.BoolVar(&a.flagStatus, "status", true, "终端状态提示（stderr）。TTY 动态刷新；非 TTY 打点输出")
	pf.StringVar(&a.flagLogLevel, "log-level", "", "日志级别 debug|info|warn|error（覆盖配置）")
	pf.StringVar(&a.flagMetricsFile, "metrics-file", "", "退出前写出 prometheus 文本指标的路径（覆盖配置）")

	root.AddCommand(a.runCmd(), a.generateCmd(), a.compareCmd(), a.listCmd(), a.initConfigCmd())
	return root
}

// loadConfig 按优先级合并：默认 < 文件 < ENV < CLI，随后校验并初始化 logger/终端。
func (a *app) loadConfig(overCLI cfgpkg.Config, validate func(cfgpkg.Config) error) (cfgpkg.Config, error) {
	cfg := cfgpkg.Defaults()

	// 配置来源：--config > MAXSUM_CONFIG_FILE > MAXSUM_CONFIG_JSON > ./config.json
	path := a.flagConfig
	if path == "" {
		path = os.Getenv(cfgpkg.EnvPrefix + "CONFIG_FILE")
	}
	var raw []byte
	if path == "" {
		if s := os.Getenv(cfgpkg.EnvPrefix + "CONFIG_JSON"); s != "" {
			raw = []byte(s)
		}
	}
	if path == "" && len(raw) == 0 {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" || len(raw) > 0 {
		var (
			base cfgpkg.Config
			err  error
		)
		if len(raw) > 0 {
			base, err = cfgpkg.LoadJSON("", raw)
		} else {
			base, err = cfgpkg.LoadFile(path)
		}
		if err != nil {
			return cfg, configErr(fmt.Errorf("配置解析失败: %w", err))
		}
		cfg = cfgpkg.Merge(cfg, base)
	}

	overEnv, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		return cfg, configErr(fmt.Errorf("环境变量解析失败: %w", err))
	}
	cfg = cfgpkg.Merge(cfg, overEnv)

	if a.flagLogLevel != "" {
		overCLI.Logging.Level = a.flagLogLevel
	}
	if a.flagMetricsFile != "" {
		overCLI.MetricsFile = a.flagMetricsFile
	}
	cfg = cfgpkg.Merge(cfg, overCLI)
	a.metricsFile = cfg.MetricsFile

	a.logger = diag.NewLogger(a.corrID, cfg.Logging.Level, cfg.Logging.Dir)
	if err := validate(cfg); err != nil {
		a.logger.Error("config", string(diag.Classify(err)), "validate failed", &a.start)
		// 提示打印有效配置，便于诊断
		a.dumpConfig(cfg)
		return cfg, configErr(fmt.Errorf("配置校验失败: %w", err))
	}
	a.logger.DebugStart("config", "effective", map[string]string{
		"strategy":    cfg.Strategy,
		"inputs":      strings.Join(cfg.Inputs, ","),
		"generator":   cfg.Components.Generator,
		"loader":      cfg.Components.Loader,
		"max_depth":   fmt.Sprint(cfg.MaxDepth),
		"repeat":      fmt.Sprint(cfg.Repeat),
		"concurrency": fmt.Sprint(cfg.Concurrency),
	})

	// 终端信息提示（非日志）：按 CLI 启用，默认开启
	a.term = diag.NewTerminal(a.err, a.flagStatus)
	diag.SetTerminal(a.term)
	return cfg, nil
}

// fail 记录命令级错误并附上退出码。
func (a *app) fail(comp string, err error) error {
	code := diag.Classify(err)
	a.logger.Error(comp, string(code), "first error", &a.start)
	diag.IncOp(comp, "error", "error")
	if code != diag.CodeUnknown {
		diag.IncError(comp, string(code))
	}
	return runtimeErr(err)
}

// finish 释放终端与日志，按需写出指标；成功时记录整次调用的 finish。
func (a *app) finish(ok bool) {
	if ok {
		a.logger.InfoFinish("cli", "done", a.start, 0)
	}
	diag.SetTerminal(nil)
	if a.metricsFile != "" {
		if err := diag.WriteMetrics(a.metricsFile); err != nil {
			fmt.Fprintf(a.err, "提示：指标写出失败（已跳过）：%v\n", err)
		}
	}
	if a.logger != nil {
		_ = a.logger.Close()
	}
}

func (a *app) dumpConfig(c cfgpkg.Config) {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return
	}
	fmt.Fprintf(a.err, "有效配置:\n%s\n", b)
}
