package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maxsum/internal/bench"
	cfgpkg "maxsum/internal/config"
	"maxsum/internal/diag"
	"maxsum/pkg/contract"
)

// runCLI 在临时工作目录中执行一次命令行调用。
func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errb bytes.Buffer
	code := run(args, strings.NewReader(stdin), &out, &errb)
	return code, out.String(), errb.String()
}

func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestRunSeededLCG48(t *testing.T) {
	inTempDir(t)
	t.Setenv("MAXSUM_OPTIONS_GENERATOR_JSON", `{"algorithm":"lcg48"}`)
	// java.util.Random(42) 生成 [2,-1,3,0,-2,3,-4,-3,5,1]
	for _, a := range []string{"iterative", "optimized", "topdown", "divconq", "bottomup", "MaxSumBU"} {
		code, out, errOut := runCLI(t, "", "run", "-a", a, "-n", "10", "-m", "5", "-s", "42")
		require.Equal(t, exitOK, code, errOut)
		assert.True(t, strings.HasPrefix(out, "Max sum = 6; time = "), "%s: %q", a, out)
		assert.True(t, strings.HasSuffix(out, " seconds.\n"), out)
	}
}

func TestRunStdinAndFiles(t *testing.T) {
	dir := inTempDir(t)
	code, out, errOut := runCLI(t, "4 -1 2 1\n", "--status=false", "run", "-a", "dc", "-")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "Max sum = 6;")
	assert.Empty(t, errOut, "--status=false 不输出终端提示")

	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("-2, 1, -3, 4\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("-1 2 1 # tail\n-5 4\n"), 0o644))
	code, out, errOut = runCLI(t, "", "run", "-a", "topdown", a, b)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "Max sum = 6;")
	assert.Contains(t, errOut, "[run] strategy=topdown | n=9")
}

func TestRunEmptyAndAllNegative(t *testing.T) {
	inTempDir(t)
	code, out, _ := runCLI(t, "", "run", "-n", "0", "-m", "5")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "Max sum = 0;")
	code, out, _ = runCLI(t, "-1 -2 -3", "run", "-")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "Max sum = 0;")
}

func TestGenerate(t *testing.T) {
	inTempDir(t)
	t.Setenv("MAXSUM_OPTIONS_GENERATOR_JSON", `{"algorithm":"lcg48"}`)
	code, out, errOut := runCLI(t, "", "generate", "-n", "8", "-m", "100", "--seed=-7")
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, "66\n-1\n24\n-4\n-16\n-26\n26\n17\n", out)

	// generate 输出可直接回灌 run
	code, out2, errOut := runCLI(t, out, "run", "-a", "bu", "-")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out2, "Max sum = 89;")
}

func TestGenerateRejectsBadParams(t *testing.T) {
	inTempDir(t)
	for _, args := range [][]string{
		{"generate", "--size=-1", "-m", "5"},
		{"generate", "-n", "5", "-m", "0"},
		{"generate", "-n", "5", "-m", "1073741824"},
		{"generate", "-n", "5", "-m", "5", "--seed=2147483648"},
	} {
		code, out, errOut := runCLI(t, "", args...)
		assert.Equal(t, exitConfig, code, "%v", args)
		assert.Empty(t, out, "%v", args)
		assert.Contains(t, errOut, "invalid parameter", "%v", args)
	}
}

func TestCompare(t *testing.T) {
	inTempDir(t)
	code, out, errOut := runCLI(t, "", "compare", "-n", "300", "-m", "50", "--seed=3",
		"--repeat", "3", "--concurrency", "2", "--algorithms", "optimized,topdown,divconq,bottomup")
	require.Equal(t, exitOK, code, errOut)
	for _, want := range []string{"n = 300", "optimized", "topdown", "divconq", "bottomup", "Max sum = "} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "iterative")
}

func TestCompareSkipsTooDeep(t *testing.T) {
	inTempDir(t)
	code, out, errOut := runCLI(t, "", "compare", "-n", "50", "-m", "5", "--seed=1",
		"--algorithms", "td,bu", "--max-depth", "10")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "skipped topdown")
}

func TestCompareFailure(t *testing.T) {
	inTempDir(t)
	old := benchCompare
	benchCompare = func(ctx context.Context, entries []bench.Entry, seq contract.Sequence, set bench.Settings, logger *diag.Logger) (bench.Report, error) {
		return bench.Report{}, fmt.Errorf("%w: forced", contract.ErrInvariantViolation)
	}
	t.Cleanup(func() { benchCompare = old })
	code, _, errOut := runCLI(t, "", "compare", "-n", "10", "-m", "5")
	assert.Equal(t, exitRuntime, code)
	assert.Contains(t, errOut, "invariant violation")
}

func TestRunRuntimeFailures(t *testing.T) {
	inTempDir(t)
	// 深度超限
	code, _, errOut := runCLI(t, "", "run", "-a", "topdown", "-n", "100", "-m", "5", "--max-depth", "10")
	assert.Equal(t, exitRuntime, code)
	assert.Contains(t, errOut, "resource exhausted")
	assert.Contains(t, errOut, "[fail]")

	// 外部文件不存在
	code, _, errOut = runCLI(t, "", "run", "missing.txt")
	assert.Equal(t, exitRuntime, code)
	assert.Contains(t, errOut, "missing.txt")

	// 非法数据
	code, _, errOut = runCLI(t, "1 two 3", "run", "-")
	assert.Equal(t, exitRuntime, code)
	assert.Contains(t, errOut, "invalid parameter")

	old := benchRun
	benchRun = func(ctx context.Context, comp bench.Components, set bench.Settings, logger *diag.Logger) (bench.Outcome, error) {
		return bench.Outcome{}, context.Canceled
	}
	t.Cleanup(func() { benchRun = old })
	code, _, errOut = runCLI(t, "", "run")
	assert.Equal(t, exitRuntime, code)
	assert.NotContains(t, errOut, "错误:", "取消不打印错误")
}

func TestConfigErrors(t *testing.T) {
	dir := inTempDir(t)
	code, _, errOut := runCLI(t, "", "run", "-a", "quicksort")
	assert.Equal(t, exitConfig, code)
	assert.Contains(t, errOut, "unknown strategy")

	code, _, _ = runCLI(t, "", "run", "--bogus")
	assert.Equal(t, exitConfig, code)

	code, _, _ = runCLI(t, "", "run", "-", "a.txt")
	assert.Equal(t, exitConfig, code)

	code, _, _ = runCLI(t, "", "--config", filepath.Join(dir, "nope.json"), "run")
	assert.Equal(t, exitConfig, code)

	t.Setenv("MAXSUM_REPEAT", "many")
	code, _, errOut = runCLI(t, "", "compare")
	assert.Equal(t, exitConfig, code)
	assert.Contains(t, errOut, "MAXSUM_REPEAT")
}

func TestDefaultConfigFileInvalid(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"strategy":"nope"}`), 0o644))
	code, _, errOut := runCLI(t, "", "run")
	assert.Equal(t, exitConfig, code)
	assert.Contains(t, errOut, "有效配置")
}

// 优先级：CLI > ENV > 文件
func TestConfigPrecedence(t *testing.T) {
	dir := inTempDir(t)
	yml := filepath.Join(dir, "maxsum.yaml")
	require.NoError(t, os.WriteFile(yml, []byte("strategy: topdown\nsize: 7\nmax: 3\nseed: 5\n"), 0o644))

	code, _, errOut := runCLI(t, "", "--config", yml, "run")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, errOut, "strategy=topdown | n=7")

	t.Setenv("MAXSUM_STRATEGY", "divconq")
	t.Setenv("MAXSUM_SIZE", "9")
	code, _, errOut = runCLI(t, "", "--config", yml, "run")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, errOut, "strategy=divconq | n=9")

	code, _, errOut = runCLI(t, "", "--config", yml, "run", "-a", "bu", "-n", "0")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, errOut, "strategy=bottomup | n=0")

	// MAXSUM_CONFIG_FILE 与 MAXSUM_CONFIG_JSON
	t.Setenv("MAXSUM_STRATEGY", "")
	t.Setenv("MAXSUM_SIZE", "")
	t.Setenv("MAXSUM_CONFIG_FILE", yml)
	code, _, errOut = runCLI(t, "", "run")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, errOut, "strategy=topdown | n=7")

	t.Setenv("MAXSUM_CONFIG_FILE", "")
	t.Setenv("MAXSUM_CONFIG_JSON", `{"strategy":"optimized","size":4}`)
	code, _, errOut = runCLI(t, "", "run")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, errOut, "strategy=optimized | n=4")
}

func TestInitConfig(t *testing.T) {
	dir := inTempDir(t)
	out := filepath.Join(dir, "out")
	code, _, errOut := runCLI(t, "", "init-config", out)
	require.Equal(t, exitOK, code, errOut)
	cfg, err := cfgpkg.LoadFile(filepath.Join(out, "config.json"))
	require.NoError(t, err)
	require.NoError(t, cfgpkg.Validate(cfgpkg.Merge(cfgpkg.Defaults(), cfg)))
	env, err := os.ReadFile(filepath.Join(out, ".env"))
	require.NoError(t, err)
	assert.Contains(t, string(env), "MAXSUM_STRATEGY=")

	// 再次执行：不覆盖
	require.NoError(t, os.WriteFile(filepath.Join(out, ".env"), []byte("# mine\n"), 0o644))
	code, _, errOut = runCLI(t, "", "init-config", out)
	require.Equal(t, exitOK, code)
	assert.Contains(t, errOut, "已存在")
	env, err = os.ReadFile(filepath.Join(out, ".env"))
	require.NoError(t, err)
	assert.Equal(t, "# mine\n", string(env))

	// 默认当前目录；生成的 config.json 被自动读取
	code, _, _ = runCLI(t, "", "init-config")
	require.Equal(t, exitOK, code)
	_, err = os.Stat(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	code, stdout, errOut := runCLI(t, "", "run", "-n", "20")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, stdout, "Max sum = ")
}

func TestList(t *testing.T) {
	inTempDir(t)
	code, out, _ := runCLI(t, "", "list")
	require.Equal(t, exitOK, code)
	for _, id := range contract.StrategyIDs {
		assert.Contains(t, out, string(id))
	}
	assert.Contains(t, out, "generators: uniform")
	assert.Contains(t, out, "loaders:    text")
}

func TestMetricsFile(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "m.prom")
	code, _, errOut := runCLI(t, "", "--metrics-file", path, "run", "-n", "10", "-m", "3")
	require.Equal(t, exitOK, code, errOut)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "maxsum_op_total")
	assert.Contains(t, string(b), "maxsum_op_duration_ms")
}

func TestLogsWritten(t *testing.T) {
	dir := inTempDir(t)
	code, _, _ := runCLI(t, "", "--log-level", "debug", "run", "-n", "10", "-m", "3")
	require.Equal(t, exitOK, code)
	b, err := os.ReadFile(filepath.Join(dir, "logs", "maxsum-current.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"comp":"strategy"`)
	assert.Contains(t, string(b), `"msg":"effective"`)
	assert.Contains(t, string(b), `"comp":"cli"`)

	code, _, _ = runCLI(t, "", "--log-level", "info", "generate", "-n", "4", "-m", "3")
	require.Equal(t, exitOK, code)
	b, err = os.ReadFile(filepath.Join(dir, "logs", "maxsum-current.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"write"`)
}

func TestLoadDotEnv(t *testing.T) {
	dir := inTempDir(t)
	// 注册清理后再删除，使 loadDotEnv 可写入且测试结束后恢复
	for _, k := range []string{"MAXSUM_T_PLAIN", "MAXSUM_T_QUOTED", "MAXSUM_T_SINGLE", "MAXSUM_T_KEEP", "MAXSUM_T_EXPORT"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv("MAXSUM_T_KEEP", "env")
	content := strings.Join([]string{
		"# comment",
		"",
		"MAXSUM_T_PLAIN = a b ",
		`MAXSUM_T_QUOTED="x\ny \"z\""`,
		"MAXSUM_T_SINGLE='raw\\n'",
		"MAXSUM_T_KEEP=file",
		"export MAXSUM_T_EXPORT=1",
		"=novalue",
		"garbage",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644))
	require.NoError(t, loadDotEnv(".env"))
	assert.Equal(t, "a b", os.Getenv("MAXSUM_T_PLAIN"))
	assert.Equal(t, "x\ny \"z\"", os.Getenv("MAXSUM_T_QUOTED"))
	assert.Equal(t, `raw\n`, os.Getenv("MAXSUM_T_SINGLE"))
	assert.Equal(t, "env", os.Getenv("MAXSUM_T_KEEP"), "不覆盖已有 ENV")
	assert.Equal(t, "1", os.Getenv("MAXSUM_T_EXPORT"))

	require.NoError(t, loadDotEnv(filepath.Join(dir, "absent.env")))
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "", unquote(""))
	assert.Equal(t, `"`, unquote(`"`))
	assert.Equal(t, "", unquote(`""`))
	assert.Equal(t, `'a"`, unquote(`'a"`))
	assert.Equal(t, `a\b`, unquote(`"a\\b"`))
}

func TestWriteConfigNoOverwrite(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "c.json")
	require.NoError(t, writeConfig(p, cfgpkg.Defaults()))
	require.ErrorIs(t, writeConfig(p, cfgpkg.Defaults()), os.ErrExist)
	require.NoError(t, writeDotEnv(filepath.Join(dir, ".env")))
	require.NoError(t, writeDotEnv(filepath.Join(dir, ".env")))
}

func TestWriteSequence(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSequence(&buf, contract.Sequence{-2147483648, 0, 2147483647}))
	assert.Equal(t, "-2147483648\n0\n2147483647\n", buf.String())
}
