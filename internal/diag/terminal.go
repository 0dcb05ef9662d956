package diag

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Terminal: 终端信息提示（非日志）。
// - 输出到提供的 io.Writer（默认建议 stderr），结果行由调用方写 stdout。
// - TTY: 单行 \r 覆盖，标签着色；非 TTY: 关键节点分行打印，无控制字符。
// - 并发安全；写失败后进入禁用态为 no-op。
type Terminal struct {
	w       io.Writer
	enabled bool
	isTTY   bool

	// 运行期最小状态
	strategy string
	size     int
	runStart time.Time

	// 对比进度
	samplesTotal int
	samplesDone  int
	errCount     int

	// 输出控制
	lastLen   int
	lastFlush time.Time

	tags map[string]lipgloss.Style

	mu sync.Mutex
}

// 进程级终端（可选，全局设置后供 bench 旁路调用）。
var (
	termMu sync.RWMutex
	term   *Terminal
)

// SetTerminal 设置全局终端指针（nil 可清除）。
func SetTerminal(t *Terminal) { termMu.Lock(); term = t; termMu.Unlock() }

// GetTerminal 返回全局终端（可能为 nil）。
func GetTerminal() *Terminal { termMu.RLock(); defer termMu.RUnlock(); return term }

// NewTerminal 构造终端提示器。
// enabled=false 时总是 no-op。
func NewTerminal(w io.Writer, enabled bool) *Terminal {
	if w == nil {
		w = os.Stderr
	}
	t := &Terminal{w: w, enabled: enabled}
	// CI 环境视为非 TTY
	if os.Getenv("CI") != "" {
		t.isTTY = false
	} else if f, ok := w.(*os.File); ok {
		// 最小 TTY 判定：字符设备
		if fi, err := f.Stat(); err == nil {
			t.isTTY = fi.Mode()&os.ModeCharDevice != 0
		}
	}
	r := lipgloss.NewRenderer(w)
	t.tags = map[string]lipgloss.Style{
		"run":  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		"busy": r.NewStyle().Foreground(lipgloss.Color("11")),
		"cmp":  r.NewStyle().Foreground(lipgloss.Color("14")),
		"ok":   r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		"fail": r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
	return t
}

// RunStart: 记录运行上下文（策略、序列长度）。
func (t *Terminal) RunStart(strategy string, size int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.strategy = safe(strategy)
	t.size = size
	t.runStart = time.Now()
	t.println(fmt.Sprintf("%s strategy=%s | n=%d", t.tag("run"), t.strategy, size))
}

// Busy: 计算进行中（替代等待光标）。TTY 单行覆盖；非 TTY 打点一行。
func (t *Terminal) Busy() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	line := fmt.Sprintf("%s %s 计算中…", t.tag("busy"), t.strategy)
	if t.isTTY {
		t.printInline(line)
		return
	}
	t.println(line)
}

// CompareStart: 对比开始（策略数、总样本数）。
func (t *Terminal) CompareStart(strategies, samplesTotal int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.samplesTotal = samplesTotal
	t.samplesDone = 0
	t.errCount = 0
	t.runStart = time.Now()
	t.println(fmt.Sprintf("%s 策略=%d | 样本=%d", t.tag("cmp"), strategies, samplesTotal))
}

// SampleProgress: 周期性进度（≥100ms 节流，仅 TTY）。
func (t *Terminal) SampleProgress(done, total, errs int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled || !t.isTTY {
		return
	}
	t.samplesDone = done
	t.samplesTotal = total
	t.errCount = errs
	now := time.Now()
	if now.Sub(t.lastFlush) < 100*time.Millisecond {
		return
	}
	t.lastFlush = now
	line := fmt.Sprintf("%s 进度 %d/%d | 错误 %d | 用时 %s",
		t.tag("cmp"), t.samplesDone, t.samplesTotal, t.errCount, formatSince(t.runStart))
	t.printInline(line)
}

// RunFinish: 结束总览（先清掉 TTY 行尾）。
func (t *Terminal) RunFinish(ok bool, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	tag := "ok"
	if !ok {
		tag = "fail"
	}
	if t.isTTY && t.lastLen > 0 {
		t.printInline("")
	}
	t.println(fmt.Sprintf("%s %s | 总用时 %s", t.tag(tag), t.strategy, formatDur(dur)))
}

// tag 渲染 [name]；仅 TTY 着色。
func (t *Terminal) tag(name string) string {
	s := "[" + name + "]"
	if !t.isTTY {
		return s
	}
	if st, ok := t.tags[name]; ok {
		return st.Render(s)
	}
	return s
}

// 内部输出工具
func (t *Terminal) println(s string) {
	if t == nil || !t.enabled {
		return
	}
	if t.isTTY && t.lastLen > 0 {
		s = "\r" + s + strings.Repeat(" ", max(0, t.lastLen-lipgloss.Width(s)))
	}
	if _, err := io.WriteString(t.w, s+"\n"); err != nil {
		// 写失败即禁用
		t.enabled = false
	}
	t.lastLen = 0
}

func (t *Terminal) printInline(s string) {
	if t == nil || !t.enabled {
		return
	}
	// \r + 内容；若新行比旧短，填充空格覆盖
	l := lipgloss.Width(s)
	pad := 0
	if t.lastLen > l {
		pad = t.lastLen - l
	}
	var b strings.Builder
	b.WriteByte('\r')
	b.WriteString(s)
	if pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	if _, err := io.WriteString(t.w, b.String()); err != nil {
		t.enabled = false
		return
	}
	t.lastLen = l
}

func safe(s string) string {
	// 避免换行等控制字符污染终端
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

func formatSince(t0 time.Time) string { return formatDur(time.Since(t0)) }

func formatDur(d time.Duration) string {
	if d < time.Second {
		ms := d.Milliseconds()
		if ms <= 0 {
			ms = 0
		}
		return fmt.Sprintf("%dms", ms)
	}
	// 秒，保留 1 位小数
	s := float64(d.Milliseconds()) / 1000.0
	return fmt.Sprintf("%.1fs", s)
}
