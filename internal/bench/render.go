package bench

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"maxsum/pkg/contract"
)

// SpeedupLine 最快策略相对另一策略的加速置信度。
type SpeedupLine struct {
	Faster contract.StrategyID
	Slower contract.StrategyID
	Conf   []Confidence
}

// Speedups 以中位耗时最短的策略为基准，对其余已执行且样本数 >=2 的策略逐一估计加速置信度。
func Speedups(rep Report, thresholds []float64) ([]SpeedupLine, error) {
	var best *Row
	for i := range rep.Rows {
		r := &rep.Rows[i]
		if r.Skipped != "" || len(r.Runs) < 2 {
			continue
		}
		if best == nil || r.Median() < best.Median() {
			best = r
		}
	}
	if best == nil {
		return nil, nil
	}
	var out []SpeedupLine
	for i := range rep.Rows {
		r := &rep.Rows[i]
		if r == best || r.Skipped != "" || len(r.Runs) < 2 {
			continue
		}
		conf, err := Speedup(best.Runs, r.Runs, thresholds)
		if err != nil {
			return nil, fmt.Errorf("%s vs %s: %w", best.Strategy, r.Strategy, err)
		}
		out = append(out, SpeedupLine{Faster: best.Strategy, Slower: r.Strategy, Conf: conf})
	}
	return out, nil
}

var reportHeaders = []string{"strategy", "sum", "runs", "min", "median", "mean"}

// Render 输出对比表与加速置信度；非 TTY 输出无控制字符。
func Render(w io.Writer, rep Report, lines []SpeedupLine) error {
	r := lipgloss.NewRenderer(w)
	head := r.NewStyle().Bold(true).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)
	num := cell.Align(lipgloss.Right)
	skip := cell.Foreground(lipgloss.Color("8"))

	rows := [][]string{reportHeaders}
	for _, row := range rep.Rows {
		if row.Skipped != "" {
			rows = append(rows, []string{string(row.Strategy), "-", "0", "-", "-", "-"})
			continue
		}
		rows = append(rows, []string{
			string(row.Strategy),
			strconv.FormatInt(row.Sum, 10),
			strconv.Itoa(len(row.Runs)),
			formatSeconds(row.Min()),
			formatSeconds(row.Median()),
			formatSeconds(row.Mean()),
		})
	}

	widths := make([]int, len(reportHeaders))
	for _, cols := range rows {
		for j, c := range cols {
			widths[j] = max(widths[j], lipgloss.Width(c))
		}
	}
	var body []string
	for i, cols := range rows {
		cells := make([]string, len(cols))
		for j, c := range cols {
			st := cell
			switch {
			case i == 0:
				st = head
			case rep.Rows[i-1].Skipped != "":
				st = skip
			case j > 0:
				st = num
			}
			cells[j] = st.Width(widths[j] + 2).Render(c)
		}
		body = append(body, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	table := r.NewStyle().Border(lipgloss.RoundedBorder()).Render(lipgloss.JoinVertical(lipgloss.Left, body...))

	var b strings.Builder
	fmt.Fprintf(&b, "n = %d\n", rep.N)
	b.WriteString(table)
	b.WriteByte('\n')
	for _, row := range rep.Rows {
		if row.Skipped != "" {
			fmt.Fprintf(&b, "skipped %s: %s\n", row.Strategy, row.Skipped)
		}
	}
	if len(rep.Rows) > 0 {
		fmt.Fprintf(&b, "Max sum = %d\n", rep.Sum)
	}
	for _, l := range lines {
		parts := make([]string, 0, len(l.Conf))
		for _, c := range l.Conf {
			parts = append(parts, fmt.Sprintf("≥%.0f%%: %.4f", c.Threshold*100, c.Confidence))
		}
		fmt.Fprintf(&b, "speedup %s vs %s | %s\n", l.Faster, l.Slower, strings.Join(parts, " | "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 6, 64) + "s"
}
