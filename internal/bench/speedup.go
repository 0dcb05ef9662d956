package bench

import (
	"fmt"
	"time"

	"github.com/TomTonic/rtcompare"
)

// DefaultThresholds 默认评估的相对加速阈值（10%/25%/50%）。
var DefaultThresholds = []float64{0.10, 0.25, 0.50}

// speedupResamples bootstrap 重采样次数。
const speedupResamples = 10000

// Confidence 表示“A 比 B 至少快 Threshold”的置信度。
type Confidence struct {
	Threshold  float64
	Confidence float64
}

// Speedup 基于两组运行时间样本估计 A 相对 B 的加速置信度。
// 两组样本均至少需要 2 个；thresholds 为空时使用 DefaultThresholds。
func Speedup(a, b []time.Duration, thresholds []float64) ([]Confidence, error) {
	if len(a) < 2 || len(b) < 2 {
		return nil, fmt.Errorf("speedup needs at least 2 samples per side, got %d and %d", len(a), len(b))
	}
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds
	}
	res, err := rtcompare.CompareRuntimes(toFloat(a), toFloat(b), thresholds, speedupResamples)
	if err != nil {
		return nil, fmt.Errorf("compare runtimes: %w", err)
	}
	out := make([]Confidence, 0, len(res))
	for _, r := range res {
		out = append(out, Confidence{Threshold: r.RelativeSpeedupSampleAvsSampleB, Confidence: r.Confidence})
	}
	return out, nil
}

// toFloat: 纳秒浮点，避免亚毫秒样本被截断为 0。
func toFloat(ds []time.Duration) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = float64(d.Nanoseconds())
	}
	return out
}
