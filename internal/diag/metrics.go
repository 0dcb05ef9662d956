package diag

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 指标（私有 registry）：
// - maxsum_op_total{comp,stage,result}
// - maxsum_error_total{comp,code}
// - maxsum_op_duration_ms{comp,stage}
var (
	registry = prometheus.NewRegistry()

	opTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maxsum",
		Name:      "op_total",
		Help:      "Operations by component, stage and result.",
	}, []string{"comp", "stage", "result"})

	errorTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maxsum",
		Name:      "error_total",
		Help:      "Errors by component and classification code.",
	}, []string{"comp", "code"})

	opDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "maxsum",
		Name:      "op_duration_ms",
		Help:      "Stage duration in milliseconds.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 10, 10),
	}, []string{"comp", "stage"})
)

func init() {
	registry.MustRegister(opTotal, errorTotal, opDuration)
}

// IncOp 累加操作计数（result=success|error）。
func IncOp(comp, stage, result string) {
	opTotal.WithLabelValues(comp, stage, result).Inc()
}

// IncError 按分类累加错误计数。
func IncError(comp, code string) {
	errorTotal.WithLabelValues(comp, code).Inc()
}

// ObserveDuration 记录阶段耗时（以毫秒为单位，保留亚毫秒精度）。
func ObserveDuration(comp, stage string, d time.Duration) {
	opDuration.WithLabelValues(comp, stage).Observe(float64(d) / float64(time.Millisecond))
}

// Gatherer 返回指标收集器（供导出或测试）。
func Gatherer() prometheus.Gatherer { return registry }

// WriteMetrics 以文本格式导出全部指标到 path。
func WriteMetrics(path string) error {
	return prometheus.WriteToTextfile(path, registry)
}
