package diag

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 日志默认落盘位置与轮转阈值。
const (
	DefaultLogDir   = "logs"
	DefaultLogBytes = 10 * 1024 * 1024
)

// Logger 为最小结构化日志器：zap JSON 单行输出到轮转文件；事件形状固定
// （comp/stage/code/dur_ms/count/kv），stage 取 start|finish|error。
// 所有方法对 nil 接收者安全。
type Logger struct {
	z    *zap.Logger
	sink *RotatingFile
}

// NewLogger 通过配置的 level 初始化，并将日志写入 dir（空则 DefaultLogDir），10m 轮转。
func NewLogger(corrID, level, dir string) *Logger {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultLogDir
	}
	sink := NewRotatingFile(dir, DefaultLogBytes)
	l := NewLoggerTo(corrID, level, sink)
	l.sink = sink
	return l
}

// NewLoggerTo 将日志写到任意 WriteSyncer（测试或 stderr）。
func NewLoggerTo(corrID, level string, ws zapcore.WriteSyncer) *Logger {
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     utcRFC3339,
		EncodeDuration: zapcore.MillisDurationEncoder,
	})
	core := zapcore.NewCore(enc, ws, zap.NewAtomicLevelAt(ParseLevel(level)))
	z := zap.New(core, zap.ErrorOutput(zapcore.Lock(os.Stderr))).With(zap.String("corr_id", corrID))
	return &Logger{z: z}
}

// ParseLevel 解析 debug|info|warn|error；未知值按 info。
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func utcRFC3339(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(time.RFC3339))
}

// Close 刷新并关闭文件句柄。
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	_ = l.z.Sync()
	if l.sink != nil {
		return l.sink.Close()
	}
	return nil
}

func kvFields(kv map[string]string) zap.Field {
	return zap.Any("kv", kv)
}

// Start 记录 start 事件；返回计时器用于 Finish。
func (l *Logger) Start(comp, msg string) *Timer {
	return l.StartWithKV(comp, msg, nil)
}

// StartWithKV 记录带键值的 start。
func (l *Logger) StartWithKV(comp, msg string, kv map[string]string) *Timer {
	if l == nil {
		return nil
	}
	fields := []zap.Field{zap.String("comp", comp), zap.String("stage", "start")}
	if len(kv) > 0 {
		fields = append(fields, kvFields(kv))
	}
	l.z.Info(msg, fields...)
	return &Timer{l: l, comp: comp, t0: time.Now()}
}

// Error 记录 error 事件（不采样）。
func (l *Logger) Error(comp, code, msg string, durSince *time.Time) {
	l.ErrorWithKV(comp, code, msg, durSince, nil)
}

// ErrorWithKV 支持附带键值对（例如策略名、序列长度）。
func (l *Logger) ErrorWithKV(comp, code, msg string, durSince *time.Time, kv map[string]string) {
	if l == nil {
		return
	}
	fields := []zap.Field{zap.String("comp", comp), zap.String("stage", "error"), zap.String("code", code)}
	if durSince != nil {
		fields = append(fields, zap.Int64("dur_ms", time.Since(*durSince).Milliseconds()))
	}
	if len(kv) > 0 {
		fields = append(fields, kvFields(kv))
	}
	l.z.Error(msg, fields...)
}

// InfoFinish 在已有起点的情况下记录 finish。
func (l *Logger) InfoFinish(comp, msg string, start time.Time, count int64) {
	if l == nil {
		return
	}
	l.z.Info(msg,
		zap.String("comp", comp),
		zap.String("stage", "finish"),
		zap.Int64("dur_ms", time.Since(start).Milliseconds()),
		zap.Int64("count", count),
	)
}

// DebugStart 输出调试级别的“start”类事件（仅在 level=debug 时生效）。
func (l *Logger) DebugStart(comp, msg string, kv map[string]string) {
	if l == nil {
		return
	}
	l.z.Debug(msg, zap.String("comp", comp), zap.String("stage", "start"), kvFields(kv))
}

// Timer 用于 start→finish 计时。
type Timer struct {
	l    *Logger
	comp string
	t0   time.Time
}

// Finish 记录 finish；可选 count 与键值。
func (t *Timer) Finish(msg string, count int64, kv ...map[string]string) {
	if t == nil || t.l == nil {
		return
	}
	fields := []zap.Field{
		zap.String("comp", t.comp),
		zap.String("stage", "finish"),
		zap.Int64("dur_ms", time.Since(t.t0).Milliseconds()),
		zap.Int64("count", count),
	}
	if len(kv) > 0 && len(kv[0]) > 0 {
		fields = append(fields, kvFields(kv[0]))
	}
	t.l.z.Info(msg, fields...)
}
